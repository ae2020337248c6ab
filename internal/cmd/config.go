package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/config"
	omdbprovider "github.com/Digital-Shane/jojo/internal/provider/omdb"
	"github.com/Digital-Shane/jojo/internal/provider/tmdb"
	configtui "github.com/Digital-Shane/jojo/internal/tui/config"
	"github.com/spf13/cobra"
)

var noApp = map[string]string{annotationNoApp: "true"}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show and change settings",
	Long:        `Settings live in ~/.jojo/config.json. API keys can also come from ` + config.EnvTMDBAPIKey + ` and ` + config.EnvOMDBAPIKey + `.`,
	Args:        cobra.NoArgs,
	Annotations: noApp,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print every setting, with secrets masked",
	Args:        cobra.NoArgs,
	Annotations: noApp,
	RunE:        runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Print one setting",
	Args:        cobra.ExactArgs(1),
	Annotations: noApp,
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Change one setting and save",
	Long:        "Change one setting and save the config file. Keys:\n  " + strings.Join(config.Keys(), "\n  "),
	Args:        cobra.ExactArgs(2),
	Annotations: noApp,
	RunE:        runConfigSet,
}

var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit settings interactively",
	Long:        `Open the settings editor. API keys are checked against their services as you type.`,
	Args:        cobra.NoArgs,
	Annotations: noApp,
	RunE:        runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: noApp,
	RunE:        runConfigPath,
}

// secretKeys are printed masked.
var secretKeys = map[string]bool{
	"tmdb_api_key":   true,
	"omdb_api_key":   true,
	"redis_password": true,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, key := range config.Keys() {
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if secretKeys[key] {
			v = config.Masked(v)
		}
		fmt.Fprintf(out, "%s  %s\n", cell(key, 22), v)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	v, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	if secretKeys[args[0]] {
		v = config.Masked(v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("not saved: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	if secretKeys[key] {
		value = config.Masked(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := configtui.New(cfg,
		configtui.WithValidator("tmdb_api_key", validateTMDBKey),
		configtui.WithValidator("omdb_api_key", validateOMDBKey),
	)
	if _, err := runProgram(model); err != nil {
		return fmt.Errorf("config editor failed: %w", err)
	}
	if model.Saved() {
		path, _ := config.ConfigPath()
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	}
	return nil
}

// validationTitle is a long-lived title both catalogs know.
const validationTitle = "tt0133093"

func validateTMDBKey(ctx context.Context, apiKey string) error {
	p, err := tmdb.New(tmdb.Options{APIKey: apiKey})
	if err != nil {
		return err
	}
	_, err = p.Find(ctx, validationTitle)
	return err
}

func validateOMDBKey(ctx context.Context, apiKey string) error {
	p, err := omdbprovider.New(apiKey, nil)
	if err != nil {
		return err
	}
	_, err = p.Summarize(ctx, validationTitle)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configEditCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

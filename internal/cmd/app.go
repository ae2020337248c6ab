package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/catalog"
	"github.com/Digital-Shane/jojo/internal/config"
	"github.com/Digital-Shane/jojo/internal/identity"
	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/prefs"
	omdbprovider "github.com/Digital-Shane/jojo/internal/provider/omdb"
	"github.com/Digital-Shane/jojo/internal/provider/tmdb"
	"github.com/Digital-Shane/jojo/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// annotationNoApp marks commands that run without storage or a catalog.
const annotationNoApp = "jojo/no-app"

// App holds everything a command needs, wired from the config.
type App struct {
	Config   *config.Config
	Store    storage.Store
	Identity *identity.Store
	Prefs    *prefs.Store
	Logger   zerolog.Logger

	// Resolver and Feed are nil when no TMDB API key is configured.
	Resolver *catalog.Resolver
	Feed     *catalog.Feed
}

// app is the instance built for the running command.
var app *App

// newApp builds the App. Tests replace it.
var newApp = buildApp

// errNoCatalog is returned by commands that need TMDB when no key is set.
var errNoCatalog = errors.New("no TMDB API key configured: run 'jojo config set tmdb_api_key <key>' or set " + config.EnvTMDBAPIKey)

func buildApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	kv, err := storage.New(cfg.StorageBackend, cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	a := &App{
		Config:   cfg,
		Store:    kv,
		Identity: identity.New(kv),
		Prefs:    prefs.New(kv),
		Logger:   logger,
	}
	if cfg.TMDBAPIKey == "" {
		return a, nil
	}

	tp, err := tmdb.New(tmdb.Options{
		APIKey:        cfg.TMDBAPIKey,
		Language:      cfg.TMDBLanguage,
		CacheEnabled:  cfg.CacheEnabled,
		CacheDuration: cfg.CacheDuration(),
		Logger:        logger,
	})
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create TMDB provider: %w", err)
	}

	opts := []catalog.Option{catalog.WithLogger(logger)}
	if cfg.OMDBAPIKey != "" {
		op, err := omdbprovider.New(cfg.OMDBAPIKey, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("omdb fallback disabled")
		} else {
			opts = append(opts, catalog.WithFallback(op))
		}
	}
	a.Resolver = catalog.NewResolver(tp, opts...)
	a.Feed = catalog.NewFeed(a.Resolver)
	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// CurrentUser returns the logged in name or "".
func (a *App) CurrentUser() string {
	user, _ := a.Identity.CurrentUser()
	return user
}

// RequireUser returns the logged in name or an error telling how to log in.
func (a *App) RequireUser() (string, error) {
	if user := a.CurrentUser(); user != "" {
		return user, nil
	}
	return "", fmt.Errorf("%w: run 'jojo login <name>'", media.ErrNotAuthenticated)
}

// RequireCatalog fails when TMDB is not configured.
func (a *App) RequireCatalog() error {
	if a.Resolver == nil {
		return errNoCatalog
	}
	return nil
}

// setup loads the config, opens storage and starts the activity log session
// for the command.
func setup(cmd *cobra.Command, args []string) error {
	if !needsApp(cmd) {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if storageBackend != "" {
		cfg.StorageBackend = storageBackend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays)

	a, err := newApp(cfg, log.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, verbose))
	if err != nil {
		return err
	}
	app = a

	name, rest := commandPath(cmd)
	if err := log.StartSession(name, append(rest, args...), a.CurrentUser()); err != nil {
		a.Logger.Warn().Err(err).Msg("activity log disabled for this command")
	}
	return nil
}

// needsApp reports whether cmd uses storage. Config, help and completion
// commands run on a bare config.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoApp] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// finish writes the activity log session and closes storage.
func finish() {
	if app == nil {
		return
	}
	if err := log.EndSession(); err != nil {
		app.Logger.Warn().Err(err).Msg("failed to write activity log")
	}
	if err := app.Close(); err != nil {
		app.Logger.Warn().Err(err).Msg("failed to close storage")
	}
	app = nil
}

// commandPath splits the invoked command into its top level name and the
// subcommand names below it.
func commandPath(cmd *cobra.Command) (string, []string) {
	var names []string
	for c := cmd; c != nil && c.HasParent(); c = c.Parent() {
		names = append([]string{c.Name()}, names...)
	}
	if len(names) == 0 {
		return cmd.Name(), nil
	}
	return names[0], names[1:]
}

// joinArgs turns command arguments into one query or ID.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

package cmd

import (
	"fmt"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Pick whose favorites and history to use",
	Long: `Set the current identity. Any non-empty name works and replaces whoever
was logged in before.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoginCommand,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the current identity",
	Args:  cobra.NoArgs,
	RunE:  runLogoutCommand,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	Args:  cobra.NoArgs,
	RunE:  runWhoamiCommand,
}

func runLoginCommand(cmd *cobra.Command, args []string) error {
	name := joinArgs(args)
	err := app.Identity.Login(name)
	log.LogLogin(name, err == nil, err)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
	return nil
}

func runLogoutCommand(cmd *cobra.Command, args []string) error {
	user := app.CurrentUser()
	if user == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	err := app.Identity.Logout()
	log.LogLogout(user, err == nil, err)
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", user)
	return nil
}

func runWhoamiCommand(cmd *cobra.Command, args []string) error {
	user, ok := app.Identity.CurrentUser()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), user)
	return nil
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

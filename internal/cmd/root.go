package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jojo",
	Short: "Find, track and play movies and TV shows from the terminal",
	Long: `jojo searches The Movie Database for movies and TV shows, shows what is
trending this week, keeps per-user favorites and watch history, and hands
titles off to third-party embed servers for playback.

Favorites and history are kept in local storage keyed by the name you log in
with. There are no passwords: "logging in" only picks whose lists you see.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	storageBackend string
	verbose        bool
)

// Execute runs the root command with Ctrl-C wired to cancel in-flight
// requests. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes args against the command tree and releases whatever setup
// opened, including when the command fails.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer finish()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "Storage backend to use (file, memory, redis); overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log catalog requests to stderr")
}

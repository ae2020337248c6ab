package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/Digital-Shane/jojo/internal/tui/player"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	playServer  string
	playInstant bool
)

var playCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Open the player for a title",
	Long: `Resolve a title by its external ID (an IMDb ID such as tt0816692, or an
IMDb URL) and open the player. The title is added to your watch history once
its details load.

Use tab or the number keys to switch embed servers, f to toggle the favorite
and c to copy the embed URL. With --instant the details and URL are printed
without opening the player.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayCommand,
}

// runProgram runs a bubbletea model to completion. Tests replace it.
var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

func runPlayCommand(cmd *cobra.Command, args []string) error {
	if err := app.RequireCatalog(); err != nil {
		return err
	}

	var input string
	if len(args) > 0 {
		input = args[0]
	}
	externalID := media.ParseExternalID(input)

	server := playServer
	if !cmd.Flags().Changed("server") {
		server = app.Config.DefaultServer
	}
	selector, err := playback.NewSelector(server)
	if err != nil {
		return err
	}

	if playInstant {
		return playInstantly(cmd, externalID, selector)
	}
	return playInteractive(cmd, externalID, selector)
}

// newSession builds a player session for the current user.
func newSession(externalID string) *playback.Session {
	return playback.NewSession(app.Resolver, app.Prefs, app.CurrentUser(), externalID)
}

func playInstantly(cmd *cobra.Command, externalID string, selector *playback.Selector) error {
	s := newSession(externalID)
	if err := s.Run(cmd.Context()); err != nil {
		if s.State().Failed() {
			return errors.New(s.FailureMessage())
		}
		return err
	}
	recordPlayback(s)

	out := cmd.OutOrStdout()
	printItem(out, s.Item(), s.IsFavorite())
	fmt.Fprintln(out)
	printEmbed(out, selector, externalID)
	return nil
}

func playInteractive(cmd *cobra.Command, externalID string, selector *playback.Selector) error {
	model := player.New(newSession, externalID, selector,
		player.WithContext(cmd.Context()),
		player.WithLoadedHook(recordPlayback),
		player.WithFavoriteHook(recordFavorite),
	)

	if _, err := runProgram(model); err != nil {
		return fmt.Errorf("player failed: %w", err)
	}

	if model.EmbedURL() != "" {
		printEmbed(cmd.OutOrStdout(), model.Selector(), model.Session().ExternalID())
	}
	return nil
}

// recordPlayback logs a history entry when loading the title added one.
func recordPlayback(s *playback.Session) {
	if s.Identity() == "" {
		return
	}
	switch {
	case s.HistoryAdded():
		log.LogHistoryRecord(s.Identity(), s.ExternalID(), nil)
	case s.Warning() != nil:
		log.LogHistoryRecord(s.Identity(), s.ExternalID(), s.Warning())
	}
}

func recordFavorite(externalID string, added bool, err error) {
	log.LogFavorite(app.CurrentUser(), externalID, added, err)
}

func printEmbed(w io.Writer, selector *playback.Selector, externalID string) {
	fmt.Fprintf(w, "%s: %s\n", selector.Current().Name, selector.EmbedURL(externalID))
}

func init() {
	playCmd.Flags().StringVarP(&playServer, "server", "s", "", "Embed server to start on (see 'jojo servers')")
	playCmd.Flags().BoolVarP(&playInstant, "instant", "i", false, "Print details and the embed URL without opening the player")

	rootCmd.AddCommand(playCmd)
}

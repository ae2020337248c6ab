package cmd

import (
	"fmt"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/Digital-Shane/jojo/internal/prefs"
	"github.com/Digital-Shane/jojo/internal/tui/library"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Browse favorites and history and play from them",
	Long: `Open your favorites and watch history side by side. Press enter on a title
to open it in the player, d to remove it from its list, and q to leave.
Closing the player brings you back to the library.`,
	Args: cobra.NoArgs,
	RunE: runLibraryCommand,
}

func runLibraryCommand(cmd *cobra.Command, args []string) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}
	if err := app.RequireCatalog(); err != nil {
		return err
	}

	for {
		favorites, err := app.Prefs.Load(prefs.Favorites, user)
		if err != nil {
			return fmt.Errorf("failed to read favorites: %w", err)
		}
		history, err := app.Prefs.Load(prefs.History, user)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		tree := library.BuildTree(summariesFor(cmd, favorites), summariesFor(cmd, history), theme.Default())
		model := library.New(tree, user, library.WithRemover(func(list prefs.ListKind, id string) error {
			return removeFromList(user, list, id)
		}))
		if _, err := runProgram(model); err != nil {
			return fmt.Errorf("library failed: %w", err)
		}

		picked := model.Selected()
		if picked == nil {
			return nil
		}
		selector, err := playback.NewSelector(app.Config.DefaultServer)
		if err != nil {
			return err
		}
		if err := playInteractive(cmd, picked.ExternalID, selector); err != nil {
			return err
		}
	}
}

// removeFromList deletes id from one of user's lists and logs the change.
func removeFromList(user string, list prefs.ListKind, id string) error {
	var err error
	switch list {
	case prefs.Favorites:
		_, err = app.Prefs.Remove(prefs.Favorites, user, id)
		log.LogFavorite(user, id, false, err)
	case prefs.History:
		_, err = app.Prefs.Remove(prefs.History, user, id)
		log.LogHistoryClear(user, []string{id}, err)
	default:
		return fmt.Errorf("unknown list %q", list)
	}
	return err
}

func init() {
	rootCmd.AddCommand(libraryCmd)
}

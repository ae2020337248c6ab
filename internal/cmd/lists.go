package cmd

import (
	"fmt"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/prefs"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favs"},
	Short:   "List and edit your favorites",
	Args:    cobra.NoArgs,
	RunE:    listCommand(prefs.Favorites),
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorites",
	Args:  cobra.NoArgs,
	RunE:  listCommand(prefs.Favorites),
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a title to your favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a title from your favorites",
	Args:    cobra.ExactArgs(1),
	RunE:    runFavoritesRemove,
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Add a title if it is missing, remove it otherwise",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesToggle,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and clear your watch history",
	Args:  cobra.NoArgs,
	RunE:  listCommand(prefs.History),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles you have opened, oldest first",
	Args:  cobra.NoArgs,
	RunE:  listCommand(prefs.History),
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget your watch history",
	Long:  `Remove every entry from your watch history. 'jojo undo' can restore it.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

// listCommand prints one of the user's lists, resolving titles when the
// catalog is configured.
func listCommand(kind prefs.ListKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		user, err := app.RequireUser()
		if err != nil {
			return err
		}
		ids, err := app.Prefs.Load(kind, user)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", kind, err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintf(out, "%s is empty.\n", kind.Title())
			return nil
		}
		fmt.Fprintf(out, "%s for %s (%d)\n", kind.Title(), user, len(ids))
		printSummaries(out, summariesFor(cmd, ids))
		return nil
	}
}

// summariesFor resolves ids to cards, keeping bare IDs for titles the
// catalog cannot describe.
func summariesFor(cmd *cobra.Command, ids []string) []media.Summary {
	if app.Resolver == nil {
		out := make([]media.Summary, len(ids))
		for i, id := range ids {
			out[i] = media.Summary{ExternalID: id, Title: id}
		}
		return out
	}

	resolved := app.Resolver.Summaries(cmd.Context(), ids)
	byID := make(map[string]media.Summary, len(resolved))
	for _, s := range resolved {
		byID[s.ExternalID] = s
	}
	out := make([]media.Summary, len(ids))
	for i, id := range ids {
		s, ok := byID[id]
		if !ok {
			s = media.Summary{ExternalID: id, Title: id}
		}
		out[i] = s
	}
	return out
}

func favoriteID(args []string) (string, string, error) {
	user, err := app.RequireUser()
	if err != nil {
		return "", "", err
	}
	id := media.ParseExternalID(args[0])
	if id == "" {
		return "", "", fmt.Errorf("%w: give a title ID such as tt0816692", media.ErrEmptyInput)
	}
	return user, id, nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	user, id, err := favoriteID(args)
	if err != nil {
		return err
	}
	changed, err := app.Prefs.Add(prefs.Favorites, user, id)
	if changed || err != nil {
		log.LogFavorite(user, id, true, err)
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", id)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", id)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	user, id, err := favoriteID(args)
	if err != nil {
		return err
	}
	changed, err := app.Prefs.Remove(prefs.Favorites, user, id)
	if changed || err != nil {
		log.LogFavorite(user, id, false, err)
	}
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favorite\n", id)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", id)
	return nil
}

func runFavoritesToggle(cmd *cobra.Command, args []string) error {
	user, id, err := favoriteID(args)
	if err != nil {
		return err
	}
	added, err := app.Prefs.Toggle(user, id)
	log.LogFavorite(user, id, added, err)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", id)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}
	cleared, err := app.Prefs.Clear(prefs.History, user)
	if len(cleared) > 0 || err != nil {
		log.LogHistoryClear(user, cleared, err)
	}
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s from history\n", len(cleared), titles(len(cleared)))
	return nil
}

func titles(n int) string {
	if n == 1 {
		return "title"
	}
	return "titles"
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd, favoritesToggleCmd)
	historyCmd.AddCommand(historyListCmd, historyClearCmd)
	rootCmd.AddCommand(favoritesCmd, historyCmd)
}

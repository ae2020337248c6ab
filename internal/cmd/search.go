package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/jojo/internal/config"
	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search movies and TV shows by title",
	Long: `Search the catalog by free text. Results that cannot be mapped to an
external ID are left out, since they could not be played.

Without a query the last search is repeated.`,
	RunE: runSearchCommand,
}

var (
	trendingKind  string
	trendingLimit int
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show this week's trending movies and TV shows",
	Args:  cobra.NoArgs,
	RunE:  runTrendingCommand,
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	if err := app.RequireCatalog(); err != nil {
		return err
	}

	query := joinArgs(args)
	if query == "" {
		query = app.Prefs.LastQuery()
	}
	if query == "" {
		return fmt.Errorf("%w: give a title to search for", media.ErrEmptyInput)
	}
	if err := app.Prefs.SetLastQuery(query); err != nil {
		app.Logger.Warn().Err(err).Msg("failed to remember query")
	}

	results, err := app.Resolver.SearchByText(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return nil
	}
	fmt.Fprintf(out, "Results for %q\n", query)
	printSummaries(out, results)
	return nil
}

func runTrendingCommand(cmd *cobra.Command, args []string) error {
	if err := app.RequireCatalog(); err != nil {
		return err
	}

	limit := trendingLimit
	if !cmd.Flags().Changed("limit") {
		limit = app.Config.TrendingLimit
	}
	if limit < 1 || limit > config.MaxTrendingLimit {
		return fmt.Errorf("--limit must be between 1 and %d", config.MaxTrendingLimit)
	}

	var kinds []media.Kind
	switch trendingKind {
	case "", "all":
		kinds = []media.Kind{media.KindMovie, media.KindSeries}
	default:
		k, err := media.ParseKind(trendingKind)
		if err != nil {
			return err
		}
		kinds = []media.Kind{k}
	}

	lists := make([][]media.TrendingEntry, len(kinds))
	errs := make([]error, len(kinds))
	var wg conc.WaitGroup
	for i, k := range kinds {
		wg.Go(func() {
			lists[i], errs[i] = app.Feed.FetchTrending(cmd.Context(), k, limit)
		})
	}
	wg.Wait()

	out := cmd.OutOrStdout()
	var failed []error
	for i, k := range kinds {
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("%s: %w", trendingHeading(k), errs[i]))
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		printTrending(out, trendingHeading(k), lists[i])
	}
	if len(failed) == len(kinds) {
		return errors.Join(failed...)
	}
	for _, err := range failed {
		app.Logger.Warn().Err(err).Msg("trending list unavailable")
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
	}
	return nil
}

func trendingHeading(k media.Kind) string {
	if k == media.KindSeries {
		return "Trending TV Shows"
	}
	return "Trending Movies"
}

func init() {
	trendingCmd.Flags().StringVarP(&trendingKind, "kind", "k", "all", "Which list to show: movie, series or all")
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", config.DefaultTrending, "Entries per list")

	rootCmd.AddCommand(searchCmd, trendingCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/tui/undo"
	"github.com/Digital-Shane/treeview"
	"github.com/spf13/cobra"
)

var undoLast bool

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo recent favorite and history changes",
	Long: `Display recent sessions that changed favorites or history and allow
selective undo.

Sessions are undone newest change first. Logins and logouts are listed but
never reverted. With --last the most recent session is undone without
opening the browser.`,
	Args: cobra.NoArgs,
	RunE: runUndoCommand,
}

func runUndoCommand(cmd *cobra.Command, args []string) error {
	if undoLast {
		return undoLatest(cmd)
	}

	summaries, err := log.GetSessionSummaries()
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found to undo.")
		return nil
	}

	sessionNodes := make([]*treeview.Node[log.SessionSummary], 0, len(summaries))
	for _, summary := range summaries {
		meta := summary.Session.Metadata
		command := "jojo"
		if len(meta.CommandArgs) > 0 {
			command = meta.CommandArgs[0]
		}
		nodeName := fmt.Sprintf("%s %s - %s (%d ops)", summary.Icon, command, summary.RelativeTime, meta.TotalOps)
		sessionNodes = append(sessionNodes, treeview.NewNode(meta.SessionID, nodeName, summary))
	}

	tree := treeview.NewTree(sessionNodes)
	final, err := runProgram(undo.New(tree, app.Prefs))
	if err != nil {
		return err
	}
	if m, ok := final.(*undo.Model); ok {
		if reverted, failed, done := m.Result(); done {
			fmt.Fprintf(cmd.OutOrStdout(), "Undid %d change(s), %d failed\n", reverted, failed)
		}
	}
	return nil
}

func undoLatest(cmd *cobra.Command) error {
	session, path, err := log.FindLatestSession()
	if errors.Is(err, log.ErrNoSessions) {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found to undo.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}

	ok, failed, errs := log.UndoSession(app.Prefs, session)
	fmt.Fprintf(cmd.OutOrStdout(), "Undid %d change(s) from session %s\n", ok, session.Metadata.SessionID)
	if failed > 0 {
		return fmt.Errorf("%d change(s) could not be undone: %w", failed, errors.Join(errs...))
	}
	if err := log.RemoveSession(path); err != nil {
		return fmt.Errorf("failed to remove session log: %w", err)
	}
	return nil
}

func init() {
	undoCmd.Flags().BoolVar(&undoLast, "last", false, "Undo the most recent session without opening the browser")
	rootCmd.AddCommand(undoCmd)
}

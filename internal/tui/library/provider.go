package library

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/prefs"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/lipgloss"
)

// Entry is the data behind one library tree node. Header nodes group the
// titles of one list.
type Entry struct {
	List    prefs.ListKind
	Summary media.Summary
	Header  bool
	Removed bool
}

// NodeID returns the tree node ID for id in list.
func NodeID(list prefs.ListKind, id string) string {
	if id == "" {
		return string(list)
	}
	return string(list) + "/" + id
}

// ---- predicate helpers ----
func entryRule(cond func(*Entry) bool) func(*treeview.Node[Entry]) bool {
	return func(n *treeview.Node[Entry]) bool {
		if e := n.Data(); e != nil {
			return cond(e)
		}
		return false
	}
}

func isHeader(list prefs.ListKind) func(*treeview.Node[Entry]) bool {
	return entryRule(func(e *Entry) bool { return e.Header && e.List == list })
}

func isRemoved() func(*treeview.Node[Entry]) bool {
	return entryRule(func(e *Entry) bool { return !e.Header && e.Removed })
}

func kindIs(k media.Kind) func(*treeview.Node[Entry]) bool {
	return entryRule(func(e *Entry) bool { return !e.Header && e.Summary.Kind == k })
}

// NewProvider builds the node provider for the library tree: icons per list
// and kind, strikethrough for removed titles.
func NewProvider(th theme.Theme) *treeview.DefaultNodeProvider[Entry] {
	colors := th.Palette()

	// Icon rules (order matters: removal first)
	removedIconRule := treeview.WithIconRule(isRemoved(), th.Icon("removed"))
	favoritesIconRule := treeview.WithIconRule(isHeader(prefs.Favorites), th.Icon("favorite"))
	historyIconRule := treeview.WithIconRule(isHeader(prefs.History), th.Icon("history"))
	movieIconRule := treeview.WithIconRule(kindIs(media.KindMovie), th.Icon("movie"))
	seriesIconRule := treeview.WithIconRule(kindIs(media.KindSeries), th.Icon("series"))
	defaultIconRule := treeview.WithDefaultIcon[Entry](th.Icon("unknown"))

	favoritesStyleRule := treeview.WithStyleRule(
		isHeader(prefs.Favorites),
		lipgloss.NewStyle().Foreground(colors.Primary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Secondary).PaddingRight(1),
	)
	historyStyleRule := treeview.WithStyleRule(
		isHeader(prefs.History),
		lipgloss.NewStyle().Foreground(colors.Secondary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Primary).PaddingRight(1),
	)
	removedStyleRule := treeview.WithStyleRule(
		isRemoved(),
		lipgloss.NewStyle().Foreground(colors.Muted).Strikethrough(true),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Muted).Strikethrough(true),
	)
	defaultStyleRule := treeview.WithStyleRule(
		func(*treeview.Node[Entry]) bool { return true },
		lipgloss.NewStyle().Foreground(colors.Primary),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary),
	)

	return treeview.NewDefaultNodeProvider(
		removedIconRule, favoritesIconRule, historyIconRule, movieIconRule, seriesIconRule, defaultIconRule,
		removedStyleRule, favoritesStyleRule, historyStyleRule, defaultStyleRule,
		treeview.WithFormatter(Formatter),
	)
}

// Formatter labels list headers with their size and titles with their
// external ID.
func Formatter(node *treeview.Node[Entry]) (string, bool) {
	e := node.Data()
	if e == nil {
		return node.Name(), true
	}
	if e.Header {
		return fmt.Sprintf("%s (%d)", e.List.Title(), len(node.Children())), true
	}
	label := fmt.Sprintf("%s · %s", e.Summary.Title, e.Summary.ExternalID)
	if e.Removed {
		label += " (removed)"
	}
	return label, true
}

// BuildTree groups favorites and history under one header node each and
// focuses the first title, or the first header when both lists are empty.
func BuildTree(favorites, history []media.Summary, th theme.Theme) *treeview.Tree[Entry] {
	var roots []*treeview.Node[Entry]
	focus := ""
	for _, group := range []struct {
		list  prefs.ListKind
		items []media.Summary
	}{
		{prefs.Favorites, favorites},
		{prefs.History, history},
	} {
		header := treeview.NewNode(NodeID(group.list, ""), group.list.Title(), Entry{List: group.list, Header: true})
		for _, s := range group.items {
			id := NodeID(group.list, s.ExternalID)
			header.AddChild(treeview.NewNode(id, s.Title, Entry{List: group.list, Summary: s}))
			if focus == "" {
				focus = id
			}
		}
		roots = append(roots, header)
	}
	if focus == "" {
		focus = NodeID(prefs.Favorites, "")
	}

	tree := treeview.NewTree(roots,
		treeview.WithExpandAll[Entry](),
		treeview.WithProvider(NewProvider(th)),
	)
	_, _ = tree.SetFocusedID(context.Background(), focus)
	return tree
}

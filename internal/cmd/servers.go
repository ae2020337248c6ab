package cmd

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/config"
	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:         "servers",
	Short:       "List the embed servers the player can use",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoApp: "true"},
	RunE:        runServersCommand,
}

func runServersCommand(cmd *cobra.Command, args []string) error {
	current := playback.DefaultServers[0].Name
	if cfg, err := config.Load(); err == nil && cfg.DefaultServer != "" {
		current = cfg.DefaultServer
	}

	out := cmd.OutOrStdout()
	for i, s := range playback.DefaultServers {
		marker := " "
		if strings.EqualFold(s.Name, current) {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d. %s  %s\n", marker, i+1, cell(s.Name, 12), s.Template)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

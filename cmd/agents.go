// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"specforge/cli/internal/agent"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// agentsCmd lists every provider and whether it would accept work right now.
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show provider availability and the fallback chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cleanup, err := orchestratorFactory(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		rows := pterm.TableData{{"Provider", "Status", "Detail"}}
		for _, st := range orch.Statuses() {
			status := pterm.Green("available")
			if !st.Available {
				status = pterm.Red("unavailable")
			}
			rows = append(rows, []string{string(st.Name), status, st.Reason})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}

		chain := agent.FallbackChain(orch.Mode())
		names := make([]string, len(chain))
		for i, n := range chain {
			names[i] = string(n)
		}
		pterm.Println()
		pterm.Info.Printf("Agent mode: %s\n", orch.Mode())
		pterm.Info.Printf("Fallback chain: %s\n", strings.Join(names, " → "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

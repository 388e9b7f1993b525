// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change specforge settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		bridge := cfg.Cursor.BridgeAddress
		if bridge == "" {
			bridge = "(not set)"
		}
		details := fmt.Sprintf(
			"File: %s\n\nAgent mode: %s\nLog level: %s\nConcurrency: %d\nTimeout: %ds\n\nClaude: %s @ %s\nOpenAI: %s @ %s\nCursor bridge: %s",
			path, cfg.AgentMode, cfg.LogLevel, cfg.Concurrency, cfg.TimeoutSeconds,
			cfg.Claude.Model, cfg.Claude.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, bridge)
		title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Configuration")
		pterm.DefaultBox.WithTitle(title).WithPadding(1).Println(details)
		return nil
	},
}

var configSetAgentCmd = &cobra.Command{
	Use:   "set-agent <mode>",
	Short: "Choose the agent tried first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := agent.ProviderName(args[0])
		if !mode.Known() {
			pterm.Warning.Printf("%q is not a known agent; tasks will run on simple\n", args[0])
		}

		path, err := config.Path()
		if err != nil {
			return err
		}
		// Env and --agent overrides stay out of the file.
		c, err := config.ReadFile(path)
		if err != nil {
			return err
		}
		c.AgentMode = string(mode)
		if err := config.SaveTo(path, c); err != nil {
			return err
		}
		pterm.Success.Printf("Agent mode set to %s\n", mode)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetAgentCmd)
	rootCmd.AddCommand(configCmd)
}

// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for specforge. Each subcommand
// turns spec files into tasks, hands them to the agent orchestrator and renders the
// result with pterm.
package cmd

import (
	"fmt"
	"os"

	"specforge/cli/internal/config"
	"specforge/cli/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	showVersion bool
	agentFlag   string
	verbose     bool

	cfg    config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "specforge",
	Short: "Turn declarative specs into implementation code and tests",
	Long: `specforge generates, tests, validates and refactors TypeScript implementations from
declarative spec files. Work is routed to the configured agent (cursor, claude-code,
openai-codex or simple) and falls back along that chain until one answers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if agentFlag != "" {
			loaded.AgentMode = agentFlag
		}
		cfg = loaded

		l, err := logging.NewLogger(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("configuration loaded",
			zap.String("agent_mode", cfg.AgentMode),
			zap.Int("concurrency", cfg.Concurrency),
			zap.Int("timeout_seconds", cfg.TimeoutSeconds))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("specforge %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&agentFlag, "agent", "", "Agent to try first: cursor, claude-code, openai-codex or simple")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

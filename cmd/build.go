// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"specforge/cli/internal/build"
	"specforge/cli/internal/terminal"
	"specforge/cli/internal/xdg"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildConcurrency int
	buildWrite       bool
)

// buildCmd generates implementations for many spec files at once.
var buildCmd = &cobra.Command{
	Use:   "build <spec-file>...",
	Short: "Generate implementations for a batch of specs",
	Long: `Generate an implementation for every spec file given. Files run in parallel and a
failing file does not stop the rest. With --write each result is saved next to its
spec as <name>.impl.<ext>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt)
		defer stop()

		orch, cleanup, err := orchestratorFactory(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		concurrency := buildConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Concurrency
		}
		logger.Debug("starting build",
			zap.Int("files", len(args)),
			zap.Int("concurrency", concurrency),
			zap.String("mode", string(orch.Mode())))

		renderer := build.NewRenderer(terminal.IsInteractive())
		runner := &build.Runner{
			Executor:    orch,
			Concurrency: concurrency,
			Write:       buildWrite,
			Emit:        renderer.Handle,
		}

		renderer.Start()
		rep, runErr := runner.Run(ctx, args)
		renderer.Stop()

		fmt.Println()
		fmt.Println(build.Summary(rep))

		if !buildWrite {
			for _, f := range rep.Files {
				if f.Success {
					pterm.DefaultSection.Println(f.Target)
					fmt.Println(f.Code)
				}
			}
		}

		if dir, err := xdg.StateDir(); err != nil {
			logger.Debug("no state dir for build report", zap.Error(err))
		} else if path, err := build.SaveReport(dir, rep); err != nil {
			logger.Warn("saving build report", zap.Error(err))
		} else {
			logger.Debug("build report saved", zap.String("path", path))
		}

		if runErr != nil {
			return fmt.Errorf("build interrupted: %w", runErr)
		}
		if n := rep.Failed(); n > 0 {
			return fmt.Errorf("%d of %d specs failed", n, len(rep.Files))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().IntVarP(&buildConcurrency, "concurrency", "c", 0, "Maximum specs in flight (defaults to the configured value)")
	buildCmd.Flags().BoolVar(&buildWrite, "write", false, "Save each implementation next to its spec")
	rootCmd.AddCommand(buildCmd)
}

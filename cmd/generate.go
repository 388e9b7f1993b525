// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/build"
	"specforge/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outPath   string
	writeBack bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <spec-file>",
	Short: "Generate an implementation from a spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readFile(args[0])
		if err != nil {
			return err
		}
		target := outPath
		if target == "" {
			target = build.TargetPath(args[0])
		}
		return runTask(cmd, agent.Task{Kind: agent.KindGenerate, SpecCode: spec, TargetPath: target}, outPath)
	},
}

var testCmd = &cobra.Command{
	Use:   "test <spec-file> <impl-file>",
	Short: "Generate tests for an implementation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, impl, err := readPair(args[0], args[1])
		if err != nil {
			return err
		}
		target := outPath
		if target == "" {
			target = build.TestPath(args[1])
		}
		return runTask(cmd, agent.Task{Kind: agent.KindTest, SpecCode: spec, ExistingCode: impl, TargetPath: target}, outPath)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <spec-file> <impl-file>",
	Short: "Check an implementation against its spec",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, impl, err := readPair(args[0], args[1])
		if err != nil {
			return err
		}
		return runTask(cmd, agent.Task{Kind: agent.KindValidate, SpecCode: spec, ExistingCode: impl}, "")
	},
}

var refactorCmd = &cobra.Command{
	Use:   "refactor <spec-file> <impl-file>",
	Short: "Rewrite an implementation to follow its spec",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, impl, err := readPair(args[0], args[1])
		if err != nil {
			return err
		}
		dest := outPath
		if writeBack {
			dest = args[1]
		}
		return runTask(cmd, agent.Task{Kind: agent.KindRefactor, SpecCode: spec, ExistingCode: impl, TargetPath: args[1]}, dest)
	},
}

// runTask routes task through the orchestrator and prints the answer. Code goes to
// dest, or the command's output when dest is empty. A failed result becomes a
// non-zero exit.
func runTask(cmd *cobra.Command, task agent.Task, dest string) error {
	if err := task.Validate(); err != nil {
		return err
	}
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

	logger.Debug("executing task",
		zap.String("kind", string(task.Kind)),
		zap.String("mode", string(orch.Mode())),
		zap.String("target", task.TargetPath))

	var res agent.Result
	withSpinner(fmt.Sprintf("Running %s with %s...", task.Kind, orch.Mode()), func() {
		res = orch.ExecuteTask(ctx, task)
	})

	provider := providerOf(res)
	if !res.Success {
		fmt.Fprint(cmd.ErrOrStderr(), logging.FormatFailure(string(task.Kind), provider, res.Errors))
		renderNotes(res)
		return fmt.Errorf("%s failed", task.Kind)
	}

	if task.Kind == agent.KindValidate {
		pterm.Success.Printf("Implementation matches the spec (%s)\n", provider)
		renderNotes(res)
		return nil
	}

	if err := writeCode(cmd.OutOrStdout(), dest, res.Code); err != nil {
		return err
	}
	if dest != "" {
		pterm.Success.Printf("Wrote %s (%s)\n", dest, provider)
	}
	renderNotes(res)
	return nil
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return string(b), nil
}

func readPair(specPath, implPath string) (string, string, error) {
	spec, err := readFile(specPath)
	if err != nil {
		return "", "", err
	}
	impl, err := readFile(implPath)
	if err != nil {
		return "", "", err
	}
	return spec, impl, nil
}

func init() {
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the generated code to this file instead of stdout")
	testCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the generated tests to this file instead of stdout")
	refactorCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the refactored code to this file instead of stdout")
	refactorCmd.Flags().BoolVar(&writeBack, "write", false, "Overwrite the implementation file in place")
	rootCmd.AddCommand(generateCmd, testCmd, validateCmd, refactorCmd)
}

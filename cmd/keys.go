// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"specforge/cli/internal/keychain"
	"specforge/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider credentials in the OS keychain",
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key for a provider",
	Long: `Store an API key for claude-code, openai-codex or cursor in the OS keychain.
Environment variables such as ANTHROPIC_API_KEY still take precedence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyFor(args[0])
		if err != nil {
			return err
		}
		value, err := terminal.ReadSecret(fmt.Sprintf("API key for %s: ", args[0]))
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("no key entered")
		}

		km, err := keychain.GetManager(logger)
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if err := km.Set(key, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("store key: %w", err)
		}
		pterm.Success.Printf("Stored key for %s\n", args[0])
		return nil
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear [provider]",
	Short: "Remove stored API keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager(logger)
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if len(args) == 0 {
			if err := km.ClearAll(); err != nil {
				return fmt.Errorf("clear keys: %w", err)
			}
			pterm.Success.Println("Removed all stored keys")
			return nil
		}

		key, err := keyFor(args[0])
		if err != nil {
			return err
		}
		if err := km.Delete(key); err != nil {
			return fmt.Errorf("remove key: %w", err)
		}
		pterm.Success.Printf("Removed key for %s\n", args[0])
		return nil
	},
}

// keyFor maps a provider name or vendor alias to its keychain entry.
func keyFor(provider string) (string, error) {
	switch strings.ToLower(provider) {
	case "claude-code", "claude", "anthropic":
		return keychain.KeyAnthropicAPIKey, nil
	case "openai-codex", "codex", "openai":
		return keychain.KeyOpenAIAPIKey, nil
	case "cursor":
		return keychain.KeyCursorAPIKey, nil
	case "simple":
		return "", fmt.Errorf("the simple provider does not use a key")
	}
	return "", fmt.Errorf("unknown provider %q (expected claude-code, openai-codex or cursor)", provider)
}

func init() {
	keysCmd.AddCommand(keysSetCmd, keysClearCmd)
	rootCmd.AddCommand(keysCmd)
}

// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"testing"

	"specforge/cli/internal/agent"
	apperrors "specforge/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPerKind(t *testing.T) {
	gen := Prompt(agent.Task{Kind: agent.KindGenerate, SpecCode: "export const spec = {}", TargetPath: "a.impl.ts"})
	assert.Contains(t, gen, "Generate the implementation")
	assert.Contains(t, gen, "a.impl.ts")
	assert.Contains(t, gen, "```typescript\nexport const spec = {}\n```")
	assert.NotContains(t, gen, "Implementation:")

	val := Prompt(agent.Task{Kind: agent.KindValidate, SpecCode: "s", ExistingCode: "impl\n"})
	assert.Contains(t, val, `"valid": bool`)
	assert.Contains(t, val, "Implementation:\n```typescript\nimpl\n```")

	assert.Contains(t, Prompt(agent.Task{Kind: agent.KindTest, SpecCode: "s", ExistingCode: "i"}), "vitest")
	assert.Contains(t, Prompt(agent.Task{Kind: agent.KindRefactor, SpecCode: "s", ExistingCode: "i"}), "Refactor")
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain text", "  const a = 1;  ", "const a = 1;"},
		{"single fence", "Here you go:\n```ts\nconst a = 1;\n```\nDone.", "const a = 1;\n"},
		{"fence without language", "```\nx()\n```", "x()\n"},
		{"largest fence wins", "```sh\nnpm i\n```\n```typescript\nexport function run() {\n  return 1;\n}\n```", "export function run() {\n  return 1;\n}\n"},
		{"empty", "", ""},
		{"empty fence", "```ts\n```", ""},
		{"blank fence", "```typescript\n\n```\n", ""},
		{"whitespace-only fences", "Here:\n```ts\n   \n\t\n```\n```\n```", ""},
		{"blank fence beside real code", "```ts\n```\n```ts\nrun();\n```", "run();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}

func TestParseValidationReport(t *testing.T) {
	rep, err := ParseValidationReport("Sure.\n```json\n{\"valid\": false, \"errors\": [\"missing handler\"], \"suggestions\": [\"export run\"]}\n```")
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	assert.Equal(t, []string{"missing handler"}, rep.Errors)
	assert.Equal(t, []string{"export run"}, rep.Suggestions)

	rep, err = ParseValidationReport(`{"valid": true}`)
	require.NoError(t, err)
	assert.True(t, rep.Valid)

	_, err = ParseValidationReport("looks fine to me")
	assert.True(t, apperrors.Is(err, apperrors.BadResponse))

	_, err = ParseValidationReport(`{"valid": "yes"}`)
	assert.True(t, apperrors.Is(err, apperrors.BadResponse))
}

func TestValidationReportResult(t *testing.T) {
	res := ValidationReport{Valid: true, Warnings: []string{"unused import"}}.Result(agent.ProviderClaudeCode)
	assert.True(t, res.Success)
	assert.Equal(t, "valid\nwarnings:\n  - unused import\n", res.Code)
	assert.Equal(t, "claude-code", res.Metadata["provider"])

	res = ValidationReport{Valid: true, Errors: []string{"wrong name"}}.Result(agent.ProviderClaudeCode)
	assert.False(t, res.Success)

	res = ValidationReport{Valid: false}.Result(agent.ProviderOpenAICodex)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
}

func TestCompletionResult(t *testing.T) {
	gen := agent.Task{Kind: agent.KindGenerate, SpecCode: "s"}
	res, err := CompletionResult(agent.ProviderOpenAICodex, gen, "```ts\nexport {}\n```", map[string]any{"model": "gpt-4o"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "export {}\n", res.Code)
	assert.Equal(t, map[string]any{"provider": "openai-codex", "model": "gpt-4o"}, res.Metadata)

	res, err = CompletionResult(agent.ProviderOpenAICodex, gen, "   ", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"openai-codex returned no code"}, res.Errors)

	for _, blank := range []string{"```ts\n```", "```typescript\n\n```\n"} {
		res, err = CompletionResult(agent.ProviderClaudeCode, gen, blank, nil)
		require.NoError(t, err)
		assert.False(t, res.Success, "blank fence %q", blank)
		assert.Empty(t, res.Code)
		assert.Equal(t, []string{"claude-code returned no code"}, res.Errors)
	}

	val := agent.Task{Kind: agent.KindValidate, SpecCode: "s", ExistingCode: "c"}
	res, err = CompletionResult(agent.ProviderClaudeCode, val, `{"valid": true}`, map[string]any{"model": "m"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "m", res.Metadata["model"])

	_, err = CompletionResult(agent.ProviderClaudeCode, val, "no json", nil)
	assert.Error(t, err)
}

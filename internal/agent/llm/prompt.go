// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm holds the plumbing shared by the model-backed providers: prompt
// construction per task kind, code extraction from completions, and parsing of
// validation reports.
package llm

import (
	"fmt"
	"strings"

	"specforge/cli/internal/agent"
)

// SystemPrompt frames every request sent to a model.
const SystemPrompt = `You are a senior TypeScript engineer working in a spec-first codebase.
Specs are declarative TypeScript objects describing operations, presentations, forms, workflows and events.
Follow the spec exactly: names, inputs, outputs and policies are authoritative.
Answer with a single fenced code block unless asked for JSON.`

// Prompt renders the user message for task.
func Prompt(task agent.Task) string {
	var b strings.Builder

	switch task.Kind {
	case agent.KindGenerate:
		b.WriteString("Generate the implementation for the following spec.\n")
	case agent.KindTest:
		b.WriteString("Write a vitest test suite for the implementation below. Cover every behavior the spec declares.\n")
	case agent.KindRefactor:
		b.WriteString("Refactor the existing implementation so it conforms to the spec. Keep working behavior intact.\n")
	case agent.KindValidate:
		b.WriteString("Check whether the implementation satisfies the spec.\n")
		b.WriteString(`Respond with JSON only: {"valid": bool, "errors": [string], "warnings": [string], "suggestions": [string]}` + "\n")
	default:
		fmt.Fprintf(&b, "Handle task %q for the following spec.\n", task.Kind)
	}
	if task.TargetPath != "" {
		fmt.Fprintf(&b, "The result will be written to %s.\n", task.TargetPath)
	}

	b.WriteString("\nSpec:\n")
	writeFenced(&b, "typescript", task.SpecCode)

	if task.ExistingCode != "" {
		b.WriteString("\nImplementation:\n")
		writeFenced(&b, "typescript", task.ExistingCode)
	}
	return b.String()
}

func writeFenced(b *strings.Builder, lang, code string) {
	b.WriteString("```" + lang + "\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n```\n")
}

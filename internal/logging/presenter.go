// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatFailure renders the errors of a failed task for the console. provider names
// whoever produced the final answer and may be empty.
func FormatFailure(task, provider string, errs []string) string {
	var b strings.Builder

	title := fmt.Sprintf("%s failed", strings.ToUpper(task[:1])+task[1:])
	if provider != "" {
		title += fmt.Sprintf(" (%s)", provider)
	}
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n")

	if len(errs) == 0 {
		b.WriteString("  • no error details were reported\n")
	}
	for _, e := range errs {
		b.WriteString("  • ")
		b.WriteString(Mask(e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'specforge agents' to see which providers are available"))
	b.WriteString("\n")
	return b.String()
}

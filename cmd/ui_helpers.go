// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/logging"
	"specforge/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// withSpinner runs fn while a spinner labelled text is shown on the terminal. The
// spinner lives in a pterm area when stdout is a terminal and is drawn inline on
// stderr otherwise.
func withSpinner(text string, fn func()) {
	if !terminal.IsInteractive() {
		stop := startInlineSpinner(os.Stderr, text, spinnerFrames, 120*time.Millisecond)
		defer stop()
		fn()
		return
	}

	cursor.Hide()
	defer cursor.Show()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		fn()
		return
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			case <-stop:
				return
			}
		}
	}()

	fn()
	close(stop)
	wg.Wait()
	_ = area.Stop()
}

// startInlineSpinner draws frames followed by text on a single line of w until the
// returned func is called, which also clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// renderNotes prints warnings and suggestions attached to a result.
func renderNotes(res agent.Result) {
	for _, w := range res.Warnings {
		pterm.Warning.Println(logging.Mask(w))
	}
	if len(res.Suggestions) > 0 {
		items := make([]pterm.BulletListItem, len(res.Suggestions))
		for i, s := range res.Suggestions {
			items[i] = pterm.BulletListItem{Level: 0, Text: s}
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Suggestions"))
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	}
}

// providerOf returns the provider recorded in the result metadata.
func providerOf(res agent.Result) string {
	if p, ok := res.Metadata["provider"].(string); ok {
		return p
	}
	return ""
}

// writeCode writes code to path, or to w when path is empty.
func writeCode(w io.Writer, path, code string) error {
	if path == "" {
		fmt.Fprint(w, code)
		if !strings.HasSuffix(code, "\n") {
			fmt.Fprintln(w)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

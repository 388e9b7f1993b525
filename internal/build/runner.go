package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"specforge/cli/internal/agent"

	"golang.org/x/sync/errgroup"
)

// Executor runs a generate task. *agent.Orchestrator satisfies it.
type Executor interface {
	Generate(ctx context.Context, specCode, targetPath string) agent.Result
}

// FileResult is the outcome for one spec file.
type FileResult struct {
	File     string        `json:"file"`
	Target   string        `json:"target"`
	Success  bool          `json:"success"`
	Provider string        `json:"provider,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Written  bool          `json:"written"`
	Duration time.Duration `json:"duration"`
	// Code is kept in memory for printing and never serialized into reports.
	Code string `json:"-"`
}

// Report summarizes a batch.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Files     []FileResult  `json:"files"`
}

// Failed returns the number of files that did not produce usable code.
func (r Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if !f.Success {
			n++
		}
	}
	return n
}

// Runner fans generate tasks out over spec files.
type Runner struct {
	Executor Executor
	// Concurrency bounds in-flight tasks. Values below 1 mean 1.
	Concurrency int
	// Write stores successful code at the derived target path.
	Write bool
	// Emit receives progress events. It is called from worker goroutines.
	Emit func(Event)
}

// Run processes files and returns one result per file in input order. A failing file
// never stops the others; Run only returns an error when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, files []string) (Report, error) {
	report := Report{StartedAt: time.Now(), Files: make([]FileResult, len(files))}

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			report.Files[i] = r.runOne(gctx, file)
			return nil
		})
	}
	_ = g.Wait()
	report.Duration = time.Since(report.StartedAt)

	if err := ctx.Err(); err != nil {
		for i, f := range report.Files {
			if f.File == "" {
				report.Files[i] = FileResult{File: files[i], Target: TargetPath(files[i]), Errors: []string{"not started: " + err.Error()}}
			}
		}
		return report, err
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, file string) FileResult {
	start := time.Now()
	res := FileResult{File: file, Target: TargetPath(file)}
	r.emit(Event{Type: EventFileStarted, File: file, Target: res.Target})

	fail := func(reason string) FileResult {
		res.Errors = append(res.Errors, reason)
		res.Duration = time.Since(start)
		r.emit(Event{Type: EventFileFailed, File: file, Target: res.Target, Provider: res.Provider, Reason: reason, Duration: res.Duration})
		return res
	}

	spec, err := os.ReadFile(file)
	if err != nil {
		return fail(fmt.Sprintf("read spec: %v", err))
	}

	out := r.Executor.Generate(ctx, string(spec), res.Target)
	res.Provider = providerOf(out)
	res.Warnings = out.Warnings
	if !out.Success {
		res.Errors = append(res.Errors, out.Errors...)
		reason := "generation failed"
		if len(out.Errors) > 0 {
			reason = out.Errors[0]
		}
		res.Duration = time.Since(start)
		r.emit(Event{Type: EventFileFailed, File: file, Target: res.Target, Provider: res.Provider, Reason: reason, Duration: res.Duration})
		return res
	}

	res.Code = out.Code
	if r.Write {
		if err := os.WriteFile(res.Target, []byte(out.Code), 0o644); err != nil {
			return fail(fmt.Sprintf("write %s: %v", res.Target, err))
		}
		res.Written = true
	}

	res.Success = true
	res.Duration = time.Since(start)
	r.emit(Event{Type: EventFileDone, File: file, Target: res.Target, Provider: res.Provider, Duration: res.Duration})
	return res
}

func (r *Runner) emit(ev Event) {
	if r.Emit != nil {
		r.Emit(ev)
	}
}

func providerOf(res agent.Result) string {
	if p, ok := res.Metadata["provider"].(string); ok {
		return p
	}
	return ""
}

// TargetPath derives the implementation path for a spec file: a trailing ".spec" in the
// base name is dropped and ".impl" is inserted before the extension, so
// "billing/invoice.spec.ts" becomes "billing/invoice.impl.ts".
func TargetPath(specPath string) string {
	dir, base := filepath.Split(specPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(strings.TrimSuffix(base, ext), ".spec")
	if name == "" {
		name = "spec"
	}
	return filepath.Join(dir, name+".impl"+ext)
}

// TestPath derives the test file path for an implementation by inserting ".test" before
// the extension, so "billing/invoice.impl.ts" becomes "billing/invoice.impl.test.ts".
func TestPath(implPath string) string {
	dir, base := filepath.Split(implPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".test"+ext)
}

// SaveReport writes r as JSON to dir/last-build.json.
func SaveReport(dir string, r Report) (string, error) {
	p := filepath.Join(dir, "last-build.json")
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return p, os.WriteFile(p, append(b, '\n'), 0o600)
}

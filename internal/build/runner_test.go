package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"specforge/cli/internal/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
}

func (f *fakeExecutor) Generate(_ context.Context, spec, target string) agent.Result {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.release != nil {
		<-f.release
	}
	if strings.Contains(spec, "broken") {
		return agent.Result{Errors: []string{"spec is broken"}, Metadata: map[string]any{"provider": "simple"}}
	}
	return agent.Result{Success: true, Code: "// " + filepath.Base(target), Metadata: map[string]any{"provider": "claude-code"}}
}

func writeSpecs(t *testing.T, specs map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for name, body := range specs {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		files = append(files, p)
	}
	return dir, files
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) count(tp EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Type == tp {
			n++
		}
	}
	return n
}

func TestRunnerContinuesPastFailures(t *testing.T) {
	dir, files := writeSpecs(t, map[string]string{
		"a.spec.ts": "name: 'a'",
		"b.spec.ts": "broken",
	})
	files = append(files, filepath.Join(dir, "missing.spec.ts"))

	log := &eventLog{}
	r := &Runner{Executor: &fakeExecutor{}, Concurrency: 2, Write: true, Emit: log.add}
	rep, err := r.Run(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, rep.Files, 3)
	assert.Equal(t, 2, rep.Failed())
	assert.Equal(t, 3, log.count(EventFileStarted))
	assert.Equal(t, 1, log.count(EventFileDone))
	assert.Equal(t, 2, log.count(EventFileFailed))

	for _, f := range rep.Files {
		switch filepath.Base(f.File) {
		case "a.spec.ts":
			assert.True(t, f.Success)
			assert.True(t, f.Written)
			assert.Equal(t, "claude-code", f.Provider)
			b, err := os.ReadFile(filepath.Join(dir, "a.impl.ts"))
			require.NoError(t, err)
			assert.Equal(t, "// a.impl.ts", string(b))
		case "b.spec.ts":
			assert.False(t, f.Success)
			assert.Equal(t, []string{"spec is broken"}, f.Errors)
			assert.NoFileExists(t, filepath.Join(dir, "b.impl.ts"))
		case "missing.spec.ts":
			assert.False(t, f.Success)
			assert.Contains(t, f.Errors[0], "read spec")
		}
	}
}

func TestRunnerKeepsInputOrder(t *testing.T) {
	_, files := writeSpecs(t, map[string]string{"x.ts": "x", "y.ts": "y", "z.ts": "z"})
	rep, err := (&Runner{Executor: &fakeExecutor{}, Concurrency: 3}).Run(context.Background(), files)
	require.NoError(t, err)
	for i, f := range rep.Files {
		assert.Equal(t, files[i], f.File)
		assert.False(t, f.Written)
	}
}

func TestRunnerRespectsConcurrency(t *testing.T) {
	specs := map[string]string{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		specs[n+".ts"] = n
	}
	_, files := writeSpecs(t, specs)

	exec := &fakeExecutor{release: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = (&Runner{Executor: exec, Concurrency: 2}).Run(context.Background(), files)
	}()
	for range files {
		exec.release <- struct{}{}
	}
	<-done

	assert.LessOrEqual(t, exec.peak.Load(), int32(2))
}

func TestRunnerCancelledContext(t *testing.T) {
	_, files := writeSpecs(t, map[string]string{"a.ts": "a", "b.ts": "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := (&Runner{Executor: &fakeExecutor{}, Concurrency: 1}).Run(ctx, files)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, rep.Files, 2)
	for _, f := range rep.Files {
		assert.False(t, f.Success)
		assert.NotEmpty(t, f.File)
	}
}

func TestTargetPath(t *testing.T) {
	tests := map[string]string{
		"billing/invoice.spec.ts": filepath.Join("billing", "invoice.impl.ts"),
		"invoice.ts":              "invoice.impl.ts",
		"specs/form.spec.tsx":     filepath.Join("specs", "form.impl.tsx"),
		"README":                  "README.impl",
		".spec.ts":                "spec.impl.ts",
	}
	for in, want := range tests {
		assert.Equal(t, want, TargetPath(in), in)
	}
}

func TestTestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("billing", "invoice.impl.test.ts"), TestPath("billing/invoice.impl.ts"))
	assert.Equal(t, "form.impl.test.tsx", TestPath("form.impl.tsx"))
	assert.Equal(t, "README.test", TestPath("README"))
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	rep := Report{Files: []FileResult{{File: "a.ts", Target: "a.impl.ts", Success: true, Code: "secret code"}}}

	p, err := SaveReport(dir, rep)
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret code")

	var back Report
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "a.impl.ts", back.Files[0].Target)
}

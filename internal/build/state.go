package build

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// ProgressState tracks which spec files are running, done or failed.
// It is safe for concurrent use; events arrive from many workers.
type ProgressState struct {
	// Active contains files whose task is in flight
	Active map[string]struct{}
	// Completed contains files that produced usable code
	Completed map[string]struct{}
	// Failed maps files to failure reasons
	Failed map[string]string
	// Order preserves the sequence in which files were started
	Order []string

	mu sync.Mutex
}

// NewProgressState creates a new ProgressState with initialized maps.
func NewProgressState() *ProgressState {
	return &ProgressState{
		Active:    make(map[string]struct{}),
		Completed: make(map[string]struct{}),
		Failed:    make(map[string]string),
	}
}

// Apply folds ev into the state.
func (ps *ProgressState) Apply(ev Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch ev.Type {
	case EventFileStarted:
		if _, seen := ps.Active[ev.File]; !seen {
			ps.Order = append(ps.Order, ev.File)
		}
		ps.Active[ev.File] = struct{}{}
	case EventFileDone:
		delete(ps.Active, ev.File)
		ps.Completed[ev.File] = struct{}{}
	case EventFileFailed:
		delete(ps.Active, ev.File)
		ps.Failed[ev.File] = ev.Reason
	}
}

// Counts returns the number of active, completed and failed files.
func (ps *ProgressState) Counts() (active, completed, failed int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.Active), len(ps.Completed), len(ps.Failed)
}

// HasFailures returns true if any file has failed.
func (ps *ProgressState) HasFailures() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.Failed) > 0
}

// Lines renders one status line per file in start order. spin is the current
// spinner frame used for files still running.
func (ps *ProgressState) Lines(spin string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	lines := make([]string, 0, len(ps.Order))
	for _, name := range ps.Order {
		if _, ok := ps.Active[name]; ok {
			lines = append(lines, spin+" generating "+name)
			continue
		}
		if _, ok := ps.Completed[name]; ok {
			lines = append(lines, "✓ generated "+name)
			continue
		}
		if reason, ok := ps.Failed[name]; ok {
			line := "✗ failed " + name
			if reason != "" {
				line += ": " + reason
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// RenderState holds what the area renderer needs between frames.
type RenderState struct {
	FrameIdx     int
	MaxLineLen   int
	LastRendered string

	mu sync.Mutex
}

// NewRenderState creates a new RenderState with default values.
func NewRenderState() *RenderState {
	return &RenderState{}
}

// NextFrame advances the animation frame and returns the new index.
func (rs *RenderState) NextFrame() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.FrameIdx++
	return rs.FrameIdx
}

// Frame returns the current animation frame.
func (rs *RenderState) Frame() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.FrameIdx
}

// Compose pads lines to the widest line seen so far and joins them. It reports
// false when the text equals the previous frame and need not be redrawn.
func (rs *RenderState) Compose(lines []string) (string, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > rs.MaxLineLen {
			rs.MaxLineLen = n
		}
	}
	padded := make([]string, len(lines))
	for i, l := range lines {
		if pad := rs.MaxLineLen - utf8.RuneCountInString(l); pad > 0 {
			l += strings.Repeat(" ", pad)
		}
		padded[i] = l
	}
	text := strings.Join(padded, "\n")
	if text == rs.LastRendered {
		return text, false
	}
	rs.LastRendered = text
	return text, true
}

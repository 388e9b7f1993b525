// Package build runs the generate task over many spec files and reports per-file
// progress as events. The orchestrator does the routing; this package only fans out,
// collects results and writes the generated files.
package build

import "time"

// EventType enumerates build progress events.
type EventType string

const (
	// EventFileStarted is emitted before the task for a file is dispatched.
	EventFileStarted EventType = "file_started"
	// EventFileDone is emitted when a file produced usable code.
	EventFileDone EventType = "file_done"
	// EventFileFailed is emitted when reading, generating or writing a file failed.
	EventFileFailed EventType = "file_failed"
)

// Event describes one progress step for a single spec file.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type EventType `json:"type"`
	File string    `json:"file"`

	// Target is the implementation path derived from File.
	Target string `json:"target,omitempty"`
	// Provider names whoever produced the final answer, when known.
	Provider string `json:"provider,omitempty"`
	// Reason explains a failure.
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

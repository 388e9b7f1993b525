package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressStateLines(t *testing.T) {
	ps := NewProgressState()
	ps.Apply(Event{Type: EventFileStarted, File: "a.ts"})
	ps.Apply(Event{Type: EventFileStarted, File: "b.ts"})
	ps.Apply(Event{Type: EventFileStarted, File: "c.ts"})
	ps.Apply(Event{Type: EventFileDone, File: "b.ts"})
	ps.Apply(Event{Type: EventFileFailed, File: "c.ts", Reason: "timeout"})

	assert.Equal(t, []string{
		"| generating a.ts",
		"✓ generated b.ts",
		"✗ failed c.ts: timeout",
	}, ps.Lines("|"))

	active, completed, failed := ps.Counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{active, completed, failed})
	assert.True(t, ps.HasFailures())
}

func TestRenderStateComposePadsAndSkipsDuplicates(t *testing.T) {
	rs := NewRenderState()

	text, changed := rs.Compose([]string{"long line", "x"})
	assert.True(t, changed)
	assert.Equal(t, "long line\nx        ", text)

	_, changed = rs.Compose([]string{"long line", "x"})
	assert.False(t, changed)

	text, _ = rs.Compose([]string{"ab"})
	assert.Equal(t, "ab       ", text)
}

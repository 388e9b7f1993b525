package terminal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	got, err := readLine(strings.NewReader("  sk-ant-123  \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-123", got)

	got, err = readLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}

func TestWidthHasFallback(t *testing.T) {
	assert.Positive(t, Width())
}

// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger("", false)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("chatty", false)
	assert.Error(t, err)
}

func TestFormatFailure(t *testing.T) {
	out := FormatFailure("validate", "simple", []string{"implementation is empty", "key sk-abcdefghijklmnop"})
	assert.Contains(t, out, "Validate failed (simple)")
	assert.Contains(t, out, "implementation is empty")
	assert.Contains(t, out, "sk-***")
	assert.NotContains(t, out, "abcdefghijklmnop")

	assert.Contains(t, FormatFailure("generate", "", nil), "no error details")
}

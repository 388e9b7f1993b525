// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memBackend map[string]string

func (m memBackend) Set(key, value string) error { m[key] = value; return nil }
func (m memBackend) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}
func (m memBackend) Delete(key string) error { delete(m, key); return nil }

func TestManagerRoundTrip(t *testing.T) {
	store := memBackend{}
	m := newManagerWithBackend(store, nil)

	require.NoError(t, m.Set(KeyAnthropicAPIKey, "sk-ant-123"))
	got, err := m.Get(KeyAnthropicAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-123", got)

	require.NoError(t, m.Delete(KeyAnthropicAPIKey))
	_, err = m.Get(KeyAnthropicAPIKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRejectsEmptySecret(t *testing.T) {
	m := newManagerWithBackend(memBackend{}, nil)
	assert.Error(t, m.Set(KeyOpenAIAPIKey, ""))
}

func TestManagerEmptyStoredValueIsNotFound(t *testing.T) {
	m := newManagerWithBackend(memBackend{KeyCursorAPIKey: ""}, nil)
	_, err := m.Get(KeyCursorAPIKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearAll(t *testing.T) {
	store := memBackend{
		KeyAnthropicAPIKey: "a",
		KeyOpenAIAPIKey:    "b",
		KeyCursorAPIKey:    "c",
		"unrelated":        "d",
	}
	m := newManagerWithBackend(store, nil)

	require.NoError(t, m.ClearAll())
	assert.Equal(t, memBackend{"unrelated": "d"}, store)
}

func TestManagerLogsKeysButNeverValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := newManagerWithBackend(memBackend{}, zap.New(core))

	require.NoError(t, m.Set(KeyAnthropicAPIKey, "sk-ant-secret"))
	_, err := m.Get(KeyAnthropicAPIKey)
	require.NoError(t, err)
	_, err = m.Get(KeyOpenAIAPIKey)
	require.ErrorIs(t, err, ErrNotFound)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "set", entries[0].Message)
	assert.Equal(t, KeyAnthropicAPIKey, entries[0].ContextMap()["key"])
	assert.Equal(t, true, entries[1].ContextMap()["found"])
	assert.Equal(t, false, entries[2].ContextMap()["found"])
	for _, e := range entries {
		for _, v := range e.ContextMap() {
			s, ok := v.(string)
			assert.False(t, ok && strings.Contains(s, "secret"), "secret value leaked into log field")
		}
	}
}

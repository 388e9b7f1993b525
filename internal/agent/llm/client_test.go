// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"specforge/cli/internal/agent"
	apperrors "specforge/cli/internal/errors"
	"specforge/cli/internal/secure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys map[secure.Credential]string

func (s staticKeys) Lookup(c secure.Credential) string { return s[c] }

var testCred = secure.Credential{Env: "TEST_API_KEY", Key: "test_api_key"}

// plainWire sends {"prompt": ...} and reads {"text", "truncated"}.
type plainWire struct{ url string }

func (w plainWire) NewRequest(ctx context.Context, key string, task agent.Task) (*http.Request, error) {
	req, err := NewJSONRequest(ctx, w.url, map[string]string{"prompt": Prompt(task)})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	return req, nil
}

func (w plainWire) Decode(body []byte) (Completion, error) {
	var r struct {
		Text      string `json:"text"`
		Truncated bool   `json:"truncated"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return Completion{}, errors.New("unreadable answer")
	}
	return Completion{Text: r.Text, Metadata: map[string]any{"model": "m"}, Truncated: r.Truncated}, nil
}

func newTestClient(t *testing.T, status int, body string, keys staticKeys) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{Provider: agent.ProviderClaudeCode, Credential: testCred, Service: "Test API"}, plainWire{url: srv.URL}, keys, nil)
}

var (
	withTestKey = staticKeys{testCred: "sk-test-123456"}
	genTask     = agent.Task{Kind: agent.KindGenerate, SpecCode: "spec"}
)

func TestClientRunSuccess(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"text": "`+"```ts\\nrun();\\n```"+`"}`, withTestKey)
	assert.True(t, c.Available())

	res, err := c.Run(context.Background(), genTask)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "run();\n", res.Code)
	assert.Equal(t, "claude-code", res.Metadata["provider"])
	assert.Equal(t, "m", res.Metadata["model"])
	assert.Empty(t, res.Warnings)
}

func TestClientRunTruncatedWarns(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"text": "partial", "truncated": true}`, withTestKey)

	res, err := c.Run(context.Background(), genTask)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Warnings, 1)
}

func TestClientRunFailuresAreLogical(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusBadGateway, `{}`, "Test API is having problems"},
		{"bad request uses error message", http.StatusBadRequest, `{"error": {"message": "model not found"}}`, "model not found"},
		{"undecodable body", http.StatusOK, `not json`, "unreadable answer"},
		{"blank fence", http.StatusOK, `{"text": "` + "```ts\\n```" + `"}`, "claude-code returned no code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestClient(t, tt.status, tt.body, withTestKey).Run(context.Background(), genTask)
			require.NoError(t, err)
			assert.False(t, res.Success)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.want)
			assert.Equal(t, "claude-code", res.Metadata["provider"])
		})
	}
}

func TestClientRunMissingKeyIsError(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{}`, staticKeys{})
	assert.False(t, c.Available())

	_, err := c.Run(context.Background(), genTask)
	assert.True(t, apperrors.Is(err, apperrors.ProviderUnavailable))
}

func TestClientRunRejectsInvalidTask(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{}`, withTestKey)
	res, err := c.Run(context.Background(), agent.Task{Kind: agent.KindTest, SpecCode: "spec"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "quota exceeded", APIErrorMessage([]byte(`{"error": {"message": "quota exceeded"}}`)))
	assert.Equal(t, "upstream down", APIErrorMessage([]byte("  upstream down \n")))
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, APIErrorMessage(long), 203)
}

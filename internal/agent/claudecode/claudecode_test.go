// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package claudecode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/secure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys map[secure.Credential]string

func (s staticKeys) Lookup(c secure.Credential) string { return s[c] }

func newServer(t *testing.T, status int, body any, seen *request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func textResponse(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"model":       "claude-test",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 34},
	}
}

func newProvider(url string, keys staticKeys) *Provider {
	return New(Config{Model: "claude-test", BaseURL: url + "/"}, keys, nil)
}

var withKey = staticKeys{secure.Anthropic: "sk-ant-test"}

func TestCanHandleDependsOnKey(t *testing.T) {
	assert.True(t, newProvider("http://unused", withKey).CanHandle(agent.Task{}))
	p := newProvider("http://unused", staticKeys{})
	assert.False(t, p.CanHandle(agent.Task{}))
	assert.Contains(t, p.UnavailableReason(agent.Task{}), "ANTHROPIC_API_KEY")
}

func TestGenerate(t *testing.T) {
	var seen request
	srv := newServer(t, http.StatusOK, textResponse("```ts\nexport const run = () => 1;\n```", "end_turn"), &seen)

	res, err := newProvider(srv.URL, withKey).Generate(context.Background(), agent.Task{Kind: agent.KindGenerate, SpecCode: "spec"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "export const run = () => 1;\n", res.Code)
	assert.Equal(t, "claude-code", res.Metadata["provider"])
	assert.Equal(t, 34, res.Metadata["output_tokens"])
	assert.Empty(t, res.Warnings)

	assert.Equal(t, "claude-test", seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Contains(t, seen.Messages[0].Content, "spec")
}

func TestGenerateWarnsOnTruncation(t *testing.T) {
	srv := newServer(t, http.StatusOK, textResponse("```ts\npartial\n```", "max_tokens"), nil)

	res, err := newProvider(srv.URL, withKey).Generate(context.Background(), agent.Task{Kind: agent.KindGenerate, SpecCode: "spec"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Warnings, 1)
}

func TestValidateParsesReport(t *testing.T) {
	srv := newServer(t, http.StatusOK, textResponse(`{"valid": false, "errors": ["missing export"]}`, "end_turn"), nil)

	res, err := newProvider(srv.URL, withKey).Validate(context.Background(), agent.Task{Kind: agent.KindValidate, SpecCode: "spec", ExistingCode: "impl"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"missing export"}, res.Errors)
}

func TestHTTPFailureIsLogicalFailure(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, map[string]any{"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"}}, nil)

	res, err := newProvider(srv.URL, withKey).Generate(context.Background(), agent.Task{Kind: agent.KindGenerate, SpecCode: "spec"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "rejected the credentials")
}

func TestUnparseableValidationIsLogicalFailure(t *testing.T) {
	srv := newServer(t, http.StatusOK, textResponse("I think it is fine", "end_turn"), nil)

	res, err := newProvider(srv.URL, withKey).Validate(context.Background(), agent.Task{Kind: agent.KindValidate, SpecCode: "spec", ExistingCode: "impl"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestInvalidTaskIsRejectedWithoutCalling(t *testing.T) {
	p := newProvider("http://127.0.0.1:1", withKey)
	res, err := p.Validate(context.Background(), agent.Task{Kind: agent.KindValidate, SpecCode: "spec"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestMissingKeyIsAnError(t *testing.T) {
	_, err := newProvider("http://127.0.0.1:1", staticKeys{}).Generate(context.Background(), agent.Task{Kind: agent.KindGenerate, SpecCode: "spec"})
	assert.Error(t, err)
}

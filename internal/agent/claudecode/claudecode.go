// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package claudecode implements the claude-code provider on top of the Anthropic
// Messages API.
package claudecode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/agent/llm"
	"specforge/cli/internal/secure"

	"go.uber.org/zap"
)

const (
	apiVersion = "2023-06-01"
	maxTokens  = 8192
)

// KeySource resolves API keys. *secure.Resolver satisfies it.
type KeySource = llm.KeySource

// Config selects the model and endpoint.
type Config struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Provider generates and validates code with Claude.
type Provider struct {
	client *llm.Client
}

// New creates the provider. A nil logger disables logging.
func New(cfg Config, keys KeySource, logger *zap.Logger) *Provider {
	w := wire{model: cfg.Model, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
	return &Provider{client: llm.NewClient(llm.ClientConfig{
		Provider:   agent.ProviderClaudeCode,
		Credential: secure.Anthropic,
		Service:    "Anthropic API",
		Timeout:    cfg.Timeout,
	}, w, keys, logger)}
}

// CanHandle reports whether an Anthropic API key is available.
func (p *Provider) CanHandle(agent.Task) bool { return p.client.Available() }

// UnavailableReason explains a CanHandle refusal.
func (p *Provider) UnavailableReason(agent.Task) string {
	return "no Anthropic API key; set ANTHROPIC_API_KEY or run 'specforge keys set claude-code'"
}

// Generate produces code for generate, test and refactor tasks.
func (p *Provider) Generate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.client.Run(ctx, task)
}

// Validate asks the model for a validation report.
func (p *Provider) Validate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.client.Run(ctx, task)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// wire speaks the Messages API.
type wire struct {
	model   string
	baseURL string
}

func (w wire) NewRequest(ctx context.Context, key string, task agent.Task) (*http.Request, error) {
	req, err := llm.NewJSONRequest(ctx, w.baseURL+"/v1/messages", request{
		Model:       w.model,
		MaxTokens:   maxTokens,
		System:      llm.SystemPrompt,
		Messages:    []message{{Role: "user", Content: llm.Prompt(task)}},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", apiVersion)
	return req, nil
}

func (w wire) Decode(body []byte) (llm.Completion, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return llm.Completion{}, fmt.Errorf("parse Anthropic API response: %w", err)
	}
	var text strings.Builder
	for _, c := range r.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return llm.Completion{
		Text: text.String(),
		Metadata: map[string]any{
			"model":         r.Model,
			"input_tokens":  r.Usage.InputTokens,
			"output_tokens": r.Usage.OutputTokens,
			"stop_reason":   r.StopReason,
		},
		Truncated: r.StopReason == "max_tokens",
	}, nil
}

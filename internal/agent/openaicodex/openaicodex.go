// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package openaicodex implements the openai-codex provider on top of the OpenAI
// Chat Completions API.
package openaicodex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/agent/llm"
	"specforge/cli/internal/secure"

	"go.uber.org/zap"
)

// KeySource resolves API keys. *secure.Resolver satisfies it.
type KeySource = llm.KeySource

// Config selects the model and endpoint. BaseURL includes the version path, as in
// "https://api.openai.com/v1".
type Config struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Provider generates and validates code with an OpenAI chat model.
type Provider struct {
	client *llm.Client
}

// New creates the provider. A nil logger disables logging.
func New(cfg Config, keys KeySource, logger *zap.Logger) *Provider {
	w := wire{model: cfg.Model, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
	return &Provider{client: llm.NewClient(llm.ClientConfig{
		Provider:   agent.ProviderOpenAICodex,
		Credential: secure.OpenAI,
		Service:    "OpenAI API",
		Timeout:    cfg.Timeout,
	}, w, keys, logger)}
}

// CanHandle reports whether an OpenAI API key is available.
func (p *Provider) CanHandle(agent.Task) bool { return p.client.Available() }

// UnavailableReason explains a CanHandle refusal.
func (p *Provider) UnavailableReason(agent.Task) string {
	return "no OpenAI API key; set OPENAI_API_KEY or run 'specforge keys set openai-codex'"
}

func (p *Provider) Generate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.client.Run(ctx, task)
}

func (p *Provider) Validate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.client.Run(ctx, task)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// wire speaks Chat Completions.
type wire struct {
	model   string
	baseURL string
}

func (w wire) NewRequest(ctx context.Context, key string, task agent.Task) (*http.Request, error) {
	payload := chatRequest{
		Model: w.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.Prompt(task)},
		},
		Temperature: 0.1,
	}
	if task.Kind == agent.KindValidate {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	req, err := llm.NewJSONRequest(ctx, w.baseURL+"/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	return req, nil
}

func (w wire) Decode(body []byte) (llm.Completion, error) {
	var r chatResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return llm.Completion{}, fmt.Errorf("parse OpenAI API response: %w", err)
	}
	if len(r.Choices) == 0 {
		return llm.Completion{}, errors.New("OpenAI API returned no choices")
	}
	choice := r.Choices[0]
	return llm.Completion{
		Text: choice.Message.Content,
		Metadata: map[string]any{
			"model":             r.Model,
			"prompt_tokens":     r.Usage.PromptTokens,
			"completion_tokens": r.Usage.CompletionTokens,
			"finish_reason":     choice.FinishReason,
		},
		Truncated: choice.FinishReason == "length",
	}, nil
}

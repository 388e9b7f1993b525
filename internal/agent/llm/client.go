// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"specforge/cli/internal/agent"
	apperrors "specforge/cli/internal/errors"
	"specforge/cli/internal/httperrors"
	"specforge/cli/internal/logging"
	"specforge/cli/internal/secure"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// KeySource resolves API keys. *secure.Resolver satisfies it.
type KeySource interface {
	Lookup(secure.Credential) string
}

// Completion is the part of an API answer the router cares about.
type Completion struct {
	Text     string
	Metadata map[string]any
	// Truncated is set when the model stopped at its token limit.
	Truncated bool
}

// Wire is the vendor-specific half of an HTTP chat API: how to ask and how to read
// a successful answer.
type Wire interface {
	NewRequest(ctx context.Context, key string, task agent.Task) (*http.Request, error)
	Decode(body []byte) (Completion, error)
}

// ClientConfig describes one HTTP-backed provider. Service names the API in
// user-facing messages, e.g. "Anthropic API".
type ClientConfig struct {
	Provider   agent.ProviderName
	Credential secure.Credential
	Service    string
	Timeout    time.Duration
}

// Client runs tasks against an HTTP chat API. Transport, status and decoding
// problems come back as unsuccessful Results; only a missing key is an error.
type Client struct {
	cfg    ClientConfig
	wire   Wire
	keys   KeySource
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client. A nil logger disables logging.
func NewClient(cfg ClientConfig, wire Wire, keys KeySource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Client{
		cfg:    cfg,
		wire:   wire,
		keys:   keys,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named(string(cfg.Provider)),
	}
}

// Available reports whether a key can be resolved.
func (c *Client) Available() bool {
	return c.keys.Lookup(c.cfg.Credential) != ""
}

// Run executes task and converts the answer into a Result.
func (c *Client) Run(ctx context.Context, task agent.Task) (agent.Result, error) {
	if err := task.Validate(); err != nil {
		return agent.Failure(err.Error()), nil
	}
	key := c.keys.Lookup(c.cfg.Credential)
	if key == "" {
		return agent.Result{}, apperrors.New(apperrors.ProviderUnavailable, c.cfg.Service+" key is not configured")
	}

	body, err := c.call(ctx, key, task)
	if err != nil {
		c.logger.Warn("request failed", zap.String("task", string(task.Kind)), zap.String("error", logging.Mask(err.Error())))
		return c.failure(httperrors.Describe(err, c.cfg.Service)), nil
	}
	comp, err := c.wire.Decode(body)
	if err != nil {
		return c.failure(err.Error()), nil
	}

	res, err := CompletionResult(c.cfg.Provider, task, comp.Text, comp.Metadata)
	if err != nil {
		return c.failure(err.Error()), nil
	}
	if comp.Truncated {
		res.Warnings = append(res.Warnings, "the answer hit the token limit and may be truncated")
	}
	return res, nil
}

func (c *Client) failure(msg string) agent.Result {
	res := agent.Failure(logging.Mask(msg))
	res.Metadata = map[string]any{"provider": string(c.cfg.Provider)}
	return res
}

// call sends the request and returns the body of a 2xx answer.
func (c *Client) call(ctx context.Context, key string, task agent.Task) ([]byte, error) {
	req, err := c.wire.NewRequest(ctx, key, task)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("api call",
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httperrors.StatusError{StatusCode: resp.StatusCode, Body: APIErrorMessage(data)}
	}
	return data, nil
}

// NewJSONRequest builds a POST carrying payload as JSON.
func NewJSONRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// APIErrorMessage pulls error.message out of a vendor error body, falling back to
// the start of the raw body.
func APIErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

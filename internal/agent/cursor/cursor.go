// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cursor implements the cursor provider, which delegates tasks to the Cursor
// IDE agent through a local bridge.
package cursor

import (
	"context"
	"sync"
	"time"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/bridge"
	"specforge/cli/internal/logging"
	"specforge/cli/internal/secure"

	"go.uber.org/zap"
)

// KeySource resolves API keys. *secure.Resolver satisfies it.
type KeySource interface {
	Lookup(secure.Credential) string
}

// Config points at the bridge.
type Config struct {
	// BridgeAddress is the gRPC target. Empty disables the provider.
	BridgeAddress string
	Timeout       time.Duration
}

// Provider forwards tasks to the Cursor agent bridge.
type Provider struct {
	cfg       Config
	keys      KeySource
	newBridge func() bridge.Bridge
	logger    *zap.Logger

	mu sync.Mutex
	br bridge.Bridge
}

// Option configures a Provider.
type Option func(*Provider)

// WithBridgeFactory replaces the gRPC bridge, mainly for tests.
func WithBridgeFactory(fn func() bridge.Bridge) Option {
	return func(p *Provider) { p.newBridge = fn }
}

// New creates the provider. A nil logger disables logging.
func New(cfg Config, keys KeySource, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	p := &Provider{cfg: cfg, keys: keys, newBridge: bridge.New, logger: logger.Named("cursor")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanHandle reports whether a bridge address is configured. It does not dial.
func (p *Provider) CanHandle(agent.Task) bool {
	return p.cfg.BridgeAddress != ""
}

// UnavailableReason explains a CanHandle refusal.
func (p *Provider) UnavailableReason(agent.Task) string {
	return "no Cursor bridge address; set SPECFORGE_CURSOR_BRIDGE or cursor.bridge_address in the config"
}

// Generate sends generate, test and refactor tasks to the bridge.
func (p *Provider) Generate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.run(ctx, task, func(ctx context.Context, br bridge.Bridge, req bridge.Request) (bridge.Response, error) {
		return br.Generate(ctx, req)
	})
}

// Validate sends a validation task to the bridge.
func (p *Provider) Validate(ctx context.Context, task agent.Task) (agent.Result, error) {
	return p.run(ctx, task, func(ctx context.Context, br bridge.Bridge, req bridge.Request) (bridge.Response, error) {
		return br.Validate(ctx, req)
	})
}

// Close releases the bridge connection, if any.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.br == nil {
		return nil
	}
	err := p.br.Close()
	p.br = nil
	return err
}

type call func(context.Context, bridge.Bridge, bridge.Request) (bridge.Response, error)

func (p *Provider) run(ctx context.Context, task agent.Task, fn call) (agent.Result, error) {
	if err := task.Validate(); err != nil {
		return agent.Failure(err.Error()), nil
	}
	br, err := p.bridge(ctx)
	if err != nil {
		return agent.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := fn(ctx, br, bridge.Request{
		Kind:         string(task.Kind),
		SpecCode:     task.SpecCode,
		ExistingCode: task.ExistingCode,
		TargetPath:   task.TargetPath,
	})
	if err != nil {
		p.logger.Warn("bridge call failed", zap.String("task", string(task.Kind)), zap.String("error", logging.Mask(err.Error())))
		res := agent.Failure(logging.Mask(err.Error()))
		res.Metadata = map[string]any{"provider": string(agent.ProviderCursor)}
		return res, nil
	}
	p.logger.Debug("bridge call", zap.String("task", string(task.Kind)), zap.Bool("success", resp.Success), zap.Duration("latency", time.Since(start)))

	meta := map[string]any{}
	for k, v := range resp.Metadata {
		meta[k] = v
	}
	meta["provider"] = string(agent.ProviderCursor)

	res := agent.Result{
		Success:     resp.Success,
		Code:        resp.Code,
		Errors:      resp.Errors,
		Warnings:    resp.Warnings,
		Suggestions: resp.Suggestions,
		Metadata:    meta,
	}
	if !res.Success && len(res.Errors) == 0 {
		res.Errors = []string{"Cursor agent reported failure without details"}
	}
	return res, nil
}

// bridge returns the shared connection, creating it on first use.
func (p *Provider) bridge(ctx context.Context) (bridge.Bridge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.br != nil {
		return p.br, nil
	}
	br := p.newBridge()
	if err := br.Connect(ctx, p.cfg.BridgeAddress, p.keys.Lookup(secure.Cursor)); err != nil {
		return nil, err
	}
	p.br = br
	return br, nil
}

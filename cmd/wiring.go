// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"time"

	"specforge/cli/internal/agent"
	"specforge/cli/internal/agent/claudecode"
	"specforge/cli/internal/agent/cursor"
	"specforge/cli/internal/agent/openaicodex"
	"specforge/cli/internal/agent/simple"
	"specforge/cli/internal/config"
	"specforge/cli/internal/secure"

	"go.uber.org/zap"
)

// orchestratorFactory is swapped in tests.
var orchestratorFactory = newOrchestrator

// newOrchestrator registers every provider from c and returns the router plus a
// cleanup func that releases provider connections.
func newOrchestrator(c config.Config, log *zap.Logger) (*agent.Orchestrator, func(), error) {
	keys := secure.NewResolver(log)
	timeout := time.Duration(c.TimeoutSeconds) * time.Second

	cur := cursor.New(cursor.Config{BridgeAddress: c.Cursor.BridgeAddress, Timeout: timeout}, keys, log)
	providers := map[agent.ProviderName]agent.Provider{
		agent.ProviderSimple: simple.New(),
		agent.ProviderCursor: cur,
		agent.ProviderClaudeCode: claudecode.New(claudecode.Config{
			Model:   c.Claude.Model,
			BaseURL: c.Claude.BaseURL,
			Timeout: timeout,
		}, keys, log),
		agent.ProviderOpenAICodex: openaicodex.New(openaicodex.Config{
			Model:   c.OpenAI.Model,
			BaseURL: c.OpenAI.BaseURL,
			Timeout: timeout,
		}, keys, log),
	}

	mode := agent.ProviderName(c.AgentMode)
	if !mode.Known() {
		log.Warn("unknown agent mode, using simple", zap.String("agent_mode", c.AgentMode))
	}

	o, err := agent.New(agent.Config{AgentMode: mode}, providers, agent.WithObserver(routeLogger(log)))
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if err := cur.Close(); err != nil {
			log.Debug("closing cursor bridge", zap.Error(err))
		}
	}
	return o, cleanup, nil
}

// routeLogger records each routing step at debug level.
func routeLogger(log *zap.Logger) agent.Observer {
	return func(s agent.Step) {
		fields := []zap.Field{
			zap.String("stage", string(s.Stage)),
			zap.String("provider", string(s.Provider)),
			zap.String("outcome", string(s.Outcome)),
		}
		if s.Err != nil {
			fields = append(fields, zap.Error(s.Err))
		}
		log.Debug("route", fields...)
	}
}

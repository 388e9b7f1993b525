// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package agent routes code-generation and validation tasks to capability providers.
// It defines the task and result envelopes shared by every backend, the provider
// contract, the static fallback topology, and the Orchestrator that walks the
// fallback chain and always hands a Result back to the caller.
package agent

import (
	"context"
	"fmt"
)

// TaskKind selects which provider operation handles a task.
type TaskKind string

const (
	// KindGenerate produces implementation code from a spec.
	KindGenerate TaskKind = "generate"
	// KindTest produces tests for an existing implementation.
	KindTest TaskKind = "test"
	// KindValidate compares an existing implementation against a spec.
	KindValidate TaskKind = "validate"
	// KindRefactor rewrites an existing implementation to follow a spec.
	KindRefactor TaskKind = "refactor"
)

// Valid reports whether k is one of the known task kinds.
func (k TaskKind) Valid() bool {
	switch k {
	case KindGenerate, KindTest, KindValidate, KindRefactor:
		return true
	}
	return false
}

// ProviderName identifies a registered provider. It doubles as the agent mode
// chosen in configuration and as the key of the fallback topology.
type ProviderName string

const (
	ProviderSimple      ProviderName = "simple"
	ProviderCursor      ProviderName = "cursor"
	ProviderClaudeCode  ProviderName = "claude-code"
	ProviderOpenAICodex ProviderName = "openai-codex"
)

// TerminalProvider ends every fallback chain.
const TerminalProvider = ProviderSimple

// KnownProviders lists provider names in fallback order.
var KnownProviders = []ProviderName{ProviderCursor, ProviderClaudeCode, ProviderOpenAICodex, ProviderSimple}

// Known reports whether n belongs to the closed provider enumeration.
func (n ProviderName) Known() bool {
	for _, p := range KnownProviders {
		if p == n {
			return true
		}
	}
	return false
}

// Task describes one unit of work. It is passed by value and never modified by the router.
type Task struct {
	Kind TaskKind
	// SpecCode is the authoritative specification text.
	SpecCode string
	// ExistingCode is the implementation or test code to work against.
	// Required for test, validate and refactor; empty for generate.
	ExistingCode string
	// TargetPath is an advisory output location. The router never reads it.
	TargetPath string
}

// Validate checks that the task carries the inputs its kind requires.
func (t Task) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unknown task kind %q", t.Kind)
	}
	if t.SpecCode == "" {
		return fmt.Errorf("%s task: spec code is required", t.Kind)
	}
	if t.Kind != KindGenerate && t.ExistingCode == "" {
		return fmt.Errorf("%s task: existing code is required", t.Kind)
	}
	return nil
}

// Result is the uniform output of a provider or of the router itself.
type Result struct {
	Success     bool           `json:"success"`
	Code        string         `json:"code,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Failure builds an unsuccessful Result carrying the given messages.
func Failure(msgs ...string) Result {
	return Result{Success: false, Errors: msgs}
}

// Provider is the contract every backend implements.
//
// Generate and Validate are expected to report their own failures as a Result with
// Success false. A returned error, like a panic, is treated as the provider being
// broken and sends the task straight to the terminal provider.
type Provider interface {
	// CanHandle is a local, side-effect free check such as "are credentials configured".
	// It must not perform network calls.
	CanHandle(task Task) bool
	// Generate serves generate, test and refactor tasks.
	Generate(ctx context.Context, task Task) (Result, error)
	// Validate serves validate tasks.
	Validate(ctx context.Context, task Task) (Result, error)
}

// ReasonReporter is implemented by providers that can explain why CanHandle is false.
type ReasonReporter interface {
	UnavailableReason(task Task) string
}

// ProviderStatus is one row of the diagnostics listing.
type ProviderStatus struct {
	Name      ProviderName `json:"name"`
	Available bool         `json:"available"`
	Reason    string       `json:"reason,omitempty"`
}

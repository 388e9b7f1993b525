// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agent

import (
	"context"
	"fmt"

	apperrors "specforge/cli/internal/errors"
)

// Config carries the caller settings the orchestrator reads.
type Config struct {
	// AgentMode names the provider tried first. Empty or unknown values select simple.
	AgentMode ProviderName
}

// Stage identifies where in the routing state machine a step happened.
type Stage string

const (
	StagePrimary  Stage = "primary"
	StageFallback Stage = "fallback"
	StageTerminal Stage = "terminal"
)

// Outcome describes how a routing step ended.
type Outcome string

const (
	// OutcomeSkipped means the provider was not registered or declined the task.
	OutcomeSkipped Outcome = "skipped"
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means the provider ran and reported Success false.
	OutcomeFailure Outcome = "failure"
	// OutcomeError means the provider returned an error or panicked.
	OutcomeError Outcome = "error"
)

// Step is reported to the observer for every routing decision.
type Step struct {
	Stage    Stage
	Provider ProviderName
	Outcome  Outcome
	Err      error
}

// Observer receives routing steps in the order they happen.
type Observer func(Step)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers fn to be called for every routing step.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observe = fn }
}

// Orchestrator selects a provider for each task and degrades through the fallback
// topology until a Result is available. It holds no mutable state after New returns
// and is safe for concurrent use.
type Orchestrator struct {
	mode      ProviderName
	providers map[ProviderName]Provider
	observe   Observer
}

// New builds an Orchestrator over a copy of providers. The terminal provider must be
// registered and every key must be a known provider name.
func New(cfg Config, providers map[ProviderName]Provider, opts ...Option) (*Orchestrator, error) {
	registry := make(map[ProviderName]Provider, len(providers))
	for name, p := range providers {
		if !name.Known() {
			return nil, apperrors.New(apperrors.InvalidConfig, fmt.Sprintf("unknown provider name %q", name))
		}
		if p == nil {
			return nil, apperrors.New(apperrors.InvalidConfig, fmt.Sprintf("provider %q is nil", name))
		}
		registry[name] = p
	}
	if _, ok := registry[TerminalProvider]; !ok {
		return nil, apperrors.New(apperrors.InvalidConfig, "the simple provider must be registered")
	}

	mode := cfg.AgentMode
	if !mode.Known() {
		mode = TerminalProvider
	}

	o := &Orchestrator{mode: mode, providers: registry}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Mode returns the provider tried first.
func (o *Orchestrator) Mode() ProviderName { return o.mode }

// ExecuteTask routes task through the primary provider, its designated fallback and
// finally the terminal provider. It never panics and always returns a Result.
//
// A logical failure of the primary earns one hop to its designated fallback. An error
// or panic skips that hop and goes straight to the terminal provider.
func (o *Orchestrator) ExecuteTask(ctx context.Context, task Task) Result {
	primaryName := o.mode
	primary, ok := o.providers[primaryName]
	if !ok || !o.canHandle(primary, task) {
		o.notify(Step{Stage: StagePrimary, Provider: primaryName, Outcome: OutcomeSkipped})
		return o.terminal(ctx, task)
	}

	res, err := o.dispatch(ctx, primary, task)
	o.notify(stepFor(StagePrimary, primaryName, res, err))
	if err != nil {
		if primaryName == TerminalProvider {
			return errorResult(primaryName, err)
		}
		return o.terminal(ctx, task)
	}
	if res.Success || primaryName == TerminalProvider {
		return res
	}

	next := NextFallback(primaryName)
	if next != primaryName {
		if fb, ok := o.providers[next]; ok && o.canHandle(fb, task) {
			res, err := o.dispatch(ctx, fb, task)
			o.notify(stepFor(StageFallback, next, res, err))
			if err == nil {
				return res
			}
			if next == TerminalProvider {
				return errorResult(next, err)
			}
			return o.terminal(ctx, task)
		}
		o.notify(Step{Stage: StageFallback, Provider: next, Outcome: OutcomeSkipped})
	}
	return o.terminal(ctx, task)
}

// Generate produces implementation code for specCode.
func (o *Orchestrator) Generate(ctx context.Context, specCode, targetPath string) Result {
	return o.ExecuteTask(ctx, Task{Kind: KindGenerate, SpecCode: specCode, TargetPath: targetPath})
}

// GenerateTests produces tests for implementation against specCode.
func (o *Orchestrator) GenerateTests(ctx context.Context, specCode, implementation, targetPath string) Result {
	return o.ExecuteTask(ctx, Task{Kind: KindTest, SpecCode: specCode, ExistingCode: implementation, TargetPath: targetPath})
}

// Validate checks implementation against specCode.
func (o *Orchestrator) Validate(ctx context.Context, specCode, implementation string) Result {
	return o.ExecuteTask(ctx, Task{Kind: KindValidate, SpecCode: specCode, ExistingCode: implementation})
}

// Refactor rewrites existing so it follows specCode.
func (o *Orchestrator) Refactor(ctx context.Context, specCode, existing, targetPath string) Result {
	return o.ExecuteTask(ctx, Task{Kind: KindRefactor, SpecCode: specCode, ExistingCode: existing, TargetPath: targetPath})
}

// terminal runs the task on the terminal provider and returns its answer as-is.
func (o *Orchestrator) terminal(ctx context.Context, task Task) Result {
	res, err := o.dispatch(ctx, o.providers[TerminalProvider], task)
	o.notify(stepFor(StageTerminal, TerminalProvider, res, err))
	if err != nil {
		return errorResult(TerminalProvider, err)
	}
	return res
}

// dispatch invokes the operation matching task.Kind and converts panics into errors.
func (o *Orchestrator) dispatch(ctx context.Context, p Provider, task Task) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = apperrors.New(apperrors.ProviderPanic, fmt.Sprint(r))
		}
	}()
	if task.Kind == KindValidate {
		return p.Validate(ctx, task)
	}
	return p.Generate(ctx, task)
}

// canHandle treats a panicking capability check as a refusal.
func (o *Orchestrator) canHandle(p Provider, task Task) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return p.CanHandle(task)
}

func (o *Orchestrator) notify(s Step) {
	if o.observe == nil {
		return
	}
	defer func() { _ = recover() }()
	o.observe(s)
}

func stepFor(stage Stage, name ProviderName, res Result, err error) Step {
	s := Step{Stage: stage, Provider: name, Err: err}
	switch {
	case err != nil:
		s.Outcome = OutcomeError
	case res.Success:
		s.Outcome = OutcomeSuccess
	default:
		s.Outcome = OutcomeFailure
	}
	return s
}

func errorResult(name ProviderName, err error) Result {
	return Result{
		Success:  false,
		Errors:   []string{fmt.Sprintf("%s provider failed: %v", name, err)},
		Metadata: map[string]any{"provider": string(name)},
	}
}

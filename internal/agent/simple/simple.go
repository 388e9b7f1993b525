// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package simple implements the terminal provider: deterministic TypeScript
// skeletons rendered from templates, with no network or model involved. It accepts
// every task so the router always has somewhere to land.
package simple

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"specforge/cli/internal/agent"
)

// Provider is the deterministic template provider.
type Provider struct{}

// New returns the simple provider.
func New() *Provider { return &Provider{} }

// CanHandle always accepts.
func (p *Provider) CanHandle(agent.Task) bool { return true }

// Generate renders an implementation or test skeleton. Refactor tasks return the
// existing code unchanged with a warning.
func (p *Provider) Generate(_ context.Context, task agent.Task) (agent.Result, error) {
	if err := task.Validate(); err != nil {
		return p.failure(task, err.Error()), nil
	}
	v := newView(task)

	var b strings.Builder
	switch task.Kind {
	case agent.KindRefactor:
		res := p.success(task, task.ExistingCode)
		res.Warnings = []string{"deterministic refactoring is not available; the code was returned unchanged"}
		res.Suggestions = []string{"configure claude-code, openai-codex or cursor for spec-driven refactoring"}
		return res, nil
	case agent.KindTest:
		if err := testTemplate.Execute(&b, v); err != nil {
			return agent.Result{}, fmt.Errorf("render test template: %w", err)
		}
	default:
		if err := implTemplates.ExecuteTemplate(&b, string(DetectType(task.SpecCode)), v); err != nil {
			return agent.Result{}, fmt.Errorf("render %s template: %w", DetectType(task.SpecCode), err)
		}
	}
	return p.success(task, b.String()), nil
}

// Validate runs structural checks of the implementation against the spec.
func (p *Provider) Validate(_ context.Context, task agent.Task) (agent.Result, error) {
	if err := task.Validate(); err != nil {
		return p.failure(task, err.Error()), nil
	}
	v := newView(task)
	code := task.ExistingCode

	var errs, warns, suggestions []string
	if !strings.Contains(code, "export") {
		errs = append(errs, "implementation exports nothing")
	}
	if !mentions(code, v.Name) && !strings.Contains(code, v.Pascal) {
		warns = append(warns, fmt.Sprintf("implementation does not reference spec %q", v.Name))
	}
	if !strings.Contains(code, v.Export) {
		warns = append(warns, fmt.Sprintf("expected export %s was not found", v.Export))
		suggestions = append(suggestions, fmt.Sprintf("export a %s named %s", DetectType(task.SpecCode), v.Export))
	}
	if strings.Contains(code, "not implemented") {
		warns = append(warns, "implementation still contains generated placeholders")
	}

	res := agent.Result{
		Success:     len(errs) == 0,
		Errors:      errs,
		Warnings:    warns,
		Suggestions: suggestions,
		Metadata:    p.metadata(task),
	}
	res.Code = report(v.Name, res)
	return res, nil
}

func (p *Provider) success(task agent.Task, code string) agent.Result {
	return agent.Result{Success: true, Code: code, Metadata: p.metadata(task)}
}

func (p *Provider) failure(task agent.Task, msg string) agent.Result {
	res := agent.Failure(msg)
	res.Metadata = p.metadata(task)
	return res
}

func (p *Provider) metadata(task agent.Task) map[string]any {
	return map[string]any{
		"provider":  string(agent.ProviderSimple),
		"spec_type": string(DetectType(task.SpecCode)),
		"spec_name": DetectName(task.SpecCode),
	}
}

func newView(task agent.Task) view {
	name := DetectName(task.SpecCode)
	return view{
		Name:   name,
		Pascal: PascalCase(name),
		Export: ExportName(DetectType(task.SpecCode), name),
		Module: implModule(task.TargetPath, name),
	}
}

// ExportName is the symbol a skeleton of type t exports for the spec named name.
func ExportName(t SpecType, name string) string {
	switch t {
	case TypePresentation:
		return PascalCase(name) + "View"
	case TypeForm:
		return PascalCase(name) + "Form"
	case TypeWorkflow:
		return "run" + PascalCase(name) + "Workflow"
	case TypeEvent:
		return "handle" + PascalCase(name) + "Event"
	}
	return CamelCase(name) + "Handler"
}

// implModule guesses the import path of the implementation a test file exercises.
func implModule(testPath, name string) string {
	if testPath == "" {
		return CamelCase(name)
	}
	base := filepath.Base(testPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, suffix := range []string{".test", ".spec"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

func mentions(code, name string) bool {
	return strings.Contains(strings.ToLower(code), strings.ToLower(name))
}

func report(name string, res agent.Result) string {
	var b strings.Builder
	status := "valid"
	if !res.Success {
		status = "invalid"
	}
	fmt.Fprintf(&b, "%s: %s\n", name, status)
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(&b, "  suggestion: %s\n", s)
	}
	return b.String()
}

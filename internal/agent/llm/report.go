// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"specforge/cli/internal/agent"
	apperrors "specforge/cli/internal/errors"
)

// ValidationReport is the JSON a model returns for a validate task.
type ValidationReport struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ParseValidationReport decodes the report from completion. The JSON may be fenced
// or surrounded by prose; the outermost object is used.
func ParseValidationReport(completion string) (ValidationReport, error) {
	var rep ValidationReport
	text := ExtractCode(completion)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return rep, apperrors.New(apperrors.BadResponse, "validation answer contains no JSON object")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &rep); err != nil {
		return rep, apperrors.Wrap(apperrors.BadResponse, "validation answer is not valid JSON", err)
	}
	return rep, nil
}

// Result converts the report into a result envelope. A report that claims validity
// while listing errors is treated as invalid.
func (r ValidationReport) Result(provider agent.ProviderName) agent.Result {
	ok := r.Valid && len(r.Errors) == 0
	res := agent.Result{
		Success:     ok,
		Code:        r.Summary(),
		Errors:      r.Errors,
		Warnings:    r.Warnings,
		Suggestions: r.Suggestions,
		Metadata:    map[string]any{"provider": string(provider)},
	}
	if !ok && len(res.Errors) == 0 {
		res.Errors = []string{"implementation does not satisfy the spec"}
	}
	return res
}

// Summary renders the report as plain text.
func (r ValidationReport) Summary() string {
	var b strings.Builder
	if r.Valid && len(r.Errors) == 0 {
		b.WriteString("valid\n")
	} else {
		b.WriteString("invalid\n")
	}
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "  - %s\n", it)
		}
	}
	section("errors", r.Errors)
	section("warnings", r.Warnings)
	section("suggestions", r.Suggestions)
	return b.String()
}

// CompletionResult turns a raw completion into the envelope for task. Validate tasks
// are parsed as reports; everything else must yield non-empty code.
func CompletionResult(provider agent.ProviderName, task agent.Task, completion string, meta map[string]any) (agent.Result, error) {
	if task.Kind == agent.KindValidate {
		rep, err := ParseValidationReport(completion)
		if err != nil {
			return agent.Result{}, err
		}
		res := rep.Result(provider)
		for k, v := range meta {
			res.Metadata[k] = v
		}
		return res, nil
	}

	code := ExtractCode(completion)
	if code == "" {
		res := agent.Failure(fmt.Sprintf("%s returned no code", provider))
		res.Metadata = map[string]any{"provider": string(provider)}
		return res, nil
	}
	res := agent.Result{Success: true, Code: code, Metadata: map[string]any{"provider": string(provider)}}
	for k, v := range meta {
		res.Metadata[k] = v
	}
	return res, nil
}

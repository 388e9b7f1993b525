// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package simple

import (
	"regexp"
	"strings"
	"unicode"
)

// SpecType classifies a spec by what it declares.
type SpecType string

const (
	TypeOperation    SpecType = "operation"
	TypePresentation SpecType = "presentation"
	TypeForm         SpecType = "form"
	TypeWorkflow     SpecType = "workflow"
	TypeEvent        SpecType = "event"
)

var (
	reName = regexp.MustCompile(`\bname\s*:\s*['"]([^'"]+)['"]`)
	reKey  = regexp.MustCompile(`\bkey\s*:\s*['"]([^'"]+)['"]`)

	// checked in order; the first marker found wins
	typeMarkers = []struct {
		t       SpecType
		markers []string
	}{
		{TypePresentation, []string{"PresentationSpec", "definePresentation", "kind: 'presentation'", `kind: "presentation"`}},
		{TypeForm, []string{"FormSpec", "defineForm", "kind: 'form'", `kind: "form"`}},
		{TypeWorkflow, []string{"WorkflowSpec", "defineWorkflow", "kind: 'workflow'", `kind: "workflow"`}},
		{TypeEvent, []string{"EventSpec", "defineEvent", "kind: 'event'", `kind: "event"`}},
		{TypeOperation, []string{"OperationSpec", "defineCommand", "defineQuery", "defineOperation"}},
	}
)

// DetectName returns the declared spec name, falling back to the key and then "Spec".
func DetectName(spec string) string {
	if m := reName.FindStringSubmatch(spec); m != nil {
		return m[1]
	}
	if m := reKey.FindStringSubmatch(spec); m != nil {
		return m[1]
	}
	return "Spec"
}

// DetectType returns the kind of spec; operation when nothing matches.
func DetectType(spec string) SpecType {
	for _, tm := range typeMarkers {
		for _, m := range tm.markers {
			if strings.Contains(spec, m) {
				return tm.t
			}
		}
	}
	return TypeOperation
}

// PascalCase turns "billing.create-invoice" into "BillingCreateInvoice".
func PascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "Spec"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "Spec" + out
	}
	return out
}

// CamelCase is PascalCase with a lower-case first letter.
func CamelCase(s string) string {
	p := []rune(PascalCase(s))
	p[0] = unicode.ToLower(p[0])
	return string(p)
}

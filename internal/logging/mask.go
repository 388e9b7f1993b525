// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI logger and helpers for presenting provider
// failures without leaking credentials.
//
// Anything that may contain a request, a header dump or an upstream error body
// goes through Mask before it reaches the terminal or the log.
package logging

import (
	"regexp"
)

var (
	reSecretKey = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)
	reHeader    = regexp.MustCompile(`(?i)(x-api-key:\s*|authorization:\s*bearer\s+)([^\s,;"]+)`)
	reBearer    = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reToken     = regexp.MustCompile(`(?i)(token=)([^\s;&]+)`)
	reAPIKey    = regexp.MustCompile(`(?i)(apikey=|api_key=|key=)([^\s;&]+)`)
	reEnvPair   = regexp.MustCompile(`\b((?:ANTHROPIC|OPENAI|CURSOR)_API_KEY=)(\S+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = reEnvPair.ReplaceAllString(out, "$1***")
	out = reHeader.ReplaceAllString(out, "$1***")
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reSecretKey.ReplaceAllString(out, "sk-***")
	return out
}

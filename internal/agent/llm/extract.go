// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"regexp"
	"strings"
)

var reFence = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\n(.*?)\\n?```")

// ExtractCode returns the largest fenced block in completion, or the trimmed
// completion when it contains no fence. When every fence is blank it returns "".
func ExtractCode(completion string) string {
	matches := reFence.FindAllStringSubmatch(completion, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(completion)
	}
	best := ""
	for _, m := range matches {
		if body := strings.TrimRight(m[1], " \t\n"); len(body) > len(best) {
			best = body
		}
	}
	if strings.TrimSpace(best) == "" {
		return ""
	}
	return best + "\n"
}

// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agent

// fallbackTopology maps each provider to its single designated successor.
// simple maps to itself so the chain has a fixed point.
var fallbackTopology = map[ProviderName]ProviderName{
	ProviderCursor:      ProviderClaudeCode,
	ProviderClaudeCode:  ProviderOpenAICodex,
	ProviderOpenAICodex: ProviderSimple,
	ProviderSimple:      ProviderSimple,
}

// NextFallback returns the successor of name in the fallback chain.
// Names outside the topology fall through to the terminal provider.
func NextFallback(name ProviderName) ProviderName {
	if next, ok := fallbackTopology[name]; ok {
		return next
	}
	return TerminalProvider
}

// FallbackChain returns name followed by its successors up to and including the terminal provider.
func FallbackChain(name ProviderName) []ProviderName {
	chain := []ProviderName{name}
	for cur := name; cur != TerminalProvider; {
		cur = NextFallback(cur)
		chain = append(chain, cur)
	}
	return chain
}

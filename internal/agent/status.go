// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agent

// probeTask is the synthetic task used for diagnostics only.
var probeTask = Task{Kind: KindGenerate, SpecCode: "probe"}

// Statuses reports, in fallback order, whether each registered provider would accept
// a task right now. It is diagnostics only and does not take part in routing.
func (o *Orchestrator) Statuses() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(o.providers))
	for _, name := range KnownProviders {
		p, ok := o.providers[name]
		if !ok {
			continue
		}
		st := ProviderStatus{Name: name, Available: o.canHandle(p, probeTask)}
		if !st.Available {
			if rr, ok := p.(ReasonReporter); ok {
				st.Reason = rr.UnavailableReason(probeTask)
			}
			if st.Reason == "" {
				st.Reason = "provider declined the probe task"
			}
		}
		out = append(out, st)
	}
	return out
}

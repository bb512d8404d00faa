// Package pricing is the out-of-scope-per-spec "token-cost pricing
// tables" collaborator: an interface the renderer and stats engine
// consume, plus one default table. Shape preserved from the teacher's
// own call site (internal/adapter/claudecode/stats.go imports a
// pricing package with exactly this ModelCost(model, Usage) signature;
// that package was not itself present in the retrieved file set, so
// this is a from-scratch implementation under this repo's own module
// path, matching only the call shape the teacher already committed to).
package pricing

import "strings"

// Usage is the token counts a cost calculation needs.
type Usage struct {
	InputTokens        int
	OutputTokens       int
	CacheCreationInput int
	CacheReadInput     int
}

// Rate is the per-million-token price for one model.
type Rate struct {
	InputPerMTok        float64
	OutputPerMTok       float64
	CacheCreatePerMTok  float64
	CacheReadPerMTok    float64
}

// Table looks up a Rate for a model identifier.
type Table interface {
	Rate(model string) Rate
}

// DefaultTable is the built-in table covering the Claude model
// families the teacher's claude-code adapter names (opus/sonnet/haiku).
var DefaultTable Table = defaultTable{}

type defaultTable struct{}

func (defaultTable) Rate(model string) Rate {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "opus"):
		return Rate{InputPerMTok: 15, OutputPerMTok: 75, CacheCreatePerMTok: 18.75, CacheReadPerMTok: 1.5}
	case strings.Contains(m, "haiku"):
		return Rate{InputPerMTok: 0.80, OutputPerMTok: 4, CacheCreatePerMTok: 1, CacheReadPerMTok: 0.08}
	case strings.Contains(m, "sonnet"):
		return Rate{InputPerMTok: 3, OutputPerMTok: 15, CacheCreatePerMTok: 3.75, CacheReadPerMTok: 0.3}
	default:
		// Unknown model: fall back to Sonnet-tier pricing rather than
		// zero, so stats never silently under-report on a new model id.
		return Rate{InputPerMTok: 3, OutputPerMTok: 15, CacheCreatePerMTok: 3.75, CacheReadPerMTok: 0.3}
	}
}

// ModelCost computes the dollar cost of usage for model using table.
func ModelCost(table Table, model string, usage Usage) float64 {
	r := table.Rate(model)
	const perTok = 1.0 / 1_000_000
	return float64(usage.InputTokens)*r.InputPerMTok*perTok +
		float64(usage.OutputTokens)*r.OutputPerMTok*perTok +
		float64(usage.CacheCreationInput)*r.CacheCreatePerMTok*perTok +
		float64(usage.CacheReadInput)*r.CacheReadPerMTok*perTok
}

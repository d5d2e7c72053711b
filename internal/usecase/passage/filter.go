// Package passage restricts retrieved passages to those textually consistent
// with a resolved winner. Upstream similarity search cannot tell two
// near-identical models apart; this filter can, because it checks the
// winner's own brand and model codes against normalized passage content.
package passage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/resolvex/internal/domain"
	"github.com/kailas-cloud/resolvex/internal/normalize"
)

// TelemetrySink accepts fire-and-forget filter records.
type TelemetrySink interface {
	EmitFilter(rec domain.FilterRecord)
}

// Service applies the staged passage post-filter.
type Service struct {
	telemetry    TelemetrySink          // may be nil
	methodsTotal *prometheus.CounterVec // label "method", may be nil
}

// New creates a passage filter service. Both collaborators may be nil.
func New(telemetry TelemetrySink, methodsTotal *prometheus.CounterVec) *Service {
	return &Service{telemetry: telemetry, methodsTotal: methodsTotal}
}

// Filter narrows passages to those consistent with the winner. Stages, first
// non-empty wins: brand+model together, model alone, brand alone (primary
// when the winner has no model). An empty result is a hard refusal signal;
// the cascade never falls back to "show everything", because presenting
// cross-contaminated passages is the exact failure this component prevents.
//
// The result is always a subset of the input, in input order; passages are
// never re-ranked or rewritten.
func (s *Service) Filter(passages []domain.Passage, winner domain.CatalogItem) domain.FilterResult {
	res := filter(passages, winner)

	if s.methodsTotal != nil {
		s.methodsTotal.WithLabelValues(string(res.Method)).Inc()
	}
	if s.telemetry != nil {
		s.telemetry.EmitFilter(domain.FilterRecord{
			Tenant:       winner.Tenant(),
			ItemID:       winner.ID(),
			Method:       res.Method,
			UsedFallback: res.UsedFallback,
			Kept:         len(res.Kept),
			Total:        len(passages),
			At:           time.Now().UnixMilli(),
		})
	}
	return res
}

func filter(passages []domain.Passage, winner domain.CatalogItem) domain.FilterResult {
	brand := winner.NormBrand()
	model := winner.NormModel()

	// Stage 1: brand and model must both appear.
	triedBrandModel := false
	if brand != "" && model != "" {
		triedBrandModel = true
		kept := keep(passages, func(content string) bool {
			return normalize.ContainsToken(content, brand) && normalize.ContainsToken(content, model)
		})
		if len(kept) > 0 {
			return domain.FilterResult{Kept: kept, Method: domain.FilterBrandModel}
		}
	}

	// Stage 2: model alone. This is a fallback only when stage 1 was
	// actually attempted and came up empty; for a brandless winner it is
	// simply the narrowest available check.
	if model != "" {
		kept := keep(passages, func(content string) bool {
			return normalize.ContainsToken(content, model)
		})
		if len(kept) > 0 {
			return domain.FilterResult{
				Kept:         kept,
				Method:       domain.FilterModelOnly,
				UsedFallback: triedBrandModel,
			}
		}
	}

	// Stage 3: no model, so brand alone is the primary path, not a fallback.
	if model == "" && brand != "" {
		kept := keep(passages, func(content string) bool {
			return normalize.ContainsToken(content, brand)
		})
		if len(kept) > 0 {
			return domain.FilterResult{Kept: kept, Method: domain.FilterBrandModel}
		}
	}

	// Stage 4: exhausted. The caller must refuse the answer.
	return domain.FilterResult{Kept: []domain.Passage{}, Method: domain.FilterNone}
}

func keep(passages []domain.Passage, match func(content string) bool) []domain.Passage {
	var kept []domain.Passage
	for _, p := range passages {
		if match(normalize.Normalize(p.Content)) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Package resolve decides which single catalog item, if any, a free-text
// query refers to. It merges scored alias matches with full-text relevance
// and applies absolute and relative confidence thresholds so that
// near-identical models are surfaced as ambiguity instead of a confident
// wrong pick.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/resolvex/internal/domain"
	"github.com/kailas-cloud/resolvex/internal/normalize"
)

// Thresholds holds the scoring weights and decision cut-offs. The shape of
// the rule (an absolute floor plus a runner-up gap for a single winner, and
// a broad middle band for ambiguity) is the invariant; the values are
// hand-tuned defaults awaiting calibration against real query logs.
type Thresholds struct {
	AliasWeight      float64 // weight of alias identification (default 1.0)
	FTSWeight        float64 // weight of full-text relevance (default 0.7)
	SingleMinScore   float64 // absolute floor for a single winner (default 0.7)
	SingleMinGap     float64 // required lead over the runner-up (default 0.2)
	MultipleMinScore float64 // floor for surfacing ambiguity (default 0.4)
	TopK             int     // full-text candidate fan-in (default 10)
}

// DefaultThresholds returns the tuned default decision constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AliasWeight:      1.0,
		FTSWeight:        0.7,
		SingleMinScore:   0.7,
		SingleMinGap:     0.2,
		MultipleMinScore: 0.4,
		TopK:             10,
	}
}

// Service resolves queries to catalog items.
type Service struct {
	aliases        AliasLookup
	fts            TextSearch
	items          ItemReader
	telemetry      TelemetrySink
	thresholds     Thresholds
	decisionsTotal *prometheus.CounterVec   // label "decision", may be nil
	lookupDuration *prometheus.HistogramVec // label "provider", may be nil
	logger         *zap.Logger
}

// New creates a resolver service. telemetry, decisionsTotal and
// lookupDuration may be nil.
func New(
	aliases AliasLookup,
	fts TextSearch,
	items ItemReader,
	telemetry TelemetrySink,
	thresholds Thresholds,
	decisionsTotal *prometheus.CounterVec,
	lookupDuration *prometheus.HistogramVec,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		aliases:        aliases,
		fts:            fts,
		items:          items,
		telemetry:      telemetry,
		thresholds:     thresholds,
		decisionsTotal: decisionsTotal,
		lookupDuration: lookupDuration,
		logger:         logger,
	}
}

// Resolve classifies a query as Single, Multiple, or None. It never returns
// an error: a failed or timed-out lookup degrades to None, because an
// inability to resolve is always safe and a wrong resolution is not.
func (s *Service) Resolve(ctx context.Context, tenant, query string) domain.Outcome {
	normQuery := normalize.Normalize(query)
	if normQuery == "" {
		return s.finish(tenant, query, normQuery, domain.NoneOutcome())
	}

	aliasMatches, textMatches, ok := s.lookup(ctx, tenant, normQuery)
	if !ok {
		return s.finish(tenant, query, normQuery, domain.NoneOutcome())
	}

	ranked, ok := s.score(ctx, tenant, aliasMatches, textMatches)
	if !ok {
		return s.finish(tenant, query, normQuery, domain.NoneOutcome())
	}

	return s.finish(tenant, query, normQuery, s.decide(ranked))
}

// lookup runs the alias and full-text providers concurrently and waits for
// both. Either failure (including ctx deadline) degrades the whole call.
func (s *Service) lookup(
	ctx context.Context, tenant, normQuery string,
) (aliasMatches []domain.AliasMatch, textMatches []domain.TextMatch, ok bool) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.observeLookup("alias", time.Now())
		var err error
		if aliasMatches, err = s.aliases.Lookup(gctx, tenant, normQuery); err != nil {
			return fmt.Errorf("%w: alias: %v", domain.ErrLookupUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		defer s.observeLookup("fts", time.Now())
		var err error
		if textMatches, err = s.fts.Search(gctx, tenant, normQuery, s.thresholds.TopK); err != nil {
			return fmt.Errorf("%w: fts: %v", domain.ErrLookupUnavailable, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Lookup provider failed, degrading to none",
			zap.String("tenant", tenant),
			zap.Error(err),
		)
		return nil, nil, false
	}
	return aliasMatches, textMatches, true
}

func (s *Service) observeLookup(provider string, start time.Time) {
	if s.lookupDuration != nil {
		s.lookupDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}
}

// score merges per-item contributions, hydrates the items, and ranks them.
func (s *Service) score(
	ctx context.Context, tenant string,
	aliasMatches []domain.AliasMatch, textMatches []domain.TextMatch,
) ([]domain.Candidate, bool) {
	type contribution struct {
		alias float64
		fts   float64
	}
	merged := make(map[string]*contribution)

	for _, m := range aliasMatches {
		c := merged[m.ItemID]
		if c == nil {
			c = &contribution{}
			merged[m.ItemID] = c
		}
		if m.Score > c.alias {
			c.alias = m.Score
		}
	}
	for _, m := range textMatches {
		c := merged[m.ItemID]
		if c == nil {
			c = &contribution{}
			merged[m.ItemID] = c
		}
		if m.Score > c.fts {
			c.fts = m.Score
		}
	}

	if len(merged) == 0 {
		return nil, true
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items, err := s.items.GetMulti(ctx, tenant, ids)
	if err != nil {
		s.logger.Warn("Candidate hydration failed, degrading to none",
			zap.String("tenant", tenant),
			zap.Error(err),
		)
		return nil, false
	}

	ranked := make([]domain.Candidate, 0, len(items))
	for _, it := range items {
		c := merged[it.ID()]
		if c == nil {
			continue
		}
		ranked = append(ranked, domain.Candidate{
			Item:       it,
			AliasScore: c.alias,
			FTSScore:   c.fts,
			TotalScore: c.alias*s.thresholds.AliasWeight + c.fts*s.thresholds.FTSWeight,
		})
	}

	// Rank by total score; equal scores break by item id for determinism.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].Item.ID() < ranked[j].Item.ID()
	})

	return ranked, true
}

// decide applies the decision rule, first match wins.
func (s *Service) decide(ranked []domain.Candidate) domain.Outcome {
	if len(ranked) == 0 {
		return domain.NoneOutcome()
	}

	top := ranked[0].TotalScore
	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].TotalScore
	}
	gap := top - second

	switch {
	case top >= s.thresholds.SingleMinScore && gap > s.thresholds.SingleMinGap:
		return domain.SingleOutcome(ranked, gap)
	case len(ranked) > 1 && top > s.thresholds.MultipleMinScore:
		return domain.MultipleOutcome(ranked)
	default:
		return domain.NoneOutcome()
	}
}

// finish records metrics and telemetry and hands the outcome back. Telemetry
// is best-effort and never blocks the return path.
func (s *Service) finish(tenant, query, normQuery string, out domain.Outcome) domain.Outcome {
	if s.decisionsTotal != nil {
		s.decisionsTotal.WithLabelValues(string(out.Decision)).Inc()
	}
	if s.telemetry != nil {
		top := make([]domain.CandidateScore, 0, 3)
		for i, c := range out.Candidates {
			if i == 3 {
				break
			}
			top = append(top, domain.CandidateScore{
				ItemID:     c.Item.ID(),
				AliasScore: c.AliasScore,
				FTSScore:   c.FTSScore,
				TotalScore: c.TotalScore,
			})
		}
		s.telemetry.EmitResolution(domain.ResolutionRecord{
			Tenant:    tenant,
			Query:     query,
			NormQuery: normQuery,
			Decision:  out.Decision,
			Top:       top,
			At:        time.Now().UnixMilli(),
		})
	}
	return out
}

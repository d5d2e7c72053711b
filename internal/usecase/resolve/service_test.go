package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

func newService(t *testing.T, aliases AliasLookup, fts TextSearch, sink TelemetrySink) *Service {
	t.Helper()
	return New(aliases, fts, itemsByID(t), sink, DefaultThresholds(), nil, nil, nil)
}

func TestResolveSingleWinner(t *testing.T) {
	// Exact alias hit on g3, nothing close behind.
	svc := newService(t,
		aliasMatches(domain.AliasMatch{ItemID: "g3", Kind: domain.AliasBrandModel, Norm: "iviskin g3", Score: 1.0}),
		textMatches(
			domain.TextMatch{ItemID: "g3", Score: 1.0},
			domain.TextMatch{ItemID: "g4", Score: 0.4},
		),
		nil,
	)

	out := svc.Resolve(context.Background(), "shop", "IVISKIN G-3 vekt")

	if out.Decision != domain.DecisionSingle {
		t.Fatalf("decision = %q, want single", out.Decision)
	}
	if out.Winner.Item.ID() != "g3" {
		t.Fatalf("winner = %q", out.Winner.Item.ID())
	}
	// alias 1.0*1.0 + fts 1.0*0.7 = 1.7; runner-up 0.4*0.7 = 0.28
	if got := out.Winner.TotalScore; got < 1.69 || got > 1.71 {
		t.Fatalf("total = %g, want 1.7", got)
	}
}

func TestResolveAmbiguousSiblings(t *testing.T) {
	// Shared model family: both g3 and g4 match "iviskin" strongly.
	svc := newService(t,
		aliasMatches(
			domain.AliasMatch{ItemID: "g3", Kind: domain.AliasBrandOnly, Norm: "iviskin", Score: 0.85},
			domain.AliasMatch{ItemID: "g4", Kind: domain.AliasBrandOnly, Norm: "iviskin", Score: 0.85},
		),
		textMatches(
			domain.TextMatch{ItemID: "g3", Score: 1.0},
			domain.TextMatch{ItemID: "g4", Score: 0.95},
		),
		nil,
	)

	out := svc.Resolve(context.Background(), "shop", "iviskin pris")

	if out.Decision != domain.DecisionMultiple {
		t.Fatalf("decision = %q, want multiple", out.Decision)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("candidates = %d", len(out.Candidates))
	}
	if out.Candidates[0].Item.ID() != "g3" {
		t.Fatalf("top candidate = %q", out.Candidates[0].Item.ID())
	}
}

func TestResolveMultipleCapsAtThree(t *testing.T) {
	svc := newService(t,
		aliasMatches(
			domain.AliasMatch{ItemID: "a", Score: 0.85},
			domain.AliasMatch{ItemID: "b", Score: 0.85},
			domain.AliasMatch{ItemID: "c", Score: 0.85},
			domain.AliasMatch{ItemID: "d", Score: 0.85},
		),
		textMatches(),
		nil,
	)

	out := svc.Resolve(context.Background(), "shop", "felles navn")

	if out.Decision != domain.DecisionMultiple {
		t.Fatalf("decision = %q, want multiple", out.Decision)
	}
	if len(out.Candidates) != 3 {
		t.Fatalf("candidates = %d, want capped at 3", len(out.Candidates))
	}
}

func TestResolveDecisionBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64 // alias scores per item a, b, ...
		want   domain.Decision
	}{
		// 0.71 vs 0.49: top >= 0.7 and gap 0.22 > 0.2
		{"just single", []float64{0.71, 0.49}, domain.DecisionSingle},
		// gap exactly 0.2 is not enough
		{"gap at limit", []float64{0.71, 0.51}, domain.DecisionMultiple},
		// strong but crowded: top 0.71, runner 0.55
		{"crowded top", []float64{0.71, 0.55}, domain.DecisionMultiple},
		// top at 0.4 does not clear the ambiguity floor
		{"all weak", []float64{0.4, 0.3}, domain.DecisionNone},
		// lone candidate below the single floor
		{"lone weak", []float64{0.6}, domain.DecisionNone},
		// lone candidate above the floor wins by full gap
		{"lone strong", []float64{0.75}, domain.DecisionSingle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := make([]domain.AliasMatch, len(tt.scores))
			for i, s := range tt.scores {
				ms[i] = domain.AliasMatch{ItemID: string(rune('a' + i)), Score: s}
			}
			svc := newService(t, aliasMatches(ms...), textMatches(), nil)

			out := svc.Resolve(context.Background(), "shop", "query")
			if out.Decision != tt.want {
				t.Fatalf("decision = %q, want %q", out.Decision, tt.want)
			}
		})
	}
}

func TestResolveFTSAloneCanWin(t *testing.T) {
	// No alias signal at all; a dominant full-text hit reaches
	// 1.0*0.7 = 0.7 and clears both the floor and the gap.
	svc := newService(t,
		aliasMatches(),
		textMatches(
			domain.TextMatch{ItemID: "g3", Score: 1.0},
			domain.TextMatch{ItemID: "g4", Score: 0.3},
		),
		nil,
	)

	out := svc.Resolve(context.Background(), "shop", "laserbasert haarfjerning g3")

	if out.Decision != domain.DecisionSingle {
		t.Fatalf("decision = %q, want single", out.Decision)
	}
	if out.Winner.Item.ID() != "g3" {
		t.Fatalf("winner = %q", out.Winner.Item.ID())
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	svc := newService(t, aliasMatches(), textMatches(), nil)

	out := svc.Resolve(context.Background(), "shop", "   \t ")
	if out.Decision != domain.DecisionNone {
		t.Fatalf("decision = %q, want none", out.Decision)
	}
}

func TestResolveNoMatches(t *testing.T) {
	svc := newService(t, aliasMatches(), textMatches(), nil)

	out := svc.Resolve(context.Background(), "shop", "hvordan lage vafler")
	if out.Decision != domain.DecisionNone {
		t.Fatalf("decision = %q, want none", out.Decision)
	}
}

func TestResolveLookupFailureDegradesToNone(t *testing.T) {
	failing := &fakeAliasLookup{lookupFunc: func(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error) {
		return nil, errors.New("redis down")
	}}
	svc := newService(t, failing,
		textMatches(domain.TextMatch{ItemID: "g3", Score: 1.0}), nil)

	out := svc.Resolve(context.Background(), "shop", "g3")
	if out.Decision != domain.DecisionNone {
		t.Fatalf("decision = %q, want none on provider failure", out.Decision)
	}
}

func TestResolveHydrationFailureDegradesToNone(t *testing.T) {
	items := &fakeItemReader{getMultiFunc: func(ctx context.Context, tenant string, ids []string) ([]domain.CatalogItem, error) {
		return nil, errors.New("redis down")
	}}
	svc := New(aliasMatches(domain.AliasMatch{ItemID: "g3", Score: 1.0}),
		textMatches(), items, nil, DefaultThresholds(), nil, nil, nil)

	out := svc.Resolve(context.Background(), "shop", "g3")
	if out.Decision != domain.DecisionNone {
		t.Fatalf("decision = %q, want none on hydration failure", out.Decision)
	}
}

func TestResolveDeterministicTieBreak(t *testing.T) {
	svc := newService(t,
		aliasMatches(
			domain.AliasMatch{ItemID: "zz", Score: 0.85},
			domain.AliasMatch{ItemID: "aa", Score: 0.85},
		),
		textMatches(),
		nil,
	)

	for i := 0; i < 5; i++ {
		out := svc.Resolve(context.Background(), "shop", "delt alias")
		if out.Decision != domain.DecisionMultiple {
			t.Fatalf("decision = %q", out.Decision)
		}
		if out.Candidates[0].Item.ID() != "aa" {
			t.Fatalf("tie must break by item id, got %q first", out.Candidates[0].Item.ID())
		}
	}
}

func TestResolveEmitsTelemetry(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t,
		aliasMatches(domain.AliasMatch{ItemID: "g3", Score: 1.0}),
		textMatches(),
		sink,
	)

	svc.Resolve(context.Background(), "shop", "IVISKIN G-3")

	if len(sink.records) != 1 {
		t.Fatalf("records = %d, want 1", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Decision != domain.DecisionSingle || rec.NormQuery != "iviskin g3" {
		t.Fatalf("record = %+v", rec)
	}
	if len(rec.Top) != 1 || rec.Top[0].ItemID != "g3" {
		t.Fatalf("top = %+v", rec.Top)
	}
}

func TestResolveMergesAliasAndTextForSameItem(t *testing.T) {
	// Both providers score the same item; contributions stack.
	svc := newService(t,
		aliasMatches(
			domain.AliasMatch{ItemID: "g3", Kind: domain.AliasModelOnly, Score: 0.85},
			domain.AliasMatch{ItemID: "g3", Kind: domain.AliasBrandOnly, Score: 0.7},
		),
		textMatches(domain.TextMatch{ItemID: "g3", Score: 1.0}),
		nil,
	)

	out := svc.Resolve(context.Background(), "shop", "g3 vekt")

	if out.Decision != domain.DecisionSingle {
		t.Fatalf("decision = %q", out.Decision)
	}
	// Best alias tier only (0.85), not the sum of tiers: 0.85 + 0.7*1.0 = 1.55
	if got := out.Winner.TotalScore; got < 1.54 || got > 1.56 {
		t.Fatalf("total = %g, want 1.55", got)
	}
}

// rankOf returns the zero-based rank of an item in the outcome, or -1.
func rankOf(out domain.Outcome, itemID string) int {
	for i, c := range out.Candidates {
		if c.Item.ID() == itemID {
			return i
		}
	}
	return -1
}

func TestResolveRaisingScoreNeverLowersRank(t *testing.T) {
	t.Run("alias contribution", func(t *testing.T) {
		others := []domain.AliasMatch{
			{ItemID: "a", Score: 0.7},
			{ItemID: "c", Score: 0.6},
		}

		base := newService(t,
			aliasMatches(append(others, domain.AliasMatch{ItemID: "b", Score: 0.5})...),
			textMatches(), nil,
		).Resolve(context.Background(), "shop", "g3")
		raised := newService(t,
			aliasMatches(append(others, domain.AliasMatch{ItemID: "b", Score: 0.65})...),
			textMatches(), nil,
		).Resolve(context.Background(), "shop", "g3")

		before, after := rankOf(base, "b"), rankOf(raised, "b")
		if before != 2 || after != 1 {
			t.Fatalf("rank of b = %d then %d, want 2 then 1", before, after)
		}
		if rankOf(raised, "a") != 0 {
			t.Fatalf("unchanged top candidate moved: %+v", raised.Candidates)
		}
	})

	t.Run("fts contribution", func(t *testing.T) {
		others := []domain.TextMatch{
			{ItemID: "a", Score: 1.0},
			{ItemID: "c", Score: 0.8},
		}

		base := newService(t,
			aliasMatches(),
			textMatches(append(others, domain.TextMatch{ItemID: "b", Score: 0.5})...), nil,
		).Resolve(context.Background(), "shop", "g3")
		raised := newService(t,
			aliasMatches(),
			textMatches(append(others, domain.TextMatch{ItemID: "b", Score: 0.9})...), nil,
		).Resolve(context.Background(), "shop", "g3")

		before, after := rankOf(base, "b"), rankOf(raised, "b")
		if before != 2 || after != 1 {
			t.Fatalf("rank of b = %d then %d, want 2 then 1", before, after)
		}
		if rankOf(raised, "a") != 0 {
			t.Fatalf("unchanged top candidate moved: %+v", raised.Candidates)
		}
	})
}

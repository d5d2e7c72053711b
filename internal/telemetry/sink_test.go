package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

func TestSinkLogsResolution(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSink(8, nil, zap.New(core))

	s.EmitResolution(domain.ResolutionRecord{
		Tenant:    "shop",
		Query:     "G3 vekt",
		NormQuery: "g3 vekt",
		Decision:  domain.DecisionSingle,
		At:        time.Now().Unix(),
	})
	s.Close()

	entries := logs.FilterMessage("resolution").All()
	if len(entries) != 1 {
		t.Fatalf("got %d resolution entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tenant"] != "shop" || fields["decision"] != "single" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSinkLogsFilter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSink(8, nil, zap.New(core))

	s.EmitFilter(domain.FilterRecord{
		Tenant:       "shop",
		ItemID:       "p1",
		Method:       domain.FilterModelOnly,
		UsedFallback: true,
		Kept:         2,
		Total:        5,
	})
	s.Close()

	entries := logs.FilterMessage("passage_filter").All()
	if len(entries) != 1 {
		t.Fatalf("got %d filter entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "model_only" || fields["used_fallback"] != true {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSinkDropsOnOverflow(t *testing.T) {
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_telemetry_dropped_total"})

	// Close first so every later emission deterministically drops.
	s := NewSink(1, dropped, zap.NewNop())
	s.Close()

	s.EmitResolution(domain.ResolutionRecord{Tenant: "shop"})
	s.EmitFilter(domain.FilterRecord{Tenant: "shop"})

	if got := testutil.ToFloat64(dropped); got != 2 {
		t.Fatalf("dropped = %v, want 2", got)
	}
}

func TestSinkCloseIdempotent(t *testing.T) {
	s := NewSink(8, nil, zap.NewNop())
	s.Close()
	s.Close()
}

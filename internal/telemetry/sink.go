// Package telemetry records resolution and filtering outcomes off the
// request path. Emission is fire and forget: a full buffer drops the event
// rather than slow down or fail the caller.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// DefaultBufferSize is the event buffer used when the config leaves it unset.
const DefaultBufferSize = 1024

type event struct {
	resolution *domain.ResolutionRecord
	filter     *domain.FilterRecord
}

// Sink buffers outcome records and writes them as structured log lines from
// a single background goroutine.
type Sink struct {
	events  chan event
	dropped prometheus.Counter // may be nil
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewSink creates and starts a sink. dropped may be nil.
func NewSink(bufferSize int, dropped prometheus.Counter, logger *zap.Logger) *Sink {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sink{
		events:  make(chan event, bufferSize),
		dropped: dropped,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// EmitResolution records a resolution outcome. Never blocks.
func (s *Sink) EmitResolution(rec domain.ResolutionRecord) {
	s.emit(event{resolution: &rec})
}

// EmitFilter records a passage filtering outcome. Never blocks.
func (s *Sink) EmitFilter(rec domain.FilterRecord) {
	s.emit(event{filter: &rec})
}

func (s *Sink) emit(ev event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop()
		return
	}
	select {
	case s.events <- ev:
	default:
		s.drop()
	}
}

func (s *Sink) drop() {
	if s.dropped != nil {
		s.dropped.Inc()
	}
}

// Close stops the sink after draining buffered events. Emissions after Close
// are dropped.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	<-s.done
}

func (s *Sink) run() {
	defer close(s.done)
	for ev := range s.events {
		switch {
		case ev.resolution != nil:
			s.logResolution(ev.resolution)
		case ev.filter != nil:
			s.logFilter(ev.filter)
		}
	}
}

func (s *Sink) logResolution(rec *domain.ResolutionRecord) {
	s.logger.Info("resolution",
		zap.String("tenant", rec.Tenant),
		zap.String("query", rec.Query),
		zap.String("norm_query", rec.NormQuery),
		zap.String("decision", string(rec.Decision)),
		zap.Any("top", rec.Top),
		zap.Int64("at", rec.At),
	)
}

func (s *Sink) logFilter(rec *domain.FilterRecord) {
	s.logger.Info("passage_filter",
		zap.String("tenant", rec.Tenant),
		zap.String("item_id", rec.ItemID),
		zap.String("method", string(rec.Method)),
		zap.Bool("used_fallback", rec.UsedFallback),
		zap.Int("kept", rec.Kept),
		zap.Int("total", rec.Total),
		zap.Int64("at", rec.At),
	)
}

// Package simulator drives the live-metrics panel. It has no data source: on
// every tick each reading drifts by a small random amount so the dashboard
// shows movement.
package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// RandSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

const (
	// valueSpread is the width of the uniform value step, centred on zero.
	valueSpread = 2.0
	// confidenceSpread is the width of the uniform confidence step.
	confidenceSpread = 10.0
)

// Simulator owns the metric readings and perturbs them on a fixed period.
type Simulator struct {
	mu       sync.RWMutex
	readings []domain.MetricReading

	clock    clockwork.Clock
	rand     RandSource
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	running  atomic.Bool
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithClock replaces the real clock, typically with a clockwork fake.
func WithClock(c clockwork.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithRand replaces the random source.
func WithRand(r RandSource) Option {
	return func(s *Simulator) { s.rand = r }
}

// New creates a Simulator seeded with domain.SeedReadings.
func New(interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Simulator {
	s := &Simulator{
		readings: domain.SeedReadings(),
		clock:    clockwork.NewRealClock(),
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(s.clock.Now().UnixNano())) //nolint:gosec // display jitter, not security
	}
	return s
}

// Run ticks every interval until ctx is cancelled. The ticker is stopped on return.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("metric simulator started", "interval", s.interval)
	s.running.Store(true)
	defer s.running.Store(false)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("metric simulator stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.Tick()
		}
	}
}

// CheckReadiness returns nil while Run is ticking.
func (s *Simulator) CheckReadiness(_ context.Context) error {
	if !s.running.Load() {
		return errors.New("metric simulator is not running")
	}
	return nil
}

// Tick applies one perturbation to every reading:
//
//	value      += U(-1, 1), rounded to one decimal place
//	confidence  = clamp(confidence + U(-5, 5), 50, 99)
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.readings {
		r := &s.readings[i]
		r.Value = perturbValue(r.Value, (s.rand.Float64()-0.5)*valueSpread)
		r.Confidence = clamp(r.Confidence+(s.rand.Float64()-0.5)*confidenceSpread, domain.MinConfidence, domain.MaxConfidence)
	}
	s.metrics.SimulatorTicks.Inc()
	s.logger.Debug("metrics perturbed", "readings", len(s.readings))
}

// Snapshot returns a copy of the current readings.
func (s *Simulator) Snapshot() []domain.MetricReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MetricReading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Reset restores the seed readings.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = domain.SeedReadings()
}

// Risk returns the headline assessment. It is a fixed value, not derived
// from the readings.
func (s *Simulator) Risk() domain.RiskAssessment {
	return domain.CurrentRisk
}

// perturbValue adds delta to a decimal string and formats the result with one
// decimal place. Unparseable values are left untouched.
func perturbValue(value string, delta float64) string {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	return v.Add(decimal.NewFromFloat(delta)).StringFixed(1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package mapview

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
)

// ErrAlreadyStarted is returned by Start while a previous Start is running.
var ErrAlreadyStarted = errors.New("map adapter already started")

// Acquisition defaults for the initial fix and the watch that follows it.
var (
	DefaultInitialOptions = PositionOptions{EnableHighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 5 * time.Minute}
	DefaultWatchOptions   = PositionOptions{EnableHighAccuracy: true, Timeout: 30 * time.Second, MaximumAge: 60 * time.Second}
)

// LocationFunc receives each new user location.
type LocationFunc func(domain.Coordinates)

// Adapter owns layer visibility and the user's location for the map panel.
type Adapter struct {
	geo      Geolocator
	layers   *LayerSet
	provider Provider
	initial  PositionOptions
	watch    PositionOptions
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu        sync.RWMutex
	callbacks []LocationFunc
	location  *domain.Coordinates
	lastFix   *Position
	locErr    string
	sdk       SDKStatus
	cancel    context.CancelFunc
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithInitialOptions overrides the options of the first position request.
func WithInitialOptions(o PositionOptions) Option {
	return func(a *Adapter) { a.initial = o }
}

// WithWatchOptions overrides the options of the position watch.
func WithWatchOptions(o PositionOptions) Option {
	return func(a *Adapter) { a.watch = o }
}

// NewAdapter creates an Adapter with the default layer visibility.
func NewAdapter(geo Geolocator, provider Provider, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Adapter {
	a := &Adapter{
		geo:      geo,
		layers:   NewLayerSet(),
		provider: provider,
		initial:  DefaultInitialOptions,
		watch:    DefaultWatchOptions,
		logger:   logger,
		metrics:  metrics,
		sdk:      SDKStatus{State: SDKLoading},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnLocationUpdate registers fn for the initial fix and every watch update.
func (a *Adapter) OnLocationUpdate(fn LocationFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// Start acquires the initial fix, then watches the position until ctx is
// cancelled or Stop is called. It blocks; cancellation returns nil.
func (a *Adapter) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.cancel = cancel
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.cancel = nil
		a.mu.Unlock()
	}()

	a.logger.Info("map adapter started", "provider", a.provider)

	pos, err := a.geo.CurrentPosition(ctx, a.initial)
	switch {
	case ctx.Err() != nil:
		return nil
	case err != nil:
		a.fail(err)
	default:
		a.deliver(pos)
	}

	err = a.geo.Watch(ctx, a.watch, a.watchFix, a.watchFailed)
	if ctx.Err() != nil {
		a.logger.Info("map adapter stopped")
		return nil
	}
	return err
}

// Stop cancels a running Start. It is a no-op otherwise.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Location returns the user's location, or nil when none is known.
func (a *Adapter) Location() *domain.Coordinates {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.location == nil {
		return nil
	}
	loc := *a.location
	return &loc
}

// LocationError returns the message of the last acquisition failure, or ""
// once a fix has been received.
func (a *Adapter) LocationError() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.locErr
}

// ToggleLayer flips the visibility of one overlay layer.
func (a *Adapter) ToggleLayer(name string) (bool, error) {
	visible, err := a.layers.Toggle(name)
	if err != nil {
		return false, err
	}
	a.metrics.LayerToggles.WithLabelValues(name).Inc()
	a.logger.Debug("map layer toggled", "layer", name, "visible", visible)
	return visible, nil
}

// Layers returns a copy of the layer visibility map.
func (a *Adapter) Layers() map[string]bool {
	return a.layers.Snapshot()
}

// Zones returns the overlays whose layer is currently visible.
func (a *Adapter) Zones() []Zone {
	out := make([]Zone, 0, len(riskZones))
	for _, z := range riskZones {
		if a.layers.Visible(z.Layer) {
			out = append(out, z)
		}
	}
	return out
}

// ZonesAt returns the visible area overlays containing c.
func (a *Adapter) ZonesAt(c domain.Coordinates) []Zone {
	var out []Zone
	for _, z := range a.Zones() {
		if z.Contains(c) {
			out = append(out, z)
		}
	}
	return out
}

// watchFix skips a replay of the fix already delivered, which a watch
// reports first while it is younger than MaximumAge.
func (a *Adapter) watchFix(pos Position) {
	a.mu.RLock()
	last := a.lastFix
	a.mu.RUnlock()
	if last != nil && last.Coords == pos.Coords && last.Timestamp.Equal(pos.Timestamp) {
		return
	}
	a.deliver(pos)
}

func (a *Adapter) deliver(pos Position) {
	a.mu.Lock()
	loc := pos.Coords
	a.location = &loc
	a.lastFix = &pos
	a.locErr = ""
	callbacks := slices.Clone(a.callbacks)
	a.mu.Unlock()

	a.metrics.LocationUpdates.Inc()
	a.logger.Debug("location updated", "lat", loc.Lat, "lng", loc.Lng, "accuracy_m", pos.Accuracy)
	for _, fn := range callbacks {
		fn(loc)
	}
}

func (a *Adapter) fail(err error) {
	code, msg := classify(err)
	a.mu.Lock()
	a.locErr = msg
	a.mu.Unlock()

	a.metrics.GeolocationErrors.WithLabelValues(code).Inc()
	a.logger.Warn("error getting location", "code", code, "error", err)
}

// watchFailed only surfaces the error while no location is known, so a
// transient watch timeout does not hide a good fix.
func (a *Adapter) watchFailed(err error) {
	code, msg := classify(err)
	a.mu.Lock()
	if a.location == nil {
		a.locErr = msg
	}
	a.mu.Unlock()

	a.metrics.GeolocationErrors.WithLabelValues(code).Inc()
	a.logger.Debug("error watching location", "code", code, "error", err)
}

func classify(err error) (code, msg string) {
	var gerr *GeolocationError
	if errors.As(err, &gerr) {
		return string(gerr.Code), gerr.Error()
	}
	return "unknown", Message("")
}

package mapview_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGeolocator answers CurrentPosition from fixed values and replays
// watchFixes before blocking until cancelled.
type stubGeolocator struct {
	pos        mapview.Position
	err        error
	watchFixes []mapview.Position
	watchErrs  []error

	mu       sync.Mutex
	requests []mapview.PositionOptions
}

func (s *stubGeolocator) CurrentPosition(_ context.Context, opts mapview.PositionOptions) (mapview.Position, error) {
	s.mu.Lock()
	s.requests = append(s.requests, opts)
	s.mu.Unlock()
	return s.pos, s.err
}

func (s *stubGeolocator) Watch(ctx context.Context, opts mapview.PositionOptions, onFix func(mapview.Position), onErr func(error)) error {
	s.mu.Lock()
	s.requests = append(s.requests, opts)
	s.mu.Unlock()
	for _, err := range s.watchErrs {
		onErr(err)
	}
	for _, p := range s.watchFixes {
		onFix(p)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubGeolocator) seen() []mapview.PositionOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mapview.PositionOptions(nil), s.requests...)
}

func newAdapter(geo mapview.Geolocator) *mapview.Adapter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mapview.NewAdapter(geo, mapview.ProviderGoogle, logger, observability.NewMetricsForTesting())
}

// start runs a.Start in the background and returns a wait func that stops
// the adapter and returns Start's result.
func start(t *testing.T, a *mapview.Adapter) func() error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()
	return func() error {
		a.Stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("adapter did not stop")
			return nil
		}
	}
}

func TestAdapter_DeliversInitialFixAndWatchUpdates(t *testing.T) {
	moved := domain.Coordinates{Lat: 12.98, Lng: 77.60}
	geo := &stubGeolocator{
		pos:        mapview.Position{Coords: bengaluru},
		watchFixes: []mapview.Position{{Coords: moved}},
	}
	a := newAdapter(geo)

	var mu sync.Mutex
	var got []domain.Coordinates
	a.OnLocationUpdate(func(c domain.Coordinates) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})

	stop := start(t, a)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	assert.Equal(t, []domain.Coordinates{bengaluru, moved}, got)
	require.NotNil(t, a.Location())
	assert.Equal(t, moved, *a.Location())
	assert.Empty(t, a.LocationError())
	assert.Equal(t, []mapview.PositionOptions{mapview.DefaultInitialOptions, mapview.DefaultWatchOptions}, geo.seen())
}

func TestAdapter_ClientGeolocatorFixDeliveredOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	geo := mapview.NewClientGeolocator(clock)
	metrics := observability.NewMetricsForTesting()
	a := mapview.NewAdapter(geo, mapview.ProviderGoogle, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)

	var mu sync.Mutex
	var got []domain.Coordinates
	a.OnLocationUpdate(func(c domain.Coordinates) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	moved := domain.Coordinates{Lat: 12.98, Lng: 77.60}
	geo.Push(mapview.Position{Coords: bengaluru})
	require.Eventually(t, func() bool { return count() >= 1 }, time.Second, 5*time.Millisecond)
	geo.Push(mapview.Position{Coords: moved})
	require.Eventually(t, func() bool { return count() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.Coordinates{bengaluru, moved}, got, "one callback per pushed fix")
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.LocationUpdates), 0)
}

func TestAdapter_PermissionDeniedLeavesLocationNil(t *testing.T) {
	geo := &stubGeolocator{err: &mapview.GeolocationError{Code: mapview.CodePermissionDenied}}
	a := newAdapter(geo)

	called := false
	a.OnLocationUpdate(func(domain.Coordinates) { called = true })

	stop := start(t, a)
	require.Eventually(t, func() bool { return a.LocationError() != "" }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	assert.Nil(t, a.Location())
	assert.Equal(t, "Location access denied. Please enable location permissions.", a.LocationError())
	assert.False(t, called)
}

func TestAdapter_UnknownErrorUsesGenericMessage(t *testing.T) {
	geo := &stubGeolocator{err: assert.AnError}
	a := newAdapter(geo)

	stop := start(t, a)
	require.Eventually(t, func() bool { return a.LocationError() != "" }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	assert.Equal(t, "Unable to get your location.", a.LocationError())
}

func TestAdapter_WatchErrorDoesNotHideFix(t *testing.T) {
	geo := &stubGeolocator{
		pos:       mapview.Position{Coords: bengaluru},
		watchErrs: []error{&mapview.GeolocationError{Code: mapview.CodeTimeout}},
	}
	a := newAdapter(geo)

	stop := start(t, a)
	require.Eventually(t, func() bool { return len(geo.seen()) == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	require.NotNil(t, a.Location())
	assert.Empty(t, a.LocationError())
}

func TestAdapter_SecondStartIsRejected(t *testing.T) {
	geo := &stubGeolocator{pos: mapview.Position{Coords: bengaluru}}
	a := newAdapter(geo)

	stop := start(t, a)
	require.Eventually(t, func() bool { return len(geo.seen()) == 2 }, time.Second, 10*time.Millisecond)

	require.ErrorIs(t, a.Start(context.Background()), mapview.ErrAlreadyStarted)
	require.NoError(t, stop())
}

func TestAdapter_LocationIsACopy(t *testing.T) {
	geo := &stubGeolocator{pos: mapview.Position{Coords: bengaluru}}
	a := newAdapter(geo)
	stop := start(t, a)
	require.Eventually(t, func() bool { return a.Location() != nil }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	loc := a.Location()
	loc.Lat = 0
	assert.Equal(t, bengaluru, *a.Location())
}

func TestAdapter_ToggleLayer(t *testing.T) {
	a := newAdapter(&stubGeolocator{})

	visible, err := a.ToggleLayer(mapview.LayerHistorical)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.True(t, a.Layers()[mapview.LayerHistorical])

	_, err = a.ToggleLayer("volcano")
	require.ErrorIs(t, err, mapview.ErrUnknownLayer)
}

func TestAdapter_SDKStatus(t *testing.T) {
	a := newAdapter(&stubGeolocator{})
	assert.Equal(t, mapview.SDKLoading, a.SDKStatus().State)
	assert.Equal(t, mapview.ProviderGoogle, a.Provider())

	a.ReportSDKStatus(mapview.SDKStatus{State: mapview.SDKFailed, Detail: "invalid key"})
	assert.Equal(t, mapview.SDKStatus{State: mapview.SDKFailed, Detail: "invalid key"}, a.SDKStatus())
}

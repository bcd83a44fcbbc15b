package mapview_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bengaluru = domain.Coordinates{Lat: 12.9716, Lng: 77.5946}

func TestGeolocationError_Messages(t *testing.T) {
	tests := []struct {
		code mapview.ErrorCode
		want string
	}{
		{mapview.CodePermissionDenied, "Location access denied. Please enable location permissions."},
		{mapview.CodePositionUnavailable, "Location information is unavailable."},
		{mapview.CodeTimeout, "Location request timed out."},
		{mapview.CodeUnsupported, "Geolocation is not supported by this browser."},
		{"", "Unable to get your location."},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := &mapview.GeolocationError{Code: tt.code}
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParseErrorCode(t *testing.T) {
	for in, want := range map[string]mapview.ErrorCode{
		"1":                    mapview.CodePermissionDenied,
		"permission_denied":    mapview.CodePermissionDenied,
		"2":                    mapview.CodePositionUnavailable,
		"position_unavailable": mapview.CodePositionUnavailable,
		"3":                    mapview.CodeTimeout,
		"timeout":              mapview.CodeTimeout,
		"unsupported":          mapview.CodeUnsupported,
	} {
		got, err := mapview.ParseErrorCode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := mapview.ParseErrorCode("4")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestClientGeolocator_ReturnsFreshCachedFix(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := mapview.NewClientGeolocator(clock)
	g.Push(mapview.Position{Coords: bengaluru, Accuracy: 12})

	clock.Advance(time.Minute)
	pos, err := g.CurrentPosition(context.Background(), mapview.DefaultInitialOptions)
	require.NoError(t, err)
	assert.Equal(t, bengaluru, pos.Coords)
	assert.Equal(t, clock.Now().Add(-time.Minute), pos.Timestamp)
}

func TestClientGeolocator_StaleFixTimesOut(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := mapview.NewClientGeolocator(clock)
	g.Push(mapview.Position{Coords: bengaluru})
	clock.Advance(6 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := g.CurrentPosition(ctx, mapview.DefaultInitialOptions)
		errCh <- err
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Second)

	var gerr *mapview.GeolocationError
	require.ErrorAs(t, <-errCh, &gerr)
	assert.Equal(t, mapview.CodeTimeout, gerr.Code)
}

func TestClientGeolocator_WaitsForPushedFix(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := mapview.NewClientGeolocator(clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		pos mapview.Position
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		pos, err := g.CurrentPosition(ctx, mapview.DefaultInitialOptions)
		resCh <- result{pos, err}
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	g.Push(mapview.Position{Coords: bengaluru})

	res := <-resCh
	require.NoError(t, res.err)
	assert.Equal(t, bengaluru, res.pos.Coords)

	last, ok := g.Last()
	require.True(t, ok)
	assert.Equal(t, bengaluru, last.Coords)
}

func TestClientGeolocator_PushedErrorFailsWaiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := mapview.NewClientGeolocator(clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := g.CurrentPosition(ctx, mapview.DefaultInitialOptions)
		errCh <- err
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	g.PushError(mapview.CodePermissionDenied)

	var gerr *mapview.GeolocationError
	require.ErrorAs(t, <-errCh, &gerr)
	assert.Equal(t, mapview.CodePermissionDenied, gerr.Code)
}

func TestClientGeolocator_WatchStreamsUntilCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := mapview.NewClientGeolocator(clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fixes := make(chan mapview.Position, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- g.Watch(ctx, mapview.DefaultWatchOptions,
			func(p mapview.Position) { fixes <- p },
			func(err error) { errs <- err },
		)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	moved := domain.Coordinates{Lat: 12.98, Lng: 77.60}
	g.Push(mapview.Position{Coords: bengaluru})
	g.Push(mapview.Position{Coords: moved})
	assert.Equal(t, bengaluru, (<-fixes).Coords)
	assert.Equal(t, moved, (<-fixes).Coords)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, errs)
}

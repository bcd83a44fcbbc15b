package mapview

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
)

// PositionOptions mirrors the browser geolocation options. Timeout bounds
// how long to wait for a fix; MaximumAge is the oldest cached fix accepted.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// Position is a single geolocation fix.
type Position struct {
	Coords    domain.Coordinates `json:"coords"`
	Accuracy  float64            `json:"accuracy"` // metres
	Timestamp time.Time          `json:"timestamp"`
}

// Geolocator acquires the user's position.
type Geolocator interface {
	// CurrentPosition returns one fix or a *GeolocationError.
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)

	// Watch delivers fixes to onFix and failures to onErr until ctx is
	// cancelled. It blocks and returns ctx.Err() on cancellation.
	Watch(ctx context.Context, opts PositionOptions, onFix func(Position), onErr func(error)) error
}

// ErrorCode classifies a geolocation failure.
type ErrorCode string

const (
	CodePermissionDenied    ErrorCode = "permission_denied"
	CodePositionUnavailable ErrorCode = "position_unavailable"
	CodeTimeout             ErrorCode = "timeout"
	CodeUnsupported         ErrorCode = "unsupported"
)

// GeolocationError is a failed position request.
type GeolocationError struct {
	Code ErrorCode
}

// Error returns the message shown to the user.
func (e *GeolocationError) Error() string {
	return Message(e.Code)
}

// Message maps a code to the user-facing explanation.
func Message(code ErrorCode) string {
	switch code {
	case CodePermissionDenied:
		return "Location access denied. Please enable location permissions."
	case CodePositionUnavailable:
		return "Location information is unavailable."
	case CodeTimeout:
		return "Location request timed out."
	case CodeUnsupported:
		return "Geolocation is not supported by this browser."
	default:
		return "Unable to get your location."
	}
}

// ParseErrorCode accepts either the code names or the numeric codes of the
// browser GeolocationPositionError (1 denied, 2 unavailable, 3 timeout).
func ParseErrorCode(s string) (ErrorCode, error) {
	switch s {
	case string(CodePermissionDenied), "1":
		return CodePermissionDenied, nil
	case string(CodePositionUnavailable), "2":
		return CodePositionUnavailable, nil
	case string(CodeTimeout), "3":
		return CodeTimeout, nil
	case string(CodeUnsupported):
		return CodeUnsupported, nil
	}
	return "", fmt.Errorf("%w: unknown geolocation error code %q", domain.ErrValidation, s)
}

// Package safety holds the safety-location finder: a static directory of
// shelters, hospitals, police and fire stations, and high ground, re-sortable
// by distance or type.
package safety

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
)

// Criterion selects the directory sort order.
type Criterion string

const (
	ByDistance Criterion = "distance"
	ByType     Criterion = "type"
)

var (
	// ErrInvalidCriterion is returned for a sort key other than distance or type.
	ErrInvalidCriterion = errors.New("invalid sort criterion")

	// ErrNoLocation is returned when directions are requested without a user fix.
	ErrNoLocation = errors.New("GPS unavailable: enable location to get directions")
)

const directionsBaseURL = "https://www.google.com/maps/dir"

// Directory is the list of safety locations. Entries are never mutated,
// only reordered.
type Directory struct {
	mu        sync.RWMutex
	locations []domain.SafeLocation
	criterion Criterion
}

// NewDirectory creates a Directory seeded with domain.SeedSafeLocations and
// sorted by distance.
func NewDirectory() *Directory {
	locs := domain.SeedSafeLocations()
	slices.SortStableFunc(locs, compareDistance)
	return &Directory{locations: locs, criterion: ByDistance}
}

// Sort reorders the directory. Distance sorts ascending; type sorts by the
// type key lexicographically. The sort is stable, so equal keys keep their
// current relative order.
func (d *Directory) Sort(c Criterion) error {
	var less func(a, b domain.SafeLocation) int
	switch c {
	case ByDistance:
		less = compareDistance
	case ByType:
		less = compareType
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCriterion, c)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	slices.SortStableFunc(d.locations, less)
	d.criterion = c
	return nil
}

func compareDistance(a, b domain.SafeLocation) int {
	return cmp.Compare(a.Distance, b.Distance)
}

func compareType(a, b domain.SafeLocation) int {
	return strings.Compare(string(a.Type), string(b.Type))
}

// Criterion returns the last applied sort key.
func (d *Directory) Criterion() Criterion {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.criterion
}

// List returns a copy of the directory in its current order.
func (d *Directory) List() []domain.SafeLocation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.SafeLocation, len(d.locations))
	copy(out, d.locations)
	return out
}

// Get returns the location with the given id.
func (d *Directory) Get(id string) (domain.SafeLocation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, loc := range d.locations {
		if loc.ID == id {
			return loc, nil
		}
	}
	return domain.SafeLocation{}, fmt.Errorf("safety location %q: %w", id, domain.ErrNotFound)
}

// DirectionsURL builds a Google Maps directions link from the user's fix to
// loc. A nil from means the user's position is unknown.
func DirectionsURL(from *domain.Coordinates, loc domain.SafeLocation) (string, error) {
	if from == nil {
		return "", ErrNoLocation
	}
	to := loc.Point()
	return directionsBaseURL + "/" + formatLatLng(from.Lat, from.Lng) + "/" + formatLatLng(to.Lat, to.Lng), nil
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

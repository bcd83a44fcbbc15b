package safety_test

import (
	"testing"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locationIDs(locs []domain.SafeLocation) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.ID
	}
	return out
}

func TestNewDirectory_SortedByDistance(t *testing.T) {
	d := safety.NewDirectory()
	assert.Equal(t, safety.ByDistance, d.Criterion())
	// 0.8, 1.2, 1.8, 2.1, 2.5
	assert.Equal(t, []string{"1", "3", "4", "2", "5"}, locationIDs(d.List()))
}

func TestSort_ByType(t *testing.T) {
	d := safety.NewDirectory()
	require.NoError(t, d.Sort(safety.ByType))
	// fire, highground, hospital, police, shelter
	assert.Equal(t, []string{"4", "5", "2", "3", "1"}, locationIDs(d.List()))
}

func TestSort_RoundTripReproducesDistanceOrder(t *testing.T) {
	d := safety.NewDirectory()
	original := d.List()

	require.NoError(t, d.Sort(safety.ByType))
	require.NoError(t, d.Sort(safety.ByDistance))
	assert.Equal(t, original, d.List())
}

func TestSort_Idempotent(t *testing.T) {
	d := safety.NewDirectory()
	require.NoError(t, d.Sort(safety.ByType))
	once := d.List()
	require.NoError(t, d.Sort(safety.ByType))
	assert.Equal(t, once, d.List())
}

func TestSort_InvalidCriterion(t *testing.T) {
	d := safety.NewDirectory()
	before := d.List()
	err := d.Sort("capacity")
	require.ErrorIs(t, err, safety.ErrInvalidCriterion)
	assert.Equal(t, before, d.List())
	assert.Equal(t, safety.ByDistance, d.Criterion())
}

func TestGet(t *testing.T) {
	d := safety.NewDirectory()
	loc, err := d.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "Fortis Hospital", loc.Name)

	_, err = d.Get("99")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectionsURL(t *testing.T) {
	d := safety.NewDirectory()
	loc, err := d.Get("1")
	require.NoError(t, err)

	u, err := safety.DirectionsURL(&domain.Coordinates{Lat: 12.9716, Lng: 77.5946}, loc)
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/dir/12.9716,77.5946/12.9285,77.5946", u)

	_, err = safety.DirectionsURL(nil, loc)
	require.ErrorIs(t, err, safety.ErrNoLocation)
}

func TestTypeLabels(t *testing.T) {
	assert.Equal(t, "Emergency Shelter", domain.LocationShelter.Label())
	assert.Equal(t, "Medical Center", domain.LocationHospital.Label())
	assert.Equal(t, "Police Station", domain.LocationPolice.Label())
	assert.Equal(t, "Fire Station", domain.LocationFire.Label())
	assert.Equal(t, "High Ground", domain.LocationHighGround.Label())
	assert.Equal(t, "bunker", domain.LocationType("bunker").Label())
}

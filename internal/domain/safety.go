package domain

// LocationType classifies a safety location.
type LocationType string

const (
	LocationShelter    LocationType = "shelter"
	LocationHospital   LocationType = "hospital"
	LocationPolice     LocationType = "police"
	LocationFire       LocationType = "fire"
	LocationHighGround LocationType = "highground"
)

// Label returns the human-readable name of the type.
func (t LocationType) Label() string {
	switch t {
	case LocationShelter:
		return "Emergency Shelter"
	case LocationHospital:
		return "Medical Center"
	case LocationPolice:
		return "Police Station"
	case LocationFire:
		return "Fire Station"
	case LocationHighGround:
		return "High Ground"
	default:
		return string(t)
	}
}

// SafeLocation is a place users can go to during an emergency.
// Optional fields are pointers so the JSON omits them when unknown.
type SafeLocation struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        LocationType `json:"type"`
	Address     string       `json:"address"`
	Distance    float64      `json:"distance"` // km
	Capacity    *int         `json:"capacity,omitempty"`
	Available   *bool        `json:"available,omitempty"`
	Contact     string       `json:"contact,omitempty"`
	Coordinates [2]float64   `json:"coordinates"` // [lng, lat]
	RouteTime   *int         `json:"routeTime,omitempty"` // minutes
}

// Point returns the location's coordinates as a Coordinates value.
func (l SafeLocation) Point() Coordinates {
	return Coordinates{Lat: l.Coordinates[1], Lng: l.Coordinates[0]}
}

// SeedSafeLocations returns the directory in its original insertion order.
func SeedSafeLocations() []SafeLocation {
	return []SafeLocation{
		{
			ID:          "1",
			Name:        "Government Higher Primary School",
			Type:        LocationShelter,
			Address:     "Jayanagar 4th Block, Bangalore",
			Distance:    0.8,
			Capacity:    ptr(200),
			Available:   ptr(true),
			Contact:     "+91-80-2656-7890",
			Coordinates: [2]float64{77.5946, 12.9285},
			RouteTime:   ptr(12),
		},
		{
			ID:          "2",
			Name:        "Fortis Hospital",
			Type:        LocationHospital,
			Address:     "Bannerghatta Road, Bangalore",
			Distance:    2.1,
			Available:   ptr(true),
			Contact:     "+91-80-6621-4444",
			Coordinates: [2]float64{77.6068, 12.9298},
			RouteTime:   ptr(25),
		},
		{
			ID:          "3",
			Name:        "Jayanagar Police Station",
			Type:        LocationPolice,
			Address:     "Jayanagar East, Bangalore",
			Distance:    1.2,
			Available:   ptr(true),
			Contact:     "+91-80-2653-4567",
			Coordinates: [2]float64{77.5835, 12.9279},
			RouteTime:   ptr(15),
		},
		{
			ID:          "4",
			Name:        "Fire Station - South Division",
			Type:        LocationFire,
			Address:     "BTM Layout, Bangalore",
			Distance:    1.8,
			Available:   ptr(true),
			Contact:     "+91-80-2661-2345",
			Coordinates: [2]float64{77.6109, 12.9165},
			RouteTime:   ptr(20),
		},
		{
			ID:          "5",
			Name:        "Lalbagh Elevated Ground",
			Type:        LocationHighGround,
			Address:     "Lalbagh Botanical Garden",
			Distance:    2.5,
			Coordinates: [2]float64{77.5847, 12.9507},
			RouteTime:   ptr(30),
		},
	}
}

func ptr[T any](v T) *T { return &v }

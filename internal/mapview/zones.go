package mapview

import (
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/golang/geo/s2"
)

// earthRadiusKm converts s2 angles to surface distances.
const earthRadiusKm = 6371.01

// Shape distinguishes filled overlays from paths.
type Shape string

const (
	ShapeArea Shape = "area"
	ShapePath Shape = "path"
)

// Zone is one risk overlay. Coordinates are [lng, lat] pairs in drawing order.
type Zone struct {
	Layer       string          `json:"layer"`
	Name        string          `json:"name"`
	Shape       Shape           `json:"shape"`
	Risk        domain.RiskTier `json:"risk"`
	Coordinates [][2]float64    `json:"coordinates"`

	rect s2.Rect
	line *s2.Polyline
}

// Contains reports whether c lies inside an area overlay. Paths contain nothing.
func (z Zone) Contains(c domain.Coordinates) bool {
	if z.Shape != ShapeArea {
		return false
	}
	return z.rect.ContainsLatLng(s2.LatLngFromDegrees(c.Lat, c.Lng))
}

// DistanceKm is the great-circle distance from c to the overlay; zero inside an area.
func (z Zone) DistanceKm(c domain.Coordinates) float64 {
	ll := s2.LatLngFromDegrees(c.Lat, c.Lng)
	if z.Shape == ShapeArea {
		return z.rect.DistanceToLatLng(ll).Radians() * earthRadiusKm
	}
	p := s2.PointFromLatLng(ll)
	nearest, _ := z.line.Project(p)
	return p.Distance(nearest).Radians() * earthRadiusKm
}

func areaZone(layer, name string, risk domain.RiskTier, lat1, lng1, lat2, lng2 float64) Zone {
	lo := s2.LatLngFromDegrees(lat1, lng1)
	hi := s2.LatLngFromDegrees(lat2, lng2)
	return Zone{
		Layer: layer,
		Name:  name,
		Shape: ShapeArea,
		Risk:  risk,
		Coordinates: [][2]float64{
			{lng1, lat1}, {lng2, lat1}, {lng2, lat2}, {lng1, lat2},
		},
		rect: s2.RectFromLatLng(lo).AddPoint(hi),
	}
}

func pathZone(layer, name string, risk domain.RiskTier, points ...domain.Coordinates) Zone {
	lls := make([]s2.LatLng, len(points))
	coords := make([][2]float64, len(points))
	for i, p := range points {
		lls[i] = s2.LatLngFromDegrees(p.Lat, p.Lng)
		coords[i] = [2]float64{p.Lng, p.Lat}
	}
	return Zone{
		Layer:       layer,
		Name:        name,
		Shape:       ShapePath,
		Risk:        risk,
		Coordinates: coords,
		line:        s2.PolylineFromLatLngs(lls),
	}
}

var riskZones = []Zone{
	areaZone(LayerFlood, "Flood risk zone", domain.RiskHigh, 12.96, 77.58, 12.99, 77.61),
	pathZone(LayerCyclone, "Predicted cyclone path", domain.RiskModerate,
		domain.Coordinates{Lat: 12.92, Lng: 77.55},
		domain.Coordinates{Lat: 12.95, Lng: 77.58},
		domain.Coordinates{Lat: 12.98, Lng: 77.62},
	),
	areaZone(LayerLandslide, "Landslide zone", domain.RiskHigh, 12.94, 77.56, 12.97, 77.59),
}

// RiskZones returns every overlay regardless of visibility.
func RiskZones() []Zone {
	out := make([]Zone, len(riskZones))
	copy(out, riskZones)
	return out
}

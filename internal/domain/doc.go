// Package domain models the ResQWatch emergency dashboard: simulated
// environmental readings, community reports, preparedness checklists, safety
// locations, and the user's action history.
//
// # Seed Data
//
// There is no live feed behind the dashboard. Every panel starts from a fixed
// seed set (see the Seed* functions) centred on Bangalore, India, and is
// mutated only by user actions or by the metric simulator. Restarting the
// service restores the seeds.
//
// # Coordinates
//
// Two orderings appear in the data and both are kept as the map SDKs expect
// them:
//
//	Coordinates{Lat, Lng}         user fixes, history locations
//	SafeLocation.Coordinates      [lng, lat] (GeoJSON order, as Mapbox uses)
//
// Use [SafeLocation.Point] to get a Coordinates value from a safety location.
//
// # Risk Tiers
//
// Readings carry an ordinal risk tier: safe < low < moderate < high < critical.
// Report severities use a separate four-level scale (low, medium, high,
// critical) because they are entered by people, not derived from readings.
package domain

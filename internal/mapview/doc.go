// Package mapview is the service side of the dashboard map. The mapping SDK
// (Google Maps or Mapbox GL) runs in the browser; this package owns what the
// rest of the dashboard needs from it:
//
//   - overlay visibility, toggled per layer (flood, cyclone, landslide, historical)
//   - the user's location, acquired once and then watched, delivered through
//     OnLocationUpdate callbacks
//   - geolocation failures, mapped to the messages the map panel shows
//   - the risk-zone overlay geometry and point-in-zone queries
//
// Browser geolocation reaches the service through [ClientGeolocator]: the page
// posts each navigator.geolocation result and the adapter consumes them with
// the same timeout and maximum-age semantics as the browser API.
package mapview

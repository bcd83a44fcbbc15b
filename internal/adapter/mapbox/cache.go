package mapbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	lru "github.com/hashicorp/golang-lru"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Only results
// with an address are cached so a "not found" can be retried.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) (*CachedGeocoder, error) {
	cache, err := lru.New(maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics}, nil
}

// ForwardGeocode serves repeated searches from the cache. Keys are case and
// whitespace insensitive.
func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := "fwd:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
	return c.lookup(key, methodForward, func() (domain.GeocodingResult, error) {
		return c.inner.ForwardGeocode(ctx, query)
	})
}

// ReverseGeocode serves fixes within about a metre of a cached one from the cache.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.5f,%.5f", lat, lon)
	return c.lookup(key, methodReverse, func() (domain.GeocodingResult, error) {
		return c.inner.ReverseGeocode(ctx, lat, lon)
	})
}

// Len reports the number of cached results.
func (c *CachedGeocoder) Len() int {
	return c.cache.Len()
}

func (c *CachedGeocoder) lookup(key, method string, fetch func() (domain.GeocodingResult, error)) (domain.GeocodingResult, error) {
	if v, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
		return v.(domain.GeocodingResult), nil
	}
	c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()

	result, err := fetch()
	if err != nil {
		return result, err
	}
	if result.FormattedAddress != "" {
		c.cache.Add(key, result)
	}
	return result, nil
}

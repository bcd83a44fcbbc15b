package mapview

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Overlay layer names.
const (
	LayerFlood      = "flood"
	LayerCyclone    = "cyclone"
	LayerLandslide  = "landslide"
	LayerHistorical = "historical"
)

// ErrUnknownLayer is returned when toggling a layer that does not exist.
var ErrUnknownLayer = errors.New("unknown map layer")

// DefaultLayers returns the initial visibility map: only flood is shown.
func DefaultLayers() map[string]bool {
	return map[string]bool{
		LayerFlood:      true,
		LayerCyclone:    false,
		LayerLandslide:  false,
		LayerHistorical: false,
	}
}

// LayerSet is a concurrency-safe overlay visibility map.
type LayerSet struct {
	mu      sync.RWMutex
	visible map[string]bool
}

// NewLayerSet creates a LayerSet with DefaultLayers.
func NewLayerSet() *LayerSet {
	return &LayerSet{visible: DefaultLayers()}
}

// Toggle flips one layer and returns its new visibility.
func (l *LayerSet) Toggle(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visible[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	l.visible[name] = !v
	return !v, nil
}

// Visible reports whether name is shown. Unknown layers are never visible.
func (l *LayerSet) Visible(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visible[name]
}

// Snapshot returns a copy of the visibility map.
func (l *LayerSet) Snapshot() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.visible)
}

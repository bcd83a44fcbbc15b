package domain

import "time"

// HistoryType is the kind of user action recorded in the history log.
type HistoryType string

const (
	HistorySearch   HistoryType = "search"
	HistoryLocation HistoryType = "location"
	HistoryReport   HistoryType = "report"
	HistoryView     HistoryType = "view"
)

// HistoryAll is the filter value that matches every type.
const HistoryAll HistoryType = "all"

// Valid reports whether t is a concrete history type (not HistoryAll).
func (t HistoryType) Valid() bool {
	switch t {
	case HistorySearch, HistoryLocation, HistoryReport, HistoryView:
		return true
	}
	return false
}

// HistoryItem is one recorded user action.
type HistoryItem struct {
	ID        string         `json:"id"`
	Type      HistoryType    `json:"type"`
	Query     string         `json:"query"`
	Location  *NamedLocation `json:"location,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SeedHistory returns the initial history, newest first, timestamped relative to now.
func SeedHistory(now time.Time) []HistoryItem {
	return []HistoryItem{
		{
			ID:        "1",
			Type:      HistorySearch,
			Query:     "flood risk bangalore",
			Location:  &NamedLocation{Lat: 12.9716, Lng: 77.5946, Name: "Bangalore"},
			Timestamp: now.Add(-2 * time.Hour),
			Metadata:  map[string]any{"results": 12, "riskLevel": "moderate"},
		},
		{
			ID:        "2",
			Type:      HistoryLocation,
			Query:     "Nearest shelter search",
			Location:  &NamedLocation{Lat: 12.9285, Lng: 77.5946, Name: "Jayanagar"},
			Timestamp: now.Add(-4 * time.Hour),
			Metadata:  map[string]any{"shelters": 5, "nearestDistance": 0.8},
		},
		{
			ID:        "3",
			Type:      HistoryReport,
			Query:     "Road flooding report submitted",
			Location:  &NamedLocation{Lat: 12.9279, Lng: 77.5835, Name: "Krishna Temple Area"},
			Timestamp: now.Add(-6 * time.Hour),
			Metadata:  map[string]any{"severity": "high", "upvotes": 12},
		},
		{
			ID:        "4",
			Type:      HistoryView,
			Query:     "Emergency checklist viewed",
			Timestamp: now.Add(-8 * time.Hour),
			Metadata:  map[string]any{"completionRate": 75},
		},
		{
			ID:        "5",
			Type:      HistorySearch,
			Query:     "cyclone path prediction",
			Location:  &NamedLocation{Lat: 13.0827, Lng: 80.2707, Name: "Chennai"},
			Timestamp: now.Add(-24 * time.Hour),
			Metadata:  map[string]any{"results": 8, "riskLevel": "high"},
		},
	}
}

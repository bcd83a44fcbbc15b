package domain

import "time"

// ActivitySource identifies this service on published activity events.
const ActivitySource = "resqwatch-dashboard"

// ActivityEvent is a history item as published to the activity stream.
type ActivityEvent struct {
	ID         string         `json:"id"`
	Type       HistoryType    `json:"type"`
	Query      string         `json:"query"`
	Location   *NamedLocation `json:"location,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
	Source     string         `json:"source"`
}

// NewActivityEvent converts a recorded history item.
func NewActivityEvent(item HistoryItem) ActivityEvent {
	return ActivityEvent{
		ID:         item.ID,
		Type:       item.Type,
		Query:      item.Query,
		Location:   item.Location,
		Metadata:   item.Metadata,
		RecordedAt: item.Timestamp,
		Source:     ActivitySource,
	}
}

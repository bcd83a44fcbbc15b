// Package history records the user's past dashboard actions (searches,
// location fixes, submitted reports, panel views) and lets them be filtered,
// deleted, and exported.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// NoLocation stands in for a missing location name in exports.
const NoLocation = "N/A"

// exportTimeLayout is ISO-8601 in UTC with millisecond precision.
const exportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Listener is notified of every newly recorded item.
type Listener func(domain.HistoryItem)

// Log is the in-memory history, newest first.
type Log struct {
	mu        sync.RWMutex
	items     []domain.HistoryItem
	listeners []Listener

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLog creates a Log seeded with domain.SeedHistory relative to clock.Now.
func NewLog(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Log {
	return &Log{
		items:   domain.SeedHistory(clock.Now()),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Subscribe registers fn to receive every item recorded after the call.
// Listeners run synchronously and must not block.
func (l *Log) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Record prepends a new item and notifies listeners.
func (l *Log) Record(typ domain.HistoryType, query string, loc *domain.NamedLocation, metadata map[string]any) (domain.HistoryItem, error) {
	if !typ.Valid() {
		return domain.HistoryItem{}, fmt.Errorf("%w: unknown history type %q", domain.ErrValidation, typ)
	}

	item := domain.HistoryItem{
		ID:        uuid.NewString(),
		Type:      typ,
		Query:     query,
		Location:  loc,
		Timestamp: l.clock.Now(),
		Metadata:  metadata,
	}

	l.mu.Lock()
	l.items = append([]domain.HistoryItem{cloneItem(item)}, l.items...)
	listeners := append([]Listener(nil), l.listeners...)
	l.mu.Unlock()

	l.metrics.HistoryRecorded.WithLabelValues(string(typ)).Inc()
	for _, fn := range listeners {
		fn(item)
	}
	return item, nil
}

// Filter returns the items matching typ (or every type for domain.HistoryAll)
// whose query or location name contains term, case-insensitively. An empty
// term matches everything. Order is preserved.
func (l *Log) Filter(typ domain.HistoryType, term string) []domain.HistoryItem {
	needle := strings.ToLower(term)

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.HistoryItem, 0, len(l.items))
	for _, item := range l.items {
		if typ != domain.HistoryAll && item.Type != typ {
			continue
		}
		if needle != "" && !matches(item, needle) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	return out
}

// cloneItem copies the location and metadata so callers never share them
// with the log.
func cloneItem(item domain.HistoryItem) domain.HistoryItem {
	if item.Location != nil {
		loc := *item.Location
		item.Location = &loc
	}
	item.Metadata = maps.Clone(item.Metadata)
	return item
}

func matches(item domain.HistoryItem, needle string) bool {
	if strings.Contains(strings.ToLower(item.Query), needle) {
		return true
	}
	return item.Location != nil && strings.Contains(strings.ToLower(item.Location.Name), needle)
}

// Delete removes one item. It returns false if no item has the id.
func (l *Log) Delete(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.metrics.HistoryDeleted.Inc()
			l.logger.Debug("history item deleted", "item_id", id)
			return true
		}
	}
	return false
}

// Clear empties the log and returns how many items were removed.
func (l *Log) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.items)
	l.items = nil
	l.metrics.HistoryDeleted.Add(float64(n))
	l.logger.Info("history cleared", "removed", n)
	return n
}

// Len returns the number of items.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// ExportRecord is one entry of the JSON export.
type ExportRecord struct {
	Type      domain.HistoryType `json:"type"`
	Query     string             `json:"query"`
	Location  string             `json:"location"`
	Timestamp string             `json:"timestamp"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
}

// Records converts the log into export records, in log order.
func (l *Log) Records() []ExportRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ExportRecord, 0, len(l.items))
	for _, item := range l.items {
		loc := NoLocation
		if item.Location != nil && item.Location.Name != "" {
			loc = item.Location.Name
		}
		out = append(out, ExportRecord{
			Type:      item.Type,
			Query:     item.Query,
			Location:  loc,
			Timestamp: item.Timestamp.UTC().Format(exportTimeLayout),
			Metadata:  maps.Clone(item.Metadata),
		})
	}
	return out
}

// Export serialises the log as an indented JSON array.
func (l *Log) Export() ([]byte, error) {
	data, err := json.MarshalIndent(l.Records(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	return data, nil
}

// FormatTimeAgo formats the age of an item at hour granularity.
func FormatTimeAgo(now, ts time.Time) string {
	hours := int(now.Sub(ts) / time.Hour)
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case hours < 168:
		return fmt.Sprintf("%dd ago", hours/24)
	default:
		return fmt.Sprintf("%dw ago", hours/168)
	}
}

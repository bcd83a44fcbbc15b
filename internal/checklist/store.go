// Package checklist holds the preparedness checklists shown on the awareness
// panel: one fixed list per phase (before, during, after an emergency).
package checklist

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
)

// ExportBanner is the first line of the plain-text export.
const ExportBanner = "ResQWatch Emergency Checklist"

const (
	checkedGlyph   = "✓"
	uncheckedGlyph = "☐"
)

// Store owns the phase lists. Items are never added or removed; only their
// completed flag changes.
type Store struct {
	mu    sync.RWMutex
	lists map[domain.Phase][]domain.ChecklistItem

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore creates a Store seeded with domain.SeedChecklists.
func NewStore(logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		lists:   domain.SeedChecklists(),
		logger:  logger,
		metrics: metrics,
	}
}

// Toggle flips the completed flag of exactly one item and returns it.
func (s *Store) Toggle(phase domain.Phase, itemID string) (domain.ChecklistItem, error) {
	if !phase.Valid() {
		return domain.ChecklistItem{}, fmt.Errorf("phase %q: %w", phase, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[phase]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Completed = !items[i].Completed
			s.metrics.ChecklistToggles.WithLabelValues(string(phase)).Inc()
			s.logger.Debug("checklist item toggled", "phase", phase, "item_id", itemID, "completed", items[i].Completed)
			return items[i], nil
		}
	}
	return domain.ChecklistItem{}, fmt.Errorf("item %q in phase %q: %w", itemID, phase, domain.ErrNotFound)
}

// Items returns a copy of one phase list.
func (s *Store) Items(phase domain.Phase) ([]domain.ChecklistItem, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("phase %q: %w", phase, domain.ErrNotFound)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.lists[phase]), nil
}

// All returns a copy of every phase list.
func (s *Store) All() map[domain.Phase][]domain.ChecklistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Phase][]domain.ChecklistItem, len(s.lists))
	for phase, items := range s.lists {
		out[phase] = cloneItems(items)
	}
	return out
}

// Stats returns completion stats for every phase.
func (s *Store) Stats() map[domain.Phase]domain.CompletionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Phase]domain.CompletionStats, len(s.lists))
	for phase, items := range s.lists {
		out[phase] = ComputeStats(items)
	}
	return out
}

// Export renders every phase as plain text, one line per item:
//
//	ResQWatch Emergency Checklist
//
//	BEFORE: ✓ Prepare emergency kit with water (3 days supply)
//	BEFORE: ☐ Stock non-perishable food items
func (s *Store) Export() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(ExportBanner)
	b.WriteString("\n\n")

	first := true
	for _, phase := range domain.Phases {
		for _, item := range s.lists[phase] {
			if !first {
				b.WriteByte('\n')
			}
			first = false

			glyph := uncheckedGlyph
			if item.Completed {
				glyph = checkedGlyph
			}
			fmt.Fprintf(&b, "%s: %s %s", strings.ToUpper(string(phase)), glyph, item.Text)
		}
	}
	return b.String()
}

// Advisory returns the current guidance shown alongside the checklists.
func (s *Store) Advisory() domain.Advisory {
	return domain.CurrentAdvisory()
}

// ComputeStats counts completed items. An empty list yields all zeros.
func ComputeStats(items []domain.ChecklistItem) domain.CompletionStats {
	total := len(items)
	if total == 0 {
		return domain.CompletionStats{}
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return domain.CompletionStats{
		Completed:  completed,
		Total:      total,
		Percentage: int(math.Round(float64(completed) / float64(total) * 100)),
	}
}

func cloneItems(items []domain.ChecklistItem) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, len(items))
	copy(out, items)
	return out
}

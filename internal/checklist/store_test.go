package checklist_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/checklist"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *checklist.Store {
	return checklist.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestToggle_FlipsExactlyOneItem(t *testing.T) {
	store := newStore()
	before := store.All()

	item, err := store.Toggle(domain.PhaseBefore, "3")
	require.NoError(t, err)
	assert.True(t, item.Completed)

	after := store.All()
	for _, phase := range domain.Phases {
		for i := range after[phase] {
			if phase == domain.PhaseBefore && after[phase][i].ID == "3" {
				assert.NotEqual(t, before[phase][i].Completed, after[phase][i].Completed)
				continue
			}
			assert.Equal(t, before[phase][i], after[phase][i])
		}
	}
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	store := newStore()
	before := store.All()

	_, err := store.Toggle(domain.PhaseDuring, "9")
	require.NoError(t, err)
	_, err = store.Toggle(domain.PhaseDuring, "9")
	require.NoError(t, err)

	assert.Equal(t, before, store.All())
}

func TestToggle_UnknownPhaseOrItem(t *testing.T) {
	store := newStore()

	_, err := store.Toggle("someday", "1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Item ids are scoped to their phase: "1" lives in "before".
	_, err = store.Toggle(domain.PhaseAfter, "1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, domain.CompletionStats{}, checklist.ComputeStats(nil))
	assert.Equal(t, domain.CompletionStats{}, checklist.ComputeStats([]domain.ChecklistItem{}))

	items := []domain.ChecklistItem{
		{ID: "a", Completed: true},
		{ID: "b"},
		{ID: "c"},
	}
	assert.Equal(t, domain.CompletionStats{Completed: 1, Total: 3, Percentage: 33}, checklist.ComputeStats(items))

	items[1].Completed = true
	assert.Equal(t, domain.CompletionStats{Completed: 2, Total: 3, Percentage: 67}, checklist.ComputeStats(items))
}

func TestStats_PerPhase(t *testing.T) {
	store := newStore()
	_, err := store.Toggle(domain.PhaseBefore, "1")
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, domain.CompletionStats{Completed: 1, Total: 6, Percentage: 17}, stats[domain.PhaseBefore])
	assert.Equal(t, domain.CompletionStats{Completed: 0, Total: 5, Percentage: 0}, stats[domain.PhaseDuring])
	assert.Equal(t, domain.CompletionStats{Completed: 0, Total: 5, Percentage: 0}, stats[domain.PhaseAfter])
}

func TestExport_Format(t *testing.T) {
	store := newStore()
	_, err := store.Toggle(domain.PhaseBefore, "1")
	require.NoError(t, err)

	out := store.Export()
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 2+16)
	assert.Equal(t, checklist.ExportBanner, lines[0])
	assert.Empty(t, lines[1])
	assert.Equal(t, "BEFORE: ✓ Prepare emergency kit with water (3 days supply)", lines[2])
	assert.Equal(t, "BEFORE: ☐ Stock non-perishable food items", lines[3])
	assert.Equal(t, "DURING: ☐ Stay indoors unless evacuation is necessary", lines[8])
	assert.Equal(t, "AFTER: ☐ Help neighbors and community if safe", lines[17])
}

func TestItems_UnknownPhase(t *testing.T) {
	store := newStore()
	_, err := store.Items("later")
	require.ErrorIs(t, err, domain.ErrNotFound)

	items, err := store.Items(domain.PhaseAfter)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestAdvisory(t *testing.T) {
	adv := newStore().Advisory()
	assert.Equal(t, domain.RiskModerate, adv.Level)
	assert.Equal(t, "Heavy Rainfall Alert", adv.Title)
	assert.Len(t, adv.Actions, 4)
}

// Package reports holds the community reports panel: user-submitted
// observations that others can upvote. Reports are never edited or deleted.
package reports

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultLocation is used when the submitter's position is unknown.
	DefaultLocation = "Current Location"
	// SelfReporter labels reports submitted through this dashboard.
	SelfReporter = "You"
)

// Submission is the user-entered part of a new report.
type Submission struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Location    string          `json:"location,omitempty"`
}

// Store is the in-memory report list, newest first.
type Store struct {
	mu      sync.RWMutex
	reports []domain.Report

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore creates a Store seeded with domain.SeedReports relative to clock.Now.
func NewStore(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		reports: domain.SeedReports(clock.Now()),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Submit validates s and prepends a new report. On validation failure the
// store is unchanged and the returned error wraps domain.ErrValidation.
func (st *Store) Submit(s Submission) (domain.Report, error) {
	if err := validate(&s); err != nil {
		st.metrics.ReportValidationFailures.Inc()
		st.logger.Debug("report rejected", "error", err)
		return domain.Report{}, err
	}

	r := domain.Report{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(s.Title),
		Description: strings.TrimSpace(s.Description),
		Severity:    s.Severity,
		Location:    s.Location,
		Timestamp:   st.clock.Now(),
		Reporter:    SelfReporter,
	}

	st.mu.Lock()
	st.reports = append([]domain.Report{r}, st.reports...)
	st.mu.Unlock()

	st.metrics.ReportsSubmitted.Inc()
	st.logger.Info("report submitted", "report_id", r.ID, "severity", r.Severity)
	return r, nil
}

// Upvote increments the upvote count of the report with the given id.
// It returns false, leaving the store unchanged, if no report matches.
func (st *Store) Upvote(id string) (domain.Report, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := range st.reports {
		if st.reports[i].ID == id {
			st.reports[i].Upvotes++
			st.metrics.ReportUpvotes.Inc()
			return st.reports[i], true
		}
	}
	return domain.Report{}, false
}

// List returns a copy of all reports, newest first.
func (st *Store) List() []domain.Report {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]domain.Report, len(st.reports))
	copy(out, st.reports)
	return out
}

func validate(s *Submission) error {
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("%w: please fill in all required fields", domain.ErrValidation)
	}
	if s.Severity == "" {
		s.Severity = domain.SeverityMedium
	}
	if !s.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, s.Severity)
	}
	if strings.TrimSpace(s.Location) == "" {
		s.Location = DefaultLocation
	}
	return nil
}

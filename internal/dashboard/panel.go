package dashboard

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
)

// ErrUnknownPanel is returned when selecting a panel that does not exist.
var ErrUnknownPanel = errors.New("unknown panel")

// PanelKind selects the side panel.
type PanelKind string

const (
	PanelReports   PanelKind = "reports"
	PanelSafety    PanelKind = "safety"
	PanelAwareness PanelKind = "awareness"
)

// Title is the panel heading.
func (k PanelKind) Title() string {
	switch k {
	case PanelReports:
		return "Community Reports"
	case PanelSafety:
		return "Safety Areas"
	case PanelAwareness:
		return "Emergency Awareness"
	}
	return ""
}

// ParsePanelKind validates s.
func ParsePanelKind(s string) (PanelKind, error) {
	switch k := PanelKind(s); k {
	case PanelReports, PanelSafety, PanelAwareness:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
}

// Panel is the content of the active side panel. Exactly one variant is
// active at a time: *ReportsPanel, *SafetyPanel or *AwarenessPanel.
type Panel interface {
	Kind() PanelKind
	isPanel()
}

// ReportView is a report with its relative age rendered.
type ReportView struct {
	domain.Report
	TimeAgo string `json:"timeAgo"`
}

// ReportsPanel lists community reports, newest first.
type ReportsPanel struct {
	Reports []ReportView `json:"reports"`
}

// SafetyPanel is the safety-location finder.
type SafetyPanel struct {
	SafetyView
}

// AwarenessPanel shows live metrics, the advisory and the checklists.
type AwarenessPanel struct {
	Readings   []domain.MetricReading                  `json:"readings"`
	Risk       domain.RiskAssessment                   `json:"risk"`
	Advisory   domain.Advisory                         `json:"advisory"`
	Checklists map[domain.Phase][]domain.ChecklistItem `json:"checklists"`
	Stats      map[domain.Phase]domain.CompletionStats `json:"stats"`
}

func (*ReportsPanel) Kind() PanelKind { return PanelReports }
func (*SafetyPanel) Kind() PanelKind { return PanelSafety }
func (*AwarenessPanel) Kind() PanelKind { return PanelAwareness }

func (*ReportsPanel) isPanel() {}
func (*SafetyPanel) isPanel() {}
func (*AwarenessPanel) isPanel() {}

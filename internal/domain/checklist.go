package domain

// Phase groups checklist items by when they apply relative to an emergency.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseDuring Phase = "during"
	PhaseAfter  Phase = "after"
)

// Phases lists every phase in display and export order.
var Phases = []Phase{PhaseBefore, PhaseDuring, PhaseAfter}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseBefore, PhaseDuring, PhaseAfter:
		return true
	}
	return false
}

// Priority ranks checklist items.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ChecklistItem is one preparedness task.
type ChecklistItem struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
}

// CompletionStats summarises a phase list.
type CompletionStats struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Advisory is the current guidance shown on the awareness panel.
type Advisory struct {
	Level   RiskTier `json:"level"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []string `json:"actions"`
}

// CurrentAdvisory returns the fixed advisory.
func CurrentAdvisory() Advisory {
	return Advisory{
		Level:   RiskModerate,
		Title:   "Heavy Rainfall Alert",
		Message: "Moderate to heavy rainfall expected in the next 6-12 hours. Stay indoors and avoid unnecessary travel.",
		Actions: []string{
			"Keep emergency kit ready",
			"Monitor weather updates",
			"Avoid low-lying areas",
			"Charge electronic devices",
		},
	}
}

// SeedChecklists returns the initial phase lists, all items incomplete.
func SeedChecklists() map[Phase][]ChecklistItem {
	return map[Phase][]ChecklistItem{
		PhaseBefore: {
			{ID: "1", Text: "Prepare emergency kit with water (3 days supply)", Priority: PriorityHigh},
			{ID: "2", Text: "Stock non-perishable food items", Priority: PriorityHigh},
			{ID: "3", Text: "Charge all electronic devices", Priority: PriorityMedium},
			{ID: "4", Text: "Keep important documents in waterproof bag", Priority: PriorityHigh},
			{ID: "5", Text: "Identify evacuation routes", Priority: PriorityHigh},
			{ID: "6", Text: "Check emergency radio batteries", Priority: PriorityMedium},
		},
		PhaseDuring: {
			{ID: "7", Text: "Stay indoors unless evacuation is necessary", Priority: PriorityHigh},
			{ID: "8", Text: "Monitor official weather updates", Priority: PriorityHigh},
			{ID: "9", Text: "Avoid flooded roads and areas", Priority: PriorityHigh},
			{ID: "10", Text: "Keep phone charged for emergencies", Priority: PriorityMedium},
			{ID: "11", Text: "Stay away from electrical equipment if wet", Priority: PriorityHigh},
		},
		PhaseAfter: {
			{ID: "12", Text: "Check for injuries and provide first aid", Priority: PriorityHigh},
			{ID: "13", Text: "Inspect property for structural damage", Priority: PriorityMedium},
			{ID: "14", Text: "Document damage with photos", Priority: PriorityMedium},
			{ID: "15", Text: "Contact insurance company if needed", Priority: PriorityLow},
			{ID: "16", Text: "Help neighbors and community if safe", Priority: PriorityLow},
		},
	}
}

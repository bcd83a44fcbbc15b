package domain

import "time"

// Severity is the reporter-assigned urgency of a community report.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Report is a community-submitted observation.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Upvotes     int       `json:"upvotes"`
	Verified    bool      `json:"verified"`
	Reporter    string    `json:"reporter"`
}

// SeedReports returns the initial reports, newest first, timestamped relative to now.
func SeedReports(now time.Time) []Report {
	return []Report{
		{
			ID:          "1",
			Title:       "Road flooding near Krishna Temple",
			Description: "Water level reached knee-high, vehicles unable to pass. Local traffic diverted.",
			Severity:    SeverityHigh,
			Location:    "Jayanagar, Bangalore",
			Timestamp:   now.Add(-30 * time.Minute),
			Upvotes:     12,
			Verified:    true,
			Reporter:    "Local Resident",
		},
		{
			ID:          "2",
			Title:       "Fallen tree blocking main road",
			Description: "Large tree fell due to strong winds. Emergency services notified.",
			Severity:    SeverityMedium,
			Location:    "MG Road, Bangalore",
			Timestamp:   now.Add(-45 * time.Minute),
			Upvotes:     8,
			Reporter:    "Commuter",
		},
		{
			ID:          "3",
			Title:       "Power outage in residential area",
			Description: "Entire block without electricity since 2 hours. Backup generators running.",
			Severity:    SeverityMedium,
			Location:    "Koramangala, Bangalore",
			Timestamp:   now.Add(-2 * time.Hour),
			Upvotes:     15,
			Verified:    true,
			Reporter:    "BESCOM Official",
		},
	}
}

package domain

// RiskTier is the ordinal severity of an environmental condition.
type RiskTier string

const (
	RiskSafe     RiskTier = "safe"
	RiskLow      RiskTier = "low"
	RiskModerate RiskTier = "moderate"
	RiskHigh     RiskTier = "high"
	RiskCritical RiskTier = "critical"
)

// Valid reports whether t is one of the five known tiers.
func (t RiskTier) Valid() bool {
	switch t {
	case RiskSafe, RiskLow, RiskModerate, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Trend is the recent direction of a reading.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Confidence bounds applied after every simulated update.
const (
	MinConfidence = 50
	MaxConfidence = 99
)

// MetricReading is one live environmental reading shown on the metrics panel.
// Value is kept as a decimal string so the display precision survives JSON.
type MetricReading struct {
	Label      string   `json:"label"`
	Value      string   `json:"value"`
	Unit       string   `json:"unit"`
	Risk       RiskTier `json:"risk"`
	Trend      Trend    `json:"trend"`
	Confidence float64  `json:"confidence"`
}

// RiskAssessment is the headline risk shown above the readings.
type RiskAssessment struct {
	Level   RiskTier `json:"level"`
	Score   int      `json:"score"`
	Message string   `json:"message"`
}

// CurrentRisk is a fixed assessment. It is deliberately not derived from the
// readings; no derivation formula has been agreed.
var CurrentRisk = RiskAssessment{
	Level:   RiskModerate,
	Score:   65,
	Message: "Moderate flood risk in next 6 hours",
}

// SeedReadings returns the initial readings.
func SeedReadings() []MetricReading {
	return []MetricReading{
		{Label: "Rainfall Intensity", Value: "15.2", Unit: "mm/hr", Risk: RiskModerate, Trend: TrendUp, Confidence: 87},
		{Label: "Wind Speed", Value: "42", Unit: "km/h", Risk: RiskLow, Trend: TrendStable, Confidence: 92},
		{Label: "River Level", Value: "2.8", Unit: "m", Risk: RiskHigh, Trend: TrendUp, Confidence: 78},
		{Label: "Soil Moisture", Value: "68", Unit: "%", Risk: RiskModerate, Trend: TrendUp, Confidence: 65},
	}
}

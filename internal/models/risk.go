package models

import "errors"

// RiskLabel grades how asymmetric an outcome's payoff is.
type RiskLabel string

const (
	RiskLow    RiskLabel = "low"
	RiskMedium RiskLabel = "medium"
	RiskHigh   RiskLabel = "high"
)

// Rank orders labels low < medium < high. Unrecognized labels rank below low.
func (r RiskLabel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// ParseRiskLabel maps a config string onto a RiskLabel.
func ParseRiskLabel(s string) (RiskLabel, error) {
	switch RiskLabel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLabel(s), nil
	}
	return "", errors.New("risk label must be one of: low, medium, high")
}

// TimeRisk grades how long capital stays exposed before resolution.
type TimeRisk string

const (
	TimeRiskLow     TimeRisk = "low"
	TimeRiskMedium  TimeRisk = "medium"
	TimeRiskHigh    TimeRisk = "high"
	TimeRiskUnknown TimeRisk = "unknown"
)

// OutcomeRecord is one parsed (label, probability) pair.
type OutcomeRecord struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// RiskProfile holds the per-outcome payoff metrics for a unit stake.
type RiskProfile struct {
	Probability   float64   `json:"probability"`
	MaxGain       float64   `json:"max_gain_per_1"`
	MaxLoss       float64   `json:"max_loss_per_1"`
	WipeoutFactor float64   `json:"wipeout_factor"`
	RiskLabel     RiskLabel `json:"risk_label"`
	TimeRisk      TimeRisk  `json:"time_risk"`
	DaysLeft      *float64  `json:"days_left"`
}

// LabeledProfile pairs an outcome label with its profile. Slices of these
// preserve outcome order, which is the selector's iteration order.
type LabeledProfile struct {
	Label   string      `json:"label"`
	Profile RiskProfile `json:"profile"`
}

// SteamrollerVerdict is the terminal output of the risk engine.
type SteamrollerVerdict struct {
	Side        *string   `json:"steamroller_side"`
	OverallRisk RiskLabel `json:"overall_risk"`
	Score       float64   `json:"score"`
	Message     string    `json:"human_message"`
}

// SideName returns the chosen side, or "" when no outcome qualified.
func (v *SteamrollerVerdict) SideName() string {
	if v.Side == nil {
		return ""
	}
	return *v.Side
}

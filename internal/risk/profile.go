// Package risk derives per-outcome payoff metrics and picks the "steamroller"
// side of a market: the outcome offering a small, frequent gain against a
// rare but large loss.
package risk

import (
	"math"
	"time"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

// probEpsilon clamps probabilities away from 0 and 1 so the wipeout ratio stays finite.
const probEpsilon = 1e-4

// highWipeout is the loss/gain ratio at which a likely outcome counts as high risk.
const highWipeout = 10.0

// Compute builds the risk profile for one outcome probability. deadline may be nil.
//
// Days left are measured between wall-clock readings with the zone offsets
// dropped, not as elapsed time. A deadline written as 17:00-05:00 and a now of
// 17:00Z are treated as the same instant.
func Compute(probability float64, now time.Time, deadline *time.Time) models.RiskProfile {
	p := math.Max(probEpsilon, math.Min(1.0-probEpsilon, probability))

	maxGain := 1.0 - p
	maxLoss := p
	wipeout := maxLoss / maxGain

	var label models.RiskLabel
	switch {
	case p < 0.75:
		label = models.RiskLow
	case p < 0.9:
		label = models.RiskMedium
	case wipeout >= highWipeout:
		label = models.RiskHigh
	default:
		label = models.RiskMedium
	}

	profile := models.RiskProfile{
		Probability:   p,
		MaxGain:       maxGain,
		MaxLoss:       maxLoss,
		WipeoutFactor: wipeout,
		RiskLabel:     label,
		TimeRisk:      models.TimeRiskUnknown,
	}
	if deadline == nil {
		return profile
	}

	days := DaysLeft(now, *deadline)
	profile.DaysLeft = &days

	switch {
	case days == 0:
		profile.TimeRisk = models.TimeRiskLow
	case p > 0.9 && days > 7:
		profile.TimeRisk = models.TimeRiskHigh
	case p > 0.85 && days > 3:
		profile.TimeRisk = models.TimeRiskMedium
	default:
		profile.TimeRisk = models.TimeRiskLow
	}
	return profile
}

// DaysLeft returns the fractional days from now until deadline, floored at zero,
// comparing the two wall clocks with zone offsets stripped.
func DaysLeft(now, deadline time.Time) float64 {
	delta := wallClock(deadline).Sub(wallClock(now)).Hours() / 24.0
	if delta < 0 {
		return 0
	}
	return delta
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

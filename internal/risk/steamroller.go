package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

const (
	minSteamrollerProb    = 0.9
	minSteamrollerWipeout = 10.0
)

// NoSteamrollerMessage is the explanation used when no outcome qualifies.
const NoSteamrollerMessage = "No clear steamroller pattern: no side looks like 'tiny upside vs huge downside'."

// Select picks the highest-scoring steamroller candidate from profiles, which
// are visited in slice order. An outcome qualifies when its probability is at
// least 0.9 and its wipeout factor at least 10. Score is wipeout × probability,
// boosted 1.3× for high time risk and 1.1× for medium. On equal scores the
// earlier outcome wins.
func Select(profiles []models.LabeledProfile) models.SteamrollerVerdict {
	best := -1
	bestScore := -1.0

	for i, lp := range profiles {
		m := lp.Profile
		if m.Probability < minSteamrollerProb || m.WipeoutFactor < minSteamrollerWipeout {
			continue
		}

		score := m.WipeoutFactor * m.Probability
		switch m.TimeRisk {
		case models.TimeRiskHigh:
			score *= 1.3
		case models.TimeRiskMedium:
			score *= 1.1
		}

		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 {
		return models.SteamrollerVerdict{
			OverallRisk: models.RiskLow,
			Message:     NoSteamrollerMessage,
		}
	}

	side := profiles[best].Label
	return models.SteamrollerVerdict{
		Side:        &side,
		OverallRisk: band(bestScore),
		Score:       bestScore,
		Message:     explain(side, profiles[best].Profile),
	}
}

// SelectMap runs Select over a label-keyed map, visiting labels in sorted order
// so equal scores resolve the same way on every run.
func SelectMap(profiles map[string]models.RiskProfile) models.SteamrollerVerdict {
	labels := make([]string, 0, len(profiles))
	for label := range profiles {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	ordered := make([]models.LabeledProfile, 0, len(labels))
	for _, label := range labels {
		ordered = append(ordered, models.LabeledProfile{Label: label, Profile: profiles[label]})
	}
	return Select(ordered)
}

func band(score float64) models.RiskLabel {
	switch {
	case score > 30:
		return models.RiskHigh
	case score > 15:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func explain(side string, m models.RiskProfile) string {
	parts := []string{
		fmt.Sprintf("%s looks like a steamroller trade.", side),
		fmt.Sprintf("Current implied probability is about %.1f%%.", m.Probability*100),
	}
	if wipes := int(math.Floor(m.WipeoutFactor)); wipes > 1 {
		parts = append(parts, fmt.Sprintf("At this price, one loss wipes roughly %d average wins.", wipes))
	}
	if m.DaysLeft != nil {
		parts = append(parts, fmt.Sprintf("There are about %.1f days left until resolution.", *m.DaysLeft))
	}
	return strings.Join(parts, " ")
}

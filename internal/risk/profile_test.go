package risk

import (
	"math"
	"testing"
	"time"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeGainPlusLossIsOne(t *testing.T) {
	now := time.Now()
	for p := 0.0001; p < 1.0; p += 0.0137 {
		m := Compute(p, now, nil)
		if math.Abs(m.MaxGain+m.MaxLoss-1.0) > 1e-12 {
			t.Errorf("p=%f: max gain %f + max loss %f != 1", p, m.MaxGain, m.MaxLoss)
		}
		if m.Probability <= 0 || m.Probability >= 1 {
			t.Errorf("p=%f: probability %f not strictly inside (0, 1)", p, m.Probability)
		}
		if m.DaysLeft != nil || m.TimeRisk != models.TimeRiskUnknown {
			t.Errorf("p=%f: expected unknown time risk without deadline", p)
		}
	}
}

func TestComputeRiskLabel(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    float64
		want models.RiskLabel
	}{
		{"coin flip", 0.5, models.RiskLow},
		{"just below medium", 0.7499, models.RiskLow},
		{"medium floor", 0.75, models.RiskMedium},
		{"upper medium", 0.89, models.RiskMedium},
		{"ninety percent has wipeout below ten", 0.9, models.RiskMedium},
		{"heavy favourite", 0.95, models.RiskHigh},
		{"near certainty", 0.999, models.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.p, now, nil)
			if got.RiskLabel != tt.want {
				t.Errorf("Compute(%f).RiskLabel = %s, want %s (wipeout %f)", tt.p, got.RiskLabel, tt.want, got.WipeoutFactor)
			}
		})
	}
}

func TestComputeNoDeadline(t *testing.T) {
	m := Compute(0.95, time.Now(), nil)
	if m.RiskLabel != models.RiskHigh {
		t.Errorf("Expected high risk, got %s", m.RiskLabel)
	}
	if math.Abs(m.WipeoutFactor-19) > 1e-6 {
		t.Errorf("Expected wipeout factor 19, got %f", m.WipeoutFactor)
	}
	if m.TimeRisk != models.TimeRiskUnknown {
		t.Errorf("Expected unknown time risk, got %s", m.TimeRisk)
	}
	if m.DaysLeft != nil {
		t.Errorf("Expected no days left, got %f", *m.DaysLeft)
	}
}

func TestComputeClampsProbability(t *testing.T) {
	now := time.Now()

	hi := Compute(1.0, now, nil)
	if hi.Probability != 1.0-probEpsilon {
		t.Errorf("Expected clamp to %f, got %f", 1.0-probEpsilon, hi.Probability)
	}
	if math.IsInf(hi.WipeoutFactor, 0) || math.IsNaN(hi.WipeoutFactor) {
		t.Errorf("Expected finite wipeout factor, got %f", hi.WipeoutFactor)
	}

	lo := Compute(0.0, now, nil)
	if lo.Probability != probEpsilon {
		t.Errorf("Expected clamp to %f, got %f", probEpsilon, lo.Probability)
	}

	neg := Compute(-3, now, nil)
	if neg.Probability != probEpsilon {
		t.Errorf("Expected negative input clamped to %f, got %f", probEpsilon, neg.Probability)
	}
}

func TestComputeTimeRisk(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		p        float64
		deadline time.Time
		want     models.TimeRisk
		wantDays float64
	}{
		{"long-dated favourite", 0.96, now.Add(10 * 24 * time.Hour), models.TimeRiskHigh, 10},
		{"favourite within a week", 0.96, now.Add(5 * 24 * time.Hour), models.TimeRiskMedium, 5},
		{"favourite within three days", 0.96, now.Add(2 * 24 * time.Hour), models.TimeRiskLow, 2},
		{"medium probability long-dated", 0.87, now.Add(30 * 24 * time.Hour), models.TimeRiskMedium, 30},
		{"low probability long-dated", 0.6, now.Add(30 * 24 * time.Hour), models.TimeRiskLow, 30},
		{"deadline passed", 0.96, now.Add(-48 * time.Hour), models.TimeRiskLow, 0},
		{"deadline is now", 0.96, now, models.TimeRiskLow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.p, now, timePtr(tt.deadline))
			if got.TimeRisk != tt.want {
				t.Errorf("TimeRisk = %s, want %s", got.TimeRisk, tt.want)
			}
			if got.DaysLeft == nil {
				t.Fatal("Expected days left to be set")
			}
			if math.Abs(*got.DaysLeft-tt.wantDays) > 1e-9 {
				t.Errorf("DaysLeft = %f, want %f", *got.DaysLeft, tt.wantDays)
			}
		})
	}
}

func TestDaysLeftIgnoresZoneOffsets(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	est := time.FixedZone("EST", -5*3600)
	deadline := time.Date(2025, 10, 21, 12, 0, 0, 0, est)

	got := DaysLeft(now, deadline)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("DaysLeft = %f, want 1.0 (wall-clock difference)", got)
	}

	elapsed := deadline.Sub(now).Hours() / 24
	if math.Abs(elapsed-got) < 1e-9 {
		t.Errorf("Expected wall-clock days to differ from elapsed days")
	}
}

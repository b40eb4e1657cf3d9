package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rewired-gh/polysteamroller/internal/models"
	"github.com/rewired-gh/polysteamroller/internal/outcomes"
)

// Report is the full result of one analysis.
type Report struct {
	RequestID   string                    `json:"request_id"`
	Query       string                    `json:"query"`
	Intent      string                    `json:"intent"`
	EventID     string                    `json:"event_id"`
	Slug        string                    `json:"slug,omitempty"`
	Title       string                    `json:"title"`
	Status      models.EventStatus        `json:"status"`
	Volume      *float64                  `json:"volume"`
	VolumeText  string                    `json:"volume_text"`
	MarketTitle string                    `json:"market_title"`
	EndTime     *time.Time                `json:"end_time"`
	DaysLeft    *float64                  `json:"days_left"`
	Outcomes    []models.LabeledProfile   `json:"outcomes"`
	Verdict     models.SteamrollerVerdict `json:"steamroller_summary"`
	Markets     []MarketSummary           `json:"markets"`
	AnalyzedAt  time.Time                 `json:"analyzed_at"`
}

// MarketSummary is a compact view of one market in the event.
type MarketSummary struct {
	Question   string                 `json:"question"`
	Status     models.EventStatus     `json:"status"`
	VolumeText string                 `json:"volume_text"`
	Outcomes   []models.OutcomeRecord `json:"outcomes"`
}

// summarize lists up to MaxMarkets markets, open ones first when configured.
func (a *Analyzer) summarize(ev *models.MarketEvent) []MarketSummary {
	ordered := make([]*models.MarketQuestion, 0, len(ev.Questions))
	if a.cfg.PreferOpenMarkets {
		for i := range ev.Questions {
			if !ev.Questions[i].Closed {
				ordered = append(ordered, &ev.Questions[i])
			}
		}
		for i := range ev.Questions {
			if ev.Questions[i].Closed {
				ordered = append(ordered, &ev.Questions[i])
			}
		}
	} else {
		for i := range ev.Questions {
			ordered = append(ordered, &ev.Questions[i])
		}
	}
	if len(ordered) > a.cfg.MaxMarkets {
		ordered = ordered[:a.cfg.MaxMarkets]
	}

	out := make([]MarketSummary, 0, len(ordered))
	for _, q := range ordered {
		status := models.StatusOpen
		if q.Closed {
			status = models.StatusClosed
		}
		text := q.Question
		if text == "" {
			text = "<no question>"
		}
		out = append(out, MarketSummary{
			Question:   text,
			Status:     status,
			VolumeText: FormatUSD(q.Volume),
			Outcomes:   outcomes.Parse(*q),
		})
	}
	return out
}

// FormatUSD renders a USDC amount: whole dollars with separators from $1,000
// up, cents below, "N/A" when absent.
func FormatUSD(v *float64) string {
	if v == nil {
		return "N/A"
	}
	f := *v
	if math.Abs(f) >= 1000 {
		return "$" + humanize.Commaf(math.Round(f))
	}
	return fmt.Sprintf("$%.2f", f)
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rewired-gh/polysteamroller/internal/analyzer"
)

// render writes a plain-text report.
func render(w io.Writer, r *analyzer.Report) {
	fmt.Fprintf(w, "Event: %s (id %s", r.Title, r.EventID)
	if r.Slug != "" {
		fmt.Fprintf(w, ", slug %s", r.Slug)
	}
	fmt.Fprintf(w, ")\n")
	fmt.Fprintf(w, "Status: %s  Volume: %s\n", r.Status, r.VolumeText)

	if r.MarketTitle != "" {
		fmt.Fprintf(w, "Market: %s\n", r.MarketTitle)
	}
	if r.EndTime != nil {
		fmt.Fprintf(w, "Ends: %s", r.EndTime.Format("2006-01-02 15:04 MST"))
		if r.DaysLeft != nil {
			fmt.Fprintf(w, " (%.1f days left)", *r.DaysLeft)
		}
		fmt.Fprintln(w)
	}

	if len(r.Outcomes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-20s %8s %8s %8s %8s  %-6s %-7s\n", "OUTCOME", "PROB", "GAIN", "LOSS", "WIPEOUT", "RISK", "TIME")
		for _, o := range r.Outcomes {
			p := o.Profile
			fmt.Fprintf(w, "%-20s %7.1f%% %8.4f %8.4f %7.1fx  %-6s %-7s\n",
				truncate(o.Label, 20), p.Probability*100, p.MaxGain, p.MaxLoss, p.WipeoutFactor, p.RiskLabel, p.TimeRisk)
		}
	}

	fmt.Fprintln(w)
	v := r.Verdict
	if side := v.SideName(); side != "" {
		fmt.Fprintf(w, "Steamroller: %s  Risk: %s  Score: %.2f\n", side, strings.ToUpper(string(v.OverallRisk)), v.Score)
	} else {
		fmt.Fprintf(w, "Steamroller: none  Risk: %s\n", strings.ToUpper(string(v.OverallRisk)))
	}
	fmt.Fprintln(w, v.Message)

	if len(r.Markets) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Markets:")
		for _, m := range r.Markets {
			fmt.Fprintf(w, "  - [%s] %s (volume %s)\n", m.Status, m.Question, m.VolumeText)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Package analyzer is the in-process entry point: it resolves a raw user query
// to an event and produces the steamroller verdict for its focus market.
package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/models"
	"github.com/rewired-gh/polysteamroller/internal/outcomes"
	"github.com/rewired-gh/polysteamroller/internal/query"
	"github.com/rewired-gh/polysteamroller/internal/resolver"
	"github.com/rewired-gh/polysteamroller/internal/risk"
)

// Resolver resolves a classified query to one event.
type Resolver interface {
	Resolve(ctx context.Context, intent query.Intent) (*models.MarketEvent, error)
}

// Recorder receives per-request outcomes, typically the metrics collector.
type Recorder interface {
	ObserveResolution(result string)
	ObserveVerdict(overallRisk string, hasSide bool)
}

// Config controls report shaping.
type Config struct {
	MaxMarkets        int
	PreferOpenMarkets bool
}

// Analyzer runs the classify → resolve → parse → score → select pipeline.
// It keeps no per-request state and is safe for concurrent use.
type Analyzer struct {
	resolver Resolver
	cfg      Config
	recorder Recorder
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRecorder attaches a recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an Analyzer.
func New(r Resolver, cfg Config, opts ...Option) *Analyzer {
	if cfg.MaxMarkets < 1 {
		cfg.MaxMarkets = 3
	}
	a := &Analyzer{
		resolver: r,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeEvent resolves raw and scores the event's focus market. Only
// resolution can fail; missing or malformed market data degrades to the
// neutral verdict.
func (a *Analyzer) AnalyzeEvent(ctx context.Context, raw string) (*Report, error) {
	requestID := uuid.New().String()
	intent := query.Classify(raw)
	log := logger.With(map[string]interface{}{"request_id": requestID, "intent": intent.Kind.String()})

	ev, err := a.resolver.Resolve(ctx, intent)
	if err != nil {
		a.observeResolution(err)
		log.WithError(err).Warn("event resolution failed")
		return nil, err
	}
	a.observeResolution(nil)

	now := a.now()
	report := &Report{
		RequestID:  requestID,
		Query:      raw,
		Intent:     intent.Kind.String(),
		EventID:    ev.ID,
		Slug:       ev.Slug,
		Title:      ev.Title,
		Status:     ev.Status,
		Volume:     ev.Volume,
		VolumeText: FormatUSD(ev.Volume),
		AnalyzedAt: now,
		Markets:    a.summarize(ev),
	}

	focus := focusQuestion(ev)
	if focus == nil {
		report.Outcomes = []models.LabeledProfile{}
		report.Verdict = risk.Select(nil)
		a.observeVerdict(report.Verdict)
		log.Info("event has no markets, returning neutral verdict")
		return report, nil
	}

	deadline := focus.EndDate
	if deadline == nil {
		deadline = ev.EndDate
	}
	report.MarketTitle = focus.Question
	if report.MarketTitle == "" {
		report.MarketTitle = ev.Title
	}
	report.EndTime = deadline
	if deadline != nil {
		days := risk.DaysLeft(now, *deadline)
		report.DaysLeft = &days
	}

	report.Outcomes = profiles(outcomes.Parse(*focus), now, deadline)
	report.Verdict = risk.Select(report.Outcomes)
	a.observeVerdict(report.Verdict)

	log.WithField("event_id", ev.ID).
		WithField("overall_risk", report.Verdict.OverallRisk).
		WithField("side", report.Verdict.SideName()).
		Info("event analyzed")
	return report, nil
}

// focusQuestion picks the first open question, else the first question.
func focusQuestion(ev *models.MarketEvent) *models.MarketQuestion {
	if len(ev.Questions) == 0 {
		return nil
	}
	for i := range ev.Questions {
		if ev.Questions[i].IsOpen() {
			return &ev.Questions[i]
		}
	}
	return &ev.Questions[0]
}

// profiles scores each outcome once. A repeated label keeps its first
// position and takes the later profile.
func profiles(records []models.OutcomeRecord, now time.Time, deadline *time.Time) []models.LabeledProfile {
	out := make([]models.LabeledProfile, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		p := risk.Compute(rec.Probability, now, deadline)
		if i, seen := index[rec.Label]; seen {
			out[i].Profile = p
			continue
		}
		index[rec.Label] = len(out)
		out = append(out, models.LabeledProfile{Label: rec.Label, Profile: p})
	}
	return out
}

func (a *Analyzer) observeResolution(err error) {
	if a.recorder == nil {
		return
	}
	if err == nil {
		a.recorder.ObserveResolution("resolved")
		return
	}
	var resErr *resolver.ResolutionError
	if errors.As(err, &resErr) {
		a.recorder.ObserveResolution(resErr.Kind.String())
		return
	}
	a.recorder.ObserveResolution("cancelled")
}

func (a *Analyzer) observeVerdict(v models.SteamrollerVerdict) {
	if a.recorder != nil {
		a.recorder.ObserveVerdict(string(v.OverallRisk), v.Side != nil)
	}
}

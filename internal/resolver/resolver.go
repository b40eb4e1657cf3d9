// Package resolver turns a classified query into exactly one event record,
// walking a short ordered list of lookup strategies per intent and stopping
// at the first hit.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/models"
	"github.com/rewired-gh/polysteamroller/internal/query"
)

// Provider is the market data source consumed by the resolver.
type Provider interface {
	FetchBySlug(ctx context.Context, slug string) (*models.MarketEvent, error)
	FetchByID(ctx context.Context, id string) (*models.MarketEvent, error)
	Search(ctx context.Context, query string) ([]models.MarketEvent, error)
}

// Observer receives one call per attempted tier. ok reports whether the tier produced an event.
type Observer interface {
	ObserveTier(intent, strategy string, ok bool)
}

// strategy is one lookup tier: a provider call plus its success criterion.
type strategy struct {
	name string
	run  func(ctx context.Context, p Provider, value string) (*models.MarketEvent, error)
}

var (
	bySlug = strategy{name: "slug", run: func(ctx context.Context, p Provider, v string) (*models.MarketEvent, error) {
		return identified(p.FetchBySlug(ctx, v))
	}}
	byID = strategy{name: "id", run: func(ctx context.Context, p Provider, v string) (*models.MarketEvent, error) {
		return identified(p.FetchByID(ctx, v))
	}}
	bySearch = strategy{name: "search", run: func(ctx context.Context, p Provider, v string) (*models.MarketEvent, error) {
		events, err := p.Search(ctx, v)
		if err != nil || len(events) == 0 {
			return nil, err
		}
		return identified(&events[0], nil)
	}}
)

// identified treats a record without an id as absent and an inconsistent
// record as a malformed response.
func identified(ev *models.MarketEvent, err error) (*models.MarketEvent, error) {
	if err != nil || ev == nil || ev.ID == "" {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("event %s: %w: %w", ev.ID, models.ErrMalformedResponse, err)
	}
	return ev, nil
}

type step struct {
	strategy
	value string
}

// plan lists the tiers for an intent, in the order they are tried.
func plan(intent query.Intent) []step {
	switch intent.Kind {
	case query.KindURL:
		var steps []step
		if slug := query.SlugFromURL(intent.Value); slug != "" {
			steps = append(steps, step{bySlug, slug})
		}
		return append(steps, step{bySearch, intent.Value})
	case query.KindID:
		return []step{{byID, intent.Value}, {bySearch, intent.Value}}
	case query.KindSlug:
		return []step{{bySlug, intent.Value}, {bySearch, intent.Value}}
	default:
		if intent.Value == "" {
			return nil
		}
		return []step{{bySearch, intent.Value}}
	}
}

// Resolver orchestrates provider calls for one intent at a time. It holds no
// per-request state and is safe for concurrent use.
type Resolver struct {
	provider Provider
	observer Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver attaches a tier observer, typically the metrics collector.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// New creates a Resolver backed by provider.
func New(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{provider: provider}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the tiers for intent strictly in sequence. Errors from any tier
// but the last are swallowed so the next tier can run. When every tier misses,
// the last tier's error decides the ResolutionError kind. If ctx is cancelled
// the context error is returned instead.
func (r *Resolver) Resolve(ctx context.Context, intent query.Intent) (*models.MarketEvent, error) {
	steps := plan(intent)
	if len(steps) == 0 {
		return nil, &ResolutionError{Kind: NotFound, Intent: intent, Err: errors.New("empty query")}
	}

	var lastErr error
	for _, s := range steps {
		ev, err := s.run(ctx, r.provider, s.value)
		r.observe(intent, s.name, ev != nil)
		if ev != nil {
			logger.Debug("Resolved %s via %s tier: event %s", intent, s.name, ev.ID)
			return ev, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("resolve %s: %w", intent.Kind, ctxErr)
		}
		if err != nil {
			logger.Debug("Tier %s failed for %s: %v", s.name, intent, err)
		} else {
			logger.Debug("Tier %s found nothing for %s", s.name, intent)
		}
		lastErr = err
	}

	return nil, &ResolutionError{Kind: kindOf(lastErr), Intent: intent, Err: lastErr}
}

func kindOf(err error) ErrorKind {
	switch {
	case err == nil, errors.Is(err, models.ErrNotFound):
		return NotFound
	case errors.Is(err, models.ErrMalformedResponse):
		return MalformedResponse
	default:
		return UpstreamUnavailable
	}
}

func (r *Resolver) observe(intent query.Intent, tier string, ok bool) {
	if r.observer != nil {
		r.observer.ObserveTier(intent.Kind.String(), tier, ok)
	}
}

// Package models defines the domain entities shared by the resolver and the risk engine.
//
// Terminology (matching Polymarket's own naming):
//   - Event: a Polymarket event page, which groups one or more related markets.
//   - Question: a single market within an event. Its outcome and price fields are kept
//     in the provider's native form until the outcome parser normalizes them.
package models

import (
	"errors"
	"time"
)

// EventStatus is the coarse lifecycle state of an event.
type EventStatus string

const (
	StatusOpen    EventStatus = "open"
	StatusClosed  EventStatus = "closed"
	StatusUnknown EventStatus = "unknown"
)

// StatusFromFlags derives an EventStatus from the provider's active/closed flags.
// Closed wins over active.
func StatusFromFlags(active, closed bool) EventStatus {
	if closed {
		return StatusClosed
	}
	if active {
		return StatusOpen
	}
	return StatusUnknown
}

// MarketEvent is the resolved upstream record for one prediction-market event.
type MarketEvent struct {
	ID        string           `json:"id"`
	Slug      string           `json:"slug,omitempty"`
	Title     string           `json:"title"`
	Status    EventStatus      `json:"status"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	Volume    *float64         `json:"volume,omitempty"`
	Questions []MarketQuestion `json:"questions"`
}

// MarketQuestion is a transient view of one market inside a MarketEvent.
// Outcomes and OutcomePrices hold whatever the provider sent: a list,
// a JSON-encoded list inside a string, or a comma-separated string.
type MarketQuestion struct {
	ID            string     `json:"id,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	Question      string     `json:"question"`
	Active        bool       `json:"active"`
	Closed        bool       `json:"closed"`
	Volume        *float64   `json:"volume,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Outcomes      any        `json:"outcomes,omitempty"`
	OutcomePrices any        `json:"outcome_prices,omitempty"`
}

// Validate checks that the event carries the fields the resolver relies on.
func (e *MarketEvent) Validate() error {
	if e.ID == "" {
		return errors.New("event ID must not be empty")
	}
	switch e.Status {
	case "", StatusOpen, StatusClosed, StatusUnknown:
	default:
		return errors.New("event status must be open, closed or unknown")
	}
	if e.Volume != nil && *e.Volume < 0 {
		return errors.New("event volume must not be negative")
	}
	return nil
}

// IsOpen reports whether the question is still tradable.
func (q *MarketQuestion) IsOpen() bool {
	return q.Active && !q.Closed
}

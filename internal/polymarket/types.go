package polymarket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

// GammaEvent represents an event from the Gamma API.
type GammaEvent struct {
	ID      flexString    `json:"id"`
	Slug    string        `json:"slug"`
	Title   string        `json:"title"`
	Active  flexBool      `json:"active"`
	Closed  flexBool      `json:"closed"`
	EndDate string        `json:"endDate"`
	Volume  flexFloat     `json:"volume"`
	Markets []GammaMarket `json:"markets"`
}

// GammaMarket represents a market within an event.
// Note: outcomes and outcomePrices are usually JSON strings, sometimes real arrays.
type GammaMarket struct {
	ID            flexString `json:"id"`
	Slug          string     `json:"slug"`
	Question      string     `json:"question"`
	Title         string     `json:"title"`
	Active        flexBool   `json:"active"`
	Closed        flexBool   `json:"closed"`
	Volume        flexFloat  `json:"volume"`
	EndDateIso    string     `json:"endDateIso"`
	EndDate       string     `json:"endDate"`
	Outcomes      any        `json:"outcomes"`
	OutcomePrices any        `json:"outcomePrices"`
}

// searchResponse keeps each event raw so one bad result does not sink the rest.
type searchResponse struct {
	Events []json.RawMessage `json:"events"`
}

// ToModel converts the API shape into the resolver's event record.
func (e *GammaEvent) ToModel() models.MarketEvent {
	ev := models.MarketEvent{
		ID:        string(e.ID),
		Slug:      e.Slug,
		Title:     e.Title,
		Status:    models.StatusFromFlags(bool(e.Active), bool(e.Closed)),
		EndDate:   parseTime(e.EndDate),
		Volume:    e.Volume.ptr(),
		Questions: make([]models.MarketQuestion, 0, len(e.Markets)),
	}
	for i := range e.Markets {
		ev.Questions = append(ev.Questions, e.Markets[i].toModel())
	}
	return ev
}

func (m *GammaMarket) toModel() models.MarketQuestion {
	question := m.Question
	if question == "" {
		question = m.Title
	}
	end := m.EndDateIso
	if end == "" {
		end = m.EndDate
	}
	return models.MarketQuestion{
		ID:            string(m.ID),
		Slug:          m.Slug,
		Question:      question,
		Active:        bool(m.Active),
		Closed:        bool(m.Closed),
		Volume:        m.Volume.ptr(),
		EndDate:       parseTime(end),
		Outcomes:      m.Outcomes,
		OutcomePrices: m.OutcomePrices,
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime reads the ISO-8601 variants Gamma emits. Unparsable input yields nil.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// flexString unmarshals from a JSON string or number; Gamma is not consistent about ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool unmarshals from JSON bool or string ("true"/"false").
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or numeric string. Missing, null,
// or non-numeric values leave it invalid rather than failing the decode.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat{Value: n, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*f = flexFloat{Value: v, Valid: true}
	}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

package outcomes

import (
	"math"
	"reflect"
	"testing"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{"nil", nil, nil},
		{"structured strings", []string{"Yes", "No"}, []string{"Yes", "No"}},
		{"structured any", []any{"Yes", "No"}, []string{"Yes", "No"}},
		{"structured numbers", []any{0.7, 0.3}, []string{"0.7", "0.3"}},
		{"json string", `["Yes", "No"]`, []string{"Yes", "No"}},
		{"json numbers", `[0.54, 0.46]`, []string{"0.54", "0.46"}},
		{"comma separated", "Yes, No", []string{"Yes", "No"}},
		{"comma separated with blanks", " Yes ,, No , ", []string{"Yes", "No"}},
		{"single scalar string", "0.5", []string{"0.5"}},
		{"broken json falls back to split", `["Yes", "No"`, []string{`["Yes"`, `"No"`}},
		{"empty string", "", nil},
		{"bare number", 0.25, []string{"0.25"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeList(tt.input)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeList(%#v) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		question models.MarketQuestion
		expected []models.OutcomeRecord
	}{
		{
			name: "structured lists",
			question: models.MarketQuestion{
				Outcomes:      []any{"Yes", "No"},
				OutcomePrices: []any{"0.7", "0.3"},
			},
			expected: []models.OutcomeRecord{{Label: "Yes", Probability: 0.7}, {Label: "No", Probability: 0.3}},
		},
		{
			name: "percentage prices",
			question: models.MarketQuestion{
				Outcomes:      []any{"Yes", "No"},
				OutcomePrices: []any{"70", "30"},
			},
			expected: []models.OutcomeRecord{{Label: "Yes", Probability: 0.7}, {Label: "No", Probability: 0.3}},
		},
		{
			name: "malformed price drops one pair",
			question: models.MarketQuestion{
				Outcomes:      []any{"Yes", "No"},
				OutcomePrices: []any{"0.7", "bad"},
			},
			expected: []models.OutcomeRecord{{Label: "Yes", Probability: 0.7}},
		},
		{
			name: "out of range prices drop their pairs",
			question: models.MarketQuestion{
				Outcomes:      []any{"A", "B", "C", "D"},
				OutcomePrices: `["-0.2", "150", "1e400", "0.4"]`,
			},
			expected: []models.OutcomeRecord{{Label: "D", Probability: 0.4}},
		},
		{
			name: "json encoded strings",
			question: models.MarketQuestion{
				Outcomes:      `["Yes", "No"]`,
				OutcomePrices: `["0.54", "0.46"]`,
			},
			expected: []models.OutcomeRecord{{Label: "Yes", Probability: 0.54}, {Label: "No", Probability: 0.46}},
		},
		{
			name: "mixed shapes",
			question: models.MarketQuestion{
				Outcomes:      "Up, Down",
				OutcomePrices: `["0.9", "0.1"]`,
			},
			expected: []models.OutcomeRecord{{Label: "Up", Probability: 0.9}, {Label: "Down", Probability: 0.1}},
		},
		{
			name: "mismatched lengths pair up to shorter",
			question: models.MarketQuestion{
				Outcomes:      []any{"A", "B", "C"},
				OutcomePrices: []any{"0.2", "0.5"},
			},
			expected: []models.OutcomeRecord{{Label: "A", Probability: 0.2}, {Label: "B", Probability: 0.5}},
		},
		{
			name: "non-finite price dropped",
			question: models.MarketQuestion{
				Outcomes:      []any{"Yes", "No"},
				OutcomePrices: []any{"NaN", "0.4"},
			},
			expected: []models.OutcomeRecord{{Label: "No", Probability: 0.4}},
		},
		{
			name:     "missing fields",
			question: models.MarketQuestion{},
			expected: []models.OutcomeRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.question)
			if len(got) != len(tt.expected) {
				t.Fatalf("Parse() returned %d records, want %d: %#v", len(got), len(tt.expected), got)
			}
			for i := range got {
				if got[i].Label != tt.expected[i].Label {
					t.Errorf("record %d label = %q, want %q", i, got[i].Label, tt.expected[i].Label)
				}
				if math.Abs(got[i].Probability-tt.expected[i].Probability) > 1e-9 {
					t.Errorf("record %d probability = %f, want %f", i, got[i].Probability, tt.expected[i].Probability)
				}
			}
		})
	}
}

func TestParseIdempotentOnStructuredLists(t *testing.T) {
	q := models.MarketQuestion{
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []string{"0.7", "0.3"},
	}
	first := Parse(q)
	second := Parse(q)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() not stable: %#v vs %#v", first, second)
	}
	want := []models.OutcomeRecord{{Label: "Yes", Probability: 0.7}, {Label: "No", Probability: 0.3}}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Parse() = %#v, want %#v", first, want)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"0.25", 0.25, true},
		{" 0.25 ", 0.25, true},
		{"1", 1.0, true},
		{"55", 0.55, true},
		{"", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
		{"1e400", 0, false},
		{"-0.2", 0, false},
		{"150", 0, false},
		{"100", 1.0, true},
		{"0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParsePrice(%q) = %f, want %f", tt.input, got, tt.want)
			}
		})
	}
}

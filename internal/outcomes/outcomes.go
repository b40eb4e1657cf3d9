// Package outcomes normalizes the provider's outcome and price fields into
// ordered (label, probability) pairs.
//
// Gamma documents outcomes/outcomePrices as strings, but in practice they
// arrive as real arrays, as JSON-encoded arrays inside a string, or as plain
// comma-separated text. All of that tolerance lives in NormalizeList.
package outcomes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rewired-gh/polysteamroller/internal/models"
)

// NormalizeList converts a provider-native field into an ordered list of strings.
// Order of attempts: structured list, JSON-encoded list, comma-separated text.
func NormalizeList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		return out
	case string:
		var decoded []any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return NormalizeList(decoded)
		}
		return splitCSV(v)
	default:
		return []string{scalarString(v)}
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ParsePrice converts one price entry into a probability. Values above 1 are
// read as percentages. Non-numeric, non-finite and out-of-range entries are
// rejected.
func ParsePrice(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	if p > 1.0 {
		p /= 100.0
	}
	if p < 0 || p > 1.0 {
		return 0, false
	}
	return p, true
}

// Parse pairs a question's outcomes with its prices positionally, up to the
// shorter of the two lists. A pair whose price does not parse is dropped.
// Parse never fails; unusable input yields an empty slice.
func Parse(q models.MarketQuestion) []models.OutcomeRecord {
	labels := NormalizeList(q.Outcomes)
	prices := NormalizeList(q.OutcomePrices)

	n := min(len(labels), len(prices))
	records := make([]models.OutcomeRecord, 0, n)
	for i := 0; i < n; i++ {
		p, ok := ParsePrice(prices[i])
		if !ok {
			continue
		}
		records = append(records, models.OutcomeRecord{Label: labels[i], Probability: p})
	}
	return records
}

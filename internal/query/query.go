// Package query classifies raw user input into a resolution intent.
package query

import (
	"net/url"
	"strings"
	"unicode"
)

// Kind tags the shape of a user query.
type Kind int

const (
	KindSearch Kind = iota
	KindURL
	KindID
	KindSlug
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindID:
		return "id"
	case KindSlug:
		return "slug"
	default:
		return "search"
	}
}

// Intent is the classified form of one raw query. Value is the trimmed input.
type Intent struct {
	Kind  Kind
	Value string
}

func (i Intent) String() string {
	return i.Kind.String() + ":" + i.Value
}

// Classify tags raw input with an intent. It never fails; empty input yields
// a search intent with an empty value, which the resolver rejects.
func Classify(raw string) Intent {
	s := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return Intent{Kind: KindURL, Value: s}
	case isDigits(s):
		return Intent{Kind: KindID, Value: s}
	case !strings.ContainsFunc(s, unicode.IsSpace) && strings.Contains(s, "-"):
		return Intent{Kind: KindSlug, Value: s}
	default:
		return Intent{Kind: KindSearch, Value: s}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SlugFromURL extracts the slug candidate from a market URL: the path segment
// after "event" or "market", else the last segment. Returns "" when the URL
// has no usable path.
//
//	https://polymarket.com/event/fed-decision-in-october?tid=123 -> fed-decision-in-october
func SlugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	for i, p := range parts {
		if (p == "event" || p == "market") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return parts[len(parts)-1]
}

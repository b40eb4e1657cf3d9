package resolver

import (
	"fmt"

	"github.com/rewired-gh/polysteamroller/internal/query"
)

// ErrorKind classifies why resolution failed.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	UpstreamUnavailable
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "not_found"
	}
}

// ResolutionError is returned once every fallback tier for an intent has failed.
// Err carries the last tier's error, if the last tier failed at all.
type ResolutionError struct {
	Kind   ErrorKind
	Intent query.Intent
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.Intent.Kind, e.Kind, e.Err)
	}
	return fmt.Sprintf("resolve %s: %s", e.Intent.Kind, e.Kind)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

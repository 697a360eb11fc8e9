// Package sources implements the source adapter layer. Each external board
// is wrapped by an Adapter that fetches raw listings; the orchestrator runs
// the configured adapters concurrently and contains their failures.
package sources

import (
	"context"
	"fmt"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

// Query describes one fetch request handed to an adapter.
type Query struct {
	Keywords string
	Location string
	Limit    int
}

// Adapter fetches raw listings from one external source.
// Implementations return *SourceUnavailableError on failure; they never
// panic and never return partial errors alongside results.
type Adapter interface {
	// Name identifies the source, e.g. "indeed".
	Name() string
	// Type is the opportunity type this adapter produces.
	Type() types.OpportunityType
	// Fetch retrieves up to q.Limit raw listings.
	Fetch(ctx context.Context, q Query) ([]types.RawListing, error)
}

// SourceUnavailableError indicates a source could not be reached or parsed.
// The orchestrator logs it and continues with the remaining sources.
type SourceUnavailableError struct {
	Source    string
	Message   string
	Retryable bool
	Cause     error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s unavailable: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("source %s unavailable: %s", e.Source, e.Message)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// unavailable wraps err as a SourceUnavailableError, carrying the Retryable
// flag through from fetch errors.
func unavailable(source, message string, err error) *SourceUnavailableError {
	retryable := false
	if fe, ok := err.(*fetch.Error); ok {
		retryable = fe.Retryable
	}
	return &SourceUnavailableError{
		Source:    source,
		Message:   message,
		Retryable: retryable,
		Cause:     err,
	}
}

// sourcePriority orders sources for deterministic tie-breaking: when two
// matches are otherwise equal, the listing from the earlier source wins.
var sourcePriority = []string{
	"linkedin",
	"indeed",
	"wellfound",
	"greenhouse",
	"internshala",
	"unstop",
	"hackerearth",
	"eventbrite",
}

// SourcePriority returns the rank of a source for tie-breaking. Unknown
// sources sort after all known ones.
func SourcePriority(source string) int {
	for i, s := range sourcePriority {
		if s == source {
			return i
		}
	}
	return len(sourcePriority)
}

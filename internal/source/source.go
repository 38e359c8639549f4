package source

import (
	"context"
	"fmt"
	"time"

	"PriceHistorian/internal/model"
)

// Source fetches the opening price for a single UTC calendar day.
type Source interface {
	FetchOpeningPrice(ctx context.Context, day time.Time) (model.PricePoint, error)
	Name() string
}

// TransportError reports a network-level failure: connection error, timeout,
// or a non-2xx status. The reconciler treats these as systemic and stops
// fetching further days.
type TransportError struct {
	Day time.Time
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure fetching %s: %v", e.Day.Format(model.DateFormat), e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// DataNotFoundError reports that the provider answered but had no opening
// price for the requested day. Per-day, skippable.
type DataNotFoundError struct {
	Day    time.Time
	Reason string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("no price data for %s: %s", e.Day.Format(model.DateFormat), e.Reason)
}

// MalformedResponseError reports a provider response that could not be
// decoded. Per-day, skippable.
type MalformedResponseError struct {
	Day time.Time
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for %s: %v", e.Day.Format(model.DateFormat), e.Err)
}
func (e *MalformedResponseError) Unwrap() error { return e.Err }

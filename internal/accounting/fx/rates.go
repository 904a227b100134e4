// Package fx looks up stored exchange rates into the base currency.
package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// ErrRateNotFound is wrapped by MissingRateError.
var ErrRateNotFound = fmt.Errorf("fx: exchange rate not found: %w", httpx.ErrNotFound)

// MissingRateError reports the pair and date that had no usable rate.
type MissingRateError struct {
	From string
	To   string
	Date string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("Exchange rate not found for %s to %s on or before %s", e.From, e.To, e.Date)
}

func (e *MissingRateError) Unwrap() error {
	return ErrRateNotFound
}

// RateProvider returns the most recent rate for from→to dated on or
// before asOf.
type RateProvider interface {
	LatestRate(ctx context.Context, from, to string, asOf time.Time) (float64, bool, error)
}

// Lookup resolves rates into a single base currency.
type Lookup struct {
	base     string
	provider RateProvider
}

// NewLookup constructs a lookup converting into base.
func NewLookup(base string, provider RateProvider) *Lookup {
	return &Lookup{base: normalise(base), provider: provider}
}

// Base returns the base currency code.
func (l *Lookup) Base() string {
	return l.base
}

// Rate returns the rate converting one unit of currency into the base
// currency as of date. The base currency itself is always 1.
func (l *Lookup) Rate(ctx context.Context, currency string, date time.Time) (float64, error) {
	currency = normalise(currency)
	if currency == "" {
		return 0, httpx.Userf(httpx.ErrValidation, "currency is required")
	}
	if currency == l.base {
		return 1.0, nil
	}
	if date.IsZero() {
		return 0, httpx.Userf(httpx.ErrValidation, "date is required")
	}
	if l.provider == nil {
		return 0, errors.New("fx: rate provider required")
	}
	rate, ok, err := l.provider.LatestRate(ctx, currency, l.base, date)
	if err != nil {
		return 0, fmt.Errorf("fx: lookup %s%s: %w", currency, l.base, err)
	}
	if !ok || rate <= 0 {
		return 0, &MissingRateError{From: currency, To: l.base, Date: date.Format(time.DateOnly)}
	}
	return rate, nil
}

func normalise(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

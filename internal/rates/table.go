// Package rates holds the in-memory reference rate table and the
// conversion, cross-rate and rendering helpers built on top of it.
package rates

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
)

const (
	// AnchorCurrency is the base of a freshly built table.
	AnchorCurrency = exchange.AnchorCurrency
	// FallbackCurrency is the only non-anchor entry of the fallback table.
	FallbackCurrency = "BGN"
	// FallbackRate is the fixed EUR/BGN rate used when the feed is unavailable.
	FallbackRate = "1.9558"
	// DisplayDateLayout formats the feed date for display.
	DisplayDateLayout = "02.01.2006 г."

	unitRate = "1.0000"
)

var (
	// ErrUnknownCurrency is returned for codes that are not in the table.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrZeroRate is returned when dividing by a rate that rounded to zero.
	ErrZeroRate = errors.New("currency rate is zero")
)

// Table maps currency codes to rates relative to the base currency.
// A Table is not safe for concurrent use.
type Table struct {
	base    string
	codes   []string
	rates   map[string]string
	asOf    time.Time
	parsed  bool
	lastErr error
}

// New loads the latest feed from src. It never fails: when the feed cannot be
// fetched or parsed the fallback table is returned and Parsed reports false.
func New(ctx context.Context, src exchange.FeedSource) *Table {
	if src == nil {
		t := Fallback()
		t.lastErr = errors.New("feed source is required")
		return t
	}

	feed, err := src.FetchLatest(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to load ECB feed, using fallback rates")
		t := Fallback()
		t.lastErr = fmt.Errorf("failed to load feed: %w", err)
		return t
	}

	return NewFromFeed(feed)
}

// NewFromFeed builds a parsed table anchored at EUR. Entries with an invalid
// code or a non-positive rate are skipped.
func NewFromFeed(feed exchange.Feed) *Table {
	t := newTable(AnchorCurrency)
	t.parsed = true
	t.asOf = feed.Date

	for _, r := range feed.Rates {
		code := normalizeCode(r.Currency)
		if !validCode(code) || code == t.base {
			logger.Log.Warn().Str("currency", r.Currency).Msg("Skipping feed entry with invalid currency")
			continue
		}
		value, err := decimal.NewFromString(r.Value)
		if err != nil || !value.IsPositive() {
			logger.Log.Warn().
				Str("currency", code).
				Str("rate", r.Value).
				Msg("Skipping feed entry with invalid rate")
			continue
		}
		t.set(code, r.Value)
	}

	logger.Log.Debug().
		Str("date", t.Date()).
		Int("currencies", len(t.codes)).
		Msg("Rate table loaded")

	return t
}

// Fallback returns the two-entry table used when the feed is unavailable.
func Fallback() *Table {
	t := newTable(AnchorCurrency)
	t.set(FallbackCurrency, FallbackRate)
	return t
}

func newTable(base string) *Table {
	t := &Table{
		base:  base,
		rates: make(map[string]string),
	}
	t.set(base, unitRate)
	return t
}

func (t *Table) set(code, rate string) {
	if _, ok := t.rates[code]; !ok {
		t.codes = append(t.codes, code)
	}
	t.rates[code] = rate
}

// SetBaseCurrency re-bases every rate on code, rounding to 4 decimals.
// On error the table is left untouched.
func (t *Table) SetBaseCurrency(code string) error {
	code = normalizeCode(code)
	factor, err := t.lookup(code)
	if err != nil {
		return t.fail(err)
	}
	if factor.IsZero() {
		return t.fail(fmt.Errorf("%w: %s", ErrZeroRate, code))
	}

	next := make(map[string]string, len(t.rates))
	for _, c := range t.codes {
		value, err := t.lookup(c)
		if err != nil {
			return t.fail(err)
		}
		next[c] = value.Div(factor).StringFixed(4)
	}
	next[code] = unitRate

	logger.Log.Debug().
		Str("from", t.base).
		Str("to", code).
		Msg("Re-based rate table")

	t.rates = next
	t.base = code
	return nil
}

// Exchange converts amount from one currency to another, rounded to 2 decimals.
// An empty to means the base currency.
func (t *Table) Exchange(amount decimal.Decimal, from, to string) (string, error) {
	from = normalizeCode(from)
	to = normalizeCode(to)
	if to == "" {
		to = t.base
	}

	fromRate, toRate, err := t.pair(from, to)
	if err != nil {
		return "", t.fail(err)
	}

	return amount.Mul(toRate).Div(fromRate).StringFixed(2), nil
}

// CrossRate returns how many units of to one unit of from buys, rounded to 4 decimals.
func (t *Table) CrossRate(from, to string) (string, error) {
	fromRate, toRate, err := t.pair(normalizeCode(from), normalizeCode(to))
	if err != nil {
		return "", t.fail(err)
	}

	return toRate.Div(fromRate).StringFixed(4), nil
}

func (t *Table) pair(from, to string) (decimal.Decimal, decimal.Decimal, error) {
	fromRate, err := t.lookup(from)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	toRate, err := t.lookup(to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if fromRate.IsZero() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s", ErrZeroRate, from)
	}
	return fromRate, toRate, nil
}

func (t *Table) lookup(code string) (decimal.Decimal, error) {
	raw, ok := t.rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q for %s: %w", raw, code, err)
	}
	return value, nil
}

func (t *Table) fail(err error) error {
	t.lastErr = err
	return err
}

// CurrencyList returns the known codes in table order.
func (t *Table) CurrencyList() []string {
	return slices.Clone(t.codes)
}

// Rate returns the stored rate string for code.
func (t *Table) Rate(code string) (string, bool) {
	rate, ok := t.rates[normalizeCode(code)]
	return rate, ok
}

// Has reports whether code is in the table.
func (t *Table) Has(code string) bool {
	_, ok := t.rates[normalizeCode(code)]
	return ok
}

// Base returns the current base currency.
func (t *Table) Base() string { return t.base }

// Len returns the number of currencies.
func (t *Table) Len() int { return len(t.codes) }

// AsOf returns the feed date, zero for the fallback table.
func (t *Table) AsOf() time.Time { return t.asOf }

// Date returns the feed date formatted for display, empty for the fallback table.
func (t *Table) Date() string {
	if t.asOf.IsZero() {
		return ""
	}
	return t.asOf.Format(DisplayDateLayout)
}

// Parsed reports whether the table was built from the feed.
func (t *Table) Parsed() bool { return t.parsed }

// LastError returns the most recent failure, nil if none.
func (t *Table) LastError() error { return t.lastErr }

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	return &Table{
		base:    t.base,
		codes:   slices.Clone(t.codes),
		rates:   maps.Clone(t.rates),
		asOf:    t.asOf,
		parsed:  t.parsed,
		lastErr: t.lastErr,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ValidCode reports whether code looks like an ISO 4217 code after normalization.
func ValidCode(code string) bool {
	return validCode(normalizeCode(code))
}

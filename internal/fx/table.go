package fx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

// ErrUnknownPair is wrapped by every conversion that has no rate.
var ErrUnknownPair = errors.New("unknown currency pair")

// Pair is an ordered currency pair; the rate converts one unit of From into To.
type Pair struct {
	From enums.Currency
	To   enums.Currency
}

func (p Pair) String() string {
	return string(p.From) + "_" + string(p.To)
}

// ParsePair accepts "USD_TRY" style keys (case-insensitive, "-" or "/" also allowed).
func ParsePair(raw string) (Pair, error) {
	normalized := strings.NewReplacer("-", "_", "/", "_").Replace(strings.TrimSpace(raw))
	parts := strings.Split(normalized, "_")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("invalid currency pair %q", raw)
	}
	from, err := enums.ParseCurrency(parts[0])
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", raw, err)
	}
	to, err := enums.ParseCurrency(parts[1])
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", raw, err)
	}
	return Pair{From: from, To: to}, nil
}

// Rate is one row of a table listing.
type Rate struct {
	Pair Pair            `json:"-"`
	Key  string          `json:"pair"`
	Rate decimal.Decimal `json:"rate"`
}

// Table is an immutable rate table. Build a new one to change rates.
type Table struct {
	rates    map[Pair]decimal.Decimal
	loadedAt time.Time
}

// NewTable copies rates into a table, rejecting non-positive rates and
// same-currency pairs.
func NewTable(rates map[Pair]decimal.Decimal) (*Table, error) {
	out := make(map[Pair]decimal.Decimal, len(rates))
	var errs error
	for pair, rate := range rates {
		if pair.From == pair.To {
			errs = multierr.Append(errs, fmt.Errorf("pair %s converts a currency to itself", pair))
			continue
		}
		if !rate.IsPositive() {
			errs = multierr.Append(errs, fmt.Errorf("rate for %s must be positive", pair))
			continue
		}
		out[pair] = rate
	}
	if errs != nil {
		return nil, errs
	}
	return &Table{rates: out, loadedAt: time.Now().UTC()}, nil
}

// ParseTable builds a table from "FROM_TO" -> decimal string entries, the
// shape used by configuration and the Redis hash.
func ParseTable(raw map[string]string) (*Table, error) {
	rates := make(map[Pair]decimal.Decimal, len(raw))
	var errs error
	for key, value := range raw {
		pair, err := ParsePair(key)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rate for %s: %w", pair, err))
			continue
		}
		rates[pair] = rate
	}
	if errs != nil {
		return nil, errs
	}
	return NewTable(rates)
}

// Len reports the number of explicit pairs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// Rate returns the multiplier for from -> to. Same-currency lookups always
// succeed with 1.
func (t *Table) Rate(from, to enums.Currency) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	if t == nil {
		return decimal.Zero, false
	}
	rate, ok := t.rates[Pair{From: from, To: to}]
	return rate, ok
}

// WithDerived returns a new table that also holds the inverse of every pair
// and the cross rates through any shared quote currency. Explicit pairs win
// over derived ones.
func (t *Table) WithDerived() *Table {
	out := make(map[Pair]decimal.Decimal, len(t.rates)*4)
	for pair, rate := range t.rates {
		out[pair] = rate
	}
	for pair, rate := range t.rates {
		inverse := Pair{From: pair.To, To: pair.From}
		if _, ok := out[inverse]; !ok {
			out[inverse] = decimal.NewFromInt(1).Div(rate)
		}
	}
	for a, rateA := range t.rates {
		for b, rateB := range t.rates {
			if a.To != b.To || a.From == b.From {
				continue
			}
			cross := Pair{From: a.From, To: b.From}
			if _, ok := out[cross]; !ok {
				out[cross] = rateA.Div(rateB)
			}
		}
	}
	return &Table{rates: out, loadedAt: t.loadedAt}
}

// Entries lists the table sorted by pair key.
func (t *Table) Entries() []Rate {
	if t == nil {
		return nil
	}
	entries := make([]Rate, 0, len(t.rates))
	for pair, rate := range t.rates {
		entries = append(entries, Rate{Pair: pair, Key: pair.String(), Rate: rate})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Raw renders the table back into its string map form.
func (t *Table) Raw() map[string]string {
	out := make(map[string]string, t.Len())
	for _, entry := range t.Entries() {
		out[entry.Key] = entry.Rate.String()
	}
	return out
}

package fx

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/teklifbul/mukayese-backend/pkg/enums"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

// Converter converts amounts with a single, consistent rate table.
type Converter interface {
	Convert(amount decimal.Decimal, from, to enums.Currency) (decimal.Decimal, error)
	LineTotal(qty, unitPrice decimal.Decimal, currency enums.Currency, shipping decimal.Decimal, target enums.Currency) (decimal.Decimal, error)
	Rate(from, to enums.Currency) (decimal.Decimal, error)
}

// Normalizer holds the active rate table behind an atomic pointer. Readers
// take a Snapshot so a whole comparison runs against one table even while
// UpdateRates swaps in another.
type Normalizer struct {
	table     atomic.Pointer[Table]
	reporting enums.Currency
}

func NewNormalizer(reporting enums.Currency, table *Table) (*Normalizer, error) {
	if !reporting.IsValid() {
		return nil, fmt.Errorf("invalid reporting currency %q", reporting)
	}
	if table == nil {
		return nil, fmt.Errorf("rate table required")
	}
	n := &Normalizer{reporting: reporting}
	n.table.Store(table)
	return n, nil
}

func (n *Normalizer) ReportingCurrency() enums.Currency {
	return n.reporting
}

// Table returns the active table.
func (n *Normalizer) Table() *Table {
	return n.table.Load()
}

// UpdateRates replaces the active table in one step.
func (n *Normalizer) UpdateRates(table *Table) error {
	if table == nil || table.Len() == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rate table cannot be empty")
	}
	n.table.Store(table)
	return nil
}

// Snapshot pins the current table for a series of conversions.
func (n *Normalizer) Snapshot() Snapshot {
	return Snapshot{table: n.table.Load()}
}

func (n *Normalizer) Convert(amount decimal.Decimal, from, to enums.Currency) (decimal.Decimal, error) {
	return n.Snapshot().Convert(amount, from, to)
}

func (n *Normalizer) LineTotal(qty, unitPrice decimal.Decimal, currency enums.Currency, shipping decimal.Decimal, target enums.Currency) (decimal.Decimal, error) {
	return n.Snapshot().LineTotal(qty, unitPrice, currency, shipping, target)
}

func (n *Normalizer) Rate(from, to enums.Currency) (decimal.Decimal, error) {
	return n.Snapshot().Rate(from, to)
}

// Snapshot is a Converter bound to one table.
type Snapshot struct {
	table *Table
}

// SnapshotOf wraps a table directly, mainly for tests and offline rendering.
func SnapshotOf(table *Table) Snapshot {
	return Snapshot{table: table}
}

func (s Snapshot) Rate(from, to enums.Currency) (decimal.Decimal, error) {
	rate, ok := s.table.Rate(from, to)
	if !ok {
		pair := Pair{From: from, To: to}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrUnknownPair,
			fmt.Sprintf("no exchange rate for %s", pair)).
			WithDetails(map[string]any{"from": string(from), "to": string(to)})
	}
	return rate, nil
}

// Convert is the identity for same-currency requests regardless of table
// contents, and fails for pairs the table does not know.
func (s Snapshot) Convert(amount decimal.Decimal, from, to enums.Currency) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := s.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// LineTotal is (qty * unitPrice + shipping) in the offer currency, converted once.
func (s Snapshot) LineTotal(qty, unitPrice decimal.Decimal, currency enums.Currency, shipping decimal.Decimal, target enums.Currency) (decimal.Decimal, error) {
	return s.Convert(qty.Mul(unitPrice).Add(shipping), currency, target)
}

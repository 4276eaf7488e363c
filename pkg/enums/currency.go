package enums

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 code used for offer prices and the reporting currency.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is a recognized ISO 4217 code.
func (c Currency) IsValid() bool {
	_, err := currency.ParseISO(string(c))
	return err == nil && strings.ToUpper(string(c)) == string(c)
}

// ParseCurrency normalizes and validates a raw currency code.
func ParseCurrency(value string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return Currency(unit.String()), nil
}

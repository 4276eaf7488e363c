package fx

import (
	"fmt"

	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/enums"
)

// DefaultTable builds the configured rate table, expanding inverse and
// cross pairs when the config asks for it.
func DefaultTable(cfg config.FXConfig) (*Table, error) {
	table, err := ParseTable(cfg.Rates)
	if err != nil {
		return nil, fmt.Errorf("parsing configured fx rates: %w", err)
	}
	if cfg.DeriveInverse {
		table = table.WithDerived()
	}
	return table, nil
}

// NewNormalizerFromConfig wires a Normalizer with the configured reporting
// currency and default table.
func NewNormalizerFromConfig(cfg config.FXConfig) (*Normalizer, error) {
	reporting, err := enums.ParseCurrency(cfg.ReportingCurrency)
	if err != nil {
		return nil, err
	}
	table, err := DefaultTable(cfg)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(reporting, table)
}

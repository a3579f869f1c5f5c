package pricing

import "github.com/shopspring/decimal"

// Config holds the run-wide pricing rates.
type Config struct {
	// TaxRate is the tax multiplier, e.g. 1.22.
	TaxRate decimal.Decimal `mapstructure:"tax_rate" default:"1.22"`
	// MarginRate is the margin multiplier, e.g. 1.30.
	MarginRate decimal.Decimal `mapstructure:"margin_rate" default:"1.30"`
}

// NewFromConfig creates a Transformer from the configured rates.
func NewFromConfig(cfg Config) (*Transformer, error) {
	return New(cfg.TaxRate, cfg.MarginRate)
}

// Package valuation implements the simple dividend discount model
package valuation

import (
	"fmt"

	"github.com/newthinker/ddm/internal/core"
)

// Variant selects between the two published revisions of the model
type Variant string

const (
	// VariantClassic counts historic years from consecutive dividend-paying
	// cash flow periods and averages growth starting at the LTM dividend.
	VariantClassic Variant = "classic"
	// VariantRevised counts historic years from the dividend series and
	// averages growth over annual dividends only.
	VariantRevised Variant = "revised"
)

// ParseVariant converts a config string into a Variant
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantClassic, VariantRevised:
		return Variant(s), nil
	case "":
		return VariantRevised, nil
	}
	return "", core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown model variant %q", s))
}

// DefaultMarketPremium returns the market premium (fraction) used when none is configured
func (v Variant) DefaultMarketPremium() float64 {
	if v == VariantClassic {
		return 0.05
	}
	return 0.055
}

// DefaultCurrencyPolicy returns how a currency mismatch is handled by default
func (v Variant) DefaultCurrencyPolicy() CurrencyPolicy {
	if v == VariantClassic {
		return CurrencyPolicyWarn
	}
	return CurrencyPolicyAbort
}

// skipsLTMGrowth reports whether the growth walk starts at the first annual dividend
func (v Variant) skipsLTMGrowth() bool {
	return v == VariantRevised
}

// CurrencyPolicy decides what happens when the price and report currencies differ
type CurrencyPolicy string

const (
	CurrencyPolicyWarn  CurrencyPolicy = "warn"
	CurrencyPolicyAbort CurrencyPolicy = "abort"
)

// ParseCurrencyPolicy converts a config string; empty means the variant default
func ParseCurrencyPolicy(s string) (CurrencyPolicy, error) {
	switch CurrencyPolicy(s) {
	case CurrencyPolicyWarn, CurrencyPolicyAbort, "":
		return CurrencyPolicy(s), nil
	}
	return "", core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown currency policy %q", s))
}

// Config holds model settings that are not per-run assumptions
type Config struct {
	Variant                Variant
	CurrencyPolicy         CurrencyPolicy // empty: variant default
	MarketPremium          float64        // fraction; 0: variant default
	LinearRegressionWeight float64        // percentage, 0-100
	ChartProjectionYears   int
	MaxHistoricYears       int
	PreferredSensitivity   float64
}

// DefaultConfig returns the settings of the published model
func DefaultConfig() Config {
	return Config{
		Variant:                VariantRevised,
		LinearRegressionWeight: 50,
		ChartProjectionYears:   5,
		MaxHistoricYears:       10,
		PreferredSensitivity:   0.05,
	}
}

func (c Config) currencyPolicy() CurrencyPolicy {
	if c.CurrencyPolicy != "" {
		return c.CurrencyPolicy
	}
	return c.Variant.DefaultCurrencyPolicy()
}

func (c Config) marketPremium() float64 {
	if c.MarketPremium != 0 {
		return c.MarketPremium
	}
	return c.Variant.DefaultMarketPremium()
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if _, err := ParseVariant(string(c.Variant)); err != nil {
		return err
	}
	if _, err := ParseCurrencyPolicy(string(c.CurrencyPolicy)); err != nil {
		return err
	}
	if c.LinearRegressionWeight < 0 || c.LinearRegressionWeight > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("linear_regression_weight must be between 0 and 100, got %f", c.LinearRegressionWeight))
	}
	if c.ChartProjectionYears < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("chart_projection_years must be at least 1, got %d", c.ChartProjectionYears))
	}
	if c.MaxHistoricYears < 1 || c.MaxHistoricYears > 10 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_historic_years must be between 1 and 10, got %d", c.MaxHistoricYears))
	}
	if c.PreferredSensitivity <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("preferred_sensitivity must be positive, got %f", c.PreferredSensitivity))
	}
	return nil
}

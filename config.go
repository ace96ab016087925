package taxlot

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the file-level configuration of a run. Amount-valued fields are
// carried as strings so their precision survives the YAML round trip.
type Config struct {
	// ExternalAddresses lists, case-insensitively, the destination addresses
	// outside the owner's control. Withdrawals to them are reportable.
	ExternalAddresses []string `yaml:"external_addresses"`

	// ShortfallTolerance overrides the default 1e-6 tolerance when set.
	ShortfallTolerance string `yaml:"shortfall_tolerance,omitempty"`

	// ConsumptionOrder is "funds-first" (default) or "lots-first".
	ConsumptionOrder string `yaml:"consumption_order,omitempty"`

	// Histories is the directory holding per-account history files.
	Histories string `yaml:"histories,omitempty"`

	// From and To bound report output, RFC 3339. Empty means unbounded.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		ShortfallTolerance: DefaultShortfallTolerance.String(),
		ConsumptionOrder:   FundsFirst.String(),
		Histories:          "histories",
	}
}

// LoadConfig reads a YAML config file, fills unset fields with defaults and
// validates the result.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for parseable values.
func (c Config) Validate() error {
	if c.ShortfallTolerance != "" {
		tol, err := decimal.NewFromString(c.ShortfallTolerance)
		if err != nil {
			return fmt.Errorf("shortfall_tolerance: %w", err)
		}
		if tol.IsNegative() {
			return fmt.Errorf("shortfall_tolerance must not be negative: %s", tol)
		}
	}
	if c.ConsumptionOrder != "" {
		if _, err := ParseConsumptionOrder(c.ConsumptionOrder); err != nil {
			return err
		}
	}
	if _, err := c.Reporting(); err != nil {
		return err
	}
	return nil
}

// Policy builds the consumption policy from the configuration. Validate must
// have passed.
func (c Config) Policy() Policy {
	p := DefaultPolicy()
	if c.ShortfallTolerance != "" {
		p.ShortfallTolerance = decimal.RequireFromString(c.ShortfallTolerance)
	}
	if c.ConsumptionOrder != "" {
		p.Order, _ = ParseConsumptionOrder(c.ConsumptionOrder)
	}
	return p
}

// Reporting returns the report range configured by From/To.
func (c Config) Reporting() (Range, error) {
	var r Range
	if c.From != "" {
		t, err := time.Parse(time.RFC3339, c.From)
		if err != nil {
			return Range{}, fmt.Errorf("from: %w", err)
		}
		r.From = t
	}
	if c.To != "" {
		t, err := time.Parse(time.RFC3339, c.To)
		if err != nil {
			return Range{}, fmt.Errorf("to: %w", err)
		}
		r.To = t
	}
	return NewRange(r.From, r.To), nil
}

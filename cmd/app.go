// Package cmd implements the CLI application to run tax-lot accounting over
// exchange histories.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&balancesCmd{}, "reports")
	c.Register(&eventsCmd{}, "reports")
	c.Register(&withdrawalsCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML configuration file")
var verbose = flag.Bool("v", false, "Enable debug logging")

func defaultConfigPath() string {
	if p := os.Getenv("TAXLOT_CONFIG"); p != "" {
		return p
	}
	return "taxlot.yaml"
}

// Logger builds the log sink threaded through ledger processing.
func Logger() *slog.Logger {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig loads the configuration file, falling back to defaults when the
// file does not exist.
func LoadConfig() (taxlot.Config, error) {
	cfg, err := taxlot.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return taxlot.DefaultConfig(), nil
	}
	return cfg, err
}

// LoadLedger loads every account history under the configured histories
// directory and processes it into a ledger. The account name of a history is
// its file name without the .jsonl extension.
func LoadLedger(cfg taxlot.Config) (*taxlot.Ledger, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.Histories, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("could not list histories in %q: %w", cfg.Histories, err)
	}

	var entries []taxlot.Entry
	for _, path := range matches {
		account := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open history %q: %w", path, err)
		}
		decoded, err := taxlot.DecodeHistory(account, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not decode history %q: %w", path, err)
		}
		entries = append(entries, decoded...)
	}

	ledger := taxlot.NewLedger(cfg.ExternalAddresses, cfg.Policy(), Logger())
	if err := ledger.ProcessAll(entries); err != nil {
		return nil, fmt.Errorf("could not process histories: %w", err)
	}
	return ledger, nil
}

// rangeFlags holds the date-range filter flags shared by report subcommands.
type rangeFlags struct {
	from string
	to   string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.from, "from", "", "Only report events at or after this instant (RFC 3339)")
	f.StringVar(&r.to, "to", "", "Only report events at or before this instant (RFC 3339)")
}

// Range resolves the report range: flags override the configured range.
func (r *rangeFlags) Range(cfg taxlot.Config) (taxlot.Range, error) {
	rng, err := cfg.Reporting()
	if err != nil {
		return taxlot.Range{}, err
	}
	if r.from != "" {
		t, err := time.Parse(time.RFC3339, r.from)
		if err != nil {
			return taxlot.Range{}, fmt.Errorf("invalid -from: %w", err)
		}
		rng.From = t
	}
	if r.to != "" {
		t, err := time.Parse(time.RFC3339, r.to)
		if err != nil {
			return taxlot.Range{}, fmt.Errorf("invalid -to: %w", err)
		}
		rng.To = t
	}
	return taxlot.NewRange(rng.From, rng.To), nil
}

// fail prints the error and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	rangeFlags
	outputFile string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "exports tax lots of external withdrawals as CSV" }
func (*exportCmd) Usage() string {
	return `tlx export [-o <file>] [-from <rfc3339>] [-to <rfc3339>]

  Writes the flat CSV tax-lot export: one row per consumed deposit or lot
  feeding a withdrawal to a known external address, suitable for external
  tax-lot tooling.

`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f)
	f.StringVar(&c.outputFile, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	rng, err := c.Range(cfg)
	if err != nil {
		return fail(err)
	}
	ledger, err := LoadLedger(cfg)
	if err != nil {
		return fail(err)
	}

	out := os.Stdout
	if c.outputFile != "" {
		f, err := os.Create(c.outputFile)
		if err != nil {
			return fail(fmt.Errorf("could not create %q: %w", c.outputFile, err))
		}
		defer f.Close()
		out = f
	}
	if err := ledger.ExportTaxLots(out, rng); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

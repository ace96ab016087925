package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot/renderer"
)

type withdrawalsCmd struct {
	rangeFlags
}

func (*withdrawalsCmd) Name() string     { return "withdrawals" }
func (*withdrawalsCmd) Synopsis() string { return "prints the external-withdrawal audit trail" }
func (*withdrawalsCmd) Usage() string {
	return `tlx withdrawals [-from <rfc3339>] [-to <rfc3339>]

  Prints the chronological list of withdrawals to known external addresses,
  with the deposits and cost-basis lots consumed to back each one.

`
}

func (c *withdrawalsCmd) SetFlags(f *flag.FlagSet) { c.rangeFlags.SetFlags(f) }

func (c *withdrawalsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fmt.Print(renderer.WithdrawalsMarkdown(ledger.WithdrawEventsIn(rng)))
	return subcommands.ExitSuccess
}

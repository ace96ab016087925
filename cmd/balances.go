package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot/renderer"
)

type balancesCmd struct{}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "prints the per-account balance breakdown" }
func (*balancesCmd) Usage() string {
	return `tlx balances

  Prints, per account and per currency, the combined balance, the uncommitted
  funds, the cost-basis lots, and the diagnostic error amount recorded for
  shortfalls.

`
}

func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (*balancesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	ledger, err := LoadLedger(cfg)
	if err != nil {
		return fail(err)
	}
	fmt.Print(renderer.BalanceMarkdown(ledger.BalanceReport()))
	return subcommands.ExitSuccess
}

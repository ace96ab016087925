package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/taxlot/taxlot/renderer"
)

type reportCmd struct {
	rangeFlags
	raw bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "prints the full accounting report" }
func (*reportCmd) Usage() string {
	return `tlx report [-raw] [-from <rfc3339>] [-to <rfc3339>]

  Prints balances, trade events, and external withdrawals in one report,
  rendered for the terminal. Use -raw to print plain markdown instead.

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f)
	f.BoolVar(&c.raw, "raw", false, "Print raw markdown without terminal styling.")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var b strings.Builder
	b.WriteString(renderer.BalanceMarkdown(ledger.BalanceReport()))
	b.WriteString("\n")
	b.WriteString(renderer.EventsMarkdown(ledger.TradeEventsIn(rng)))
	b.WriteString("\n")
	b.WriteString(renderer.WithdrawalsMarkdown(ledger.WithdrawEventsIn(rng)))

	if c.raw {
		fmt.Print(b.String())
		return subcommands.ExitSuccess
	}

	out, err := glamour.Render(b.String(), "auto")
	if err != nil {
		// styling is cosmetic, fall back to the raw markdown
		fmt.Print(b.String())
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

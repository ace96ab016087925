package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot/renderer"
)

type eventsCmd struct {
	rangeFlags
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "prints the trade audit trail" }
func (*eventsCmd) Usage() string {
	return `tlx events [-from <rfc3339>] [-to <rfc3339>]

  Prints the chronological list of trade events: the lot each fill produced
  and the cost-basis lots it consumed, with price-change annotations when a
  consumed lot traded on the same pair.

`
}

func (c *eventsCmd) SetFlags(f *flag.FlagSet) { c.rangeFlags.SetFlags(f) }

func (c *eventsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fmt.Print(renderer.EventsMarkdown(ledger.TradeEventsIn(rng)))
	return subcommands.ExitSuccess
}

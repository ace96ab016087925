package renderer

import (
	"fmt"
	"strings"

	"github.com/taxlot/taxlot"
)

// EventsMarkdown renders the chronological trade audit trail: each event
// shows the lot a fill produced and the lots it consumed, with a percentage
// price change whenever a consumed lot traded on the same pair.
func EventsMarkdown(events []*taxlot.TradeEvent) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Trade Events\n\n")

	if len(events) == 0 {
		fmt.Fprint(&b, "No trade events.\n")
		return b.String()
	}

	for _, ev := range events {
		fmt.Fprintf(&b, "- **%s** %s @ %s at %s `%s`\n",
			ev.Account, taxlot.M(ev.Result.Amount, ev.Result.Currency),
			ev.Result.DisplayPrice(), formatTime(ev.Result.Time), ev.ID)
		for _, source := range ev.Sources {
			fmt.Fprintf(&b, "  - using %s @ %s at %s\n",
				taxlot.M(source.Amount, source.Currency), source.DisplayPrice(), formatTime(source.Time))
			if pct, ok := ev.PriceChange(source); ok {
				fmt.Fprintf(&b, "    - %s %%\n", pct)
			}
		}
	}
	return b.String()
}

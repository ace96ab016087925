package renderer

import (
	"fmt"
	"strings"

	"github.com/taxlot/taxlot"
)

// WithdrawalsMarkdown renders the external-withdrawal audit trail: each
// event shows the withdrawn amount and the deposits and lots consumed to
// back it.
func WithdrawalsMarkdown(events []*taxlot.WithdrawEvent) string {
	var b strings.Builder
	fmt.Fprint(&b, "# External Withdrawals\n\n")

	if len(events) == 0 {
		fmt.Fprint(&b, "No external withdrawals.\n")
		return b.String()
	}

	for _, ev := range events {
		fmt.Fprintf(&b, "- **%s** %s to %s at %s `%s`\n",
			ev.Account, taxlot.M(ev.Withdrawal.Amount, ev.Withdrawal.Currency),
			destination(ev.Destination), formatTime(ev.Withdrawal.Date), ev.ID)
		for _, deposit := range ev.ReportableFunding() {
			fmt.Fprintf(&b, "  - using deposit of %s at %s\n",
				taxlot.M(deposit.Amount, deposit.Currency), formatTime(deposit.Date))
		}
		for _, lot := range ev.ReportableLots() {
			fmt.Fprintf(&b, "  - using lot of %s @ %s at %s\n",
				taxlot.M(lot.Amount, lot.Currency), lot.DisplayPrice(), formatTime(lot.Time))
		}
	}
	return b.String()
}

func destination(addr string) string {
	if addr == "" {
		return "?"
	}
	return addr
}

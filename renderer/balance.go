package renderer

import (
	"fmt"
	"strings"

	"github.com/taxlot/taxlot"
)

// BalanceMarkdown renders the per-account balance breakdown: combined
// balance, uncommitted funds, cost-basis lots and diagnostic shortfalls per
// currency.
func BalanceMarkdown(report []taxlot.AccountBalances) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Account Balances\n\n")

	for _, account := range report {
		fmt.Fprintf(&b, "## %s\n\n", account.Account)
		fmt.Fprintln(&b, "| Currency | Balance | Funds | Lots | Error |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")

		for _, cur := range currencies(account.Balance, account.Errors) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cur,
				cell(account.Balance, cur),
				cell(account.Funds, cur),
				cell(account.Lots, cur),
				cell(account.Errors, cur),
			)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

package taxlot

import (
	"github.com/shopspring/decimal"
)

// AccountBalances is the per-currency breakdown of one account's holdings.
type AccountBalances struct {
	Account string
	Balance map[string]decimal.Decimal // funds + lots, the owner's real holdings
	Funds   map[string]decimal.Decimal
	Lots    map[string]decimal.Decimal
	Errors  map[string]decimal.Decimal // diagnostic shortfalls, not real holdings
}

// BalanceReport breaks down every account's holdings, sorted by account.
func (l *Ledger) BalanceReport() []AccountBalances {
	report := make([]AccountBalances, 0, len(l.monies))
	for _, account := range l.Accounts() {
		m := l.monies[account]
		report = append(report, AccountBalances{
			Account: account,
			Balance: m.Balance(),
			Funds:   m.FundsBalance(),
			Lots:    m.LotsBalance(),
			Errors:  m.ErrorBalance(),
		})
	}
	return report
}

// TradeEventsIn returns the trade audit trail restricted to events whose
// resulting lot falls within the range.
func (l *Ledger) TradeEventsIn(r Range) []*TradeEvent {
	var events []*TradeEvent
	for _, ev := range l.events {
		if r.Contains(ev.Result.Time) {
			events = append(events, ev)
		}
	}
	return events
}

// WithdrawEventsIn returns the withdrawal audit trail restricted to events
// within the range. Withdrawals with no known date are excluded: they cannot
// be placed on a reporting timeline.
func (l *Ledger) WithdrawEventsIn(r Range) []*WithdrawEvent {
	var events []*WithdrawEvent
	for _, ev := range l.withdrawEvents {
		if ev.Withdrawal.Date.IsZero() {
			continue
		}
		if r.Contains(ev.Withdrawal.Date) {
			events = append(events, ev)
		}
	}
	return events
}

// PriceChange returns the resulting lot's price as a percentage of a source
// lot's price, when both traded on the same pair. ok is false otherwise.
func (ev *TradeEvent) PriceChange(source *Lot) (pct decimal.Decimal, ok bool) {
	if source.Pair != ev.Result.Pair || source.Price.IsZero() {
		return decimal.Zero, false
	}
	return ev.Result.Price.Div(source.Price).Mul(D(100)), true
}

// dustThreshold filters out residue amounts left behind by repeated lot
// splits; anything at or below it is noise in withdrawal reports.
var dustThreshold = decimal.RequireFromString("0.0000001")

// ReportableLots returns the consumed lots of a withdrawal that are worth
// reporting, excluding dust.
func (ev *WithdrawEvent) ReportableLots() []*Lot {
	var lots []*Lot
	for _, lot := range ev.Lots {
		if lot.Amount.GreaterThan(dustThreshold) {
			lots = append(lots, lot)
		}
	}
	return lots
}

// ReportableFunding returns the consumed transfers of a withdrawal that carry
// a date. Undated transfers (shortfall fills) are excluded.
func (ev *WithdrawEvent) ReportableFunding() []*Transfer {
	var transfers []*Transfer
	for _, t := range ev.Funding {
		if !t.Date.IsZero() {
			transfers = append(transfers, t)
		}
	}
	return transfers
}

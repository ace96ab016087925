package taxlot

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Monies aggregates one account's holdings: per-currency queues of
// uncommitted funds and of cost-basis lots, plus a per-currency error bucket
// recording shortfalls. The error bucket is a diagnostic signal, not part of
// the owner's real holdings.
type Monies struct {
	account string
	policy  Policy
	log     *slog.Logger

	funds    map[string]*Funds
	lots     map[string]*Lots
	errFunds map[string]*Funds
}

// NewMonies creates an empty aggregation for one account.
func NewMonies(account string, policy Policy, log *slog.Logger) *Monies {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Monies{
		account:  account,
		policy:   policy,
		log:      log,
		funds:    make(map[string]*Funds),
		lots:     make(map[string]*Lots),
		errFunds: make(map[string]*Funds),
	}
}

func (m *Monies) Account() string { return m.account }

// FundsFor returns the funds queue for a currency, creating it on first use.
func (m *Monies) FundsFor(currency string) *Funds {
	f, ok := m.funds[currency]
	if !ok {
		f = NewFunds(currency)
		m.funds[currency] = f
	}
	return f
}

// LotsFor returns the lot queue for a currency, creating it on first use.
func (m *Monies) LotsFor(currency string) *Lots {
	l, ok := m.lots[currency]
	if !ok {
		l = NewLots(currency)
		m.lots[currency] = l
	}
	return l
}

func (m *Monies) errorFundsFor(currency string) *Funds {
	f, ok := m.errFunds[currency]
	if !ok {
		f = NewFunds(currency)
		m.errFunds[currency] = f
	}
	return f
}

// FundsBalance returns the per-currency balance of uncommitted funds.
func (m *Monies) FundsBalance() map[string]decimal.Decimal {
	b := make(map[string]decimal.Decimal, len(m.funds))
	for cur, f := range m.funds {
		b[cur] = f.Balance()
	}
	return b
}

// LotsBalance returns the per-currency balance held in cost-basis lots.
func (m *Monies) LotsBalance() map[string]decimal.Decimal {
	b := make(map[string]decimal.Decimal, len(m.lots))
	for cur, l := range m.lots {
		b[cur] = l.Balance()
	}
	return b
}

// ErrorBalance returns the per-currency diagnostic shortfall balance.
func (m *Monies) ErrorBalance() map[string]decimal.Decimal {
	b := make(map[string]decimal.Decimal, len(m.errFunds))
	for cur, f := range m.errFunds {
		b[cur] = f.Balance()
	}
	return b
}

// Balance returns the combined per-currency balance of funds and lots. This
// is the only externally meaningful balance; the error bucket is excluded.
func (m *Monies) Balance() map[string]decimal.Decimal {
	b := m.FundsBalance()
	for cur, v := range m.LotsBalance() {
		if prev, ok := b[cur]; ok {
			b[cur] = prev.Add(v)
		} else {
			b[cur] = v
		}
	}
	return b
}

// Take removes the requested amount of currency, consuming the pools in the
// order the policy dictates (funds first by default), and returns a new
// Monies scoped to this currency holding everything consumed. Callers use
// the result to build audit trails.
//
// Insufficient balance never fails. When the second pool cannot cover the
// remainder within the policy tolerance, the shortfall is recorded in the
// error bucket and folded back into the taken funds, so incomplete upstream
// history degrades to a diagnostic instead of halting the run.
func (m *Monies) Take(currency string, amount decimal.Decimal) *Monies {
	// Log from the balance maps: FundsFor/LotsFor would create the queues,
	// and takeFundsFirst/takeLotsFirst must see an absent queue as absent.
	m.log.Debug("take", "account", m.account, "currency", currency, "amount", amount,
		"funds", m.FundsBalance()[currency], "lots", m.LotsBalance()[currency])

	taken := NewMonies(m.account, m.policy, m.log)
	switch m.policy.Order {
	case LotsFirst:
		lotsTaken, fundsTaken := m.takeLotsFirst(currency, amount)
		taken.funds[currency] = fundsTaken
		taken.lots[currency] = lotsTaken
	default:
		fundsTaken, lotsTaken := m.takeFundsFirst(currency, amount)
		taken.funds[currency] = fundsTaken
		taken.lots[currency] = lotsTaken
	}
	return taken
}

func (m *Monies) takeFundsFirst(currency string, amount decimal.Decimal) (*Funds, *Lots) {
	fundsTaken := m.FundsFor(currency).Take(amount)
	remaining := amount.Sub(fundsTaken.Balance())

	lotsTaken := NewLots(currency)
	if !remaining.IsZero() {
		lots := m.lots[currency]
		hadLots := !lots.IsEmpty()
		if hadLots {
			lotsTaken = lots.Take(remaining)
		}
		// A currency with no lots at all always records the shortfall; the
		// tolerance only softens a partially covered remainder.
		if !hadLots || m.short(lotsTaken.Balance(), remaining) {
			m.shortfall(currency, remaining)
			fundsTaken.Deposit(remaining, time.Time{})
		}
	}
	return fundsTaken, lotsTaken
}

func (m *Monies) takeLotsFirst(currency string, amount decimal.Decimal) (*Lots, *Funds) {
	lotsTaken := NewLots(currency)
	if lots, ok := m.lots[currency]; ok {
		lotsTaken = lots.Take(amount)
	}
	remaining := amount.Sub(lotsTaken.Balance())

	fundsTaken := NewFunds(currency)
	if !remaining.IsZero() {
		funds := m.funds[currency]
		hadFunds := !funds.IsEmpty()
		if hadFunds {
			fundsTaken = funds.Take(remaining)
		}
		if !hadFunds || m.short(fundsTaken.Balance(), remaining) {
			m.shortfall(currency, remaining)
			fundsTaken.Deposit(remaining, time.Time{})
		}
	}
	return lotsTaken, fundsTaken
}

// short reports whether got falls outside the policy tolerance of want.
func (m *Monies) short(got, want decimal.Decimal) bool {
	return got.Sub(want).Abs().GreaterThan(m.policy.ShortfallTolerance)
}

func (m *Monies) shortfall(currency string, remaining decimal.Decimal) {
	m.errorFundsFor(currency).Deposit(remaining, time.Time{})
	m.log.Warn("balance shortfall", "account", m.account, "currency", currency, "amount", remaining)
}

// AddFunding deposits the net amount of a funding record (amount minus fee)
// as new uncommitted funds. The record's amount must be valid.
func (m *Monies) AddFunding(r FundingRecord) {
	net := r.Amount.Decimal.Sub(positive(r.Fee))
	m.FundsFor(r.Currency).Deposit(net, r.Date)
	m.log.Debug("deposited", "account", m.account, "currency", r.Currency, "amount", net)
}

// AddLending deposits the earned interest of a lending event, net of fee, as
// new uncommitted funds. Interest income has no cost-basis lot.
func (m *Monies) AddLending(e LendingEvent) {
	net := e.Earned.Sub(positive(e.Fee))
	m.FundsFor(e.Currency).Deposit(net, time.Time{})
	m.log.Debug("lending payout", "account", m.account, "currency", e.Currency, "amount", net)
}

// AddLot routes a cost-basis lot into the queue of its currency.
func (m *Monies) AddLot(lot *Lot) {
	m.LotsFor(lot.Currency).Add(lot)
}

// AddLots routes several lots into their queues.
func (m *Monies) AddLots(lots []*Lot) {
	for _, lot := range lots {
		m.AddLot(lot)
	}
}

// allLots returns every lot held, across currencies, in stable currency order.
func (m *Monies) allLots() []*Lot {
	var all []*Lot
	for _, cur := range slices.Sorted(maps.Keys(m.lots)) {
		all = append(all, m.lots[cur].lots...)
	}
	return all
}

// allTransfers returns every transfer held, across currencies, in stable
// currency order.
func (m *Monies) allTransfers() []*Transfer {
	var all []*Transfer
	for _, cur := range slices.Sorted(maps.Keys(m.funds)) {
		all = append(all, m.funds[cur].transfers...)
	}
	return all
}

// TakenBalance is the total value held in this Monies for a currency, funds
// and lots combined. On the result of Take it equals the requested amount
// whenever no shortfall occurred.
func (m *Monies) TakenBalance(currency string) decimal.Decimal {
	sum := decimal.Zero
	if f, ok := m.funds[currency]; ok {
		sum = sum.Add(f.Balance())
	}
	if l, ok := m.lots[currency]; ok {
		sum = sum.Add(l.Balance())
	}
	return sum
}

func (m *Monies) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "funds = %v, lots = %v, error = %v", m.FundsBalance(), m.LotsBalance(), m.ErrorBalance())
	return b.String()
}

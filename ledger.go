package taxlot

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeEvent is the audit record of a trade fill that consumed existing
// cost-basis lots: which lots were consumed to produce the new one. Trades
// funded entirely by raw deposits produce no event, as there is no prior
// basis to report against.
type TradeEvent struct {
	ID      uuid.UUID
	Account string
	Sources []*Lot // consumed lots, oldest first
	Result  *Lot   // the lot created by the fill
}

// WithdrawEvent is the audit record of a withdrawal to an address outside
// the owner's control: the consumed transfers and lots form the cost-basis
// trail for the disposed value.
type WithdrawEvent struct {
	ID          uuid.UUID
	Account     string
	Funding     []*Transfer // consumed raw deposits
	Lots        []*Lot      // consumed cost-basis lots
	Withdrawal  Transfer
	Destination string // empty when the export carried no address
}

// Ledger processes a chronologically sorted batch of entries and accumulates
// per-account Monies together with the audit trail for capital-gains
// reporting. It is append-only over its lifetime and strictly sequential:
// one logical writer, no locking.
type Ledger struct {
	external map[string]struct{} // lowercased known external addresses
	policy   Policy
	log      *slog.Logger

	monies         map[string]*Monies
	events         []*TradeEvent
	withdrawEvents []*WithdrawEvent
}

// NewLedger creates a ledger. externalAddresses identifies, case-insensitively,
// the destination addresses outside the owner's control; withdrawals to them
// are recorded as reportable disposals. A nil logger discards all output.
func NewLedger(externalAddresses []string, policy Policy, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	external := make(map[string]struct{}, len(externalAddresses))
	for _, a := range externalAddresses {
		external[strings.ToLower(a)] = struct{}{}
	}
	return &Ledger{
		external: external,
		policy:   policy,
		log:      log,
		monies:   make(map[string]*Monies),
	}
}

// IsExternal reports whether the address is in the known-external set.
// A blank address is never external.
func (l *Ledger) IsExternal(address string) bool {
	if address == "" {
		return false
	}
	_, ok := l.external[strings.ToLower(address)]
	return ok
}

// MoniesFor returns the holdings of an account, creating them on first use.
func (l *Ledger) MoniesFor(account string) *Monies {
	m, ok := l.monies[account]
	if !ok {
		m = NewMonies(account, l.policy, l.log)
		l.monies[account] = m
	}
	return m
}

// Accounts returns the accounts seen so far, sorted.
func (l *Ledger) Accounts() []string {
	return slices.Sorted(maps.Keys(l.monies))
}

// Events returns the trade audit trail in processing order.
func (l *Ledger) Events() []*TradeEvent { return l.events }

// WithdrawEvents returns the external-withdrawal audit trail in processing
// order.
func (l *Ledger) WithdrawEvents() []*WithdrawEvent { return l.withdrawEvents }

// ProcessAll stable-sorts the entries chronologically (entries sharing an
// instant keep their input order) and processes each in turn. The first
// fatal error aborts the batch.
func (l *Ledger) ProcessAll(entries []Entry) error {
	SortEntries(entries)
	for _, e := range entries {
		if err := l.Process(e.Account, e.Record); err != nil {
			return fmt.Errorf("account %s: %w", e.Account, err)
		}
	}
	return nil
}

// SortEntries stable-sorts entries by record time, preserving input order for
// equal instants. This is the documented tie-break contract.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int { return a.When().Compare(b.When()) })
}

// Process applies a single record to the account's holdings. Unknown record
// kinds, unknown funding types and fee currencies matching neither leg of a
// trade pair are fatal: they indicate broken upstream data that cannot be
// guessed around. Insufficient balance is never fatal (see Monies.Take).
func (l *Ledger) Process(account string, rec Record) error {
	m := l.MoniesFor(account)
	switch r := rec.(type) {
	case FundingRecord:
		return l.processFunding(account, r, m)
	case TradeFill:
		return l.processTrade(account, r, m)
	case LendingEvent:
		l.processLending(account, r, m)
		return nil
	default:
		return fmt.Errorf("unknown record kind: %T", rec)
	}
}

func (l *Ledger) processFunding(account string, r FundingRecord, m *Monies) error {
	if !r.Amount.Valid {
		l.log.Warn("funding record with no amount, skipping",
			"account", account, "type", r.Type.String(), "currency", r.Currency, "date", r.Date)
		return nil
	}

	l.log.Debug("funding record", "account", account, "type", r.Type.String(),
		"currency", r.Currency, "amount", r.Amount.Decimal, "address", r.Address, "date", r.Date)

	switch r.Type {
	case Deposit:
		m.AddFunding(r)
	case Withdrawal:
		taken := m.Take(r.Currency, r.Amount.Decimal)
		if l.IsExternal(r.Address) {
			ev := &WithdrawEvent{
				ID:          uuid.New(),
				Account:     account,
				Funding:     taken.allTransfers(),
				Lots:        taken.allLots(),
				Withdrawal:  Transfer{Amount: r.Amount.Decimal, Currency: r.Currency, Date: r.Date},
				Destination: r.Address,
			}
			l.withdrawEvents = append(l.withdrawEvents, ev)
			l.log.Info("external withdrawal", "account", account,
				"currency", r.Currency, "amount", r.Amount.Decimal, "destination", r.Address)
		}
		// An internal transfer is not a disposal: the taken value is dropped.
	default:
		return fmt.Errorf("unknown funding record type: %v", r.Type)
	}
	return nil
}

func (l *Ledger) processLending(account string, e LendingEvent, m *Monies) {
	l.log.Debug("lending payout", "account", account, "currency", e.Currency,
		"earned", e.Earned, "fee", positive(e.Fee), "closed", e.Closed)
	m.AddLending(e)
}

// consumption describes which leg of a trade is consumed and which is
// produced, once the fee has been routed onto one of them.
type consumption struct {
	takeCurrency string
	takeAmount   decimal.Decimal
	addCurrency  string
	addAmount    decimal.Decimal
}

// routeFee determines consumed and produced legs from the order side and the
// fee currency. A fee denominated in neither leg of the pair is fatal.
func routeFee(t TradeFill) (consumption, error) {
	base, counter := t.Pair.Base, t.Pair.Counter
	counterAmount := t.CounterAmount()
	fee := positive(t.FeeAmount)

	switch t.Side {
	case Ask: // sell base for counter
		switch t.FeeCurrency {
		case counter:
			return consumption{base, t.BaseAmount, counter, counterAmount.Sub(fee)}, nil
		case base:
			return consumption{base, t.BaseAmount.Add(fee), counter, counterAmount}, nil
		}
	case Bid: // buy base using counter
		switch t.FeeCurrency {
		case counter:
			return consumption{counter, counterAmount.Add(fee), base, t.BaseAmount}, nil
		case base:
			return consumption{counter, counterAmount, base, t.BaseAmount.Sub(fee)}, nil
		}
	default:
		return consumption{}, fmt.Errorf("unknown order side: %v", t.Side)
	}
	return consumption{}, fmt.Errorf("fee currency %s matches neither base %s nor counter %s",
		t.FeeCurrency, base, counter)
}

func (l *Ledger) processTrade(account string, t TradeFill, m *Monies) error {
	order, err := routeFee(t)
	if err != nil {
		return err
	}

	l.log.Debug("trade fill", "account", account, "side", t.Side.String(), "pair", t.Pair.String(),
		"base", t.BaseAmount, "price", t.Price, "fee", positive(t.FeeAmount), "feeCurrency", t.FeeCurrency)

	result := &Lot{
		Currency: order.addCurrency,
		Amount:   order.addAmount,
		Price:    t.Price,
		Time:     t.Timestamp,
		Pair:     t.Pair,
	}
	sources := m.Take(order.takeCurrency, order.takeAmount)
	m.AddLot(result)

	if consumed := sources.allLots(); len(consumed) > 0 {
		l.events = append(l.events, &TradeEvent{
			ID:      uuid.New(),
			Account: account,
			Sources: consumed,
			Result:  result,
		})
	}
	return nil
}

func (l *Ledger) String() string {
	parts := make([]string, 0, len(l.monies))
	for _, account := range l.Accounts() {
		parts = append(parts, fmt.Sprintf("%s = %s", account, l.monies[account]))
	}
	return strings.Join(parts, ", ")
}

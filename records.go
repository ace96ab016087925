package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the closed union of event kinds the ledger understands:
// FundingRecord, TradeFill and LendingEvent. The unexported marker keeps the
// union closed so that dispatch stays exhaustive at compile time.
type Record interface {
	// When returns the instant the event took effect, used for chronological
	// ordering.
	When() time.Time

	record()
}

// FundingType discriminates deposits from withdrawals.
type FundingType int

const (
	Deposit FundingType = iota + 1
	Withdrawal
)

func (t FundingType) String() string {
	switch t {
	case Deposit:
		return "DEPOSIT"
	case Withdrawal:
		return "WITHDRAWAL"
	default:
		return fmt.Sprintf("FundingType(%d)", int(t))
	}
}

// ParseFundingType parses a funding record type string.
func ParseFundingType(s string) (FundingType, error) {
	switch s {
	case "DEPOSIT":
		return Deposit, nil
	case "WITHDRAWAL":
		return Withdrawal, nil
	default:
		return 0, fmt.Errorf("unknown funding record type: %q", s)
	}
}

// FundingRecord is a raw transfer of funds into or out of an account.
// Amount is nullable: some exchange exports contain funding rows with no
// amount, which the ledger skips rather than aborting on.
type FundingRecord struct {
	Type     FundingType
	Currency string
	Amount   decimal.NullDecimal
	Fee      decimal.Decimal // folded in as a positive magnitude; zero when absent
	Address  string          // destination address; empty when unknown
	Date     time.Time
}

func (r FundingRecord) When() time.Time { return r.Date }
func (FundingRecord) record()           {}

// Side is the order side of a trade fill.
type Side int

const (
	// Ask sells the base currency for the counter currency.
	Ask Side = iota + 1
	// Bid buys the base currency using the counter currency.
	Bid
)

func (s Side) String() string {
	switch s {
	case Ask:
		return "ASK"
	case Bid:
		return "BID"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide parses an order side string.
func ParseSide(s string) (Side, error) {
	switch s {
	case "ASK":
		return Ask, nil
	case "BID":
		return Bid, nil
	default:
		return 0, fmt.Errorf("unknown order side: %q", s)
	}
}

// TradeFill is one executed fill of an order on a trading pair. Price is
// expressed in counter units per base unit. The fee is denominated in
// FeeCurrency, which must be one of the two legs of the pair.
type TradeFill struct {
	Side        Side
	Pair        Pair
	BaseAmount  decimal.Decimal
	Price       decimal.Decimal
	FeeAmount   decimal.Decimal
	FeeCurrency string
	Timestamp   time.Time
}

func (t TradeFill) When() time.Time { return t.Timestamp }
func (TradeFill) record()           {}

// CounterAmount is the counter-currency value of the fill (base x price).
func (t TradeFill) CounterAmount() decimal.Decimal {
	return t.BaseAmount.Mul(t.Price)
}

// LendingEvent is an interest payout from a closed margin-lending offer.
// Earned net of fee enters the books as new uncommitted funds: interest
// income has no prior cost basis.
type LendingEvent struct {
	Currency string
	Rate     decimal.Decimal
	Amount   decimal.Decimal
	Duration decimal.Decimal // days
	Interest decimal.Decimal
	Fee      decimal.Decimal
	Earned   decimal.Decimal
	Open     time.Time
	Closed   time.Time
}

func (e LendingEvent) When() time.Time { return e.Closed }
func (LendingEvent) record()           {}

// Entry pairs a record with the account it belongs to.
type Entry struct {
	Account string
	Record  Record
}

// When returns the instant of the underlying record.
func (e Entry) When() time.Time { return e.Record.When() }

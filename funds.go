package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is an atomic unit of uncommitted funds: a deposit (or a split
// remainder of one) that has not yet been attributed to a trade. A Transfer
// lives in exactly one queue at a time; Take either moves it wholesale into
// the result or shrinks it in place and emits a fresh Transfer for the part
// taken.
type Transfer struct {
	Amount   decimal.Decimal
	Currency string
	Date     time.Time // zero when the origin date is unknown
}

// Funds is a per-currency FIFO queue of transfers, oldest first.
type Funds struct {
	currency  string
	transfers []*Transfer
	errAmount decimal.Decimal // diagnostic shortfall carried with the queue
}

// NewFunds creates an empty queue for the given currency.
func NewFunds(currency string) *Funds {
	return &Funds{currency: currency}
}

func (f *Funds) Currency() string { return f.currency }

// Transfers returns the live queue, oldest first. The slice is shared with
// the queue and must not be mutated by the caller.
func (f *Funds) Transfers() []*Transfer { return f.transfers }

// IsEmpty reports whether the queue holds no transfers. A nil queue is empty.
func (f *Funds) IsEmpty() bool { return f == nil || len(f.transfers) == 0 }

// Balance is the sum of all queued transfer amounts.
func (f *Funds) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range f.transfers {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// ErrorAmount is the diagnostic shortfall amount carried by this queue. It is
// not part of the balance.
func (f *Funds) ErrorAmount() decimal.Decimal { return f.errAmount }

// Deposit appends a new transfer to the end of the queue. Transfers are never
// merged: each keeps its own date for the audit trail.
func (f *Funds) Deposit(amount decimal.Decimal, date time.Time) {
	f.transfers = append(f.transfers, &Transfer{Amount: amount, Currency: f.currency, Date: date})
}

// Add appends all of other's transfers and accumulates its diagnostic amount.
// Adding funds of a different currency is a programming error.
func (f *Funds) Add(other *Funds) error {
	if f.currency != other.currency {
		return fmt.Errorf("cannot add funds when currencies differ: %s != %s", f.currency, other.currency)
	}
	f.transfers = append(f.transfers, other.transfers...)
	f.errAmount = f.errAmount.Add(other.errAmount)
	return nil
}

// Take removes up to amount from the queue, oldest transfer first, and
// returns the removed transfers as a new queue. A transfer larger than the
// remaining request is split: the queued transfer shrinks in place and a new
// transfer for the taken part (same date) goes to the result.
//
// Take stops early when the queue is exhausted; returning less than requested
// is not an error. Callers detect the shortfall by comparing the returned
// balance against the requested amount.
func (f *Funds) Take(amount decimal.Decimal) *Funds {
	taken := NewFunds(f.currency)

	remaining := amount
	for remaining.IsPositive() && len(f.transfers) > 0 {
		oldest := f.transfers[0]

		if oldest.Amount.LessThanOrEqual(remaining) {
			// e.g. deposit 100, remaining 200: move the transfer wholesale.
			remaining = remaining.Sub(oldest.Amount)
			f.transfers = f.transfers[1:]
			taken.transfers = append(taken.transfers, oldest)
		} else {
			// e.g. deposit 200, remaining 100: split.
			oldest.Amount = oldest.Amount.Sub(remaining)
			taken.transfers = append(taken.transfers, &Transfer{Amount: remaining, Currency: oldest.Currency, Date: oldest.Date})
			remaining = decimal.Zero
		}
	}

	return taken
}

package taxlot

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a cost-basis lot: currency produced by one side of a trade fill,
// together with the fill price (counter per base) and the pair it traded on.
// Amount is mutable: consuming part of a lot shrinks it in place.
type Lot struct {
	Currency string
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Time     time.Time
	Pair     Pair
}

// USDValue returns the USD-equivalent value of the lot at its entry price,
// when one leg of the pair is USD. ok is false otherwise.
func (l *Lot) USDValue() (v decimal.Decimal, ok bool) {
	return usdValue(l.Amount, l.Price, l.Pair)
}

func usdValue(amount, price decimal.Decimal, pair Pair) (decimal.Decimal, bool) {
	switch {
	case pair.Base == "USD":
		return D(1).Div(price).Mul(amount), true
	case pair.Counter == "USD":
		return price.Mul(amount), true
	default:
		return decimal.Zero, false
	}
}

// DisplayPrice renders the entry price with its pair, appending the
// USD-equivalent value when one leg of the pair is USD.
func (l *Lot) DisplayPrice() string {
	s := fmt.Sprintf("%s %s", l.Price, l.Pair)
	switch {
	case l.Pair.Base == "USD":
		p := D(1).Div(l.Price)
		return s + fmt.Sprintf(" (%s %s/%s, $%s)", p, l.Pair.Counter, l.Pair.Base, p.Mul(l.Amount))
	case l.Pair.Counter == "USD":
		return s + fmt.Sprintf(" ($%s)", l.Price.Mul(l.Amount))
	default:
		return s
	}
}

// Lots is a per-currency FIFO queue of cost-basis lots.
type Lots struct {
	currency string
	lots     []*Lot
}

// NewLots creates an empty lot queue for the given currency.
func NewLots(currency string) *Lots {
	return &Lots{currency: currency}
}

func (l *Lots) Currency() string { return l.currency }

// Slice returns the live lots. The slice is shared with the queue and must
// not be mutated by the caller.
func (l *Lots) Slice() []*Lot { return l.lots }

// IsEmpty reports whether the queue holds no lots. A nil queue is empty.
func (l *Lots) IsEmpty() bool { return l == nil || len(l.lots) == 0 }

// Balance is the sum of all queued lot amounts.
func (l *Lots) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range l.lots {
		sum = sum.Add(lot.Amount)
	}
	return sum
}

// Add appends a lot to the queue.
func (l *Lots) Add(lot *Lot) {
	l.lots = append(l.lots, lot)
}

// Merge appends all of other's lots.
func (l *Lots) Merge(other *Lots) {
	l.lots = append(l.lots, other.lots...)
}

// Take removes up to amount from the queue, oldest lot first, and returns the
// removed lots as a new queue. The queue is stable-sorted by fill time before
// every consumption, so FIFO order holds even when lots were inserted out of
// order; lots sharing an instant keep their insertion order.
//
// Like Funds.Take, it stops early when the queue is exhausted and never
// returns more value than requested.
func (l *Lots) Take(amount decimal.Decimal) *Lots {
	taken := NewLots(l.currency)

	slices.SortStableFunc(l.lots, func(a, b *Lot) int { return a.Time.Compare(b.Time) })

	remaining := amount
	for remaining.IsPositive() && len(l.lots) > 0 {
		oldest := l.lots[0]

		if oldest.Amount.LessThanOrEqual(remaining) {
			// e.g. lot 100, remaining 200: move the lot wholesale.
			remaining = remaining.Sub(oldest.Amount)
			l.lots = l.lots[1:]
			taken.lots = append(taken.lots, oldest)
		} else {
			// e.g. lot 200, remaining 100: split.
			oldest.Amount = oldest.Amount.Sub(remaining)
			taken.lots = append(taken.lots, &Lot{
				Currency: oldest.Currency,
				Amount:   remaining,
				Price:    oldest.Price,
				Time:     oldest.Time,
				Pair:     oldest.Pair,
			})
			remaining = decimal.Zero
		}
	}

	return taken
}

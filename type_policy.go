package taxlot

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConsumptionOrder defines which pool a withdrawal or trade consumes first.
type ConsumptionOrder int

const (
	// FundsFirst consumes uncommitted funds before cost-basis lots. This is
	// the historical behavior and the default.
	FundsFirst ConsumptionOrder = iota
	// LotsFirst consumes cost-basis lots before uncommitted funds.
	LotsFirst
)

func (o ConsumptionOrder) String() string {
	switch o {
	case FundsFirst:
		return "funds-first"
	case LotsFirst:
		return "lots-first"
	default:
		return "unknown"
	}
}

// ParseConsumptionOrder parses a string into a ConsumptionOrder.
func ParseConsumptionOrder(s string) (ConsumptionOrder, error) {
	switch s {
	case "funds-first":
		return FundsFirst, nil
	case "lots-first":
		return LotsFirst, nil
	default:
		return 0, fmt.Errorf("unknown consumption order: %q", s)
	}
}

// DefaultShortfallTolerance is the largest gap between a requested consumption
// and the value actually available that is not flagged as a shortfall. The
// value is carried over from the historical implementation; change it only
// with sign-off from whoever owns the books.
var DefaultShortfallTolerance = decimal.RequireFromString("0.000001")

// Policy groups the consumption knobs that were historically hardcoded.
type Policy struct {
	// ShortfallTolerance is the absolute gap tolerated before a take is
	// flagged as a shortfall and recorded in the error bucket.
	ShortfallTolerance decimal.Decimal
	// Order decides whether funds or lots are consumed first.
	Order ConsumptionOrder
}

// DefaultPolicy returns the historical policy: funds before lots, with a
// tolerance of 1e-6.
func DefaultPolicy() Policy {
	return Policy{ShortfallTolerance: DefaultShortfallTolerance, Order: FundsFirst}
}

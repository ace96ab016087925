package taxlot

import "time"

// Range represents a half-open-ended range of instants used to filter report
// output. A zero From or To means the range is unbounded on that side.
type Range struct{ From, To time.Time }

// NewRange creates a new range. If 'from' is after 'to', they are swapped.
func NewRange(from, to time.Time) Range {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains returns true when t is included in the range (boundaries included).
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// IsZero reports whether the range is fully unbounded.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

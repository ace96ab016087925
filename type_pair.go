package taxlot

import (
	"fmt"
	"strings"
)

// Pair identifies a trading pair. Prices on the pair are expressed as
// counter units per base unit.
type Pair struct {
	Base    string
	Counter string
}

// ParsePair parses a "BASE/COUNTER" string into a Pair.
func ParsePair(s string) (Pair, error) {
	base, counter, ok := strings.Cut(s, "/")
	if !ok || base == "" || counter == "" || strings.Contains(counter, "/") {
		return Pair{}, fmt.Errorf("invalid trading pair %q (want BASE/COUNTER)", s)
	}
	return Pair{Base: base, Counter: counter}, nil
}

// Invert swaps base and counter.
func (p Pair) Invert() Pair { return Pair{Base: p.Counter, Counter: p.Base} }

func (p Pair) String() string { return p.Base + "/" + p.Counter }

// MarshalText implements encoding.TextMarshaler so pairs serialize as
// "BASE/COUNTER" in JSON histories.
func (p Pair) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pair) UnmarshalText(b []byte) error {
	parsed, err := ParsePair(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

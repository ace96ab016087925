// Package renderer turns ledger reports into markdown suitable for terminal
// rendering or direct inclusion in documents.
package renderer

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// timeFormat is the display format for event timestamps.
const timeFormat = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.UTC().Format(timeFormat)
}

// currencies returns the sorted union of the currencies present in the maps.
func currencies(ms ...map[string]decimal.Decimal) []string {
	set := make(map[string]struct{})
	for _, m := range ms {
		for cur := range m {
			set[cur] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// cell renders a decimal balance cell, "-" when zero or absent.
func cell(m map[string]decimal.Decimal, cur string) string {
	v, ok := m[cur]
	if !ok || v.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %s", v, cur)
}

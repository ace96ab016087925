package taxlot

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// d parses an exact decimal, failing the build of the test on bad literals.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day returns a deterministic instant n days into the test epoch.
func day(n int) time.Time {
	return time.Date(2017, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// discard is the log sink used by tests.
var discard = slog.New(slog.DiscardHandler)

// null wraps a decimal literal into a valid NullDecimal.
func null(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

// checkBalance fails the test when got does not equal the want literal.
func checkBalance(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

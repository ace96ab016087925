package taxlot

import (
	"strings"
	"testing"
	"time"
)

func TestImportLendingCSV(t *testing.T) {
	csvData := `Currency,Rate,Amount,Duration,Interest,Fee,Earned,Open,Close
BTC,0.00015,2.5,2.0,0.00075,0.00011,0.00064,2017-06-01 10:00:00,2017-06-03 10:00:00
ETH,0.0002,10,1.0,0.002,0.0003,0.0017,2017-06-02 08:30:00,2017-06-03 08:30:00
`
	events, err := ImportLendingCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportLendingCSV() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	ev := events[0]
	if ev.Currency != "BTC" {
		t.Errorf("currency = %q, want BTC", ev.Currency)
	}
	checkBalance(t, "rate", ev.Rate, "0.00015")
	checkBalance(t, "earned", ev.Earned, "0.00064")
	wantClosed := time.Date(2017, time.June, 3, 10, 0, 0, 0, time.UTC)
	if !ev.Closed.Equal(wantClosed) {
		t.Errorf("closed = %v, want %v", ev.Closed, wantClosed)
	}
	if !ev.When().Equal(wantClosed) {
		t.Errorf("When() = %v, want the close time", ev.When())
	}
}

func TestImportLendingCSV_BadRow(t *testing.T) {
	csvData := `Currency,Rate,Amount,Duration,Interest,Fee,Earned,Open,Close
BTC,nope,2.5,2.0,0.00075,0.00011,0.00064,2017-06-01 10:00:00,2017-06-03 10:00:00
`
	if _, err := ImportLendingCSV(strings.NewReader(csvData)); err == nil {
		t.Fatal("ImportLendingCSV() should reject unparseable rows")
	}
}

func TestImportFundingCSV(t *testing.T) {
	csvData := `Date,Time (UTC),Type,Currency,Amount,Fee,Withdrawal Destination
2017-06-01,10:00:00.000,Credit,USD,"$1,234.56",,
2017-06-02,11:00:00.000,Debit,BTC,(0.123 BTC),,1ColdStorage
2017-06-03,12:00:00.000,Trade,BTC,0.5 BTC,,
`
	records, err := ImportFundingCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportFundingCSV() failed: %v", err)
	}
	// The Trade row is ignored.
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	dep := records[0]
	if dep.Type != Deposit {
		t.Errorf("type = %v, want deposit", dep.Type)
	}
	checkBalance(t, "amount", dep.Amount.Decimal, "1234.56")

	wd := records[1]
	if wd.Type != Withdrawal {
		t.Errorf("type = %v, want withdrawal", wd.Type)
	}
	checkBalance(t, "amount", wd.Amount.Decimal, "-0.123")
	if wd.Address != "1ColdStorage" {
		t.Errorf("address = %q, want 1ColdStorage", wd.Address)
	}
	want := time.Date(2017, time.June, 2, 11, 0, 0, 0, time.UTC)
	if !wd.Date.Equal(want) {
		t.Errorf("date = %v, want %v", wd.Date, want)
	}
}

func TestParseDisplayAmount(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"0.123 BTC", "0.123"},
		{"(0.123 BTC)", "-0.123"},
		{"$123.00", "123"},
		{`"$1,234.56 "`, "1234.56"},
		{`"($1,234.56) "`, "-1234.56"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseDisplayAmount(tc.in)
			if err != nil {
				t.Fatalf("parseDisplayAmount(%q) failed: %v", tc.in, err)
			}
			if !got.Equal(d(tc.want)) {
				t.Errorf("parseDisplayAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

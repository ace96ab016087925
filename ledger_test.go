package taxlot

import (
	"strings"
	"testing"
)

func newTestLedger(external ...string) *Ledger {
	return NewLedger(external, DefaultPolicy(), discard)
}

func deposit(amount string, n int) FundingRecord {
	return FundingRecord{Type: Deposit, Currency: "USD", Amount: null(amount), Date: day(n)}
}

func withdrawal(currency, amount, address string, n int) FundingRecord {
	return FundingRecord{Type: Withdrawal, Currency: currency, Amount: null(amount), Address: address, Date: day(n)}
}

func TestLedger_DepositCreatesNoAuditEntry(t *testing.T) {
	l := newTestLedger()
	if err := l.Process("gemini", deposit("1000", 1)); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	checkBalance(t, "funds", l.MoniesFor("gemini").FundsFor("USD").Balance(), "1000")
	if len(l.Events()) != 0 || len(l.WithdrawEvents()) != 0 {
		t.Errorf("deposits must not create audit entries: %d events, %d withdraw events",
			len(l.Events()), len(l.WithdrawEvents()))
	}
}

func TestLedger_NullAmountIsSkipped(t *testing.T) {
	l := newTestLedger()
	rec := FundingRecord{Type: Deposit, Currency: "USD", Date: day(1)} // no amount
	if err := l.Process("gemini", rec); err != nil {
		t.Fatalf("a funding record with no amount must be skipped, not fatal: %v", err)
	}
	if got := l.MoniesFor("gemini").FundsFor("USD").Balance(); !got.IsZero() {
		t.Errorf("funds balance = %s, want 0", got)
	}
}

func TestLedger_ExternalWithdrawal(t *testing.T) {
	l := newTestLedger("1ExternalWallet")
	if err := l.Process("gemini", deposit("1000", 1)); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	// Case-insensitive address match.
	if err := l.Process("gemini", withdrawal("USD", "400", "1externalwallet", 2)); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	events := l.WithdrawEvents()
	if len(events) != 1 {
		t.Fatalf("len(WithdrawEvents()) = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Account != "gemini" {
		t.Errorf("Account = %q, want %q", ev.Account, "gemini")
	}
	checkBalance(t, "Withdrawal.Amount", ev.Withdrawal.Amount, "400")
	if len(ev.Funding) != 1 {
		t.Fatalf("len(Funding) = %d, want 1", len(ev.Funding))
	}
	checkBalance(t, "consumed deposit", ev.Funding[0].Amount, "400")
	if ev.Destination != "1externalwallet" {
		t.Errorf("Destination = %q, want the record's address", ev.Destination)
	}
}

func TestLedger_InternalWithdrawalIsNotADisposal(t *testing.T) {
	l := newTestLedger("1ExternalWallet")
	if err := l.Process("gemini", deposit("1000", 1)); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	for _, address := range []string{"", "1SelfAddress"} {
		if err := l.Process("gemini", withdrawal("USD", "100", address, 2)); err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
	}

	if len(l.WithdrawEvents()) != 0 {
		t.Errorf("internal withdrawals must not create audit entries, got %d", len(l.WithdrawEvents()))
	}
	// The value is consumed either way.
	checkBalance(t, "funds", l.MoniesFor("gemini").FundsFor("USD").Balance(), "800")
}

func TestRouteFee(t *testing.T) {
	fill := func(side Side, feeCurrency string) TradeFill {
		return TradeFill{
			Side:        side,
			Pair:        Pair{Base: "XRP", Counter: "BTC"},
			BaseAmount:  d("10"),
			Price:       d("0.1"), // counter per base: 10 XRP = 1 BTC
			FeeAmount:   d("0.5"),
			FeeCurrency: feeCurrency,
			Timestamp:   day(1),
		}
	}

	testCases := []struct {
		name string
		fill TradeFill
		want consumption
	}{
		{
			name: "ask fee in counter",
			fill: fill(Ask, "BTC"),
			want: consumption{"XRP", d("10"), "BTC", d("0.5")},
		},
		{
			name: "ask fee in base",
			fill: fill(Ask, "XRP"),
			want: consumption{"XRP", d("10.5"), "BTC", d("1")},
		},
		{
			name: "bid fee in counter",
			fill: fill(Bid, "BTC"),
			want: consumption{"BTC", d("1.5"), "XRP", d("10")},
		},
		{
			name: "bid fee in base",
			fill: fill(Bid, "XRP"),
			want: consumption{"BTC", d("1"), "XRP", d("9.5")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := routeFee(tc.fill)
			if err != nil {
				t.Fatalf("routeFee() failed: %v", err)
			}
			if got.takeCurrency != tc.want.takeCurrency || !got.takeAmount.Equal(tc.want.takeAmount) {
				t.Errorf("consume %s %s, want %s %s",
					got.takeAmount, got.takeCurrency, tc.want.takeAmount, tc.want.takeCurrency)
			}
			if got.addCurrency != tc.want.addCurrency || !got.addAmount.Equal(tc.want.addAmount) {
				t.Errorf("produce %s %s, want %s %s",
					got.addAmount, got.addCurrency, tc.want.addAmount, tc.want.addCurrency)
			}
		})
	}
}

func TestRouteFee_AskBaseFeeNoProducedDeduction(t *testing.T) {
	// ASK 10 BASE at 1 COUNTER/BASE with a 0.1 BASE fee consumes 10.1 BASE
	// and produces exactly 1 COUNTER... at price 1 the produced amount is 10.
	got, err := routeFee(TradeFill{
		Side:        Ask,
		Pair:        Pair{Base: "XRP", Counter: "BTC"},
		BaseAmount:  d("10"),
		Price:       d("1"),
		FeeAmount:   d("0.1"),
		FeeCurrency: "XRP",
		Timestamp:   day(1),
	})
	if err != nil {
		t.Fatalf("routeFee() failed: %v", err)
	}
	checkBalance(t, "consumed", got.takeAmount, "10.1")
	checkBalance(t, "produced", got.addAmount, "10")
}

func TestRouteFee_UnknownFeeCurrencyIsFatal(t *testing.T) {
	_, err := routeFee(TradeFill{
		Side:        Ask,
		Pair:        Pair{Base: "XRP", Counter: "BTC"},
		BaseAmount:  d("10"),
		Price:       d("0.1"),
		FeeAmount:   d("0.5"),
		FeeCurrency: "ETH",
		Timestamp:   day(1),
	})
	if err == nil {
		t.Fatal("a fee in neither leg of the pair must be fatal")
	}
	if !strings.Contains(err.Error(), "ETH") {
		t.Errorf("error should name the offending currency: %v", err)
	}
}

func TestLedger_TradeFromRawFundsCreatesNoEvent(t *testing.T) {
	l := newTestLedger()
	entries := []Entry{
		{"gemini", deposit("1000", 1)},
		{"gemini", TradeFill{
			Side: Bid, Pair: btcusd(), BaseAmount: d("1"), Price: d("500"),
			FeeCurrency: "USD", Timestamp: day(2),
		}},
	}
	if err := l.ProcessAll(entries); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}

	// No prior cost basis was consumed: no audit entry.
	if len(l.Events()) != 0 {
		t.Errorf("len(Events()) = %d, want 0", len(l.Events()))
	}

	m := l.MoniesFor("gemini")
	checkBalance(t, "funds USD", m.FundsFor("USD").Balance(), "500")
	checkBalance(t, "lots BTC", m.LotsFor("BTC").Balance(), "1")
}

func TestLedger_TradeConsumingLotsCreatesEvent(t *testing.T) {
	l := newTestLedger()
	entries := []Entry{
		{"gemini", deposit("1000", 1)},
		// buy 1 BTC at 500
		{"gemini", TradeFill{Side: Bid, Pair: btcusd(), BaseAmount: d("1"), Price: d("500"),
			FeeCurrency: "USD", Timestamp: day(2)}},
		// sell it at 600
		{"gemini", TradeFill{Side: Ask, Pair: btcusd(), BaseAmount: d("1"), Price: d("600"),
			FeeCurrency: "USD", Timestamp: day(3)}},
	}
	if err := l.ProcessAll(entries); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}

	events := l.Events()
	if len(events) != 1 {
		t.Fatalf("len(Events()) = %d, want 1", len(events))
	}
	ev := events[0]
	if len(ev.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(ev.Sources))
	}
	checkBalance(t, "source lot", ev.Sources[0].Amount, "1")
	checkBalance(t, "source price", ev.Sources[0].Price, "500")
	checkBalance(t, "result lot", ev.Result.Amount, "600")
	if ev.Result.Currency != "USD" {
		t.Errorf("result currency = %q, want USD", ev.Result.Currency)
	}

	pct, ok := ev.PriceChange(ev.Sources[0])
	if !ok {
		t.Fatal("PriceChange() should apply: same pair on both lots")
	}
	checkBalance(t, "price change", pct, "120")
}

func TestLedger_Scenario(t *testing.T) {
	// Deposit 1000 USD, buy 1 BTC at 500, withdraw the BTC externally.
	l := newTestLedger("1ColdStorage")
	entries := []Entry{
		{"gemini", deposit("1000", 1)},
		{"gemini", TradeFill{Side: Bid, Pair: btcusd(), BaseAmount: d("1"), Price: d("500"),
			FeeCurrency: "USD", Timestamp: day(2)}},
		{"gemini", withdrawal("BTC", "1", "1ColdStorage", 3)},
	}
	if err := l.ProcessAll(entries); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}

	m := l.MoniesFor("gemini")
	checkBalance(t, "funds USD", m.FundsFor("USD").Balance(), "500")
	checkBalance(t, "lots BTC", m.LotsFor("BTC").Balance(), "0")

	events := l.WithdrawEvents()
	if len(events) != 1 {
		t.Fatalf("len(WithdrawEvents()) = %d, want 1", len(events))
	}
	ev := events[0]
	if len(ev.Lots) != 1 {
		t.Fatalf("len(Lots) = %d, want 1", len(ev.Lots))
	}
	checkBalance(t, "consumed lot amount", ev.Lots[0].Amount, "1")
	checkBalance(t, "consumed lot price", ev.Lots[0].Price, "500")
	if !ev.Lots[0].Time.Equal(day(2)) {
		t.Errorf("consumed lot time = %v, want the trade's day", ev.Lots[0].Time)
	}
}

func TestLedger_ProcessAllSortsStably(t *testing.T) {
	// Entries arrive out of order; the withdrawal happens after the deposit
	// chronologically, so no shortfall may be flagged.
	l := newTestLedger()
	entries := []Entry{
		{"gemini", withdrawal("USD", "100", "", 2)},
		{"gemini", deposit("1000", 1)},
	}
	if err := l.ProcessAll(entries); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}
	if got := l.MoniesFor("gemini").ErrorBalance(); len(got) != 0 {
		t.Errorf("unexpected error balance: %v", got)
	}
	checkBalance(t, "funds", l.MoniesFor("gemini").FundsFor("USD").Balance(), "900")
}

func TestLedger_TieBreakPreservesInputOrder(t *testing.T) {
	// Two entries sharing an instant: the deposit listed first must be
	// processed first.
	l := newTestLedger()
	entries := []Entry{
		{"gemini", deposit("100", 1)},
		{"gemini", withdrawal("USD", "100", "", 1)},
	}
	if err := l.ProcessAll(entries); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}
	if got := l.MoniesFor("gemini").ErrorBalance(); len(got) != 0 {
		t.Errorf("unexpected error balance: %v", got)
	}
}

func TestLedger_AccountsAreIndependent(t *testing.T) {
	l := newTestLedger()
	if err := l.ProcessAll([]Entry{
		{"gemini", deposit("1000", 1)},
		{"poloniex", deposit("50", 1)},
	}); err != nil {
		t.Fatalf("ProcessAll() failed: %v", err)
	}

	checkBalance(t, "gemini", l.MoniesFor("gemini").FundsFor("USD").Balance(), "1000")
	checkBalance(t, "poloniex", l.MoniesFor("poloniex").FundsFor("USD").Balance(), "50")
	if got := l.Accounts(); len(got) != 2 || got[0] != "gemini" || got[1] != "poloniex" {
		t.Errorf("Accounts() = %v, want [gemini poloniex]", got)
	}
}

func TestLedger_LendingEvent(t *testing.T) {
	l := newTestLedger()
	if err := l.Process("poloniex", LendingEvent{
		Currency: "BTC",
		Earned:   d("0.02"),
		Fee:      d("0.003"),
		Closed:   day(4),
	}); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	checkBalance(t, "funds", l.MoniesFor("poloniex").FundsFor("BTC").Balance(), "0.017")
}

func TestLedger_WithdrawalShortfallIsNotFatal(t *testing.T) {
	l := newTestLedger("1ColdStorage")
	if err := l.Process("gemini", withdrawal("BTC", "2", "1ColdStorage", 1)); err != nil {
		t.Fatalf("an uncovered withdrawal must not be fatal: %v", err)
	}
	checkBalance(t, "error", l.MoniesFor("gemini").ErrorBalance()["BTC"], "2")

	// The audit entry still balances to the withdrawn amount.
	events := l.WithdrawEvents()
	if len(events) != 1 {
		t.Fatalf("len(WithdrawEvents()) = %d, want 1", len(events))
	}
	sum := d("0")
	for _, tr := range events[0].Funding {
		sum = sum.Add(tr.Amount)
	}
	checkBalance(t, "audit funding total", sum, "2")
}

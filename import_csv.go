package taxlot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// csvRows reads a headed CSV into one map per row, keyed by header.
func csvRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, record := range all[1:] {
		row := make(map[string]string, len(header))
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// lendingTimeLayout is the timestamp format of lending-history exports.
const lendingTimeLayout = "2006-01-02 15:04:05 MST"

// ImportLendingCSV parses a lending-history CSV export with columns
// Currency,Rate,Amount,Duration,Interest,Fee,Earned,Open,Close. Timestamps
// are interpreted as UTC.
func ImportLendingCSV(r io.Reader) ([]LendingEvent, error) {
	rows, err := csvRows(r)
	if err != nil {
		return nil, err
	}

	events := make([]LendingEvent, 0, len(rows))
	for i, row := range rows {
		ev, err := rowToLendingEvent(row)
		if err != nil {
			return nil, fmt.Errorf("lending row %d: %w", i+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func rowToLendingEvent(row map[string]string) (LendingEvent, error) {
	var ev LendingEvent
	var err error

	ev.Currency = row["Currency"]
	if ev.Currency == "" {
		return ev, fmt.Errorf("missing Currency")
	}
	decimals := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"Rate", &ev.Rate},
		{"Amount", &ev.Amount},
		{"Duration", &ev.Duration},
		{"Interest", &ev.Interest},
		{"Fee", &ev.Fee},
		{"Earned", &ev.Earned},
	}
	for _, d := range decimals {
		if *d.dst, err = decimal.NewFromString(row[d.name]); err != nil {
			return ev, fmt.Errorf("%s: %w", d.name, err)
		}
	}
	if ev.Open, err = time.Parse(lendingTimeLayout, row["Open"]+" UTC"); err != nil {
		return ev, fmt.Errorf("Open: %w", err)
	}
	if ev.Closed, err = time.Parse(lendingTimeLayout, row["Close"]+" UTC"); err != nil {
		return ev, fmt.Errorf("Close: %w", err)
	}
	return ev, nil
}

// fundingTimeLayout is the timestamp format of funding-history exports.
const fundingTimeLayout = "2006-01-02 15:04:05.000 MST"

// ImportFundingCSV parses a transaction-history CSV export with columns
// Date,Time (UTC),Type,Currency,Amount,Fee,Withdrawal Destination, where Type
// is Credit or Debit. Other rows (trades, fee summaries) are ignored.
// Amounts come in the export's display form: "(0.123)" for negatives,
// "$1,234.56" for fiat.
func ImportFundingCSV(r io.Reader) ([]FundingRecord, error) {
	rows, err := csvRows(r)
	if err != nil {
		return nil, err
	}

	var records []FundingRecord
	for i, row := range rows {
		var typ FundingType
		switch row["Type"] {
		case "Credit":
			typ = Deposit
		case "Debit":
			typ = Withdrawal
		default:
			continue
		}

		rec, err := rowToFundingRecord(typ, row)
		if err != nil {
			return nil, fmt.Errorf("funding row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowToFundingRecord(typ FundingType, row map[string]string) (FundingRecord, error) {
	rec := FundingRecord{Type: typ, Currency: row["Currency"], Address: row["Withdrawal Destination"]}
	if rec.Currency == "" {
		return rec, fmt.Errorf("missing Currency")
	}

	date, err := time.Parse(fundingTimeLayout, row["Date"]+" "+row["Time (UTC)"]+" UTC")
	if err != nil {
		return rec, fmt.Errorf("Date: %w", err)
	}
	rec.Date = date

	if raw := strings.TrimSpace(row["Amount"]); raw != "" {
		amount, err := parseDisplayAmount(raw)
		if err != nil {
			return rec, fmt.Errorf("Amount: %w", err)
		}
		rec.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
	}
	if raw := strings.TrimSpace(row["Fee"]); raw != "" {
		fee, err := parseDisplayAmount(raw)
		if err != nil {
			return rec, fmt.Errorf("Fee: %w", err)
		}
		rec.Fee = fee
	}
	return rec, nil
}

// parseDisplayAmount parses an amount in export display form:
//
//	"0.123 BTC"    -> 0.123
//	"(0.123 BTC)"  -> -0.123
//	"$1,234.56"    -> 1234.56
//	"($1,234.56)"  -> -1234.56
func parseDisplayAmount(s string) (decimal.Decimal, error) {
	s = strings.Trim(s, `" `)
	negative := strings.HasPrefix(s, "(")
	s = strings.Trim(s, "() ")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	// drop a trailing currency code, e.g. "0.123 BTC"
	if value, _, ok := strings.Cut(s, " "); ok {
		s = value
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

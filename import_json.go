package taxlot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Raw exchange history dumps come in whatever JSON shape the exchange's API
// returned. Rather than one decoder per exchange, field extraction is driven
// by jsonpath expressions, so adding an exchange is a mapping, not code.

// FundingMapping locates funding-record fields inside a raw history dump.
type FundingMapping struct {
	Rows        string // path selecting the row objects, e.g. "$.transfers[*]"
	Type        string // path, within a row, to the record type
	Deposits    string // Type value identifying deposits
	Withdrawals string // Type value identifying withdrawals
	Currency    string
	Amount      string // optional in the data: rows without it keep a null amount
	Fee         string // optional
	Address     string // optional
	Date        string
	DateLayout  string // time layout of Date; defaults to time.RFC3339
}

// TradeMapping locates trade-fill fields inside a raw history dump.
type TradeMapping struct {
	Rows        string
	Side        string // path to the order side
	Asks        string // Side value identifying sells
	Bids        string // Side value identifying buys
	Pair        string // path to the "BASE/COUNTER" pair
	BaseAmount  string
	Price       string
	FeeAmount   string // optional
	FeeCurrency string
	Timestamp   string
	DateLayout  string
}

// ImportFundingJSON extracts funding records from a raw exchange JSON dump
// using the given mapping.
func ImportFundingJSON(r io.Reader, m FundingMapping) ([]FundingRecord, error) {
	rows, err := selectRows(r, m.Rows)
	if err != nil {
		return nil, err
	}

	records := make([]FundingRecord, 0, len(rows))
	for i, row := range rows {
		typ, err := pathString(row, m.Type)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var ftype FundingType
		switch typ {
		case m.Deposits:
			ftype = Deposit
		case m.Withdrawals:
			ftype = Withdrawal
		default:
			return nil, fmt.Errorf("row %d: unknown funding record type: %q", i, typ)
		}

		currency, err := pathString(row, m.Currency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		date, err := pathTime(row, m.Date, m.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		rec := FundingRecord{Type: ftype, Currency: currency, Date: date}
		if amount, ok := optionalDecimal(row, m.Amount); ok {
			rec.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
		}
		if fee, ok := optionalDecimal(row, m.Fee); ok {
			rec.Fee = fee
		}
		if addr, err := pathString(row, m.Address); m.Address != "" && err == nil {
			rec.Address = addr
		}
		records = append(records, rec)
	}
	return records, nil
}

// ImportTradesJSON extracts trade fills from a raw exchange JSON dump using
// the given mapping.
func ImportTradesJSON(r io.Reader, m TradeMapping) ([]TradeFill, error) {
	rows, err := selectRows(r, m.Rows)
	if err != nil {
		return nil, err
	}

	fills := make([]TradeFill, 0, len(rows))
	for i, row := range rows {
		sideValue, err := pathString(row, m.Side)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var side Side
		switch sideValue {
		case m.Asks:
			side = Ask
		case m.Bids:
			side = Bid
		default:
			return nil, fmt.Errorf("row %d: unknown order side: %q", i, sideValue)
		}

		pairValue, err := pathString(row, m.Pair)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		pair, err := ParsePair(pairValue)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		baseAmount, err := pathDecimal(row, m.BaseAmount)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		price, err := pathDecimal(row, m.Price)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		feeCurrency, err := pathString(row, m.FeeCurrency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		timestamp, err := pathTime(row, m.Timestamp, m.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		fill := TradeFill{Side: side, Pair: pair, BaseAmount: baseAmount, Price: price,
			FeeCurrency: feeCurrency, Timestamp: timestamp}
		if fee, ok := optionalDecimal(row, m.FeeAmount); ok {
			fill.FeeAmount = fee
		}
		fills = append(fills, fill)
	}
	return fills, nil
}

// selectRows decodes the dump and selects the row objects. Numbers are kept
// as json.Number so no precision is lost on the way to decimals.
func selectRows(r io.Reader, rowsPath string) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not decode history dump: %w", err)
	}

	jval, err := jsonpath.Get(rowsPath, jobj)
	if err != nil {
		return nil, fmt.Errorf("could not select rows %q: %w", rowsPath, err)
	}
	rows, ok := jval.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer; a lone object counts as one row.
		rows = []any{jval}
	}
	return rows, nil
}

func pathValue(row any, path string) (any, error) {
	jval, err := jsonpath.Get(path, row)
	if err != nil {
		return nil, fmt.Errorf("could not select %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("no value at %q", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

func pathString(row any, path string) (string, error) {
	jval, err := pathValue(row, path)
	if err != nil {
		return "", err
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("value at %q is %T, want string", path, jval)
	}
	return s, nil
}

func pathDecimal(row any, path string) (decimal.Decimal, error) {
	jval, err := pathValue(row, path)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("value at %q is %T, want number", path, jval)
	}
}

// optionalDecimal resolves a decimal field that may be absent, either in the
// mapping or in the row.
func optionalDecimal(row any, path string) (decimal.Decimal, bool) {
	if path == "" {
		return decimal.Zero, false
	}
	d, err := pathDecimal(row, path)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func pathTime(row any, path, layout string) (time.Time, error) {
	s, err := pathString(row, path)
	if err != nil {
		return time.Time{}, err
	}
	if layout == "" {
		layout = time.RFC3339
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse time %q: %w", s, err)
	}
	return t, nil
}

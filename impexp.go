package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// this file handles the history import/export format: one JSONL file per
// account, human readable, easy to diff and merge.

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// record kinds used on the wire.
const (
	kindDeposit    = "deposit"
	kindWithdrawal = "withdrawal"
	kindTrade      = "trade"
	kindLending    = "lending"
)

type jfunding struct {
	Kind     string           `json:"kind"`
	Currency string           `json:"currency"`
	Amount   *decimal.Decimal `json:"amount,omitempty"` // nil when the export had none
	Fee      decimal.Decimal  `json:"fee,omitempty"`
	Address  string           `json:"address,omitempty"`
	Date     time.Time        `json:"date"`
}

type jtrade struct {
	Kind        string          `json:"kind"`
	Side        string          `json:"side"`
	Pair        Pair            `json:"pair"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	Price       decimal.Decimal `json:"price"`
	FeeAmount   decimal.Decimal `json:"feeAmount,omitempty"`
	FeeCurrency string          `json:"feeCurrency"`
	Timestamp   time.Time       `json:"timestamp"`
}

type jlending struct {
	Kind     string          `json:"kind"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
	Duration decimal.Decimal `json:"duration"`
	Interest decimal.Decimal `json:"interest"`
	Fee      decimal.Decimal `json:"fee"`
	Earned   decimal.Decimal `json:"earned"`
	Open     time.Time       `json:"open"`
	Closed   time.Time       `json:"closed"`
}

// DecodeHistory decodes one account's history from JSONL data: one record
// per line, identified by its "kind" property.
func DecodeHistory(account string, r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %q: %w", string(line), err)
		}

		var rec Record
		switch identifier.Kind {
		case kindDeposit, kindWithdrawal:
			var jr jfunding
			if err := json.Unmarshal(line, &jr); err != nil {
				return nil, fmt.Errorf("could not parse funding record %q: %w", string(line), err)
			}
			rec = jr.record()
		case kindTrade:
			var jr jtrade
			if err := json.Unmarshal(line, &jr); err != nil {
				return nil, fmt.Errorf("could not parse trade fill %q: %w", string(line), err)
			}
			tf, err := jr.record()
			if err != nil {
				return nil, fmt.Errorf("invalid trade fill %q: %w", string(line), err)
			}
			rec = tf
		case kindLending:
			var jr jlending
			if err := json.Unmarshal(line, &jr); err != nil {
				return nil, fmt.Errorf("could not parse lending event %q: %w", string(line), err)
			}
			rec = jr.record()
		default:
			return nil, fmt.Errorf("unknown record kind %q in line %q", identifier.Kind, string(line))
		}
		entries = append(entries, Entry{Account: account, Record: rec})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read history: %w", err)
	}
	return entries, nil
}

func (jr jfunding) record() FundingRecord {
	typ := Deposit
	if jr.Kind == kindWithdrawal {
		typ = Withdrawal
	}
	amount := decimal.NullDecimal{}
	if jr.Amount != nil {
		amount = decimal.NullDecimal{Decimal: *jr.Amount, Valid: true}
	}
	return FundingRecord{
		Type:     typ,
		Currency: jr.Currency,
		Amount:   amount,
		Fee:      jr.Fee,
		Address:  jr.Address,
		Date:     jr.Date,
	}
}

func (jr jtrade) record() (TradeFill, error) {
	side, err := ParseSide(jr.Side)
	if err != nil {
		return TradeFill{}, err
	}
	return TradeFill{
		Side:        side,
		Pair:        jr.Pair,
		BaseAmount:  jr.BaseAmount,
		Price:       jr.Price,
		FeeAmount:   jr.FeeAmount,
		FeeCurrency: jr.FeeCurrency,
		Timestamp:   jr.Timestamp,
	}, nil
}

func (jr jlending) record() LendingEvent {
	return LendingEvent{
		Currency: jr.Currency,
		Rate:     jr.Rate,
		Amount:   jr.Amount,
		Duration: jr.Duration,
		Interest: jr.Interest,
		Fee:      jr.Fee,
		Earned:   jr.Earned,
		Open:     jr.Open,
		Closed:   jr.Closed,
	}
}

// EncodeHistory writes entries in the JSONL history format, one record per
// line. The account of each entry is implied by the destination file and not
// written.
func EncodeHistory(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		var jr any
		switch r := e.Record.(type) {
		case FundingRecord:
			kind := kindDeposit
			if r.Type == Withdrawal {
				kind = kindWithdrawal
			}
			var amount *decimal.Decimal
			if r.Amount.Valid {
				amount = &r.Amount.Decimal
			}
			jr = jfunding{Kind: kind, Currency: r.Currency, Amount: amount, Fee: r.Fee, Address: r.Address, Date: r.Date}
		case TradeFill:
			jr = jtrade{Kind: kindTrade, Side: r.Side.String(), Pair: r.Pair, BaseAmount: r.BaseAmount,
				Price: r.Price, FeeAmount: r.FeeAmount, FeeCurrency: r.FeeCurrency, Timestamp: r.Timestamp}
		case LendingEvent:
			jr = jlending{Kind: kindLending, Currency: r.Currency, Rate: r.Rate, Amount: r.Amount,
				Duration: r.Duration, Interest: r.Interest, Fee: r.Fee, Earned: r.Earned, Open: r.Open, Closed: r.Closed}
		default:
			return fmt.Errorf("unknown record kind: %T", e.Record)
		}
		if err := enc.Encode(jr); err != nil {
			return fmt.Errorf("could not encode record: %w", err)
		}
	}
	return nil
}

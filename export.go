package taxlot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvTime formats a timestamp for the tax-lot export.
func csvTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// taxLotHeader is the column set expected by external tax-lot tooling.
var taxLotHeader = []string{
	"Exchange", "ID", "Amount", "Currency",
	"EntryPrice", "ExitPrice", "EntryPriceUsd", "ExitPriceUsd",
	"EntryDate", "ExitDate", "Source", "DestinationAddress",
}

// ExportTaxLots writes the flat CSV tax-lot export for withdrawals inside the
// range: one row per consumed deposit or lot feeding a qualifying external
// withdrawal. The ID column groups rows by withdrawal (1-based, in
// chronological processing order).
func (l *Ledger) ExportTaxLots(w io.Writer, r Range) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taxLotHeader); err != nil {
		return fmt.Errorf("could not write tax-lot header: %w", err)
	}

	for i, ev := range l.WithdrawEventsIn(r) {
		id := strconv.Itoa(i + 1)
		exitDate := csvTime(ev.Withdrawal.Date)

		for _, deposit := range ev.ReportableFunding() {
			if deposit.Currency != ev.Withdrawal.Currency {
				return fmt.Errorf("withdrawal %s consumed a %s deposit: currency mismatch",
					ev.Withdrawal.Currency, deposit.Currency)
			}
			row := []string{
				ev.Account,
				id,
				deposit.Amount.String(),
				deposit.Currency,
				"", // EntryPrice: a raw deposit has no cost basis
				"", // ExitPrice
				"", // EntryPriceUsd
				"", // ExitPriceUsd
				csvTime(deposit.Date),
				exitDate,
				"Deposit",
				ev.Destination,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("could not write tax-lot row: %w", err)
			}
		}

		for _, lot := range ev.ReportableLots() {
			if lot.Currency != ev.Withdrawal.Currency {
				return fmt.Errorf("withdrawal %s consumed a %s lot: currency mismatch",
					ev.Withdrawal.Currency, lot.Currency)
			}
			entryUsd := ""
			if v, ok := lot.USDValue(); ok {
				entryUsd = v.String()
			}
			row := []string{
				ev.Account,
				id,
				lot.Amount.String(),
				lot.Currency,
				// The price is quoted counter-per-base, so the pair reads
				// inverted next to it.
				fmt.Sprintf("%s %s", lot.Price, lot.Pair.Invert()),
				"", // ExitPrice
				entryUsd,
				"", // ExitPriceUsd
				csvTime(lot.Time),
				exitDate,
				"Transaction",
				ev.Destination,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("could not write tax-lot row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Package taxlot maintains an exact accounting of trading-account funds and
// cost-basis lots across one or more exchange accounts.
//
// The package consumes a chronologically sorted stream of funding records,
// trade fills and lending payouts, and tracks, per account and per currency,
// uncommitted funds (raw deposits) and cost-basis lots created by trades.
// Consumption is strictly first-in first-out: withdrawals and trades consume
// uncommitted funds first, then the oldest lots, splitting the last entry
// when it exceeds the requested amount.
//
// All arithmetic is exact decimal arithmetic; no floating point is used in
// accounting paths. Insufficient balances never abort processing: the
// shortfall is recorded in a per-currency diagnostic bucket so that operators
// can detect incomplete upstream history.
//
// The [Ledger] is the entry point: it processes [Entry] values, accumulates
// per-account [Monies], and records the audit trail ([TradeEvent],
// [WithdrawEvent]) needed for capital-gains reporting.
package taxlot

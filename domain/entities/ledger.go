package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period bounds a ledger query. Nil bounds are unbounded; a period with
// a nil Start is the all-time view, whose opening balance is zero by
// definition.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// AllTime returns true when the period has no lower bound
func (p Period) AllTime() bool {
	return p.Start == nil
}

// Contains reports whether a timestamp falls inside the period
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && !t.Before(*p.End) {
		return false
	}
	return true
}

// ClientTransaction is a transaction joined with its owner's name,
// produced for the admin mirror view
type ClientTransaction struct {
	Transaction
	ClientName string `db:"client_name"`
}

// LedgerEntry is one displayed ledger row. Movement is the entry's
// effect as of now (zero when reversed), never the stored balance-after
// snapshot; RunningBalance is replayed from the view's opening balance.
type LedgerEntry struct {
	Transaction    *Transaction
	ClientName     string // filled on the admin mirror view
	Movement       decimal.Decimal
	RunningBalance decimal.Decimal
}

// LedgerView is a reconstructed ledger over a period. For client views
// the entries are the client's own transactions; for the admin mirror
// view they are every client transaction inverted.
type LedgerView struct {
	ClientID       *int64 // nil for the admin mirror view
	Period         Period
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Entries        []*LedgerEntry
}

// Replay fills in each entry's running balance from the opening balance
// and returns the closing balance. Entries must already be in
// chronological order.
func (v *LedgerView) Replay() decimal.Decimal {
	running := v.OpeningBalance
	for _, e := range v.Entries {
		running = running.Add(e.Movement)
		e.RunningBalance = running
	}
	v.ClosingBalance = running
	return running
}

package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientFailure reports one client group that could not be settled.
// The bets in it remain unpaid and are picked up by a resumed run.
type ClientFailure struct {
	ClientID int64
	BetIDs   []int64
	Reason   string
}

// SettlementResult summarizes one settlement run over a draw
type SettlementResult struct {
	DrawID           int64
	WinningNumbers   []string
	BetsEvaluated    int
	BetsPaid         int
	BetsSkipped      int // already paid by an earlier run
	TotalPayout      decimal.Decimal
	WinningClientIDs []int64
	Failures         []ClientFailure
	Finished         bool
}

// Complete returns true if every bet has an outcome and the draw can be
// marked finished
func (r *SettlementResult) Complete() bool {
	return len(r.Failures) == 0
}

// SettlementLog is the durable record of a finished settlement run,
// one row per draw
type SettlementLog struct {
	ID             int64           `db:"id"`
	DrawID         int64           `db:"draw_id"`
	WinningNumbers []string        `db:"winning_numbers"`
	BetsEvaluated  int             `db:"bets_evaluated"`
	BetsPaid       int             `db:"bets_paid"`
	WinningClients int             `db:"winning_clients"`
	TotalPayout    decimal.Decimal `db:"total_payout"`
	CreatedAt      time.Time       `db:"created_at"`
}

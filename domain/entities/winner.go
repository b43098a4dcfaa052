package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawWinner represents a paid winning bet. The unique bet id makes a
// duplicate payout impossible no matter how a settlement run is retried.
type DrawWinner struct {
	ID            int64           `db:"id"`
	DrawID        int64           `db:"draw_id"`
	ClientID      int64           `db:"client_id"`
	BetID         int64           `db:"bet_id"`
	Prize         decimal.Decimal `db:"prize"`
	TransactionID int64           `db:"transaction_id"`
	CreatedAt     time.Time       `db:"created_at"`
}

// WinningBet pairs a paid bet with its prize for the winners report
type WinningBet struct {
	Bet           *Bet
	Prize         decimal.Decimal
	TransactionID int64
}

// ClientWinnings groups one client's paid bets on a draw
type ClientWinnings struct {
	ClientID   int64
	ClientName string
	Bets       []*WinningBet
	TotalWon   decimal.Decimal
}

// DrawWinnersReport is the per-client breakdown of a settled draw
type DrawWinnersReport struct {
	DrawID         int64
	WinningNumbers []string
	Clients        []*ClientWinnings
	TotalPayout    decimal.Decimal
}

package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"lottohouse/domain/entities"
)

// WalletService defines the interface for wallet movement operations.
// Every movement updates the tracked balance and appends the matching
// ledger entry as one unit; callers never touch either side directly.
type WalletService interface {
	// Credit adds amount to a client's wallet
	Credit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error)

	// Debit removes amount from a client's wallet; fails with
	// ErrInsufficientFunds rather than letting the balance go negative
	Debit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error)

	// Adjust posts a manual admin deposit or withdrawal
	Adjust(ctx context.Context, clientID int64, typ entities.TransactionType, amount decimal.Decimal, description string) (*entities.Transaction, error)

	// Reverse voids a transaction and compensates the wallet
	Reverse(ctx context.Context, transactionID int64) (*entities.Transaction, error)
}

// BettingService defines the interface for bet intake
type BettingService interface {
	// PlaceBets records a batch of bets all-or-nothing, debiting the
	// wallet once per bet
	PlaceBets(ctx context.Context, clientID, drawID int64, specs []entities.BetSpec) (*entities.PlaceBetsResult, error)
}

// SettlementClaim is what a successful draw claim hands the settlement
// orchestrator: the claimed draw, every bet on it, and which bets an
// earlier run already paid
type SettlementClaim struct {
	Draw        *entities.Draw
	Bets        []*entities.Bet
	AlreadyPaid map[int64]bool
	Resumed     bool
}

// GroupOutcome summarizes settling one client's bets on a draw
type GroupOutcome struct {
	ClientID      int64
	BetsEvaluated int
	BetsPaid      int
	BetsSkipped   int
	TotalPaid     decimal.Decimal
	PaidBetIDs    []int64
}

// SettlementService defines the per-transaction pieces of settlement.
// The orchestration across units of work lives in the application layer.
type SettlementService interface {
	// CreateDraw opens a new draw for betting
	CreateDraw(ctx context.Context, label string) (*entities.Draw, error)

	// GetDraw retrieves a draw
	GetDraw(ctx context.Context, drawID int64) (*entities.Draw, error)

	// ClaimDraw locks the draw, records the declared numbers and moves
	// it to settling. Re-declaring a finished draw fails with
	// ErrAlreadyDeclared; a settling draw is only claimable again with
	// identical numbers, which resumes the earlier run.
	ClaimDraw(ctx context.Context, drawID int64, winningNumbers []string) (*SettlementClaim, error)

	// SettleClientGroup evaluates and pays one client's bets on a
	// claimed draw inside the current transaction
	SettleClientGroup(ctx context.Context, draw *entities.Draw, clientID int64, bets []*entities.Bet, alreadyPaid map[int64]bool) (*GroupOutcome, error)

	// FinalizeDraw closes out a settlement run: finished on full
	// success, reopened if nothing was ever paid, left settling otherwise
	FinalizeDraw(ctx context.Context, result *entities.SettlementResult) error

	// GetWinnersReport returns the per-client breakdown of a draw's payouts
	GetWinnersReport(ctx context.Context, drawID int64) (*entities.DrawWinnersReport, error)
}

// LedgerService defines the interface for ledger reconstruction
type LedgerService interface {
	// GetClientLedger reconstructs a client's ledger over a period,
	// anchored at the current tracked balance
	GetClientLedger(ctx context.Context, clientID int64, period entities.Period) (*entities.LedgerView, error)

	// GetAdminLedger derives the operator ledger by mirroring every
	// client transaction in the period
	GetAdminLedger(ctx context.Context, period entities.Period) (*entities.LedgerView, error)
}

// ClientService defines the interface for client lifecycle and rates
type ClientService interface {
	// CreateClient registers a new client with an empty wallet
	CreateClient(ctx context.Context, name string) (*entities.Client, error)

	// GetClient retrieves a client
	GetClient(ctx context.Context, id int64) (*entities.Client, error)

	// SetClientActive activates or deactivates a client
	SetClientActive(ctx context.Context, id int64, active bool) error

	// SetClientRates atomically replaces a client's rate table
	SetClientRates(ctx context.Context, clientID int64, entries []*entities.RateEntry) error

	// GetClientRates returns a client's rate table entries
	GetClientRates(ctx context.Context, clientID int64) ([]*entities.RateEntry, error)
}

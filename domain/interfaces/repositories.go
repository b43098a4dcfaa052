package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lottohouse/domain/entities"
	"lottohouse/domain/events"
)

// ClientRepository defines the interface for client and wallet data access
type ClientRepository interface {
	// GetByID retrieves a client by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*entities.Client, error)

	// GetByIDForUpdate retrieves a client with a row lock held for the
	// rest of the transaction, serializing wallet mutation per client
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Client, error)

	// GetAdmin retrieves the operator account
	GetAdmin(ctx context.Context) (*entities.Client, error)

	// Create creates a new client with a zero balance
	Create(ctx context.Context, client *entities.Client) error

	// UpdateBalance sets a client's tracked balance
	UpdateBalance(ctx context.Context, clientID int64, newBalance decimal.Decimal) error

	// ApplyAdminBalanceDelta adjusts the operator balance by a relative
	// amount, used for the mirror update at the end of client movements
	ApplyAdminBalanceDelta(ctx context.Context, delta decimal.Decimal) error

	// SetActive flips a client's active flag
	SetActive(ctx context.Context, clientID int64, active bool) error

	// List returns all clients ordered by ID
	List(ctx context.Context) ([]*entities.Client, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append inserts a new transaction and fills in ID and CreatedAt
	Append(ctx context.Context, txn *entities.Transaction) error

	// GetByID retrieves a transaction by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*entities.Transaction, error)

	// GetByIDForUpdate retrieves a transaction with a row lock so the
	// reversed flag cannot be flipped twice by racing calls
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Transaction, error)

	// MarkReversed flips the reversed flag on a not-yet-reversed row
	MarkReversed(ctx context.Context, id int64) error

	// ListByClient returns a client's transactions inside the period in
	// chronological order
	ListByClient(ctx context.Context, clientID int64, period entities.Period) ([]*entities.Transaction, error)

	// SumSignedSince returns the net signed effect of a client's
	// transactions created at or after the given time, reversed rows
	// counting as zero. Subtracting it from the current balance yields
	// the balance just before that instant.
	SumSignedSince(ctx context.Context, clientID int64, since time.Time) (decimal.Decimal, error)

	// ListClientTransactions returns every client-role transaction inside
	// the period with its owner's name, in chronological order
	ListClientTransactions(ctx context.Context, period entities.Period) ([]*entities.ClientTransaction, error)

	// SumMirroredSince returns the net operator-side effect of all
	// client-role transactions at or after the given time
	SumMirroredSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// CreateBatch inserts all bets of a placement, filling in IDs
	CreateBatch(ctx context.Context, bets []*entities.Bet) error

	// GetByID retrieves a bet by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*entities.Bet, error)

	// ListByDraw returns all bets placed on a draw
	ListByDraw(ctx context.Context, drawID int64) ([]*entities.Bet, error)

	// ListByClient returns a client's most recent bets
	ListByClient(ctx context.Context, clientID int64, limit int) ([]*entities.Bet, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create creates a new open draw
	Create(ctx context.Context, draw *entities.Draw) error

	// GetByID retrieves a draw by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw with an exclusive row lock,
	// guarding the status transition so one settlement run owns the draw
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForShare retrieves a draw with a shared row lock. Bet
	// intake holds it so a declaration cannot claim the draw while a
	// batch is mid-flight, without serializing intakes against each other.
	GetByIDForShare(ctx context.Context, id int64) (*entities.Draw, error)

	// Update persists status, winning numbers, declared-at and payout
	Update(ctx context.Context, draw *entities.Draw) error

	// ListSettlingOlderThan returns draws claimed before the cutoff that
	// never finished, candidates for a settlement resume
	ListSettlingOlderThan(ctx context.Context, cutoff time.Time) ([]*entities.Draw, error)
}

// RateRepository defines the interface for rate table data access
type RateRepository interface {
	// GetByClient returns all rate entries for a client
	GetByClient(ctx context.Context, clientID int64) ([]*entities.RateEntry, error)

	// ReplaceForClient atomically swaps a client's whole rate table
	ReplaceForClient(ctx context.Context, clientID int64, entries []*entities.RateEntry) error
}

// WinnerRepository defines the interface for paid-winner records
type WinnerRepository interface {
	// Create records a paid winning bet; the unique bet id constraint
	// rejects a second payout for the same bet
	Create(ctx context.Context, winner *entities.DrawWinner) error

	// ListByDraw returns all paid winners of a draw
	ListByDraw(ctx context.Context, drawID int64) ([]*entities.DrawWinner, error)
}

// SettlementLogRepository defines the interface for settlement run records
type SettlementLogRepository interface {
	// Create records the summary of a finished settlement run
	Create(ctx context.Context, log *entities.SettlementLog) error

	// GetByDraw retrieves the settlement record for a draw, nil if absent
	GetByDraw(ctx context.Context, drawID int64) (*entities.SettlementLog, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events during a transaction and
// only hands them to the real publisher once the transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all buffered events after a successful commit
	Flush(ctx context.Context)

	// Discard drops all buffered events after a rollback
	Discard()
}

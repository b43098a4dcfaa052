package events

import (
	"github.com/shopspring/decimal"

	"lottohouse/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeClientCreated       EventType = "client_created"
	EventTypeBetsPlaced          EventType = "bets_placed"
	EventTypeDrawSettled         EventType = "draw_settled"
	EventTypeTransactionReversed EventType = "transaction_reversed"
	EventTypeWalletAdjusted      EventType = "wallet_adjusted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a wallet balance change that occurred
type BalanceChangeEvent struct {
	ClientID        int64                    `json:"client_id"`
	TransactionID   int64                    `json:"transaction_id"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal          `json:"amount"`
	OldBalance      decimal.Decimal          `json:"old_balance"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// ClientCreatedEvent represents a new client registration
type ClientCreatedEvent struct {
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
}

func (e ClientCreatedEvent) Type() EventType {
	return EventTypeClientCreated
}

// BetsPlacedEvent represents a batch of bets accepted on a draw
type BetsPlacedEvent struct {
	ClientID   int64           `json:"client_id"`
	DrawID     int64           `json:"draw_id"`
	BetIDs     []int64         `json:"bet_ids"`
	TotalStake decimal.Decimal `json:"total_stake"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (e BetsPlacedEvent) Type() EventType {
	return EventTypeBetsPlaced
}

// DrawSettledEvent represents a draw whose settlement run completed
type DrawSettledEvent struct {
	DrawID           int64           `json:"draw_id"`
	WinningNumbers   []string        `json:"winning_numbers"`
	BetsPaid         int             `json:"bets_paid"`
	TotalPayout      decimal.Decimal `json:"total_payout"`
	WinningClientIDs []int64         `json:"winning_client_ids"`
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// TransactionReversedEvent represents a ledger entry voided by reversal
type TransactionReversedEvent struct {
	TransactionID   int64                    `json:"transaction_id"`
	ClientID        int64                    `json:"client_id"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal          `json:"amount"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
}

func (e TransactionReversedEvent) Type() EventType {
	return EventTypeTransactionReversed
}

// WalletAdjustedEvent represents a manual admin deposit or withdrawal
type WalletAdjustedEvent struct {
	ClientID        int64                    `json:"client_id"`
	TransactionID   int64                    `json:"transaction_id"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal          `json:"amount"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
}

func (e WalletAdjustedEvent) Type() EventType {
	return EventTypeWalletAdjusted
}

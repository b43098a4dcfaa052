package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a wallet movement
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// Inverse returns the opposite direction, used for reversal compensation
// and for the admin mirror view
func (tt TransactionType) Inverse() TransactionType {
	if tt == TransactionTypeCredit {
		return TransactionTypeDebit
	}
	return TransactionTypeCredit
}

// RelatedType represents what kind of record a transaction traces back to
type RelatedType string

const (
	RelatedTypeBet        RelatedType = "bet"
	RelatedTypeDraw       RelatedType = "draw"
	RelatedTypeAdjustment RelatedType = "adjustment"
)

// Related identifies the record a wallet movement traces back to
type Related struct {
	Type RelatedType
	ID   int64
}

// Transaction represents one append-only ledger entry. Amount, type,
// balance-after and timestamp never change after insert; only the
// Reversed flag may later flip true.
type Transaction struct {
	ID           int64           `db:"id"`
	Reference    uuid.UUID       `db:"reference"`
	ClientID     int64           `db:"client_id"`
	Type         TransactionType `db:"type"`
	Amount       decimal.Decimal `db:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	Description  string          `db:"description"`
	Reversed     bool            `db:"reversed"`
	RelatedID    *int64          `db:"related_id"`
	RelatedType  *RelatedType    `db:"related_type"`
	CreatedAt    time.Time       `db:"created_at"`
}

// IsCredit returns true if the transaction increases the wallet
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// IsDebit returns true if the transaction decreases the wallet
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// SignedAmount returns the transaction's current effect on the wallet:
// positive for credits, negative for debits, zero once reversed.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Reversed {
		return decimal.Zero
	}
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// MirroredAmount returns the operator-side effect of this transaction:
// a client debit is money into the house, a client credit is money out.
// Reversed transactions contribute zero movement.
func (t *Transaction) MirroredAmount() decimal.Decimal {
	return t.SignedAmount().Neg()
}

// Validate performs basic validation on the transaction
func (t *Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return errors.New("transaction amount cannot be negative")
	}
	if t.Type != TransactionTypeCredit && t.Type != TransactionTypeDebit {
		return errors.New("unknown transaction type")
	}
	return nil
}

// RelatedTo tags the transaction with the record it traces back to.
// A zero id tags the type alone, which is how manual adjustments are
// marked since they trace to no other record.
func (t *Transaction) RelatedTo(typ RelatedType, id int64) {
	t.RelatedType = &typ
	if id != 0 {
		t.RelatedID = &id
	}
}

package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_SignedAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typ      TransactionType
		amount   int64
		reversed bool
		want     int64
	}{
		{
			name:   "credit counts positive",
			typ:    TransactionTypeCredit,
			amount: 45,
			want:   45,
		},
		{
			name:   "debit counts negative",
			typ:    TransactionTypeDebit,
			amount: 50,
			want:   -50,
		},
		{
			name:     "reversed credit counts zero",
			typ:      TransactionTypeCredit,
			amount:   45,
			reversed: true,
			want:     0,
		},
		{
			name:     "reversed debit counts zero",
			typ:      TransactionTypeDebit,
			amount:   50,
			reversed: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			txn := &Transaction{
				Type:     tt.typ,
				Amount:   decimal.NewFromInt(tt.amount),
				Reversed: tt.reversed,
			}
			assert.True(t, decimal.NewFromInt(tt.want).Equal(txn.SignedAmount()))
		})
	}
}

func TestTransaction_MirroredAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typ      TransactionType
		amount   int64
		reversed bool
		want     int64
	}{
		{
			name:   "client debit is house money in",
			typ:    TransactionTypeDebit,
			amount: 50,
			want:   50,
		},
		{
			name:   "client credit is house money out",
			typ:    TransactionTypeCredit,
			amount: 45,
			want:   -45,
		},
		{
			name:     "reversed moves nothing",
			typ:      TransactionTypeDebit,
			amount:   50,
			reversed: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			txn := &Transaction{
				Type:     tt.typ,
				Amount:   decimal.NewFromInt(tt.amount),
				Reversed: tt.reversed,
			}
			assert.True(t, decimal.NewFromInt(tt.want).Equal(txn.MirroredAmount()))
		})
	}
}

func TestTransactionType_Inverse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TransactionTypeDebit, TransactionTypeCredit.Inverse())
	assert.Equal(t, TransactionTypeCredit, TransactionTypeDebit.Inverse())
}

func TestTransaction_RelatedTo(t *testing.T) {
	t.Parallel()

	t.Run("related to a bet", func(t *testing.T) {
		t.Parallel()

		txn := &Transaction{}
		txn.RelatedTo(RelatedTypeBet, 42)

		assert.NotNil(t, txn.RelatedType)
		assert.Equal(t, RelatedTypeBet, *txn.RelatedType)
		assert.NotNil(t, txn.RelatedID)
		assert.Equal(t, int64(42), *txn.RelatedID)
	})

	t.Run("adjustment carries no id", func(t *testing.T) {
		t.Parallel()

		txn := &Transaction{}
		txn.RelatedTo(RelatedTypeAdjustment, 0)

		assert.NotNil(t, txn.RelatedType)
		assert.Equal(t, RelatedTypeAdjustment, *txn.RelatedType)
		assert.Nil(t, txn.RelatedID)
	})
}

func TestTransaction_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		txn     Transaction
		wantErr string
	}{
		{
			name: "valid credit",
			txn:  Transaction{Type: TransactionTypeCredit, Amount: decimal.NewFromInt(10)},
		},
		{
			name:    "negative amount",
			txn:     Transaction{Type: TransactionTypeDebit, Amount: decimal.NewFromInt(-10)},
			wantErr: "cannot be negative",
		},
		{
			name:    "unknown type",
			txn:     Transaction{Type: TransactionType("transfer"), Amount: decimal.NewFromInt(10)},
			wantErr: "unknown transaction type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.txn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

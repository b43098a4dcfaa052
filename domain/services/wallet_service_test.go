package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lottohouse/domain/entities"
	"lottohouse/domain/testhelpers"
)

func decEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}

func TestWalletService_Credit(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	client := &entities.Client{
		ID:      1,
		Name:    "acme",
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(350),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)

	mockTransactionRepo.On("Append", ctx, mock.MatchedBy(func(txn *entities.Transaction) bool {
		return txn.ClientID == 1 &&
			txn.Type == entities.TransactionTypeCredit &&
			txn.Amount.Equal(decimal.NewFromInt(45)) &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(395)) &&
			txn.RelatedType != nil && *txn.RelatedType == entities.RelatedTypeBet &&
			txn.RelatedID != nil && *txn.RelatedID == 7
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Transaction).ID = 42
	})

	mockClientRepo.On("UpdateBalance", ctx, int64(1), decEq(decimal.NewFromInt(395))).Return(nil)

	// A client credit is house money out
	mockClientRepo.On("ApplyAdminBalanceDelta", ctx, decEq(decimal.NewFromInt(-45))).Return(nil)

	mockEventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	txn, err := service.Credit(ctx, 1, decimal.NewFromInt(45), "prize", &entities.Related{Type: entities.RelatedTypeBet, ID: 7})

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.Equal(t, int64(42), txn.ID)
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(395)))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", txn.Reference.String())

	mockClientRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestWalletService_Debit(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	client := &entities.Client{
		ID:      1,
		Name:    "acme",
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(500),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)

	mockTransactionRepo.On("Append", ctx, mock.MatchedBy(func(txn *entities.Transaction) bool {
		return txn.ClientID == 1 &&
			txn.Type == entities.TransactionTypeDebit &&
			txn.Amount.Equal(decimal.NewFromInt(50)) &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(450))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Transaction).ID = 10
	})

	mockClientRepo.On("UpdateBalance", ctx, int64(1), decEq(decimal.NewFromInt(450))).Return(nil)

	// A client debit is house money in
	mockClientRepo.On("ApplyAdminBalanceDelta", ctx, decEq(decimal.NewFromInt(50))).Return(nil)

	mockEventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	txn, err := service.Debit(ctx, 1, decimal.NewFromInt(50), "stake", nil)

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(450)))
	assert.Nil(t, txn.RelatedType)

	mockClientRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestWalletService_Debit_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(30),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)

	txn, err := service.Debit(ctx, 1, decimal.NewFromInt(50), "stake", nil)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	mockClientRepo.AssertExpectations(t)
	mockClientRepo.AssertNotCalled(t, "UpdateBalance")
	mockTransactionRepo.AssertNotCalled(t, "Append")
}

func TestWalletService_Debit_ExactBalance(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(50),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)
	mockTransactionRepo.On("Append", ctx, mock.Anything).Return(nil)
	mockClientRepo.On("UpdateBalance", ctx, int64(1), decEq(decimal.Zero)).Return(nil)
	mockClientRepo.On("ApplyAdminBalanceDelta", ctx, decEq(decimal.NewFromInt(50))).Return(nil)
	mockEventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	// Draining the wallet to exactly zero is allowed
	txn, err := service.Debit(ctx, 1, decimal.NewFromInt(50), "stake", nil)

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.True(t, txn.BalanceAfter.IsZero())

	mockClientRepo.AssertExpectations(t)
}

func TestWalletService_Post_NegativeAmount(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	txn, err := service.Credit(ctx, 1, decimal.NewFromInt(-5), "bad", nil)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.Contains(t, err.Error(), "amount cannot be negative")

	mockClientRepo.AssertNotCalled(t, "GetByIDForUpdate")
}

func TestWalletService_Post_ClientNotFound(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(99)).Return(nil, nil)

	txn, err := service.Credit(ctx, 99, decimal.NewFromInt(10), "prize", nil)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	mockClientRepo.AssertExpectations(t)
	mockTransactionRepo.AssertNotCalled(t, "Append")
}

func TestWalletService_Post_AdminMovementHasNoMirror(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	admin := &entities.Client{
		ID:      1,
		Name:    "house",
		Role:    entities.RoleAdmin,
		Balance: decimal.NewFromInt(1000),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(admin, nil)
	mockTransactionRepo.On("Append", ctx, mock.Anything).Return(nil)
	mockClientRepo.On("UpdateBalance", ctx, int64(1), decEq(decimal.NewFromInt(900))).Return(nil)
	mockEventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	txn, err := service.Debit(ctx, 1, decimal.NewFromInt(100), "withdrawal", nil)

	assert.NoError(t, err)
	assert.NotNil(t, txn)

	// The operator row never mirrors onto itself
	mockClientRepo.AssertNotCalled(t, "ApplyAdminBalanceDelta")
	mockClientRepo.AssertExpectations(t)
}

func TestWalletService_Adjust(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	client := &entities.Client{
		ID:      3,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(100),
		Active:  true,
	}

	mockClientRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(client, nil)

	mockTransactionRepo.On("Append", ctx, mock.MatchedBy(func(txn *entities.Transaction) bool {
		return txn.Type == entities.TransactionTypeCredit &&
			txn.Amount.Equal(decimal.NewFromInt(500)) &&
			txn.RelatedType != nil && *txn.RelatedType == entities.RelatedTypeAdjustment &&
			txn.RelatedID == nil
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Transaction).ID = 55
	})

	mockClientRepo.On("UpdateBalance", ctx, int64(3), decEq(decimal.NewFromInt(600))).Return(nil)
	mockClientRepo.On("ApplyAdminBalanceDelta", ctx, decEq(decimal.NewFromInt(-500))).Return(nil)

	mockEventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	mockEventPublisher.On("Publish", mock.AnythingOfType("events.WalletAdjustedEvent")).Return(nil)

	txn, err := service.Adjust(ctx, 3, entities.TransactionTypeCredit, decimal.NewFromInt(500), "initial deposit")

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.Equal(t, int64(55), txn.ID)

	mockClientRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestWalletService_Reverse_Debit(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	stake := &entities.Transaction{
		ID:           10,
		ClientID:     1,
		Type:         entities.TransactionTypeDebit,
		Amount:       decimal.NewFromInt(50),
		BalanceAfter: decimal.NewFromInt(350),
	}
	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(350),
		Active:  true,
	}

	mockTransactionRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(stake, nil)
	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)
	mockTransactionRepo.On("MarkReversed", ctx, int64(10)).Return(nil)

	// Undoing a debit gives the money back
	mockClientRepo.On("UpdateBalance", ctx, int64(1), decEq(decimal.NewFromInt(400))).Return(nil)

	// The house gives back what the debit mirrored in
	mockClientRepo.On("ApplyAdminBalanceDelta", ctx, decEq(decimal.NewFromInt(-50))).Return(nil)

	mockEventPublisher.On("Publish", mock.AnythingOfType("events.TransactionReversedEvent")).Return(nil)

	txn, err := service.Reverse(ctx, 10)

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.True(t, txn.Reversed)

	// The historical row keeps its figures
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(350)))

	mockClientRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestWalletService_Reverse_CreditInsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	prize := &entities.Transaction{
		ID:       11,
		ClientID: 1,
		Type:     entities.TransactionTypeCredit,
		Amount:   decimal.NewFromInt(100),
	}
	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(45),
		Active:  true,
	}

	mockTransactionRepo.On("GetByIDForUpdate", ctx, int64(11)).Return(prize, nil)
	mockClientRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(client, nil)

	// Taking the credit back would overdraw the wallet
	txn, err := service.Reverse(ctx, 11)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	mockTransactionRepo.AssertNotCalled(t, "MarkReversed")
	mockClientRepo.AssertNotCalled(t, "UpdateBalance")
}

func TestWalletService_Reverse_AlreadyReversed(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	reversed := &entities.Transaction{
		ID:       12,
		ClientID: 1,
		Type:     entities.TransactionTypeDebit,
		Amount:   decimal.NewFromInt(50),
		Reversed: true,
	}

	mockTransactionRepo.On("GetByIDForUpdate", ctx, int64(12)).Return(reversed, nil)

	txn, err := service.Reverse(ctx, 12)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.ErrorIs(t, err, entities.ErrAlreadyReversed)

	mockTransactionRepo.AssertNotCalled(t, "MarkReversed")
	mockClientRepo.AssertNotCalled(t, "GetByIDForUpdate")
}

func TestWalletService_Reverse_NotFound(t *testing.T) {
	ctx := context.Background()

	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewWalletService(mockClientRepo, mockTransactionRepo, mockEventPublisher)

	mockTransactionRepo.On("GetByIDForUpdate", ctx, int64(404)).Return(nil, nil)

	txn, err := service.Reverse(ctx, 404)

	assert.Error(t, err)
	assert.Nil(t, txn)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	mockTransactionRepo.AssertNotCalled(t, "MarkReversed")
}

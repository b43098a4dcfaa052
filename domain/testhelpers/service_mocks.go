package testhelpers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"lottohouse/domain/entities"
)

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Credit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error) {
	args := m.Called(ctx, clientID, amount, description, related)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error) {
	args := m.Called(ctx, clientID, amount, description, related)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockWalletService) Adjust(ctx context.Context, clientID int64, typ entities.TransactionType, amount decimal.Decimal, description string) (*entities.Transaction, error) {
	args := m.Called(ctx, clientID, typ, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockWalletService) Reverse(ctx context.Context, transactionID int64) (*entities.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

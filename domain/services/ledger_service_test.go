package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
	"lottohouse/domain/testhelpers"
)

func createTestLedgerService() (*testhelpers.MockClientRepository, *testhelpers.MockTransactionRepository, interfaces.LedgerService) {
	mockClientRepo := new(testhelpers.MockClientRepository)
	mockTransactionRepo := new(testhelpers.MockTransactionRepository)
	service := NewLedgerService(mockClientRepo, mockTransactionRepo)
	return mockClientRepo, mockTransactionRepo, service
}

func debitTxn(id int64, amount int64) *entities.Transaction {
	return &entities.Transaction{ID: id, ClientID: 1, Type: entities.TransactionTypeDebit, Amount: decimal.NewFromInt(amount)}
}

func creditTxn(id int64, amount int64) *entities.Transaction {
	return &entities.Transaction{ID: id, ClientID: 1, Type: entities.TransactionTypeCredit, Amount: decimal.NewFromInt(amount)}
}

func TestLedgerService_GetClientLedger_AllTime(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(395),
	}
	txns := []*entities.Transaction{
		creditTxn(1, 500),
		debitTxn(2, 50),
		debitTxn(3, 50),
		debitTxn(4, 50),
		creditTxn(5, 45),
	}

	mockClientRepo.On("GetByID", ctx, int64(1)).Return(client, nil)
	mockTransactionRepo.On("ListByClient", ctx, int64(1), entities.Period{}).Return(txns, nil)

	view, err := service.GetClientLedger(ctx, 1, entities.Period{})

	require.NoError(t, err)
	require.NotNil(t, view)

	// The all-time view opens at zero and replays to the tracked balance
	assert.True(t, view.OpeningBalance.IsZero())
	require.Len(t, view.Entries, 5)
	assert.Equal(t, "500", view.Entries[0].RunningBalance.String())
	assert.Equal(t, "450", view.Entries[1].RunningBalance.String())
	assert.Equal(t, "400", view.Entries[2].RunningBalance.String())
	assert.Equal(t, "350", view.Entries[3].RunningBalance.String())
	assert.Equal(t, "395", view.Entries[4].RunningBalance.String())
	assert.True(t, view.ClosingBalance.Equal(client.Balance))

	// No anchoring query needed for all-time
	mockTransactionRepo.AssertNotCalled(t, "SumSignedSince")
}

func TestLedgerService_GetClientLedger_Period(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	period := entities.Period{Start: &since}

	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(395),
	}
	txns := []*entities.Transaction{
		debitTxn(2, 50),
		debitTxn(3, 50),
		debitTxn(4, 50),
		creditTxn(5, 45),
	}

	mockClientRepo.On("GetByID", ctx, int64(1)).Return(client, nil)

	// In-period movement is -150 + 45 = -105, so the period opened at 500
	mockTransactionRepo.On("SumSignedSince", ctx, int64(1), since).Return(decimal.NewFromInt(-105), nil)
	mockTransactionRepo.On("ListByClient", ctx, int64(1), period).Return(txns, nil)

	view, err := service.GetClientLedger(ctx, 1, period)

	require.NoError(t, err)
	assert.Equal(t, "500", view.OpeningBalance.String())
	require.Len(t, view.Entries, 4)
	assert.Equal(t, "450", view.Entries[0].RunningBalance.String())
	assert.Equal(t, "395", view.Entries[3].RunningBalance.String())
	assert.True(t, view.ClosingBalance.Equal(client.Balance))
}

func TestLedgerService_GetClientLedger_AfterReversal(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	period := entities.Period{Start: &since}

	// Balance after the 45 prize credit was reversed
	client := &entities.Client{
		ID:      1,
		Role:    entities.RoleClient,
		Balance: decimal.NewFromInt(350),
	}
	reversedCredit := creditTxn(5, 45)
	reversedCredit.Reversed = true
	txns := []*entities.Transaction{
		debitTxn(2, 50),
		debitTxn(3, 50),
		debitTxn(4, 50),
		reversedCredit,
	}

	mockClientRepo.On("GetByID", ctx, int64(1)).Return(client, nil)

	// The reversed credit counts zero, so in-period movement is -150
	mockTransactionRepo.On("SumSignedSince", ctx, int64(1), since).Return(decimal.NewFromInt(-150), nil)
	mockTransactionRepo.On("ListByClient", ctx, int64(1), period).Return(txns, nil)

	view, err := service.GetClientLedger(ctx, 1, period)

	require.NoError(t, err)

	// Opening balance is unchanged by the reversal
	assert.Equal(t, "500", view.OpeningBalance.String())
	require.Len(t, view.Entries, 4)

	// The reversed row stays visible but moves nothing
	assert.True(t, view.Entries[3].Movement.IsZero())
	assert.Equal(t, "350", view.Entries[3].RunningBalance.String())
	assert.True(t, view.ClosingBalance.Equal(client.Balance))
}

func TestLedgerService_GetClientLedger_NotFound(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	mockClientRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	view, err := service.GetClientLedger(ctx, 404, entities.Period{})

	assert.Error(t, err)
	assert.Nil(t, view)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	mockTransactionRepo.AssertNotCalled(t, "ListByClient")
}

func TestLedgerService_GetAdminLedger_AllTime(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	admin := &entities.Client{
		ID:      99,
		Name:    "house",
		Role:    entities.RoleAdmin,
		Balance: decimal.NewFromInt(105),
	}
	rows := []*entities.ClientTransaction{
		{Transaction: *debitTxn(2, 50), ClientName: "acme"},
		{Transaction: *debitTxn(3, 50), ClientName: "acme"},
		{Transaction: *debitTxn(4, 50), ClientName: "globex"},
		{Transaction: *creditTxn(5, 45), ClientName: "acme"},
	}

	mockClientRepo.On("GetAdmin", ctx).Return(admin, nil)
	mockTransactionRepo.On("ListClientTransactions", ctx, entities.Period{}).Return(rows, nil)

	view, err := service.GetAdminLedger(ctx, entities.Period{})

	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Nil(t, view.ClientID)
	assert.True(t, view.OpeningBalance.IsZero())
	require.Len(t, view.Entries, 4)

	// Client stakes flow in, the prize flows out
	assert.Equal(t, "50", view.Entries[0].RunningBalance.String())
	assert.Equal(t, "100", view.Entries[1].RunningBalance.String())
	assert.Equal(t, "150", view.Entries[2].RunningBalance.String())
	assert.Equal(t, "105", view.Entries[3].RunningBalance.String())
	assert.Equal(t, "acme", view.Entries[0].ClientName)
	assert.True(t, view.ClosingBalance.Equal(admin.Balance))
}

func TestLedgerService_GetAdminLedger_Period(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	period := entities.Period{Start: &since}

	admin := &entities.Client{
		ID:      99,
		Role:    entities.RoleAdmin,
		Balance: decimal.NewFromInt(105),
	}
	rows := []*entities.ClientTransaction{
		{Transaction: *debitTxn(4, 50), ClientName: "globex"},
		{Transaction: *creditTxn(5, 45), ClientName: "acme"},
	}

	mockClientRepo.On("GetAdmin", ctx).Return(admin, nil)
	mockTransactionRepo.On("SumMirroredSince", ctx, since).Return(decimal.NewFromInt(5), nil)
	mockTransactionRepo.On("ListClientTransactions", ctx, period).Return(rows, nil)

	view, err := service.GetAdminLedger(ctx, period)

	require.NoError(t, err)
	assert.Equal(t, "100", view.OpeningBalance.String())
	require.Len(t, view.Entries, 2)
	assert.Equal(t, "150", view.Entries[0].RunningBalance.String())
	assert.Equal(t, "105", view.Entries[1].RunningBalance.String())
	assert.True(t, view.ClosingBalance.Equal(admin.Balance))
}

func TestLedgerService_GetAdminLedger_MissingOperator(t *testing.T) {
	ctx := context.Background()
	mockClientRepo, mockTransactionRepo, service := createTestLedgerService()

	mockClientRepo.On("GetAdmin", ctx).Return(nil, nil)

	view, err := service.GetAdminLedger(ctx, entities.Period{})

	assert.Error(t, err)
	assert.Nil(t, view)
	assert.Contains(t, err.Error(), "operator account missing")

	mockTransactionRepo.AssertNotCalled(t, "ListClientTransactions")
}

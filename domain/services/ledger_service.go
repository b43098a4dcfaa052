package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

// ledgerService reconstructs ledgers for display. Stored balance-after
// snapshots go stale once an earlier transaction is reversed, so every
// view is anchored at the current tracked balance: undo all movement at
// or after the period start to find the opening balance, then replay
// forward. The all-time view opens at zero by definition.
type ledgerService struct {
	clientRepo      interfaces.ClientRepository
	transactionRepo interfaces.TransactionRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	clientRepo interfaces.ClientRepository,
	transactionRepo interfaces.TransactionRepository,
) interfaces.LedgerService {
	return &ledgerService{
		clientRepo:      clientRepo,
		transactionRepo: transactionRepo,
	}
}

// GetClientLedger reconstructs a client's ledger over a period
func (s *ledgerService) GetClientLedger(ctx context.Context, clientID int64, period entities.Period) (*entities.LedgerView, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", clientID, entities.ErrNotFound)
	}

	opening := decimal.Zero
	if !period.AllTime() {
		undone, err := s.transactionRepo.SumSignedSince(ctx, clientID, *period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to sum movements since period start: %w", err)
		}
		opening = client.Balance.Sub(undone)
	}

	txns, err := s.transactionRepo.ListByClient(ctx, clientID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	view := &entities.LedgerView{
		ClientID:       &clientID,
		Period:         period,
		OpeningBalance: opening,
		Entries:        make([]*entities.LedgerEntry, 0, len(txns)),
	}
	for _, txn := range txns {
		view.Entries = append(view.Entries, &entities.LedgerEntry{
			Transaction: txn,
			Movement:    txn.SignedAmount(),
		})
	}
	view.Replay()

	return view, nil
}

// GetAdminLedger derives the operator ledger from client transactions
func (s *ledgerService) GetAdminLedger(ctx context.Context, period entities.Period) (*entities.LedgerView, error) {
	admin, err := s.clientRepo.GetAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator account: %w", err)
	}
	if admin == nil {
		return nil, errors.New("operator account missing")
	}

	opening := decimal.Zero
	if !period.AllTime() {
		undone, err := s.transactionRepo.SumMirroredSince(ctx, *period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to sum mirrored movements since period start: %w", err)
		}
		opening = admin.Balance.Sub(undone)
	}

	rows, err := s.transactionRepo.ListClientTransactions(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list client transactions: %w", err)
	}

	view := &entities.LedgerView{
		Period:         period,
		OpeningBalance: opening,
		Entries:        make([]*entities.LedgerEntry, 0, len(rows)),
	}
	for _, row := range rows {
		txn := row.Transaction
		view.Entries = append(view.Entries, &entities.LedgerEntry{
			Transaction: &txn,
			ClientName:  row.ClientName,
			Movement:    txn.MirroredAmount(),
		})
	}
	view.Replay()

	return view, nil
}

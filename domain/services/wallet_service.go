package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"lottohouse/domain/entities"
	"lottohouse/domain/events"
	"lottohouse/domain/interfaces"
)

// walletService implements wallet movements. A movement is always the
// pair (balance update, ledger append) inside the caller's transaction;
// the mirror update on the operator row runs last so client rows stay
// the only contended locks.
type walletService struct {
	clientRepo      interfaces.ClientRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(
	clientRepo interfaces.ClientRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WalletService {
	return &walletService{
		clientRepo:      clientRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

// Credit adds amount to a client's wallet
func (s *walletService) Credit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error) {
	return s.post(ctx, clientID, entities.TransactionTypeCredit, amount, description, related)
}

// Debit removes amount from a client's wallet
func (s *walletService) Debit(ctx context.Context, clientID int64, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error) {
	return s.post(ctx, clientID, entities.TransactionTypeDebit, amount, description, related)
}

// Adjust posts a manual admin deposit or withdrawal. It rides the same
// path as every other movement, so it shows up in the ledger like one.
func (s *walletService) Adjust(ctx context.Context, clientID int64, typ entities.TransactionType, amount decimal.Decimal, description string) (*entities.Transaction, error) {
	txn, err := s.post(ctx, clientID, typ, amount, description, &entities.Related{Type: entities.RelatedTypeAdjustment})
	if err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.WalletAdjustedEvent{
		ClientID:        clientID,
		TransactionID:   txn.ID,
		TransactionType: typ,
		Amount:          amount,
		NewBalance:      txn.BalanceAfter,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wallet adjusted event")
	}

	return txn, nil
}

// post applies one movement: lock the client row, verify funds for
// debits, append the ledger entry with its balance-after snapshot,
// update the tracked balance, mirror onto the operator row.
func (s *walletService) post(ctx context.Context, clientID int64, typ entities.TransactionType, amount decimal.Decimal, description string, related *entities.Related) (*entities.Transaction, error) {
	if amount.IsNegative() {
		return nil, errors.New("amount cannot be negative")
	}

	// Lock the client row for the rest of the transaction
	client, err := s.clientRepo.GetByIDForUpdate(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", clientID, entities.ErrNotFound)
	}

	var newBalance decimal.Decimal
	switch typ {
	case entities.TransactionTypeCredit:
		newBalance = client.Balance.Add(amount)
	case entities.TransactionTypeDebit:
		if !client.HasSufficientBalance(amount) {
			return nil, fmt.Errorf("debit %s from client %d with balance %s: %w",
				amount, clientID, client.Balance, entities.ErrInsufficientFunds)
		}
		newBalance = client.Balance.Sub(amount)
	default:
		return nil, fmt.Errorf("unknown transaction type %q", typ)
	}

	txn := &entities.Transaction{
		Reference:    uuid.New(),
		ClientID:     clientID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  description,
	}
	if related != nil {
		txn.RelatedTo(related.Type, related.ID)
	}

	if err := s.transactionRepo.Append(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	if err := s.clientRepo.UpdateBalance(ctx, clientID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	// Mirror the movement onto the operator balance. The delta-based
	// update keeps the operator row locked only from here to commit.
	if !client.IsAdmin() {
		if err := s.clientRepo.ApplyAdminBalanceDelta(ctx, txn.MirroredAmount()); err != nil {
			return nil, fmt.Errorf("failed to mirror movement onto admin balance: %w", err)
		}
	}

	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		ClientID:        clientID,
		TransactionID:   txn.ID,
		TransactionType: typ,
		Amount:          amount,
		OldBalance:      client.Balance,
		NewBalance:      newBalance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	log.WithFields(log.Fields{
		"clientID":    clientID,
		"type":        typ,
		"amount":      amount.String(),
		"newBalance":  newBalance.String(),
		"transaction": txn.Reference,
	}).Info("Posted wallet movement")

	return txn, nil
}

// Reverse voids one transaction and applies the inverse delta to the
// owner's wallet. The historical row keeps its amount and balance-after
// snapshot; only the reversed flag changes.
func (s *walletService) Reverse(ctx context.Context, transactionID int64) (*entities.Transaction, error) {
	// Lock the transaction row so two reversals cannot race
	txn, err := s.transactionRepo.GetByIDForUpdate(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	if txn == nil {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, entities.ErrNotFound)
	}
	if txn.Reversed {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, entities.ErrAlreadyReversed)
	}

	client, err := s.clientRepo.GetByIDForUpdate(ctx, txn.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", txn.ClientID, entities.ErrNotFound)
	}

	// Undoing a credit takes money back out, which must not overdraw
	if txn.IsCredit() && !client.HasSufficientBalance(txn.Amount) {
		return nil, fmt.Errorf("reverse credit %s for client %d with balance %s: %w",
			txn.Amount, txn.ClientID, client.Balance, entities.ErrInsufficientFunds)
	}

	newBalance := client.Balance.Sub(txn.SignedAmount())

	if err := s.transactionRepo.MarkReversed(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to mark transaction reversed: %w", err)
	}
	if err := s.clientRepo.UpdateBalance(ctx, txn.ClientID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	if !client.IsAdmin() {
		if err := s.clientRepo.ApplyAdminBalanceDelta(ctx, txn.SignedAmount()); err != nil {
			return nil, fmt.Errorf("failed to mirror reversal onto admin balance: %w", err)
		}
	}

	txn.Reversed = true

	if err := s.eventPublisher.Publish(events.TransactionReversedEvent{
		TransactionID:   txn.ID,
		ClientID:        txn.ClientID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		NewBalance:      newBalance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish transaction reversed event")
	}

	log.WithFields(log.Fields{
		"transactionID": transactionID,
		"clientID":      txn.ClientID,
		"type":          txn.Type,
		"amount":        txn.Amount.String(),
		"newBalance":    newBalance.String(),
	}).Info("Reversed transaction")

	return txn, nil
}

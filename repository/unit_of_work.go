package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lottohouse/application"
	"lottohouse/database"
	"lottohouse/domain/interfaces"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	clientRepo             interfaces.ClientRepository
	transactionRepo        interfaces.TransactionRepository
	betRepo                interfaces.BetRepository
	drawRepo               interfaces.DrawRepository
	rateRepo               interfaces.RateRepository
	winnerRepo             interfaces.WinnerRepository
	settlementLogRepo      interfaces.SettlementLogRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.clientRepo = newClientRepositoryScoped(tx)
	u.transactionRepo = newTransactionRepositoryScoped(tx)
	u.betRepo = newBetRepositoryScoped(tx)
	u.drawRepo = newDrawRepositoryScoped(tx)
	u.rateRepo = newRateRepositoryScoped(tx)
	u.winnerRepo = newWinnerRepositoryScoped(tx)
	u.settlementLogRepo = newSettlementLogRepositoryScoped(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// ClientRepository returns the client repository for this unit of work
func (u *unitOfWork) ClientRepository() interfaces.ClientRepository {
	if u.clientRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.clientRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// DrawRepository returns the draw repository for this unit of work
func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	if u.drawRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRepo
}

// RateRepository returns the rate repository for this unit of work
func (u *unitOfWork) RateRepository() interfaces.RateRepository {
	if u.rateRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rateRepo
}

// WinnerRepository returns the winner repository for this unit of work
func (u *unitOfWork) WinnerRepository() interfaces.WinnerRepository {
	if u.winnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.winnerRepo
}

// SettlementLogRepository returns the settlement log repository for this unit of work
func (u *unitOfWork) SettlementLogRepository() interfaces.SettlementLogRepository {
	if u.settlementLogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settlementLogRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}

package application

import (
	"context"

	"lottohouse/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ClientRepository() interfaces.ClientRepository
	TransactionRepository() interfaces.TransactionRepository
	BetRepository() interfaces.BetRepository
	DrawRepository() interfaces.DrawRepository
	RateRepository() interfaces.RateRepository
	WinnerRepository() interfaces.WinnerRepository
	SettlementLogRepository() interfaces.SettlementLogRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance whose event publisher
	// buffers domain events until commit
	Create() UnitOfWork
}

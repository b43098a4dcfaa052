package infrastructure

import (
	"lottohouse/application"
	"lottohouse/database"
	"lottohouse/domain/interfaces"
	"lottohouse/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide
// transactional publishers
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements
// application.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) application.UnitOfWorkFactory {
	repoFactory := repository.NewUnitOfWorkFactory(db)
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a fresh transactional event publisher
func (w *UnitOfWorkFactoryWrapper) Create() application.UnitOfWork {
	transactionalPublisher := NewTransactionalPublisher(w.eventPublisher)

	return w.repoFactory.CreateWithPublisher(transactionalPublisher)
}

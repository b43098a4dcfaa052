package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"

	"lottohouse/domain/events"
	"lottohouse/domain/interfaces"
)

// TransactionalPublisher holds events until flush, then hands them to the
// real publisher. A unit of work flushes on commit and discards on rollback
// so events about uncommitted state never leave the process.
type TransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewTransactionalPublisher creates a new transactional publisher
func NewTransactionalPublisher(realPublisher interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &TransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without publishing it
func (p *TransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events, called after a successful commit
func (p *TransactionalPublisher) Flush(ctx context.Context) {
	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			// A failed publish must not fail the already-committed
			// transaction, so log and keep going
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
}

// Discard clears all pending events without publishing, called on rollback
func (p *TransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	}
	p.pending = p.pending[:0]
}

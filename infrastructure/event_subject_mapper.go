package infrastructure

import (
	"fmt"

	"lottohouse/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects.
// Subjects follow the lottohouse.<area>.<event> pattern.
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "lottohouse.wallets.balance_changed"
	case events.EventTypeClientCreated:
		return "lottohouse.clients.created"
	case events.EventTypeBetsPlaced:
		return "lottohouse.betting.placed"
	case events.EventTypeDrawSettled:
		return "lottohouse.draws.settled"
	case events.EventTypeTransactionReversed:
		return "lottohouse.wallets.transaction_reversed"
	case events.EventTypeWalletAdjusted:
		return "lottohouse.wallets.adjusted"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("lottohouse.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottohouse.wallets.balance_changed",
		"lottohouse.clients.created",
		"lottohouse.betting.placed",
		"lottohouse.draws.settled",
		"lottohouse.wallets.transaction_reversed",
		"lottohouse.wallets.adjusted",
	}
}

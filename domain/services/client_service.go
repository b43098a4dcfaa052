package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"lottohouse/domain/entities"
	"lottohouse/domain/events"
	"lottohouse/domain/interfaces"
)

// clientService implements client lifecycle and rate table management
type clientService struct {
	clientRepo     interfaces.ClientRepository
	rateRepo       interfaces.RateRepository
	eventPublisher interfaces.EventPublisher
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo interfaces.ClientRepository,
	rateRepo interfaces.RateRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ClientService {
	return &clientService{
		clientRepo:     clientRepo,
		rateRepo:       rateRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateClient registers a new client. Wallets start at zero; money
// only ever arrives through ledgered movements.
func (s *clientService) CreateClient(ctx context.Context, name string) (*entities.Client, error) {
	client := &entities.Client{
		Name:   name,
		Role:   entities.RoleClient,
		Active: true,
	}
	if err := client.ValidateName(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ClientCreatedEvent{
		ClientID: client.ID,
		Name:     client.Name,
	}); err != nil {
		log.WithError(err).Error("Failed to publish client created event")
	}

	log.WithFields(log.Fields{
		"clientID": client.ID,
		"name":     client.Name,
	}).Info("Created client")

	return client, nil
}

// GetClient retrieves a client
func (s *clientService) GetClient(ctx context.Context, id int64) (*entities.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", id, entities.ErrNotFound)
	}
	return client, nil
}

// SetClientActive activates or deactivates a client. Deactivation only
// blocks new bets; settlement and reversal still reach the wallet.
func (s *clientService) SetClientActive(ctx context.Context, id int64, active bool) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client %d: %w", id, entities.ErrNotFound)
	}

	if err := s.clientRepo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}

	log.WithFields(log.Fields{
		"clientID": id,
		"active":   active,
	}).Info("Updated client active flag")

	return nil
}

// SetClientRates atomically replaces a client's rate table
func (s *clientService) SetClientRates(ctx context.Context, clientID int64, entries []*entities.RateEntry) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client %d: %w", clientID, entities.ErrNotFound)
	}

	// Reject the whole table on the first malformed entry
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("rate entry %d (%v): %w", i+1, err, entities.ErrInvalidRate)
		}
		e.ClientID = clientID
	}

	if err := s.rateRepo.ReplaceForClient(ctx, clientID, entries); err != nil {
		return fmt.Errorf("failed to replace rate table: %w", err)
	}

	log.WithFields(log.Fields{
		"clientID": clientID,
		"entries":  len(entries),
	}).Info("Replaced client rate table")

	return nil
}

// GetClientRates returns a client's rate table entries
func (s *clientService) GetClientRates(ctx context.Context, clientID int64) ([]*entities.RateEntry, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", clientID, entities.ErrNotFound)
	}

	entries, err := s.rateRepo.GetByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}
	return entries, nil
}

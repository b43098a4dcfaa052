package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"lottohouse/domain/entities"
	"lottohouse/domain/events"
	"lottohouse/domain/interfaces"
)

// bettingService implements batch bet intake
type bettingService struct {
	clientRepo     interfaces.ClientRepository
	drawRepo       interfaces.DrawRepository
	betRepo        interfaces.BetRepository
	wallet         interfaces.WalletService
	eventPublisher interfaces.EventPublisher
}

// NewBettingService creates a new betting service
func NewBettingService(
	clientRepo interfaces.ClientRepository,
	drawRepo interfaces.DrawRepository,
	betRepo interfaces.BetRepository,
	wallet interfaces.WalletService,
	eventPublisher interfaces.EventPublisher,
) interfaces.BettingService {
	return &bettingService{
		clientRepo:     clientRepo,
		drawRepo:       drawRepo,
		betRepo:        betRepo,
		wallet:         wallet,
		eventPublisher: eventPublisher,
	}
}

// PlaceBets records a batch of bets all-or-nothing. The whole batch is
// validated and its total stake checked against the wallet before any
// row is written; each accepted bet then gets its own debit so the
// ledger steps once per bet.
func (s *bettingService) PlaceBets(ctx context.Context, clientID, drawID int64, specs []entities.BetSpec) (*entities.PlaceBetsResult, error) {
	if len(specs) == 0 {
		return nil, errors.New("bet batch cannot be empty")
	}

	// Reject malformed specs before any mutation
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, fmt.Errorf("bet %d: %w", i+1, err)
		}
	}

	// Lock the client row; concurrent batches for the same client queue
	// here and re-check funds against the committed balance
	client, err := s.clientRepo.GetByIDForUpdate(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", clientID, entities.ErrNotFound)
	}
	if !client.CanBet() {
		if client.IsAdmin() {
			return nil, errors.New("operator account cannot place bets")
		}
		return nil, fmt.Errorf("client %d: %w", clientID, entities.ErrClientInactive)
	}

	// Hold a shared lock on the draw so a declaration cannot claim it
	// while this batch is mid-flight
	draw, err := s.drawRepo.GetByIDForShare(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrNotFound)
	}
	if !draw.AcceptsBets() {
		return nil, fmt.Errorf("draw %d is %s: %w", drawID, draw.Status, entities.ErrDrawClosed)
	}

	// Coverage check for the whole batch
	total := decimal.Zero
	for i := range specs {
		total = total.Add(specs[i].Stake)
	}
	if !client.HasSufficientBalance(total) {
		return nil, fmt.Errorf("batch total %s exceeds balance %s: %w",
			total, client.Balance, entities.ErrInsufficientFunds)
	}

	bets := make([]*entities.Bet, 0, len(specs))
	for i := range specs {
		bets = append(bets, &entities.Bet{
			ClientID:  clientID,
			DrawID:    drawID,
			GameType:  specs[i].GameType,
			Condition: specs[i].Condition,
			Number:    specs[i].Number,
			Stake:     specs[i].Stake,
		})
	}
	if err := s.betRepo.CreateBatch(ctx, bets); err != nil {
		return nil, fmt.Errorf("failed to create bets: %w", err)
	}

	// One debit per bet; the coverage check above guarantees none fails
	txns := make([]*entities.Transaction, 0, len(bets))
	betIDs := make([]int64, 0, len(bets))
	for _, bet := range bets {
		description := fmt.Sprintf("Stake on draw %q: %s %s %s", draw.Label, bet.GameType, bet.Condition, bet.Number)
		txn, err := s.wallet.Debit(ctx, clientID, bet.Stake, description, &entities.Related{Type: entities.RelatedTypeBet, ID: bet.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to debit stake for bet %d: %w", bet.ID, err)
		}
		txns = append(txns, txn)
		betIDs = append(betIDs, bet.ID)
	}
	newBalance := txns[len(txns)-1].BalanceAfter

	if err := s.eventPublisher.Publish(events.BetsPlacedEvent{
		ClientID:   clientID,
		DrawID:     drawID,
		BetIDs:     betIDs,
		TotalStake: total,
		NewBalance: newBalance,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bets placed event")
	}

	log.WithFields(log.Fields{
		"clientID":   clientID,
		"drawID":     drawID,
		"bets":       len(bets),
		"totalStake": total.String(),
		"newBalance": newBalance.String(),
	}).Info("Placed bet batch")

	return &entities.PlaceBetsResult{
		Bets:         bets,
		Transactions: txns,
		NewBalance:   newBalance,
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"lottohouse/domain/entities"
	"lottohouse/domain/events"
	"lottohouse/domain/interfaces"
)

// settlementService implements the per-transaction pieces of draw
// settlement. Running the pieces across units of work, and in parallel
// per client, is the application layer's job.
type settlementService struct {
	drawRepo       interfaces.DrawRepository
	betRepo        interfaces.BetRepository
	clientRepo     interfaces.ClientRepository
	rateRepo       interfaces.RateRepository
	winnerRepo     interfaces.WinnerRepository
	logRepo        interfaces.SettlementLogRepository
	wallet         interfaces.WalletService
	eventPublisher interfaces.EventPublisher
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	drawRepo interfaces.DrawRepository,
	betRepo interfaces.BetRepository,
	clientRepo interfaces.ClientRepository,
	rateRepo interfaces.RateRepository,
	winnerRepo interfaces.WinnerRepository,
	logRepo interfaces.SettlementLogRepository,
	wallet interfaces.WalletService,
	eventPublisher interfaces.EventPublisher,
) interfaces.SettlementService {
	return &settlementService{
		drawRepo:       drawRepo,
		betRepo:        betRepo,
		clientRepo:     clientRepo,
		rateRepo:       rateRepo,
		winnerRepo:     winnerRepo,
		logRepo:        logRepo,
		wallet:         wallet,
		eventPublisher: eventPublisher,
	}
}

// CreateDraw opens a new draw for betting
func (s *settlementService) CreateDraw(ctx context.Context, label string) (*entities.Draw, error) {
	if label == "" {
		return nil, errors.New("draw label cannot be empty")
	}

	draw := &entities.Draw{
		Label:  label,
		Status: entities.DrawStatusOpen,
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID": draw.ID,
		"label":  label,
	}).Info("Created draw")

	return draw, nil
}

// GetDraw retrieves a draw
func (s *settlementService) GetDraw(ctx context.Context, drawID int64) (*entities.Draw, error) {
	draw, err := s.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrNotFound)
	}
	return draw, nil
}

// ClaimDraw locks the draw and records the declaration. The exclusive
// lock waits out in-flight bet batches holding their shared lock, so
// the bet list read below is complete; batches still queued see the
// settling status and are rejected.
func (s *settlementService) ClaimDraw(ctx context.Context, drawID int64, winningNumbers []string) (*interfaces.SettlementClaim, error) {
	if err := validateWinningNumbers(winningNumbers); err != nil {
		return nil, err
	}

	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrNotFound)
	}

	resumed := false
	switch draw.Status {
	case entities.DrawStatusFinished:
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrAlreadyDeclared)
	case entities.DrawStatusSettling:
		// Only the run that recorded these exact numbers may resume
		if !draw.SameNumbers(winningNumbers) {
			return nil, fmt.Errorf("draw %d declared %v: %w", drawID, draw.WinningNumbers, entities.ErrSettlementInProgress)
		}
		resumed = true
	case entities.DrawStatusOpen:
		draw.Claim(winningNumbers)
		if err := s.drawRepo.Update(ctx, draw); err != nil {
			return nil, fmt.Errorf("failed to claim draw: %w", err)
		}
	default:
		return nil, fmt.Errorf("draw %d has unknown status %q", drawID, draw.Status)
	}

	bets, err := s.betRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	winners, err := s.winnerRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid winners: %w", err)
	}
	alreadyPaid := make(map[int64]bool, len(winners))
	for _, w := range winners {
		alreadyPaid[w.BetID] = true
	}

	log.WithFields(log.Fields{
		"drawID":         drawID,
		"winningNumbers": winningNumbers,
		"bets":           len(bets),
		"alreadyPaid":    len(alreadyPaid),
		"resumed":        resumed,
	}).Info("Claimed draw for settlement")

	return &interfaces.SettlementClaim{
		Draw:        draw,
		Bets:        bets,
		AlreadyPaid: alreadyPaid,
		Resumed:     resumed,
	}, nil
}

// SettleClientGroup evaluates and pays one client's bets on a claimed
// draw. The client row lock taken by the first credit serializes the
// group against other wallet activity for the same client; a malformed
// rate degrades that bet to no prize instead of failing the group.
func (s *settlementService) SettleClientGroup(ctx context.Context, draw *entities.Draw, clientID int64, bets []*entities.Bet, alreadyPaid map[int64]bool) (*interfaces.GroupOutcome, error) {
	entries, err := s.rateRepo.GetByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}
	table := entities.NewRateTable(clientID, entries)

	outcome := &interfaces.GroupOutcome{ClientID: clientID}
	for _, bet := range bets {
		outcome.BetsEvaluated++

		if alreadyPaid[bet.ID] {
			outcome.BetsSkipped++
			continue
		}
		if !bet.Matches(draw) {
			continue
		}

		prize, err := table.PrizeFor(bet)
		if err != nil {
			if errors.Is(err, entities.ErrInvalidRate) {
				log.WithError(err).WithFields(log.Fields{
					"drawID":   draw.ID,
					"clientID": clientID,
					"betID":    bet.ID,
				}).Warn("Malformed rate entry, bet wins no prize")
				continue
			}
			return nil, fmt.Errorf("failed to resolve rate for bet %d: %w", bet.ID, err)
		}
		if prize.IsZero() {
			continue
		}

		description := fmt.Sprintf("Prize on draw %q: %s %s %s", draw.Label, bet.GameType, bet.Condition, bet.Number)
		txn, err := s.wallet.Credit(ctx, clientID, prize, description, &entities.Related{Type: entities.RelatedTypeBet, ID: bet.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to credit prize for bet %d: %w", bet.ID, err)
		}

		winner := &entities.DrawWinner{
			DrawID:        draw.ID,
			ClientID:      clientID,
			BetID:         bet.ID,
			Prize:         prize,
			TransactionID: txn.ID,
		}
		if err := s.winnerRepo.Create(ctx, winner); err != nil {
			return nil, fmt.Errorf("failed to record winner for bet %d: %w", bet.ID, err)
		}

		outcome.BetsPaid++
		outcome.TotalPaid = outcome.TotalPaid.Add(prize)
		outcome.PaidBetIDs = append(outcome.PaidBetIDs, bet.ID)
	}

	return outcome, nil
}

// FinalizeDraw closes out a settlement run. Payout totals come from the
// winners table rather than the run's own counts, so a resumed run
// finishes with the full figure including bets paid by earlier runs.
func (s *settlementService) FinalizeDraw(ctx context.Context, result *entities.SettlementResult) error {
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, result.DrawID)
	if err != nil {
		return fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return fmt.Errorf("draw %d: %w", result.DrawID, entities.ErrNotFound)
	}
	if draw.IsFinished() {
		result.Finished = true
		return nil
	}
	if !draw.IsSettling() {
		return fmt.Errorf("draw %d is %s, expected settling", result.DrawID, draw.Status)
	}

	winners, err := s.winnerRepo.ListByDraw(ctx, result.DrawID)
	if err != nil {
		return fmt.Errorf("failed to list winners: %w", err)
	}

	if !result.Complete() {
		if len(winners) == 0 {
			// Nothing was ever paid, so the claim is safe to release
			draw.Reopen()
			if err := s.drawRepo.Update(ctx, draw); err != nil {
				return fmt.Errorf("failed to reopen draw: %w", err)
			}
			log.WithFields(log.Fields{
				"drawID":   result.DrawID,
				"failures": len(result.Failures),
			}).Warn("Settlement paid nothing, draw reopened for retry")
			return nil
		}

		// Paid bets exist; the draw stays claimed so a resume with the
		// same numbers can settle the remainder without double-paying
		log.WithFields(log.Fields{
			"drawID":   result.DrawID,
			"paid":     len(winners),
			"failures": len(result.Failures),
		}).Warn("Settlement incomplete, draw left settling for resume")
		return nil
	}

	totalPayout := decimal.Zero
	clientSet := make(map[int64]bool)
	for _, w := range winners {
		totalPayout = totalPayout.Add(w.Prize)
		clientSet[w.ClientID] = true
	}

	draw.Finish(totalPayout)
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return fmt.Errorf("failed to finish draw: %w", err)
	}

	if err := s.logRepo.Create(ctx, &entities.SettlementLog{
		DrawID:         result.DrawID,
		WinningNumbers: draw.WinningNumbers,
		BetsEvaluated:  result.BetsEvaluated,
		BetsPaid:       len(winners),
		WinningClients: len(clientSet),
		TotalPayout:    totalPayout,
	}); err != nil {
		return fmt.Errorf("failed to record settlement log: %w", err)
	}

	winningClientIDs := make([]int64, 0, len(clientSet))
	for id := range clientSet {
		winningClientIDs = append(winningClientIDs, id)
	}
	sort.Slice(winningClientIDs, func(i, j int) bool { return winningClientIDs[i] < winningClientIDs[j] })

	result.Finished = true
	result.TotalPayout = totalPayout
	result.WinningClientIDs = winningClientIDs

	if err := s.eventPublisher.Publish(events.DrawSettledEvent{
		DrawID:           result.DrawID,
		WinningNumbers:   draw.WinningNumbers,
		BetsPaid:         len(winners),
		TotalPayout:      totalPayout,
		WinningClientIDs: winningClientIDs,
	}); err != nil {
		log.WithError(err).Error("Failed to publish draw settled event")
	}

	log.WithFields(log.Fields{
		"drawID":         result.DrawID,
		"betsPaid":       len(winners),
		"totalPayout":    totalPayout.String(),
		"winningClients": len(clientSet),
	}).Info("Finished draw settlement")

	return nil
}

// GetWinnersReport returns the per-client breakdown of a draw's payouts
func (s *settlementService) GetWinnersReport(ctx context.Context, drawID int64) (*entities.DrawWinnersReport, error) {
	draw, err := s.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrNotFound)
	}

	winners, err := s.winnerRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}

	bets, err := s.betRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	betsByID := make(map[int64]*entities.Bet, len(bets))
	for _, b := range bets {
		betsByID[b.ID] = b
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	names := make(map[int64]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	grouped := make(map[int64]*entities.ClientWinnings)
	report := &entities.DrawWinnersReport{
		DrawID:         drawID,
		WinningNumbers: draw.WinningNumbers,
	}
	for _, w := range winners {
		cw, ok := grouped[w.ClientID]
		if !ok {
			cw = &entities.ClientWinnings{
				ClientID:   w.ClientID,
				ClientName: names[w.ClientID],
			}
			grouped[w.ClientID] = cw
			report.Clients = append(report.Clients, cw)
		}
		cw.Bets = append(cw.Bets, &entities.WinningBet{
			Bet:           betsByID[w.BetID],
			Prize:         w.Prize,
			TransactionID: w.TransactionID,
		})
		cw.TotalWon = cw.TotalWon.Add(w.Prize)
		report.TotalPayout = report.TotalPayout.Add(w.Prize)
	}
	sort.Slice(report.Clients, func(i, j int) bool {
		return report.Clients[i].ClientID < report.Clients[j].ClientID
	})

	return report, nil
}

// validateWinningNumbers rejects a declaration with no usable numbers
func validateWinningNumbers(numbers []string) error {
	if len(numbers) == 0 {
		return errors.New("winning numbers cannot be empty")
	}
	for i, n := range numbers {
		if n == "" {
			return fmt.Errorf("winning number %d cannot be empty", i+1)
		}
		for _, r := range n {
			if r < '0' || r > '9' {
				return fmt.Errorf("winning number %q must be digits only", n)
			}
		}
	}
	return nil
}

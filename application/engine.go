package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
	"lottohouse/domain/services"
)

// Engine is the application facade. Every operation runs inside its own unit
// of work; winner declaration spans several so client groups can settle in
// parallel without sharing a transaction.
type Engine struct {
	uowFactory        UnitOfWorkFactory
	settlementWorkers int
}

// NewEngine creates the application engine
func NewEngine(uowFactory UnitOfWorkFactory, settlementWorkers int) *Engine {
	if settlementWorkers < 1 {
		settlementWorkers = 1
	}
	return &Engine{
		uowFactory:        uowFactory,
		settlementWorkers: settlementWorkers,
	}
}

// CreateClient registers a new client with an empty wallet
func (e *Engine) CreateClient(ctx context.Context, name string) (*entities.Client, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clientService := services.NewClientService(
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.EventBus(),
	)
	client, err := clientService.CreateClient(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return client, nil
}

// GetClient retrieves a client by ID
func (e *Engine) GetClient(ctx context.Context, clientID int64) (*entities.Client, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clientService := services.NewClientService(
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.EventBus(),
	)
	return clientService.GetClient(ctx, clientID)
}

// ListClients returns all clients including the operator account
func (e *Engine) ListClients(ctx context.Context) ([]*entities.Client, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.ClientRepository().List(ctx)
}

// SetClientActive activates or deactivates a client
func (e *Engine) SetClientActive(ctx context.Context, clientID int64, active bool) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clientService := services.NewClientService(
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.EventBus(),
	)
	if err := clientService.SetClientActive(ctx, clientID, active); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetClientRates atomically replaces a client's payout rate table
func (e *Engine) SetClientRates(ctx context.Context, clientID int64, entries []*entities.RateEntry) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clientService := services.NewClientService(
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.EventBus(),
	)
	if err := clientService.SetClientRates(ctx, clientID, entries); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetClientRates returns a client's payout rate table
func (e *Engine) GetClientRates(ctx context.Context, clientID int64) ([]*entities.RateEntry, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	clientService := services.NewClientService(
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.EventBus(),
	)
	return clientService.GetClientRates(ctx, clientID)
}

// CreateDraw opens a new draw for betting
func (e *Engine) CreateDraw(ctx context.Context, label string) (*entities.Draw, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	draw, err := settlementService.CreateDraw(ctx, label)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return draw, nil
}

// GetDraw retrieves a draw by ID
func (e *Engine) GetDraw(ctx context.Context, drawID int64) (*entities.Draw, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	return settlementService.GetDraw(ctx, drawID)
}

// PlaceBets accepts a batch of bets on an open draw, debiting the client
// wallet once per bet
func (e *Engine) PlaceBets(ctx context.Context, clientID, drawID int64, specs []entities.BetSpec) (*entities.PlaceBetsResult, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	walletService := services.NewWalletService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
	)
	bettingService := services.NewBettingService(
		uow.ClientRepository(),
		uow.DrawRepository(),
		uow.BetRepository(),
		walletService,
		uow.EventBus(),
	)
	result, err := bettingService.PlaceBets(ctx, clientID, drawID, specs)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// GetClientBets returns a client's most recent bets
func (e *Engine) GetClientBets(ctx context.Context, clientID int64, limit int) ([]*entities.Bet, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BetRepository().ListByClient(ctx, clientID, limit)
}

// DeclareWinner declares the winning numbers for a draw and settles every
// bet on it. The draw is claimed in one transaction, each client's bets are
// evaluated and paid in their own transaction so clients settle in parallel,
// and a final transaction closes the draw out. Declaring identical numbers
// on a draw stuck in settling resumes it, skipping bets already paid.
func (e *Engine) DeclareWinner(ctx context.Context, drawID int64, winningNumbers []string) (*entities.SettlementResult, error) {
	claim, err := e.claimDraw(ctx, drawID, winningNumbers)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"drawID":         drawID,
		"winningNumbers": winningNumbers,
		"bets":           len(claim.Bets),
		"alreadyPaid":    len(claim.AlreadyPaid),
		"resumed":        claim.Resumed,
	}).Info("Draw claimed for settlement")

	result := e.settleGroups(ctx, claim)

	if err := e.finalizeSettlement(ctx, result); err != nil {
		return nil, err
	}

	if len(result.Failures) > 0 {
		log.WithFields(log.Fields{
			"drawID":       drawID,
			"failedGroups": len(result.Failures),
		}).Warn("Settlement finished with failed client groups")
	} else {
		log.WithFields(log.Fields{
			"drawID":      drawID,
			"betsPaid":    result.BetsPaid,
			"totalPayout": result.TotalPayout,
		}).Info("Settlement complete")
	}

	return result, nil
}

// claimDraw runs the claim phase in its own transaction
func (e *Engine) claimDraw(ctx context.Context, drawID int64, winningNumbers []string) (*interfaces.SettlementClaim, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	claim, err := settlementService.ClaimDraw(ctx, drawID, winningNumbers)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit draw claim: %w", err)
	}
	return claim, nil
}

type groupJob struct {
	clientID int64
	bets     []*entities.Bet
}

// settleGroups fans the claimed draw's bets out to the settlement workers,
// one client group per transaction, and aggregates their outcomes
func (e *Engine) settleGroups(ctx context.Context, claim *interfaces.SettlementClaim) *entities.SettlementResult {
	groups := make(map[int64][]*entities.Bet)
	order := make([]int64, 0)
	for _, bet := range claim.Bets {
		if _, ok := groups[bet.ClientID]; !ok {
			order = append(order, bet.ClientID)
		}
		groups[bet.ClientID] = append(groups[bet.ClientID], bet)
	}

	var (
		mu       sync.Mutex
		outcomes []*interfaces.GroupOutcome
		failures []entities.ClientFailure
	)

	jobs := make(chan groupJob)
	var wg sync.WaitGroup
	for i := 0; i < e.settlementWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				outcome, err := e.settleGroup(ctx, claim, job)
				mu.Lock()
				if err != nil {
					log.WithFields(log.Fields{
						"drawID":   claim.Draw.ID,
						"clientID": job.clientID,
						"error":    err,
					}).Error("Failed to settle client group")
					failures = append(failures, entities.ClientFailure{
						ClientID: job.clientID,
						BetIDs:   betIDs(job.bets),
						Reason:   err.Error(),
					})
				} else {
					outcomes = append(outcomes, outcome)
				}
				mu.Unlock()
			}
		}()
	}

	for _, clientID := range order {
		jobs <- groupJob{clientID: clientID, bets: groups[clientID]}
	}
	close(jobs)
	wg.Wait()

	result := &entities.SettlementResult{
		DrawID:         claim.Draw.ID,
		WinningNumbers: claim.Draw.WinningNumbers,
		TotalPayout:    decimal.Zero,
	}
	for _, outcome := range outcomes {
		result.BetsEvaluated += outcome.BetsEvaluated
		result.BetsPaid += outcome.BetsPaid
		result.BetsSkipped += outcome.BetsSkipped
		result.TotalPayout = result.TotalPayout.Add(outcome.TotalPaid)
		if outcome.BetsPaid > 0 {
			result.WinningClientIDs = append(result.WinningClientIDs, outcome.ClientID)
		}
	}
	sort.Slice(result.WinningClientIDs, func(i, j int) bool {
		return result.WinningClientIDs[i] < result.WinningClientIDs[j]
	})
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].ClientID < failures[j].ClientID
	})
	result.Failures = failures

	return result
}

// settleGroup evaluates and pays one client's bets in its own transaction
func (e *Engine) settleGroup(ctx context.Context, claim *interfaces.SettlementClaim, job groupJob) (*interfaces.GroupOutcome, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	outcome, err := settlementService.SettleClientGroup(ctx, claim.Draw, job.clientID, job.bets, claim.AlreadyPaid)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit client group settlement: %w", err)
	}
	return outcome, nil
}

// finalizeSettlement runs the finalize phase in its own transaction
func (e *Engine) finalizeSettlement(ctx context.Context, result *entities.SettlementResult) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	if err := settlementService.FinalizeDraw(ctx, result); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement finalization: %w", err)
	}
	return nil
}

// GetDrawWinnersReport returns the per-client payout breakdown of a draw
func (e *Engine) GetDrawWinnersReport(ctx context.Context, drawID int64) (*entities.DrawWinnersReport, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := e.newSettlementService(uow)
	return settlementService.GetWinnersReport(ctx, drawID)
}

// GetSettlementLog returns the record of a draw's finished settlement run
func (e *Engine) GetSettlementLog(ctx context.Context, drawID int64) (*entities.SettlementLog, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.SettlementLogRepository().GetByDraw(ctx, drawID)
}

// ReverseTransaction voids a ledger entry and compensates the wallet
func (e *Engine) ReverseTransaction(ctx context.Context, transactionID int64) (*entities.Transaction, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	walletService := services.NewWalletService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
	)
	txn, err := walletService.Reverse(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return txn, nil
}

// AdjustWallet posts a manual deposit or withdrawal on a wallet
func (e *Engine) AdjustWallet(ctx context.Context, clientID int64, typ entities.TransactionType, amount decimal.Decimal, description string) (*entities.Transaction, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	walletService := services.NewWalletService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
	)
	txn, err := walletService.Adjust(ctx, clientID, typ, amount, description)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return txn, nil
}

// GetClientLedger reconstructs a client's ledger over a period
func (e *Engine) GetClientLedger(ctx context.Context, clientID int64, period entities.Period) (*entities.LedgerView, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledgerService := services.NewLedgerService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
	)
	return ledgerService.GetClientLedger(ctx, clientID, period)
}

// GetAdminLedger derives the operator ledger over a period
func (e *Engine) GetAdminLedger(ctx context.Context, period entities.Period) (*entities.LedgerView, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledgerService := services.NewLedgerService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
	)
	return ledgerService.GetAdminLedger(ctx, period)
}

// ResumeStuckSettlements re-runs settlement for draws claimed before the
// cutoff that never finished, using their recorded winning numbers. Returns
// how many draws were picked up.
func (e *Engine) ResumeStuckSettlements(ctx context.Context, olderThan time.Duration) (int, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	draws, err := uow.DrawRepository().ListSettlingOlderThan(ctx, cutoff)
	uow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to list stuck settlements: %w", err)
	}

	for _, draw := range draws {
		log.WithFields(log.Fields{
			"drawID":     draw.ID,
			"declaredAt": draw.DeclaredAt,
		}).Info("Resuming stuck settlement")

		if _, err := e.DeclareWinner(ctx, draw.ID, draw.WinningNumbers); err != nil {
			log.WithFields(log.Fields{
				"drawID": draw.ID,
				"error":  err,
			}).Error("Failed to resume settlement")
		}
	}

	return len(draws), nil
}

// newSettlementService wires a settlement service onto the unit of work
func (e *Engine) newSettlementService(uow UnitOfWork) interfaces.SettlementService {
	walletService := services.NewWalletService(
		uow.ClientRepository(),
		uow.TransactionRepository(),
		uow.EventBus(),
	)
	return services.NewSettlementService(
		uow.DrawRepository(),
		uow.BetRepository(),
		uow.ClientRepository(),
		uow.RateRepository(),
		uow.WinnerRepository(),
		uow.SettlementLogRepository(),
		walletService,
		uow.EventBus(),
	)
}

func betIDs(bets []*entities.Bet) []int64 {
	ids := make([]int64, len(bets))
	for i, bet := range bets {
		ids[i] = bet.ID
	}
	return ids
}

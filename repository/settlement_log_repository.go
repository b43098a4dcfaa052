package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

type settlementLogRepository struct {
	q Queryable
}

// NewSettlementLogRepository creates a settlement log repository backed by the connection pool.
func NewSettlementLogRepository(db *database.DB) interfaces.SettlementLogRepository {
	return &settlementLogRepository{q: db.Pool}
}

func newSettlementLogRepositoryScoped(tx Queryable) *settlementLogRepository {
	return &settlementLogRepository{q: tx}
}

func (r *settlementLogRepository) Create(ctx context.Context, log *entities.SettlementLog) error {
	query := `
		INSERT INTO settlement_logs (draw_id, winning_numbers, bets_evaluated, bets_paid, winning_clients, total_payout)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		log.DrawID,
		log.WinningNumbers,
		log.BetsEvaluated,
		log.BetsPaid,
		log.WinningClients,
		log.TotalPayout,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement log: %w", err)
	}
	return nil
}

func (r *settlementLogRepository) GetByDraw(ctx context.Context, drawID int64) (*entities.SettlementLog, error) {
	query := `
		SELECT id, draw_id, winning_numbers, bets_evaluated, bets_paid, winning_clients, total_payout, created_at
		FROM settlement_logs
		WHERE draw_id = $1`

	var log entities.SettlementLog
	err := r.q.QueryRow(ctx, query, drawID).Scan(
		&log.ID,
		&log.DrawID,
		&log.WinningNumbers,
		&log.BetsEvaluated,
		&log.BetsPaid,
		&log.WinningClients,
		&log.TotalPayout,
		&log.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement log: %w", err)
	}
	return &log, nil
}

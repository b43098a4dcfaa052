package repository

import (
	"context"
	"fmt"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

type winnerRepository struct {
	q Queryable
}

// NewWinnerRepository creates a winner repository backed by the connection pool.
func NewWinnerRepository(db *database.DB) interfaces.WinnerRepository {
	return &winnerRepository{q: db.Pool}
}

func newWinnerRepositoryScoped(tx Queryable) *winnerRepository {
	return &winnerRepository{q: tx}
}

// Create records a paid bet. The unique index on bet_id rejects a second
// payout for the same bet, so a retried settlement cannot pay twice.
func (r *winnerRepository) Create(ctx context.Context, winner *entities.DrawWinner) error {
	query := `
		INSERT INTO draw_winners (draw_id, client_id, bet_id, prize, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		winner.DrawID,
		winner.ClientID,
		winner.BetID,
		winner.Prize,
		winner.TransactionID,
	).Scan(&winner.ID, &winner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw winner: %w", err)
	}
	return nil
}

func (r *winnerRepository) ListByDraw(ctx context.Context, drawID int64) ([]*entities.DrawWinner, error) {
	query := `
		SELECT id, draw_id, client_id, bet_id, prize, transaction_id, created_at
		FROM draw_winners
		WHERE draw_id = $1
		ORDER BY client_id, bet_id`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw winners: %w", err)
	}
	defer rows.Close()

	var winners []*entities.DrawWinner
	for rows.Next() {
		var winner entities.DrawWinner
		err := rows.Scan(
			&winner.ID,
			&winner.DrawID,
			&winner.ClientID,
			&winner.BetID,
			&winner.Prize,
			&winner.TransactionID,
			&winner.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw winner: %w", err)
		}
		winners = append(winners, &winner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draw winners: %w", err)
	}
	return winners, nil
}

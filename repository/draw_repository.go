package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

const drawColumns = `id, label, status, winning_numbers, declared_at, total_payout, created_at`

type drawRepository struct {
	q Queryable
}

// NewDrawRepository creates a draw repository backed by the connection pool.
func NewDrawRepository(db *database.DB) interfaces.DrawRepository {
	return &drawRepository{q: db.Pool}
}

func newDrawRepositoryScoped(tx Queryable) *drawRepository {
	return &drawRepository{q: tx}
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	err := row.Scan(
		&draw.ID,
		&draw.Label,
		&draw.Status,
		&draw.WinningNumbers,
		&draw.DeclaredAt,
		&draw.TotalPayout,
		&draw.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

func (r *drawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (label, status, winning_numbers, total_payout)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		draw.Label,
		draw.Status,
		draw.WinningNumbers,
		draw.TotalPayout,
	).Scan(&draw.ID, &draw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

func (r *drawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	return draw, nil
}

// GetByIDForUpdate takes an exclusive lock on the draw row. Winner
// declaration serializes on this lock.
func (r *drawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1 FOR UPDATE`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for update: %w", err)
	}
	return draw, nil
}

// GetByIDForShare takes a shared lock on the draw row. Bet intake holds it
// until commit so a concurrent winner declaration cannot slip between the
// status check and the bet insert.
func (r *drawRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1 FOR SHARE`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for share: %w", err)
	}
	return draw, nil
}

func (r *drawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	query := `
		UPDATE draws
		SET status = $1, winning_numbers = $2, declared_at = $3, total_payout = $4
		WHERE id = $5`

	result, err := r.q.Exec(ctx, query,
		draw.Status,
		draw.WinningNumbers,
		draw.DeclaredAt,
		draw.TotalPayout,
		draw.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update draw: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found", draw.ID)
	}
	return nil
}

// ListSettlingOlderThan returns draws stuck in settling whose declaration is
// older than the cutoff. The resume worker retries these.
func (r *drawRepository) ListSettlingOlderThan(ctx context.Context, cutoff time.Time) ([]*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE status = 'settling' AND declared_at < $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list settling draws: %w", err)
	}
	defer rows.Close()

	var draws []*entities.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draws: %w", err)
	}
	return draws, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

const betColumns = `id, client_id, draw_id, game_type, condition, number, stake, created_at`

type betRepository struct {
	q Queryable
}

// NewBetRepository creates a bet repository backed by the connection pool.
func NewBetRepository(db *database.DB) interfaces.BetRepository {
	return &betRepository{q: db.Pool}
}

func newBetRepositoryScoped(tx Queryable) *betRepository {
	return &betRepository{q: tx}
}

// CreateBatch inserts all bets in a single statement and fills in the
// generated IDs and timestamps on the input slice.
func (r *betRepository) CreateBatch(ctx context.Context, bets []*entities.Bet) error {
	if len(bets) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(bets))
	valueArgs := make([]any, 0, len(bets)*6)
	for i, bet := range bets {
		paramOffset := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			paramOffset+1, paramOffset+2, paramOffset+3, paramOffset+4, paramOffset+5, paramOffset+6))
		valueArgs = append(valueArgs,
			bet.ClientID,
			bet.DrawID,
			bet.GameType,
			bet.Condition,
			bet.Number,
			bet.Stake,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO bets (client_id, draw_id, game_type, condition, number, stake)
		VALUES %s
		RETURNING id, created_at`, strings.Join(valueStrings, ", "))

	rows, err := r.q.Query(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to create bets: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&bets[i].ID, &bets[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan created bet: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate created bets: %w", err)
	}
	if i != len(bets) {
		return fmt.Errorf("expected %d created bets, got %d", len(bets), i)
	}
	return nil
}

func (r *betRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	var bet entities.Bet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.ClientID,
		&bet.DrawID,
		&bet.GameType,
		&bet.Condition,
		&bet.Number,
		&bet.Stake,
		&bet.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return &bet, nil
}

func (r *betRepository) ListByDraw(ctx context.Context, drawID int64) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE draw_id = $1 ORDER BY client_id, id`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets by draw: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func (r *betRepository) ListByClient(ctx context.Context, clientID int64, limit int) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE client_id = $1 ORDER BY id DESC`
	args := []any{clientID}

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets by client: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.ClientID,
			&bet.DrawID,
			&bet.GameType,
			&bet.Condition,
			&bet.Number,
			&bet.Stake,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

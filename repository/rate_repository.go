package repository

import (
	"context"
	"fmt"
	"strings"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

type rateRepository struct {
	q Queryable
}

// NewRateRepository creates a rate repository backed by the connection pool.
func NewRateRepository(db *database.DB) interfaces.RateRepository {
	return &rateRepository{q: db.Pool}
}

func newRateRepositoryScoped(tx Queryable) *rateRepository {
	return &rateRepository{q: tx}
}

func (r *rateRepository) GetByClient(ctx context.Context, clientID int64) ([]*entities.RateEntry, error) {
	query := `
		SELECT id, client_id, game_type, condition, digit_count, rate, created_at
		FROM rate_entries
		WHERE client_id = $1
		ORDER BY game_type, digit_count, condition`

	rows, err := r.q.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.RateEntry
	for rows.Next() {
		var entry entities.RateEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ClientID,
			&entry.GameType,
			&entry.Condition,
			&entry.DigitCount,
			&entry.Rate,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rate entries: %w", err)
	}
	return entries, nil
}

// ReplaceForClient swaps the client's whole rate table in one shot. Rates in
// flight on other transactions keep reading the old rows until this commits.
func (r *rateRepository) ReplaceForClient(ctx context.Context, clientID int64, entries []*entities.RateEntry) error {
	deleteQuery := `DELETE FROM rate_entries WHERE client_id = $1`
	if _, err := r.q.Exec(ctx, deleteQuery, clientID); err != nil {
		return fmt.Errorf("failed to clear rate entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(entries))
	valueArgs := make([]any, 0, len(entries)*5)
	for i, entry := range entries {
		paramOffset := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			paramOffset+1, paramOffset+2, paramOffset+3, paramOffset+4, paramOffset+5))
		valueArgs = append(valueArgs,
			clientID,
			entry.GameType,
			entry.Condition,
			entry.DigitCount,
			entry.Rate,
		)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO rate_entries (client_id, game_type, condition, digit_count, rate)
		VALUES %s
		RETURNING id, created_at`, strings.Join(valueStrings, ", "))

	rows, err := r.q.Query(ctx, insertQuery, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to insert rate entries: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&entries[i].ID, &entries[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan created rate entry: %w", err)
		}
		entries[i].ClientID = clientID
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate created rate entries: %w", err)
	}
	if i != len(entries) {
		return fmt.Errorf("expected %d created rate entries, got %d", len(entries), i)
	}
	return nil
}

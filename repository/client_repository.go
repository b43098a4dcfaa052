package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

const clientColumns = `id, name, role, balance, active, created_at, updated_at`

type clientRepository struct {
	q Queryable
}

// NewClientRepository creates a client repository backed by the connection pool.
func NewClientRepository(db *database.DB) interfaces.ClientRepository {
	return &clientRepository{q: db.Pool}
}

func newClientRepositoryScoped(tx Queryable) *clientRepository {
	return &clientRepository{q: tx}
}

func scanClient(row pgx.Row) (*entities.Client, error) {
	var client entities.Client
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Role,
		&client.Balance,
		&client.Active,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*entities.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// GetByIDForUpdate locks the client row for the duration of the transaction.
// Wallet movements for a client serialize on this lock.
func (r *clientRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 FOR UPDATE`

	client, err := scanClient(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get client for update: %w", err)
	}
	return client, nil
}

func (r *clientRepository) GetAdmin(ctx context.Context) (*entities.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE role = 'admin'`

	client, err := scanClient(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get admin client: %w", err)
	}
	return client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *entities.Client) error {
	query := `
		INSERT INTO clients (name, role, balance, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		client.Name,
		client.Role,
		client.Balance,
		client.Active,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) UpdateBalance(ctx context.Context, clientID int64, newBalance decimal.Decimal) error {
	query := `UPDATE clients SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, newBalance, clientID)
	if err != nil {
		return fmt.Errorf("failed to update client balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %d not found", clientID)
	}
	return nil
}

// ApplyAdminBalanceDelta moves the operator balance by delta in a single
// statement. Callers issue it last in a transaction to keep the admin row
// lock window short.
func (r *clientRepository) ApplyAdminBalanceDelta(ctx context.Context, delta decimal.Decimal) error {
	query := `UPDATE clients SET balance = balance + $1, updated_at = NOW() WHERE role = 'admin'`

	result, err := r.q.Exec(ctx, query, delta)
	if err != nil {
		return fmt.Errorf("failed to apply admin balance delta: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin client not found")
	}
	return nil
}

func (r *clientRepository) SetActive(ctx context.Context, clientID int64, active bool) error {
	query := `UPDATE clients SET active = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, active, clientID)
	if err != nil {
		return fmt.Errorf("failed to set client active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %d not found", clientID)
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context) ([]*entities.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*entities.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

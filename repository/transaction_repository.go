package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/domain/interfaces"
)

const transactionColumns = `id, reference, client_id, type, amount, balance_after, description, reversed, related_id, related_type, created_at`

type transactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a transaction repository backed by the connection pool.
func NewTransactionRepository(db *database.DB) interfaces.TransactionRepository {
	return &transactionRepository{q: db.Pool}
}

func newTransactionRepositoryScoped(tx Queryable) *transactionRepository {
	return &transactionRepository{q: tx}
}

func scanTransaction(row pgx.Row, txn *entities.Transaction) error {
	return row.Scan(
		&txn.ID,
		&txn.Reference,
		&txn.ClientID,
		&txn.Type,
		&txn.Amount,
		&txn.BalanceAfter,
		&txn.Description,
		&txn.Reversed,
		&txn.RelatedID,
		&txn.RelatedType,
		&txn.CreatedAt,
	)
}

// Append inserts a new history row. Rows are never updated afterwards except
// for the reversed flag.
func (r *transactionRepository) Append(ctx context.Context, txn *entities.Transaction) error {
	query := `
		INSERT INTO transactions (reference, client_id, type, amount, balance_after, description, reversed, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		txn.Reference,
		txn.ClientID,
		txn.Type,
		txn.Amount,
		txn.BalanceAfter,
		txn.Description,
		txn.Reversed,
		txn.RelatedID,
		txn.RelatedType,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var txn entities.Transaction
	err := scanTransaction(r.q.QueryRow(ctx, query, id), &txn)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	var txn entities.Transaction
	err := scanTransaction(r.q.QueryRow(ctx, query, id), &txn)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction for update: %w", err)
	}
	return &txn, nil
}

// MarkReversed flips the reversed flag. The guard on the current flag value
// makes the operation idempotence-safe at the SQL level.
func (r *transactionRepository) MarkReversed(ctx context.Context, id int64) error {
	query := `UPDATE transactions SET reversed = TRUE WHERE id = $1 AND reversed = FALSE`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark transaction reversed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found or already reversed", id)
	}
	return nil
}

func (r *transactionRepository) ListByClient(ctx context.Context, clientID int64, period entities.Period) ([]*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE client_id = $1`
	args := []any{clientID}

	if period.Start != nil {
		args = append(args, *period.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if period.End != nil {
		args = append(args, *period.End)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entities.Transaction
	for rows.Next() {
		var txn entities.Transaction
		if err := scanTransaction(rows, &txn); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// SumSignedSince computes the net movement of a client wallet from the given
// instant onward. Reversed rows count as zero, credits as positive and debits
// as negative, matching Transaction.SignedAmount.
func (r *transactionRepository) SumSignedSince(ctx context.Context, clientID int64, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN reversed THEN 0
				WHEN type = 'credit' THEN amount
				ELSE -amount
			END
		), 0)
		FROM transactions
		WHERE client_id = $1 AND created_at >= $2`

	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, query, clientID, since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

// ListClientTransactions returns the history rows of every client-role wallet
// together with the owning client name, in append order. Operator-side views
// are built from this stream.
func (r *transactionRepository) ListClientTransactions(ctx context.Context, period entities.Period) ([]*entities.ClientTransaction, error) {
	query := `
		SELECT t.id, t.reference, t.client_id, t.type, t.amount, t.balance_after, t.description, t.reversed, t.related_id, t.related_type, t.created_at, c.name
		FROM transactions t
		JOIN clients c ON c.id = t.client_id
		WHERE c.role = 'client'`
	var args []any

	if period.Start != nil {
		args = append(args, *period.Start)
		query += fmt.Sprintf(" AND t.created_at >= $%d", len(args))
	}
	if period.End != nil {
		args = append(args, *period.End)
		query += fmt.Sprintf(" AND t.created_at < $%d", len(args))
	}
	query += " ORDER BY t.id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list client transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entities.ClientTransaction
	for rows.Next() {
		var ct entities.ClientTransaction
		err := rows.Scan(
			&ct.ID,
			&ct.Reference,
			&ct.ClientID,
			&ct.Type,
			&ct.Amount,
			&ct.BalanceAfter,
			&ct.Description,
			&ct.Reversed,
			&ct.RelatedID,
			&ct.RelatedType,
			&ct.CreatedAt,
			&ct.ClientName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client transaction: %w", err)
		}
		txns = append(txns, &ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client transactions: %w", err)
	}
	return txns, nil
}

// SumMirroredSince computes the net operator-side movement caused by
// client-role transactions from the given instant onward. Each client debit
// counts positive and each client credit negative, matching
// Transaction.MirroredAmount.
func (r *transactionRepository) SumMirroredSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN t.reversed THEN 0
				WHEN t.type = 'debit' THEN t.amount
				ELSE -t.amount
			END
		), 0)
		FROM transactions t
		JOIN clients c ON c.id = t.client_id
		WHERE c.role = 'client' AND t.created_at >= $1`

	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, query, since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum mirrored transactions: %w", err)
	}
	return sum, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// TransactionRepo persists the ledger in the 'coin_transactions' table.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

const txColumns = "id,user_id,type,amount,coins,status,created_at"

// Append inserts one ledger row.
func (r *TransactionRepo) Append(ctx context.Context, t model.Transaction) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO coin_transactions ("+txColumns+") VALUES (?,?,?,?,?,?,?)",
		t.ID, t.UserID, string(t.Type), t.Amount, t.Coins, string(t.Status), t.CreatedAt.UTC())
	if err != nil && isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// ListTransactions returns the ledger oldest first.
func (r *TransactionRepo) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return r.query(ctx, "SELECT "+txColumns+" FROM coin_transactions ORDER BY created_at, id")
}

// ListByUser returns the ledger rows of one user oldest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	return r.query(ctx, "SELECT "+txColumns+" FROM coin_transactions WHERE user_id=? ORDER BY created_at, id", userID)
}

func (r *TransactionRepo) query(ctx context.Context, q string, args ...any) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Transaction
	for rows.Next() {
		var (
			t           model.Transaction
			typ, status string
			created     dbTime
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &t.Coins, &status, &created); err != nil {
			return nil, err
		}
		t.Type = model.TransactionType(typ)
		t.Status = model.TransactionStatus(status)
		t.CreatedAt = created.Time
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ TransactionRepository = (*TransactionRepo)(nil)

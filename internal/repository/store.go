package repository

import (
	"context"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// UserRepository is the capability set the session manager and dashboards
// need from user storage.  Implementations return copies; mutating a
// returned user never changes stored state until Update is called.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByMobile(ctx context.Context, mobile string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	Insert(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
}

// TransactionRepository is the append-only ledger.  Entries are never
// updated or removed.
type TransactionRepository interface {
	Append(ctx context.Context, t model.Transaction) error
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]model.Transaction, error)
}

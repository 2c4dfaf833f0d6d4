package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/coin-rewards/internal/model"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedUsers returns the mock accounts the platform ships with.
func SeedUsers() []model.User {
	usedAt := mustTime("2024-01-25T09:30:00Z")
	return []model.User{
		{
			ID:        "1",
			Email:     "admin@coinplatform.com",
			Name:      "Admin User",
			Role:      model.RoleAdmin,
			Coins:     10000,
			Coupons:   []model.Coupon{},
			CreatedAt: mustTime("2024-01-01T00:00:00Z"),
		},
		{
			ID:    "2",
			Email: "john@example.com",
			Name:  "John Doe",
			Role:  model.RoleUser,
			Coins: 250,
			Coupons: []model.Coupon{{
				ID:        "c1",
				Code:      "WELCOME10",
				Value:     10,
				CreatedAt: mustTime("2024-01-15T10:30:00Z"),
				ExpiresAt: mustTime("2024-12-31T23:59:59Z"),
			}},
			CreatedAt:  mustTime("2024-01-15T10:00:00Z"),
			TotalSpent: 500,
		},
		{
			ID:    "3",
			Email: "jane@example.com",
			Name:  "Jane Smith",
			Role:  model.RoleUser,
			Coins: 750,
			Coupons: []model.Coupon{{
				ID:        "c2",
				Code:      "LOYALTY25",
				Value:     25,
				IsUsed:    true,
				CreatedAt: mustTime("2024-01-20T14:15:00Z"),
				UsedAt:    &usedAt,
				ExpiresAt: mustTime("2024-12-31T23:59:59Z"),
			}},
			CreatedAt:  mustTime("2024-01-20T14:00:00Z"),
			TotalSpent: 1000,
		},
	}
}

// SeedTransactions returns the static ledger entries matching SeedUsers.
func SeedTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: "1", UserID: "2", Type: model.TxPurchase, Amount: 500, Coins: 550, CreatedAt: mustTime("2024-01-15T10:30:00Z"), Status: model.TxCompleted},
		{ID: "2", UserID: "3", Type: model.TxPurchase, Amount: 1000, Coins: 1150, CreatedAt: mustTime("2024-01-20T14:15:00Z"), Status: model.TxCompleted},
	}
}

// Seed loads the mock data into the given repositories.  Users that already
// exist are skipped and the ledger is only seeded while it is empty, so Seed
// can run on every start.
func Seed(ctx context.Context, users UserRepository, txns TransactionRepository) error {
	for _, u := range SeedUsers() {
		if err := users.Insert(ctx, u); err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	existing, err := txns.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range SeedTransactions() {
		if err := txns.Append(ctx, t); err != nil {
			return fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

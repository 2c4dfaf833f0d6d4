package dashboard

import (
	"context"
	"fmt"

	"github.com/iliyamo/coin-rewards/internal/model"
	"github.com/iliyamo/coin-rewards/internal/repository"
)

// UserStats are the cards at the top of the user dashboard.
type UserStats struct {
	Coins            int64 `json:"coins"`
	AvailableCoupons int   `json:"availableCoupons"`
	UsedCoupons      int   `json:"usedCoupons"`
	TotalSpent       int64 `json:"totalSpent"`
}

// View is one rendered dashboard.  Fields that the role's Config does not
// enable are left empty.
type View struct {
	Config       Config              `json:"config"`
	User         model.User          `json:"user"`
	Stats        *UserStats          `json:"stats,omitempty"`
	Packages     []model.CoinPackage `json:"packages,omitempty"`
	History      []model.Transaction `json:"history,omitempty"`
	Summary      *Summary            `json:"summary,omitempty"`
	Users        []model.User        `json:"users,omitempty"`
	Transactions []TransactionRow    `json:"transactions,omitempty"`
	Analytics    *Analytics          `json:"analytics,omitempty"`
}

// Builder reads the repositories on every call; nothing is cached.
type Builder struct {
	Users        repository.UserRepository
	Transactions repository.TransactionRepository
}

// Build renders the dashboard of viewer.  search narrows the user list of
// the admin dashboards.
func (b *Builder) Build(ctx context.Context, viewer model.User, search string) (View, error) {
	cfg, ok := ForRole(viewer.Role)
	if !ok {
		return View{}, repository.ErrForbidden
	}
	v := View{Config: cfg, User: viewer}

	if viewer.Role == model.RoleUser {
		v.Stats = &UserStats{
			Coins:            viewer.Coins,
			AvailableCoupons: viewer.AvailableCoupons(),
			UsedCoupons:      viewer.UsedCoupons(),
			TotalSpent:       viewer.TotalSpent,
		}
		if cfg.Capabilities.Purchase {
			v.Packages = model.Catalog()
		}
		hist, err := b.Transactions.ListByUser(ctx, viewer.ID)
		if err != nil {
			return View{}, fmt.Errorf("list history: %w", err)
		}
		v.History = hist
		return v, nil
	}

	all, err := b.Users.ListUsers(ctx)
	if err != nil {
		return View{}, fmt.Errorf("list users: %w", err)
	}
	sum := Summarize(all)
	v.Summary = &sum
	v.Users = SearchUsers(VisibleUsers(cfg, all), search)
	if cfg.Capabilities.ViewTransactions {
		txns, err := b.Transactions.ListTransactions(ctx)
		if err != nil {
			return View{}, fmt.Errorf("list transactions: %w", err)
		}
		v.Transactions = JoinTransactions(txns, all)
	}
	if cfg.Capabilities.ViewAnalytics {
		a := Analyze(all)
		v.Analytics = &a
	}
	return v, nil
}

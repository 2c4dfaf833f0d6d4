// Package dashboard builds the role-scoped dashboards from the session user
// and the repositories.  One Config per role decides which tabs, labels and
// actions a dashboard exposes.
package dashboard

import "github.com/iliyamo/coin-rewards/internal/model"

type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Capabilities gate the actions a dashboard offers.
type Capabilities struct {
	Purchase         bool `json:"purchase"`
	AddAmount        bool `json:"addAmount"`
	ViewTransactions bool `json:"viewTransactions"`
	ViewAnalytics    bool `json:"viewAnalytics"`
	// ViewAllRoles lists admins next to regular users.
	ViewAllRoles bool `json:"viewAllRoles"`
}

// Config parameterizes the dashboard of a role.  Labels maps column keys
// ("spent", "redeem", ...) to their display text.
type Config struct {
	Role         model.Role        `json:"role"`
	Title        string            `json:"title"`
	Tabs         []Tab             `json:"tabs"`
	Labels       map[string]string `json:"labels"`
	Capabilities Capabilities      `json:"capabilities"`
}

var adminTabs = []Tab{
	{ID: "overview", Label: "Overview"},
	{ID: "users", Label: "Users"},
	{ID: "transactions", Label: "Transactions"},
	{ID: "analytics", Label: "Analytics"},
}

// ForRole returns the dashboard configuration of r.  Unknown roles get no
// dashboard.
func ForRole(r model.Role) (Config, bool) {
	switch r {
	case model.RoleUser:
		return Config{
			Role:  r,
			Title: "My Dashboard",
			Tabs: []Tab{
				{ID: "dashboard", Label: "Dashboard"},
				{ID: "buy", Label: "Buy Coins"},
				{ID: "coupons", Label: "My Coupons"},
				{ID: "history", Label: "History"},
			},
			Labels: map[string]string{
				"coins":   "Total Coins",
				"coupons": "Available Coupons",
				"spent":   "Total Spent",
			},
			Capabilities: Capabilities{Purchase: true},
		}, true
	case model.RoleAdmin:
		return Config{
			Role:  r,
			Title: "Admin Dashboard",
			Tabs:  append([]Tab(nil), adminTabs...),
			Labels: map[string]string{
				"spent":  "Spent",
				"redeem": "Coupon Redeem",
			},
			Capabilities: Capabilities{AddAmount: true, ViewTransactions: true, ViewAnalytics: true},
		}, true
	case model.RoleSuperAdmin:
		return Config{
			Role:  r,
			Title: "Super Admin Panel",
			Tabs:  append([]Tab(nil), adminTabs...),
			Labels: map[string]string{
				"spent":  "Stock",
				"redeem": "Redeem",
			},
			Capabilities: Capabilities{AddAmount: true, ViewTransactions: true, ViewAnalytics: true, ViewAllRoles: true},
		}, true
	}
	return Config{}, false
}

// HasTab reports whether tab id is enabled.
func (c Config) HasTab(id string) bool {
	for _, t := range c.Tabs {
		if t.ID == id {
			return true
		}
	}
	return false
}

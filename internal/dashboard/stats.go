package dashboard

import (
	"math"
	"strings"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// Summary is the overview tab aggregate.  TotalUsers counts role user only;
// the sums run over every account passed in.
type Summary struct {
	TotalUsers            int   `json:"totalUsers"`
	TotalRevenue          int64 `json:"totalRevenue"`
	TotalCoinsDistributed int64 `json:"totalCoinsDistributed"`
	TotalCoupons          int   `json:"totalCoupons"`
}

func Summarize(users []model.User) Summary {
	var s Summary
	for _, u := range users {
		if u.Role == model.RoleUser {
			s.TotalUsers++
		}
		s.TotalRevenue += u.TotalSpent
		s.TotalCoinsDistributed += u.Coins
		s.TotalCoupons += len(u.Coupons)
	}
	return s
}

// Analytics is the analytics tab.  Percentages are 0..100; any ratio whose
// denominator is zero is reported as 0.
type Analytics struct {
	NewThisMonth         int     `json:"newThisMonth"`
	NewLastMonth         int     `json:"newLastMonth"`
	AvgRevenuePerUser    float64 `json:"avgRevenuePerUser"`
	ProjectedProfit      float64 `json:"projectedProfit"`
	ConversionRate       float64 `json:"conversionRate"`
	ActiveCouponRate     float64 `json:"activeCouponRate"`
	CouponRedemptionRate float64 `json:"couponRedemptionRate"`
	AvgCoinsPerUser      float64 `json:"avgCoinsPerUser"`
}

// ProfitMargin is the share of revenue reported as projected profit.
const ProfitMargin = 0.30

func ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func Analyze(users []model.User) Analytics {
	s := Summarize(users)
	total := float64(s.TotalUsers)
	var spenders, withActive, redeemed int
	for _, u := range users {
		if u.TotalSpent > 0 {
			spenders++
		}
		if u.AvailableCoupons() > 0 {
			withActive++
		}
		redeemed += u.UsedCoupons()
	}
	return Analytics{
		NewThisMonth:         int(math.Floor(total * 0.3)),
		NewLastMonth:         int(math.Floor(total * 0.4)),
		AvgRevenuePerUser:    round(ratio(float64(s.TotalRevenue), total), 2),
		ProjectedProfit:      round(float64(s.TotalRevenue)*ProfitMargin, 2),
		ConversionRate:       round(ratio(float64(spenders), total)*100, 1),
		ActiveCouponRate:     math.Round(ratio(float64(withActive), total) * 100),
		CouponRedemptionRate: math.Round(ratio(float64(redeemed), float64(s.TotalCoupons)) * 100),
		AvgCoinsPerUser:      math.Round(ratio(float64(s.TotalCoinsDistributed), total)),
	}
}

// SearchUsers keeps the users whose name, email or mobile contains q,
// ignoring case.  An empty q keeps everyone.
func SearchUsers(users []model.User, q string) []model.User {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.Mobile), q) {
			out = append(out, u)
		}
	}
	return out
}

// VisibleUsers applies the role filter of cfg: admins see regular users,
// super admins see users and admins.  Super admins are never listed.
func VisibleUsers(cfg Config, users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		switch {
		case u.Role == model.RoleUser:
			out = append(out, u)
		case u.Role == model.RoleAdmin && cfg.Capabilities.ViewAllRoles:
			out = append(out, u)
		}
	}
	return out
}

// TransactionRow is a ledger entry with the owner's display name.
type TransactionRow struct {
	model.Transaction
	UserName string `json:"userName"`
}

// JoinTransactions resolves the user name of each transaction.  Entries of
// unknown users are kept with the name "Unknown".
func JoinTransactions(txns []model.Transaction, users []model.User) []TransactionRow {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	rows := make([]TransactionRow, 0, len(txns))
	for _, t := range txns {
		name, ok := names[t.UserID]
		if !ok {
			name = "Unknown"
		}
		rows = append(rows, TransactionRow{Transaction: t, UserName: name})
	}
	return rows
}

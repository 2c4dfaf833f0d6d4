package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coin-rewards/internal/dashboard"
    "github.com/iliyamo/coin-rewards/internal/repository"
    "github.com/iliyamo/coin-rewards/internal/session"
)

// DashboardHandler serves the role dashboards and the admin actions.
type DashboardHandler struct {
    Sessions     *session.Service
    Builder      *dashboard.Builder
    Users        repository.UserRepository
    Transactions repository.TransactionRepository
}

func NewDashboardHandler(s *session.Service, users repository.UserRepository, txns repository.TransactionRepository) *DashboardHandler {
    return &DashboardHandler{
        Sessions:     s,
        Builder:      &dashboard.Builder{Users: users, Transactions: txns},
        Users:        users,
        Transactions: txns,
    }
}

// Dashboard renders the dashboard of the session user's role.  ?search=
// narrows the user list of the admin dashboards.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, u, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    v, err := h.Builder.Build(ctx, u, c.QueryParam("search"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, v)
}

// tabConfig returns the caller's dashboard config when it shows tab.
func (h *DashboardHandler) tabConfig(ctx context.Context, c echo.Context, tab string) (dashboard.Config, error) {
    _, u, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return dashboard.Config{}, err
    }
    cfg, ok := dashboard.ForRole(u.Role)
    if !ok || !cfg.HasTab(tab) {
        return dashboard.Config{}, repository.ErrForbidden
    }
    return cfg, nil
}

// ListUsers returns the accounts the caller's dashboard may list, filtered
// by ?search=.
func (h *DashboardHandler) ListUsers(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    cfg, err := h.tabConfig(ctx, c, "users")
    if err != nil {
        return fail(c, err)
    }
    all, err := h.Users.ListUsers(ctx)
    if err != nil {
        return fail(c, err)
    }
    users := dashboard.SearchUsers(dashboard.VisibleUsers(cfg, all), c.QueryParam("search"))
    return c.JSON(http.StatusOK, echo.Map{"users": users, "labels": cfg.Labels})
}

// ListTransactions returns the ledger with user names resolved.
func (h *DashboardHandler) ListTransactions(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    if _, err := h.tabConfig(ctx, c, "transactions"); err != nil {
        return fail(c, err)
    }
    all, err := h.Users.ListUsers(ctx)
    if err != nil {
        return fail(c, err)
    }
    txns, err := h.Transactions.ListTransactions(ctx)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"transactions": dashboard.JoinTransactions(txns, all)})
}

type creditReq struct {
    Amount int64 `json:"amount"`
}

// CreditUser adds coins to an account.  No ledger entry is written.
func (h *DashboardHandler) CreditUser(c echo.Context) error {
    var req creditReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Amount <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    m, _, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    u, err := m.AddAmountToUser(ctx, c.Param("id"), req.Amount)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

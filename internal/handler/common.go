package handler // handler defines http handlers

import (
    "context"  // request-scoped deadlines for store and broker calls
    "errors"   // errors.Is maps domain errors to status codes
    "log"      // unexpected failures are logged before answering 500
    "net/http" // HTTP status codes
    "time"

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/coin-rewards/internal/auth"
    "github.com/iliyamo/coin-rewards/internal/market"
    "github.com/iliyamo/coin-rewards/internal/middleware"
    "github.com/iliyamo/coin-rewards/internal/model"
    "github.com/iliyamo/coin-rewards/internal/purchase"
    "github.com/iliyamo/coin-rewards/internal/repository"
    "github.com/iliyamo/coin-rewards/internal/session"
    "github.com/iliyamo/coin-rewards/internal/view"
)

// requestTimeout bounds one request including the simulated auth and
// payment delays.
const requestTimeout = 15 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusOf maps a domain error to the HTTP status it is reported with.
func statusOf(err error) int {
    switch {
    case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, session.ErrNoSession):
        return http.StatusUnauthorized
    case errors.Is(err, repository.ErrForbidden):
        return http.StatusForbidden
    case errors.Is(err, session.ErrAlreadyRegistered), errors.Is(err, repository.ErrUserExists),
        errors.Is(err, repository.ErrConflict),
        errors.Is(err, model.ErrCouponUsed), errors.Is(err, model.ErrCouponExpired):
        return http.StatusConflict
    case errors.Is(err, purchase.ErrUnknownPackage), errors.Is(err, purchase.ErrCouponNotFound),
        errors.Is(err, repository.ErrUserNotFound):
        return http.StatusNotFound
    case errors.Is(err, purchase.ErrInvalidQuantity), errors.Is(err, market.ErrUnknownPeriod):
        return http.StatusBadRequest
    case errors.Is(err, session.ErrNegativeBalance):
        return http.StatusUnprocessableEntity
    case errors.Is(err, purchase.ErrPaymentFailed):
        return http.StatusPaymentRequired
    case errors.Is(err, context.DeadlineExceeded):
        return http.StatusGatewayTimeout
    }
    return http.StatusInternalServerError
}

// fail writes err as {"error": ...}.  Internal errors are logged and
// reported without detail.
func fail(c echo.Context, err error) error {
    status := statusOf(err)
    if status == http.StatusInternalServerError {
        log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(status, echo.Map{"error": "internal error"})
    }
    body := echo.Map{"error": err.Error()}
    if status == http.StatusForbidden {
        body["screen"] = view.ScreenForbidden
    }
    return c.JSON(status, body)
}

// openSession restores the session named by the token's sid claim.
func openSession(ctx context.Context, c echo.Context, svc *session.Service) (*session.Manager, error) {
    sid := middleware.SessionID(c)
    if sid == "" {
        return nil, session.ErrNoSession
    }
    return svc.Open(ctx, sid)
}

// currentUser restores the session and requires somebody to be logged in.
func currentUser(ctx context.Context, c echo.Context, svc *session.Service) (*session.Manager, model.User, error) {
    m, err := openSession(ctx, c, svc)
    if err != nil {
        return nil, model.User{}, err
    }
    u, ok := m.Current()
    if !ok {
        return nil, model.User{}, session.ErrNoSession
    }
    return m, u, nil
}

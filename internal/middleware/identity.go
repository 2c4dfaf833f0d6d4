package middleware

// identity.go exposes the caller identity that JWTAuth and OptionalJWT
// place on the Echo context.  Handlers and the rate limiter read it through
// these helpers instead of touching context keys directly.

import "github.com/labstack/echo/v4"

const (
    ctxUserID    = "user_id"
    ctxRole      = "role"
    ctxSessionID = "sid"
)

func ctxString(c echo.Context, key string) string {
    if s, ok := c.Get(key).(string); ok {
        return s
    }
    return ""
}

// UserID returns the sub claim of the verified token, or "".
func UserID(c echo.Context) string { return ctxString(c, ctxUserID) }

// Role returns the role claim of the verified token, or "".
func Role(c echo.Context) string { return ctxString(c, ctxRole) }

// SessionID returns the sid claim of the verified token, or "".
func SessionID(c echo.Context) string { return ctxString(c, ctxSessionID) }

// Authenticated reports whether a verified token was presented.
func Authenticated(c echo.Context) bool { return SessionID(c) != "" }

package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // claims type returned by the token parser
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/coin-rewards/internal/utils"
)

// bearer extracts the raw token from the Authorization header.
func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    return raw, raw != ""
}

// setIdentity stores the subject, role and session id claims so handlers
// can read them with UserID, Role and SessionID.
func setIdentity(c echo.Context, claims jwt.MapClaims) {
    c.Set(ctxUserID, claims["sub"])
    c.Set(ctxRole, claims["role"])
    c.Set(ctxSessionID, claims["sid"])
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, role and session claims into the request
// context.  The provided secret must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            raw, ok := bearer(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            setIdentity(c, claims)
            return next(c)
        }
    }
}

// OptionalJWT behaves like JWTAuth when a valid token is presented and lets
// the request through anonymously otherwise.  It serves routes whose answer
// differs for guests, such as the view resolver.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    setIdentity(c, claims)
                }
            }
            return next(c)
        }
    }
}

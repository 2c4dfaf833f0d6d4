package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/coin-rewards/internal/model"
    "github.com/iliyamo/coin-rewards/internal/view"
)

// RequireRole returns a middleware that lets a request through only when the
// role claim stored by JWTAuth is one of roles.  Anything else is answered
// with 403 and the forbidden screen, so clients navigate to an explicit
// state instead of rendering nothing.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            var u *model.User
            if r := Role(c); r != "" {
                u = &model.User{ID: UserID(c), Role: model.Role(r)}
            }
            if _, ok := view.Guard(u, roles...); !ok {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "error":  "forbidden",
                    "screen": view.ScreenForbidden,
                })
            }
            return next(c)
        }
    }
}

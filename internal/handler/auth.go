package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coin-rewards/internal/config"
    "github.com/iliyamo/coin-rewards/internal/middleware"
    "github.com/iliyamo/coin-rewards/internal/model"
    "github.com/iliyamo/coin-rewards/internal/session"
    "github.com/iliyamo/coin-rewards/internal/utils"
    "github.com/iliyamo/coin-rewards/internal/view"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Sessions *session.Service
    Roles    []model.Role // roles the active auth profile accepts
}

func NewAuthHandler(cfg config.Config, s *session.Service, roles []model.Role) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Sessions: s, Roles: roles}
}

// ----- DTOs -----

type loginReq struct {
    Mobile   string `json:"mobile"`
    Password string `json:"password"`
    Role     string `json:"role"`
}
type registerReq struct {
    Mobile   string `json:"mobile"`
    Password string `json:"password"`
    Name     string `json:"name"`
}
type authResp struct {
    User   model.User        `json:"user"`
    Access utils.AccessToken `json:"access"`
    Screen view.Screen       `json:"screen"`
}

func (h *AuthHandler) allows(r model.Role) bool {
    for _, ok := range h.Roles {
        if ok == r {
            return true
        }
    }
    return false
}

// issue signs a token binding u to the session sid.
func (h *AuthHandler) issue(c echo.Context, status int, u model.User, sid string) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), sid, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(status, authResp{User: u, Access: access, Screen: view.ForRole(u.Role)})
}

// Login checks the (mobile, password, role) triple and opens a new session.
// A mismatch never says which field was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Mobile = strings.TrimSpace(req.Mobile)
    role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
    if req.Mobile == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "mobile/password required"})
    }
    if !role.Valid() || !h.allows(role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported role"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    sid, err := utils.NewSessionID()
    if err != nil {
        return fail(c, err)
    }
    m, err := h.Sessions.Open(ctx, sid)
    if err != nil {
        return fail(c, err)
    }
    u, err := m.Login(ctx, req.Mobile, req.Password, role)
    if err != nil {
        return fail(c, err)
    }
    return h.issue(c, http.StatusOK, u, sid)
}

// Register creates a regular user account and logs it in.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Mobile = strings.TrimSpace(req.Mobile)
    req.Name = strings.TrimSpace(req.Name)
    if req.Mobile == "" || req.Password == "" || req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "mobile/password/name required"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    sid, err := utils.NewSessionID()
    if err != nil {
        return fail(c, err)
    }
    m, err := h.Sessions.Open(ctx, sid)
    if err != nil {
        return fail(c, err)
    }
    u, err := m.Register(ctx, req.Mobile, req.Password, req.Name)
    if err != nil {
        return fail(c, err)
    }
    return h.issue(c, http.StatusCreated, u, sid)
}

// Logout drops the session named by the token.  The token itself stays
// valid until it expires but no longer resolves to a user.
func (h *AuthHandler) Logout(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    m, err := openSession(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    if err := m.Logout(ctx); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"screen": view.ScreenAnonymous})
}

// Me returns the session user.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, u, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// View tells the client which top-level screen to render.  Guests and
// callers whose session is gone get the anonymous landing screen.
func (h *AuthHandler) View(c echo.Context) error {
    if !middleware.Authenticated(c) {
        return c.JSON(http.StatusOK, echo.Map{"screen": view.Resolve(true, nil)})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    m, err := openSession(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    var cur *model.User
    if u, ok := m.Current(); ok {
        cur = &u
    }
    return c.JSON(http.StatusOK, echo.Map{"screen": view.Resolve(true, cur), "user": cur})
}

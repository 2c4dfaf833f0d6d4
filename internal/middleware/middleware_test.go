package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coin-rewards/internal/config"
	"github.com/iliyamo/coin-rewards/internal/model"
	"github.com/iliyamo/coin-rewards/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "u-1", role, "sid-1", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func echoIdentity(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": UserID(c), "role": Role(c), "sid": SessionID(c)})
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", echoIdentity, JWTAuth(secret))

	if rec := serve(e, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/me", "Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	rec := serve(e, http.MethodGet, "/me", token(t, "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d", rec.Code)
	}
	var got map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got["user"] != "u-1" || got["role"] != "admin" || got["sid"] != "sid-1" {
		t.Fatalf("identity not propagated: %v", got)
	}
}

func TestOptionalJWT(t *testing.T) {
	e := echo.New()
	e.GET("/view", echoIdentity, OptionalJWT(secret))
	for _, auth := range []string{"", "Bearer garbage"} {
		rec := serve(e, http.MethodGet, "/view", auth)
		var got map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		if rec.Code != http.StatusOK || got["sid"] != "" {
			t.Fatalf("anonymous request %q: %d %v", auth, rec.Code, got)
		}
	}
	rec := serve(e, http.MethodGet, "/view", token(t, "user"))
	var got map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got["sid"] != "sid-1" {
		t.Fatalf("token ignored: %v", got)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret))
	g.GET("/admin", echoIdentity, RequireRole(model.RoleAdmin, model.RoleSuperAdmin))

	rec := serve(e, http.MethodGet, "/admin", token(t, "user"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user reached admin route: %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["screen"] != "forbidden" {
		t.Fatalf("forbidden screen missing: %v", body)
	}
	if rec := serve(e, http.MethodGet, "/admin", token(t, "superadmin")); rec.Code != http.StatusOK {
		t.Fatalf("superadmin rejected: %d", rec.Code)
	}
}

func TestLocalTokenBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test",
	}
	e := echo.New()
	e.GET("/buy", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, nil))

	for i := 0; i < 2; i++ {
		if rec := serve(e, http.MethodGet, "/buy", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d limited early: %d", i, rec.Code)
		}
	}
	rec := serve(e, http.MethodGet, "/buy", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request not limited: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing")
	}
}

func TestCacheEntryCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodeEntry(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("encodeEntry: %v", err)
	}
	status, got, body, ok := decodeEntry(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Fatalf("decodeEntry: %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodeEntry([]byte{0, 0, 0}); ok {
		t.Fatalf("short entry accepted")
	}
}

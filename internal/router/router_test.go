package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coin-rewards/internal/auth"
	"github.com/iliyamo/coin-rewards/internal/config"
	"github.com/iliyamo/coin-rewards/internal/handler"
	"github.com/iliyamo/coin-rewards/internal/market"
	"github.com/iliyamo/coin-rewards/internal/middleware"
	"github.com/iliyamo/coin-rewards/internal/purchase"
	"github.com/iliyamo/coin-rewards/internal/repository"
	"github.com/iliyamo/coin-rewards/internal/session"
)

const secret = "router-test"

type testServer struct {
	e     *echo.Echo
	store *session.MemoryStore
	users *repository.MemoryStore
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	users := repository.NewMemoryStore()
	if err := repository.Seed(context.Background(), users, users); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := session.NewMemoryStore()
	sessions := &session.Service{
		Store:      store,
		Users:      users,
		Auth:       auth.NewFixedTable(auth.ProfileExtended),
		BcryptCost: 4,
	}
	purchases := &purchase.Service{Gateway: purchase.SimulatedGateway{}, TrackSpend: true}
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5}
	noLimit := middleware.NewTokenBucket(config.RateLimitConfig{}, nil)
	noCache := middleware.NewRedisCache(config.CacheConfig{}, nil)

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, sessions, auth.ProfileExtended.Roles()), secret, noLimit)
	RegisterPublic(e, handler.NewPublicHandler(purchases, market.NewGenerator(1)), noCache)
	RegisterUser(e, handler.NewPurchaseHandler(sessions, purchases), secret, noLimit)
	RegisterDashboard(e, handler.NewDashboardHandler(sessions, users, users), secret)
	return testServer{e: e, store: store, users: users}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (s testServer) login(t *testing.T, mobile, password, role string) string {
	t.Helper()
	rec, out := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"mobile": mobile, "password": password, "role": role,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", role, rec.Code, rec.Body.String())
	}
	access, _ := out["access"].(map[string]any)
	tok, _ := access["token"].(string)
	if tok == "" {
		t.Fatalf("login %s: no token in %v", role, out)
	}
	return tok
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestUserPurchaseFlow(t *testing.T) {
	s := newTestServer(t)

	_, out := s.do(t, http.MethodGet, "/v1/view", "", nil)
	if out["screen"] != "anonymous" {
		t.Fatalf("guest screen: %v", out)
	}

	tok := s.login(t, "7269010957", "user", "user")
	_, out = s.do(t, http.MethodGet, "/v1/view", tok, nil)
	if out["screen"] != "user" {
		t.Fatalf("user screen: %v", out)
	}
	_, me := s.do(t, http.MethodGet, "/v1/me", tok, nil)
	if me["role"] != "user" || me["coins"] != float64(0) {
		t.Fatalf("me after login: %v", me)
	}

	if rec, _ := s.do(t, http.MethodPost, "/v1/purchases", tok, map[string]any{"package_id": "1", "quantity": 184467440737095517}); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized purchase: %d", rec.Code)
	}
	rec, out := s.do(t, http.MethodPost, "/v1/purchases", tok, map[string]any{"package_id": "1", "quantity": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase: %d %s", rec.Code, rec.Body.String())
	}
	u, _ := out["user"].(map[string]any)
	coupons, _ := u["coupons"].([]any)
	if u["coins"] != float64(200) || u["totalSpent"] != float64(200) || len(coupons) != 1 {
		t.Fatalf("user after purchase: %v", u)
	}
	c0, _ := coupons[0].(map[string]any)
	if c0["value"] != float64(20) || c0["isUsed"] != false {
		t.Fatalf("coupon: %v", c0)
	}
	if _, present := c0["usedAt"]; present {
		t.Fatalf("unused coupon carries usedAt: %v", c0)
	}

	rec, out = s.do(t, http.MethodGet, "/v1/admin/users", tok, nil)
	if rec.Code != http.StatusForbidden || out["screen"] != "forbidden" {
		t.Fatalf("user reached admin route: %d %v", rec.Code, out)
	}

	rec, _ = s.do(t, http.MethodPost, "/v1/auth/logout", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	if len(s.store.Keys()) != 0 {
		t.Fatalf("session record left after logout: %v", s.store.Keys())
	}
	_, out = s.do(t, http.MethodGet, "/v1/view", tok, nil)
	if out["screen"] != "anonymous" {
		t.Fatalf("screen after logout: %v", out)
	}
	if rec, _ := s.do(t, http.MethodGet, "/v1/me", tok, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", rec.Code)
	}
}

func TestLoginAndRegisterErrors(t *testing.T) {
	s := newTestServer(t)
	rec, out := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"mobile": "7269010957", "password": "user", "role": "admin",
	})
	if rec.Code != http.StatusUnauthorized || out["error"] != auth.ErrInvalidCredentials.Error() {
		t.Fatalf("bad login: %d %v", rec.Code, out)
	}

	reg := map[string]string{"mobile": "9123456780", "password": "pw", "name": "Asha"}
	if rec, _ := s.do(t, http.MethodPost, "/v1/auth/register", "", reg); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := s.do(t, http.MethodPost, "/v1/auth/register", "", reg); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", rec.Code)
	}
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)
	tok := s.login(t, "7269010957", "admin", "admin")

	rec, out := s.do(t, http.MethodPost, "/v1/admin/users/2/credit", tok, map[string]int{"amount": 100})
	if rec.Code != http.StatusOK || out["coins"] != float64(350) {
		t.Fatalf("credit: %d %v", rec.Code, out)
	}
	_, me := s.do(t, http.MethodGet, "/v1/me", tok, nil)
	if me["coins"] != float64(0) {
		t.Fatalf("credit leaked into admin session: %v", me)
	}
	if rec, _ := s.do(t, http.MethodPost, "/v1/admin/users/nobody/credit", tok, map[string]int{"amount": 1}); rec.Code != http.StatusNotFound {
		t.Fatalf("credit unknown user: %d", rec.Code)
	}

	_, out = s.do(t, http.MethodGet, "/v1/admin/users?search=jane", tok, nil)
	users, _ := out["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("search: %v", out)
	}
	_, out = s.do(t, http.MethodGet, "/v1/admin/transactions", tok, nil)
	txns, _ := out["transactions"].([]any)
	if len(txns) != 2 {
		t.Fatalf("transactions: %v", out)
	}

	rec, out = s.do(t, http.MethodGet, "/v1/dashboard", tok, nil)
	if rec.Code != http.StatusOK || out["analytics"] == nil {
		t.Fatalf("admin dashboard: %d %v", rec.Code, out)
	}
	if rec, _ := s.do(t, http.MethodPost, "/v1/purchases", tok, map[string]any{"package_id": "1", "quantity": 1}); rec.Code != http.StatusForbidden {
		t.Fatalf("admin purchased: %d", rec.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)
	_, out := s.do(t, http.MethodGet, "/v1/packages", "", nil)
	if pkgs, _ := out["packages"].([]any); len(pkgs) != 4 {
		t.Fatalf("packages: %v", out)
	}
	rec, out := s.do(t, http.MethodGet, "/v1/packages/4/quote?quantity=2", "", nil)
	if rec.Code != http.StatusOK || out["amount"] != float64(5000) {
		t.Fatalf("quote: %d %v", rec.Code, out)
	}
	if rec, _ := s.do(t, http.MethodGet, "/v1/packages/4/quote?quantity=0", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity: %d", rec.Code)
	}
	for _, qty := range []string{"1001", "3689348814741910324"} {
		if rec, _ := s.do(t, http.MethodGet, "/v1/packages/4/quote?quantity="+qty, "", nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("quantity %s: %d", qty, rec.Code)
		}
	}
	if rec, _ := s.do(t, http.MethodGet, "/v1/packages/9/quote", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown package: %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, "/v1/packages/1/upi-qr?size=128", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Fatalf("qr: %d %s", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	rec, out = s.do(t, http.MethodGet, "/v1/market/chart?period=1W", "", nil)
	if pts, _ := out["points"].([]any); rec.Code != http.StatusOK || len(pts) != 7 {
		t.Fatalf("chart: %d %v", rec.Code, out)
	}
	_, first := s.do(t, http.MethodGet, "/v1/market/chart/live?period=1H", "", nil)
	rec, second := s.do(t, http.MethodGet, "/v1/market/chart/live?period=1H", "", nil)
	p1, _ := first["points"].([]any)
	p2, _ := second["points"].([]any)
	if rec.Code != http.StatusOK || len(p1) != 60 || len(p2) != 60 {
		t.Fatalf("live chart: %d %d/%d points", rec.Code, len(p1), len(p2))
	}
	if a, _ := p1[0].(map[string]any); a["price"] != p2[0].(map[string]any)["price"] {
		t.Fatalf("live chart restarted instead of ticking")
	}
	if rec, _ := s.do(t, http.MethodGet, "/v1/market/chart?period=5Y", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad period: %d", rec.Code)
	}
}

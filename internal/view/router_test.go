package view

import (
	"testing"

	"github.com/iliyamo/coin-rewards/internal/model"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		restored bool
		user     *model.User
		want     Screen
	}{
		{"before restore", false, &model.User{Role: model.RoleUser}, ScreenLoading},
		{"no session", true, nil, ScreenAnonymous},
		{"user", true, &model.User{Role: model.RoleUser}, ScreenUser},
		{"admin", true, &model.User{Role: model.RoleAdmin}, ScreenAdmin},
		{"superadmin", true, &model.User{Role: model.RoleSuperAdmin}, ScreenSuperAdmin},
		{"unknown role", true, &model.User{Role: "owner"}, ScreenForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.restored, tt.user); got != tt.want {
				t.Fatalf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	admin := &model.User{Role: model.RoleAdmin}
	if s, ok := Guard(nil, model.RoleUser); ok || s != ScreenForbidden {
		t.Fatalf("missing session: %s %v", s, ok)
	}
	if s, ok := Guard(admin, model.RoleUser); ok || s != ScreenForbidden {
		t.Fatalf("wrong role: %s %v", s, ok)
	}
	if s, ok := Guard(admin, model.RoleAdmin, model.RoleSuperAdmin); !ok || s != ScreenAdmin {
		t.Fatalf("allowed role: %s %v", s, ok)
	}
	if s, ok := Guard(admin); !ok || s != ScreenAdmin {
		t.Fatalf("any role: %s %v", s, ok)
	}
}

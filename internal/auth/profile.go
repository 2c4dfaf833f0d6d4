package auth

import (
	"fmt"
	"strings"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// Profile selects between the two account models the platform has shipped
// with.  Extended knows three roles and tracks cumulative spend; Basic knows
// only users and admins and leaves TotalSpent untouched.
type Profile string

const (
	ProfileExtended Profile = "extended"
	ProfileBasic    Profile = "basic"
)

// ParseProfile accepts "extended" or "basic" (case-insensitive); empty
// input means extended.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ProfileExtended):
		return ProfileExtended, nil
	case string(ProfileBasic):
		return ProfileBasic, nil
	}
	return "", fmt.Errorf("unknown auth profile %q", s)
}

var (
	superAdminCred = Credential{Identifier: "9999999999", Secret: "superadmin", Role: model.RoleSuperAdmin, UserID: "superadmin", Name: "Super Admin", Email: "superadmin@betmaster.com"}
	adminCred      = Credential{Identifier: "7269010957", Secret: "admin", Role: model.RoleAdmin, UserID: "admin", Name: "Admin", Email: "admin@betmaster.com"}
	userCred       = Credential{Identifier: "7269010957", Secret: "user", Role: model.RoleUser, UserID: "user", Name: "Regular User", Email: "user@betmaster.com"}
)

// Credentials returns the fixed login table of the profile.
func (p Profile) Credentials() []Credential {
	if p == ProfileBasic {
		return []Credential{adminCred, userCred}
	}
	return []Credential{superAdminCred, adminCred, userCred}
}

// Roles lists the roles a session may hold under the profile.
func (p Profile) Roles() []model.Role {
	if p == ProfileBasic {
		return []model.Role{model.RoleAdmin, model.RoleUser}
	}
	return []model.Role{model.RoleSuperAdmin, model.RoleAdmin, model.RoleUser}
}

// TracksSpend reports whether purchases accumulate TotalSpent.
func (p Profile) TracksSpend() bool { return p != ProfileBasic }

// Package view decides which top-level screen a client renders.  The
// decision depends only on whether session restore has finished and on the
// role of the restored user.
package view

import "github.com/iliyamo/coin-rewards/internal/model"

type Screen string

const (
	ScreenLoading    Screen = "loading"
	ScreenAnonymous  Screen = "anonymous"
	ScreenUser       Screen = "user"
	ScreenAdmin      Screen = "admin"
	ScreenSuperAdmin Screen = "superadmin"
	// ScreenForbidden replaces a blank render when a role-gated screen is
	// reached without a matching session.
	ScreenForbidden Screen = "forbidden"
)

// ForRole maps a role to its dashboard screen.
func ForRole(r model.Role) Screen {
	switch r {
	case model.RoleUser:
		return ScreenUser
	case model.RoleAdmin:
		return ScreenAdmin
	case model.RoleSuperAdmin:
		return ScreenSuperAdmin
	}
	return ScreenForbidden
}

// Resolve returns the screen for the current session.  Until restore has
// completed the answer is loading; without a user it is the anonymous
// landing screen.
func Resolve(restored bool, u *model.User) Screen {
	if !restored {
		return ScreenLoading
	}
	if u == nil {
		return ScreenAnonymous
	}
	return ForRole(u.Role)
}

// Guard checks u against the roles a screen requires.  It returns the
// user's screen when allowed and ScreenForbidden otherwise.  No required
// roles means any logged-in user passes.
func Guard(u *model.User, required ...model.Role) (Screen, bool) {
	if u == nil {
		return ScreenForbidden, false
	}
	if len(required) == 0 {
		s := ForRole(u.Role)
		return s, s != ScreenForbidden
	}
	for _, r := range required {
		if u.Role == r {
			return ForRole(r), true
		}
	}
	return ScreenForbidden, false
}

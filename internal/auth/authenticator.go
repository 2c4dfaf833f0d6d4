// Package auth verifies login credentials.  The session manager only talks to
// the Authenticator interface, so the fixed credential table used for demos
// and tests can be swapped for the repository-backed Directory in production.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/coin-rewards/internal/model"
	"github.com/iliyamo/coin-rewards/internal/repository"
	"github.com/iliyamo/coin-rewards/internal/utils"
)

// ErrInvalidCredentials is the only failure a caller learns about; it never
// says which of identifier, secret or role was wrong.
var ErrInvalidCredentials = errors.New("invalid mobile number or password")

// Authenticator checks an (identifier, secret, role) triple and returns the
// identity to adopt as the session user.
type Authenticator interface {
	Verify(ctx context.Context, identifier, secret string, role model.Role) (model.User, error)
}

// Credential is one row of a FixedTable.
type Credential struct {
	Identifier string
	Secret     string
	Role       model.Role
	UserID     string
	Name       string
	Email      string
}

// FixedTable authenticates against a literal credential list.
type FixedTable struct {
	Credentials []Credential
	Now         func() time.Time
}

// NewFixedTable builds the table enabled by profile.
func NewFixedTable(p Profile) *FixedTable {
	return &FixedTable{Credentials: p.Credentials(), Now: time.Now}
}

// Verify requires an exact match on all three fields.  The returned user is
// built fresh on every call with zero balance and no coupons.
func (f *FixedTable) Verify(_ context.Context, identifier, secret string, role model.Role) (model.User, error) {
	for _, c := range f.Credentials {
		if c.Identifier == identifier && c.Secret == secret && c.Role == role {
			now := time.Now
			if f.Now != nil {
				now = f.Now
			}
			return model.User{
				ID:        c.UserID,
				Mobile:    c.Identifier,
				Name:      c.Name,
				Email:     c.Email,
				Role:      c.Role,
				Coupons:   []model.Coupon{},
				CreatedAt: now().UTC(),
			}, nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}

// Directory authenticates registered users by their stored bcrypt hash.
type Directory struct {
	Users repository.UserRepository
}

// Verify looks the identifier up as a mobile number and checks secret and role.
func (d *Directory) Verify(ctx context.Context, identifier, secret string, role model.Role) (model.User, error) {
	u, err := d.Users.FindByMobile(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if u.PasswordHash == "" || !utils.VerifyPassword(u.PasswordHash, secret) || u.Role != role {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

var (
	_ Authenticator = (*FixedTable)(nil)
	_ Authenticator = (*Directory)(nil)
)

// Package session owns "who is logged in".  A Manager holds the current user
// of one session key, persists it to a durable Store on every change and
// mediates every balance or coupon mutation against the user repository.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/coin-rewards/internal/auth"
	"github.com/iliyamo/coin-rewards/internal/model"
	"github.com/iliyamo/coin-rewards/internal/repository"
	"github.com/iliyamo/coin-rewards/internal/utils"
)

var (
	// ErrAlreadyRegistered is returned by Register for a taken identifier.
	ErrAlreadyRegistered = errors.New("mobile number already registered")
	// ErrNoSession is returned by mutations when nobody is logged in.
	ErrNoSession = errors.New("no active session")
	// ErrNegativeBalance rejects mutations that would drive coins below zero.
	ErrNegativeBalance = errors.New("coin balance cannot be negative")
)

// Service builds Managers sharing one store, repository and authenticator.
type Service struct {
	Store      Store
	Users      repository.UserRepository
	Auth       auth.Authenticator
	KeyPrefix  string
	Delay      time.Duration // simulated latency of login and register
	BcryptCost int
	Now        func() time.Time
	NewID      func() string
}

// Key returns the storage key holding the serialized user of sid.
func (s *Service) Key(sid string) string {
	prefix := s.KeyPrefix
	if prefix == "" {
		prefix = "session"
	}
	return prefix + ":" + sid + ":user"
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Open restores the session stored under sid.  The record is trusted as-is;
// it is not checked against the repository.  A missing key yields an empty
// session, an undecodable one is logged and treated as missing.
func (s *Service) Open(ctx context.Context, sid string) (*Manager, error) {
	m := &Manager{svc: s, key: s.Key(sid)}
	bs, err := s.Store.Load(ctx, m.key)
	if errors.Is(err, ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var u model.User
	if err := json.Unmarshal(bs, &u); err != nil {
		log.Printf("session: discarding unreadable record %s: %v", m.key, err)
		return m, nil
	}
	m.current = &u
	return m, nil
}

// Manager is the session of one key.  Its methods are safe for concurrent
// use; separate Managers over the same key do not see each other's cached
// user until they are reopened.
type Manager struct {
	mu      sync.Mutex
	svc     *Service
	key     string
	current *model.User
}

// Key returns the storage key of this session.
func (m *Manager) Key() string { return m.key }

// Current returns a copy of the logged-in user.
func (m *Manager) Current() (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return model.User{}, false
	}
	return m.current.Clone(), true
}

func (m *Manager) wait(ctx context.Context) error {
	if m.svc.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.svc.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) persist(ctx context.Context, u model.User) error {
	bs, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.svc.Store.Save(ctx, m.key, bs); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.current = &u
	return nil
}

// Login adopts the identity the authenticator returns for the triple.  On
// failure the session is left as it was.
func (m *Manager) Login(ctx context.Context, identifier, secret string, role model.Role) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return model.User{}, err
	}
	u, err := m.svc.Auth.Verify(ctx, identifier, secret, role)
	if err != nil {
		return model.User{}, err
	}
	if u.Coupons == nil {
		u.Coupons = []model.Coupon{}
	}
	if err := m.persist(ctx, u); err != nil {
		return model.User{}, err
	}
	return u.Clone(), nil
}

// Register creates a zero-balance account with role user and logs it in.
// An identifier already present in the repository fails without touching
// the repository.
func (m *Manager) Register(ctx context.Context, identifier, secret, name string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return model.User{}, err
	}
	if _, err := m.svc.Users.FindByMobile(ctx, identifier); err == nil {
		return model.User{}, ErrAlreadyRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(secret, m.svc.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		ID:           m.svc.newID(),
		Mobile:       identifier,
		Name:         name,
		Role:         model.RoleUser,
		Coupons:      []model.Coupon{},
		CreatedAt:    m.svc.now().UTC(),
		PasswordHash: hash,
	}
	if err := m.svc.Users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return model.User{}, ErrAlreadyRegistered
		}
		return model.User{}, err
	}
	if err := m.persist(ctx, u); err != nil {
		return model.User{}, err
	}
	return u.Clone(), nil
}

// Logout clears the session and removes the persisted record.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.svc.Store.Delete(ctx, m.key)
}

// Patch lists the user fields UpdateUser may change.  Nil fields are left
// alone; a non-nil Coupons replaces the whole coupon list.
type Patch struct {
	Name       *string
	Email      *string
	Coins      *int64
	TotalSpent *int64
	Coupons    []model.Coupon
}

func (p Patch) apply(u *model.User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Coins != nil {
		u.Coins = *p.Coins
	}
	if p.TotalSpent != nil {
		u.TotalSpent = *p.TotalSpent
	}
	if p.Coupons != nil {
		u.Coupons = make([]model.Coupon, len(p.Coupons))
		for i, c := range p.Coupons {
			u.Coupons[i] = c.Clone()
		}
	}
}

// UpdateUser merges p into the session user, writes the result back to the
// repository when the id exists there, and re-persists the session.
// Identities that only live in the session (the fixed-table accounts) are
// updated in the session alone.
func (m *Manager) UpdateUser(ctx context.Context, p Patch) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return model.User{}, ErrNoSession
	}
	next := m.current.Clone()
	p.apply(&next)
	if next.Coins < 0 {
		return model.User{}, ErrNegativeBalance
	}
	if err := m.svc.Users.Update(ctx, next); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("write back user: %w", err)
	}
	if err := m.persist(ctx, next); err != nil {
		return model.User{}, err
	}
	return next.Clone(), nil
}

// AddAmountToUser credits amount coins to the repository copy of userID.
// When userID is the logged-in user the session copy is credited too; other
// sessions of that user keep their cached balance.  No ledger entry is made.
func (m *Manager) AddAmountToUser(ctx context.Context, userID string, amount int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, err := m.svc.Users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	target.Coins += amount
	if target.Coins < 0 {
		return model.User{}, ErrNegativeBalance
	}
	if err := m.svc.Users.Update(ctx, target); err != nil {
		return model.User{}, err
	}
	if m.current != nil && m.current.ID == userID {
		mirrored := m.current.Clone()
		mirrored.Coins += amount
		if err := m.persist(ctx, mirrored); err != nil {
			return model.User{}, err
		}
	}
	return target, nil
}

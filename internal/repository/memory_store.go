package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// MemoryStore is the in-process mock store.  It owns the canonical user and
// transaction collections and implements both UserRepository and
// TransactionRepository.  Every read hands out a deep copy.
type MemoryStore struct {
	mu    sync.RWMutex
	users []model.User
	txns  []model.Transaction
}

// NewMemoryStore returns an empty store.  Use Seed to load the mock data.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByID returns the user with the given id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.users[i].Clone(), nil
	}
	return model.User{}, ErrUserNotFound
}

// FindByMobile returns the first user registered with mobile.  An empty
// mobile never matches; seeded accounts have no mobile number.
func (s *MemoryStore) FindByMobile(_ context.Context, mobile string) (model.User, error) {
	if mobile == "" {
		return model.User{}, ErrUserNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Mobile == mobile {
			return u.Clone(), nil
		}
	}
	return model.User{}, ErrUserNotFound
}

// ListUsers returns all users in insertion order.
func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out, nil
}

// Insert appends u.  The id and a non-empty mobile must be unique.
func (s *MemoryStore) Insert(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ID == u.ID || (u.Mobile != "" && existing.Mobile == u.Mobile) {
			return ErrUserExists
		}
	}
	s.users = append(s.users, u.Clone())
	return nil
}

// Update replaces the stored user with the same id.  Like the SQL store it
// keeps role, creation time and password hash of the stored record.
func (s *MemoryStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(u.ID)
	if i < 0 {
		return ErrUserNotFound
	}
	next := u.Clone()
	next.Role = s.users[i].Role
	next.CreatedAt = s.users[i].CreatedAt
	next.PasswordHash = s.users[i].PasswordHash
	s.users[i] = next
	return nil
}

// Append adds a ledger entry.
func (s *MemoryStore) Append(_ context.Context, t model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	return nil
}

// ListTransactions returns the whole ledger in append order.
func (s *MemoryStore) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

// ListByUser returns the ledger entries referencing userID.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Transaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

var (
	_ UserRepository        = (*MemoryStore)(nil)
	_ TransactionRepository = (*MemoryStore)(nil)
)

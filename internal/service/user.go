// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"
	"sync"

	"upi-pay-bot/internal/model"
)

// UserStore is the user persistence used by UserService.
type UserStore interface {
	Upsert(ctx context.Context, userID int64, username, firstName, lastName string) (*model.User, error)
	IncrementStat(ctx context.Context, userID int64, field model.StatField, by int64) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	Stats(ctx context.Context, userID int64) (*model.UserStats, error)
	IDs(ctx context.Context) ([]int64, error)
}

// UserService handles user records, counters and bans.
type UserService struct {
	users UserStore

	mu     sync.RWMutex
	banned map[int64]bool
}

// NewUserService creates a new UserService instance.
func NewUserService(users UserStore) *UserService {
	return &UserService{
		users:  users,
		banned: make(map[int64]bool),
	}
}

// EnsureUser creates the user on first contact and refreshes names after.
func (s *UserService) EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) (*model.User, error) {
	u, err := s.users.Upsert(ctx, userID, username, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	s.remember(userID, u.IsBanned)
	return u, nil
}

// IncrementStat adds one to a counter.
func (s *UserService) IncrementStat(ctx context.Context, userID int64, field model.StatField) error {
	return s.users.IncrementStat(ctx, userID, field, 1)
}

// Stats returns the user's counters.
func (s *UserService) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	return s.users.Stats(ctx, userID)
}

// BroadcastTargets returns the ids of users that are not banned.
func (s *UserService) BroadcastTargets(ctx context.Context) ([]int64, error) {
	return s.users.IDs(ctx)
}

func (s *UserService) remember(userID int64, banned bool) {
	s.mu.Lock()
	s.banned[userID] = banned
	s.mu.Unlock()
}

func (s *UserService) forget(userID int64) {
	s.mu.Lock()
	delete(s.banned, userID)
	s.mu.Unlock()
}

// IsBanned reports the ban flag, served from cache after the first lookup.
func (s *UserService) IsBanned(ctx context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	banned, ok := s.banned[userID]
	s.mu.RUnlock()
	if ok {
		return banned, nil
	}

	banned, err := s.users.IsBanned(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	s.remember(userID, banned)
	return banned, nil
}

// Ban sets the ban flag and invalidates the cached entry.
func (s *UserService) Ban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, true)
}

// Unban clears the ban flag and invalidates the cached entry.
func (s *UserService) Unban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, false)
}

func (s *UserService) setBanned(ctx context.Context, userID int64, banned bool) error {
	defer s.forget(userID)
	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return fmt.Errorf("failed to update ban: %w", err)
	}
	return nil
}

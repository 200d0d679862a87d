package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"upi-pay-bot/internal/model"
)

// AdminUserStore is the user persistence used by AdminService.
type AdminUserStore interface {
	Count(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	TopByStat(ctx context.Context, field model.StatField, limit int) ([]model.RankEntry, error)
	List(ctx context.Context, limit int) ([]*model.User, error)
}

// AdminPaymentStore is the payment persistence used by AdminService.
type AdminPaymentStore interface {
	CountByStatus(ctx context.Context) (*model.PaymentStats, error)
	ListByStatus(ctx context.Context, status model.PaymentStatus, limit int) ([]*model.PaymentView, error)
	SumVerifiedAmounts(ctx context.Context) (decimal.Decimal, error)
}

// AdminService serves the admin dashboard analytics.
type AdminService struct {
	users    AdminUserStore
	payments AdminPaymentStore
	now      func() time.Time
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(users AdminUserStore, payments AdminPaymentStore) *AdminService {
	return &AdminService{users: users, payments: payments, now: time.Now}
}

// PaymentStats counts payments by status.
func (s *AdminService) PaymentStats(ctx context.Context) (*model.PaymentStats, error) {
	return s.payments.CountByStatus(ctx)
}

// Engagement counts users active over the last day, week and month.
func (s *AdminService) Engagement(ctx context.Context) (*model.Engagement, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	e := &model.Engagement{TotalUsers: total}
	windows := []struct {
		d   time.Duration
		dst *int64
	}{
		{24 * time.Hour, &e.Active24h},
		{7 * 24 * time.Hour, &e.Active7d},
		{30 * 24 * time.Hour, &e.Active30d},
	}
	for _, w := range windows {
		n, err := s.users.CountActiveSince(ctx, now.Add(-w.d))
		if err != nil {
			return nil, err
		}
		*w.dst = n
	}
	return e, nil
}

// TopUsers ranks users by a counter.
func (s *AdminService) TopUsers(ctx context.Context, field model.StatField, n int) ([]model.RankEntry, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown ranking %q", field)
	}
	return s.users.TopByStat(ctx, field, n)
}

// RecentUsers lists the most recently active users.
func (s *AdminService) RecentUsers(ctx context.Context, n int) ([]*model.User, error) {
	return s.users.List(ctx, n)
}

// PaymentsByStatus lists the newest payments in status.
func (s *AdminService) PaymentsByStatus(ctx context.Context, status model.PaymentStatus, n int) ([]*model.PaymentView, error) {
	return s.payments.ListByStatus(ctx, status, n)
}

// Revenue sums the amounts of verified payments.
func (s *AdminService) Revenue(ctx context.Context) (decimal.Decimal, error) {
	return s.payments.SumVerifiedAmounts(ctx)
}

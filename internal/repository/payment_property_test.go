package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"upi-pay-bot/internal/model"
)

// TestPaymentStatus_FirstTerminalWins checks that whatever sequence of status
// updates is applied, the stored status equals the first terminal status
// written and every later terminal write is refused.
func TestPaymentStatus_FirstTerminalWins(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	users := NewUserRepository(pool)
	repo := NewPaymentRepository(pool)
	ctx := context.Background()

	_, err := users.Upsert(ctx, 1, "u", "U", "")
	require.NoError(t, err)

	terminal := rapid.SampledFrom([]model.PaymentStatus{model.PaymentVerified, model.PaymentRejected})

	rapid.Check(t, func(rt *rapid.T) {
		p, err := repo.Create(ctx, 1, nil, nil, nil, model.PaymentProcessing)
		if err != nil {
			rt.Fatalf("create: %v", err)
		}

		updates := rapid.SliceOfN(terminal, 1, 5).Draw(rt, "updates")
		for i, s := range updates {
			err := repo.SetStatus(ctx, p.ID, s)
			if i == 0 && err != nil {
				rt.Fatalf("first transition failed: %v", err)
			}
			if i > 0 && err != ErrPaymentFinalized {
				rt.Fatalf("update %d: expected ErrPaymentFinalized, got %v", i, err)
			}
		}

		got, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			rt.Fatalf("get: %v", err)
		}
		if got.Status != updates[0] {
			rt.Fatalf("expected %s, got %s", updates[0], got.Status)
		}
	})
}

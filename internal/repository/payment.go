package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"upi-pay-bot/internal/model"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentFinalized = errors.New("payment already finalized")
	ErrInvalidStatus    = errors.New("invalid payment status")
)

const paymentColumns = `id, user_id, amount, upi_id, transaction_id, status, timestamp`

// PaymentRepository handles payment record persistence.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository instance.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Amount,
		&p.UPIID,
		&p.TransactionID,
		&p.Status,
		&p.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a payment record. Nil fields are stored as NULL.
func (r *PaymentRepository) Create(ctx context.Context, userID int64, amount, upiID, txnID *string, status model.PaymentStatus) (*model.Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	query := `
		INSERT INTO payments (user_id, amount, upi_id, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns

	p, err := scanPayment(r.pool.QueryRow(ctx, query, userID, amount, upiID, txnID, status))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return p, nil
}

// GetByID retrieves a payment. Returns ErrPaymentNotFound if absent.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// SetStatus moves a pending or processing payment to status. A payment that
// is already verified or rejected is left untouched and ErrPaymentFinalized
// is returned.
func (r *PaymentRepository) SetStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	const query = `
		UPDATE payments SET status = $2
		WHERE id = $1 AND status IN ('pending', 'processing')
	`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrPaymentFinalized
}

// CountByStatus tallies payments per status.
func (r *PaymentRepository) CountByStatus(ctx context.Context) (*model.PaymentStats, error) {
	const query = `SELECT status, COUNT(*) FROM payments GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	defer rows.Close()

	var stats model.PaymentStats
	for rows.Next() {
		var status model.PaymentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan payment count: %w", err)
		}
		switch status {
		case model.PaymentPending:
			stats.Pending = n
		case model.PaymentProcessing:
			stats.Processing = n
		case model.PaymentVerified:
			stats.Verified = n
		case model.PaymentRejected:
			stats.Rejected = n
		}
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment counts: %w", err)
	}
	return &stats, nil
}

// ListByStatus returns the newest payments in status joined with user names.
func (r *PaymentRepository) ListByStatus(ctx context.Context, status model.PaymentStatus, limit int) ([]*model.PaymentView, error) {
	const query = `
		SELECT p.id, p.user_id, p.amount, p.upi_id, p.transaction_id, p.status, p.timestamp,
			u.first_name, u.username
		FROM payments p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.status = $1
		ORDER BY p.timestamp DESC, p.id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []*model.PaymentView
	for rows.Next() {
		var v model.PaymentView
		err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.Amount,
			&v.UPIID,
			&v.TransactionID,
			&v.Status,
			&v.Timestamp,
			&v.FirstName,
			&v.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return out, nil
}

// SumVerifiedAmounts adds up the amounts of verified payments. Amounts that
// are missing or do not parse as decimals are skipped.
func (r *PaymentRepository) SumVerifiedAmounts(ctx context.Context) (decimal.Decimal, error) {
	const query = `SELECT amount FROM payments WHERE status = 'verified' AND amount IS NOT NULL`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load verified amounts: %w", err)
	}
	amounts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to collect verified amounts: %w", err)
	}

	total := decimal.Zero
	for _, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			continue
		}
		total = total.Add(d)
	}
	return total, nil
}

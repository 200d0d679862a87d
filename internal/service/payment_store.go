package service

import (
	"context"
	"errors"

	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/payment"
	"upi-pay-bot/internal/repository"
)

// PaymentRecords is the payment persistence behind PaymentStore.
type PaymentRecords interface {
	Create(ctx context.Context, userID int64, amount, upiID, txnID *string, status model.PaymentStatus) (*model.Payment, error)
	SetStatus(ctx context.Context, id int64, status model.PaymentStatus) error
}

// PaymentStore adapts the repositories to payment.Store.
type PaymentStore struct {
	payments PaymentRecords
	users    *UserService
}

// NewPaymentStore creates a new PaymentStore instance.
func NewPaymentStore(payments PaymentRecords, users *UserService) *PaymentStore {
	return &PaymentStore{payments: payments, users: users}
}

// CreatePayment stores the extracted fields.
func (s *PaymentStore) CreatePayment(ctx context.Context, userID int64, f payment.Fields, status model.PaymentStatus) (int64, error) {
	p, err := s.payments.Create(ctx, userID, f.Amount, f.UPIID, f.TransactionID, status)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// SetPaymentStatus moves the payment to a terminal status. A payment that
// was already decided yields payment.ErrFinalized.
func (s *PaymentStore) SetPaymentStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	err := s.payments.SetStatus(ctx, paymentID, status)
	if errors.Is(err, repository.ErrPaymentFinalized) || errors.Is(err, repository.ErrPaymentNotFound) {
		return payment.ErrFinalized
	}
	return err
}

// IncrementStat adds one to a user counter.
func (s *PaymentStore) IncrementStat(ctx context.Context, userID int64, field model.StatField) error {
	return s.users.IncrementStat(ctx, userID, field)
}

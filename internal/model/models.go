// Package model defines the persistent entities of the payment bot.
package model

import "time"

// User represents a Telegram user known to the bot.
// Created on first contact, never deleted.
type User struct {
	UserID             int64     `db:"user_id"`
	Username           string    `db:"username"`
	FirstName          string    `db:"first_name"`
	LastName           string    `db:"last_name"`
	JoinDate           time.Time `db:"join_date"`
	LastInteraction    time.Time `db:"last_interaction"`
	GamesPlayed        int64     `db:"games_played"`
	QuotesRead         int64     `db:"quotes_read"`
	PaymentsRequested  int64     `db:"payments_requested"`
	SuccessfulPayments int64     `db:"successful_payments"`
	SpamCount          int64     `db:"spam_count"`
	IsBanned           bool      `db:"is_banned"`
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "unknown"
	}
}

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

// Payment statuses. Verified and rejected are terminal.
const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentVerified   PaymentStatus = "verified"
	PaymentRejected   PaymentStatus = "rejected"
)

// Terminal reports whether no further transition is permitted.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentVerified || s == PaymentRejected
}

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

// Payment is a claim of payment made by uploading a screenshot.
// Nullable fields are nil when extraction found nothing.
type Payment struct {
	ID            int64         `db:"id"`
	UserID        int64         `db:"user_id"`
	Amount        *string       `db:"amount"`
	UPIID         *string       `db:"upi_id"`
	TransactionID *string       `db:"transaction_id"`
	Status        PaymentStatus `db:"status"`
	Timestamp     time.Time     `db:"timestamp"`
}

// PaymentView is a payment joined with its owner's names for admin listings.
type PaymentView struct {
	Payment
	FirstName string `db:"first_name"`
	Username  string `db:"username"`
}

// StatField names a per-user counter column.
type StatField string

// Counter columns that may be incremented or ranked.
const (
	StatGamesPlayed        StatField = "games_played"
	StatQuotesRead         StatField = "quotes_read"
	StatPaymentsRequested  StatField = "payments_requested"
	StatSuccessfulPayments StatField = "successful_payments"
)

// StatFields returns the allow-list of counter columns.
func StatFields() []StatField {
	return []StatField{StatGamesPlayed, StatQuotesRead, StatPaymentsRequested, StatSuccessfulPayments}
}

// Valid reports whether f is in the allow-list. Column names are
// interpolated into SQL, so anything else must be refused.
func (f StatField) Valid() bool {
	for _, s := range StatFields() {
		if s == f {
			return true
		}
	}
	return false
}

// UserStats holds a user's counters.
type UserStats struct {
	GamesPlayed        int64
	QuotesRead         int64
	PaymentsRequested  int64
	SuccessfulPayments int64
}

// RankEntry is one row of a top-N ranking.
type RankEntry struct {
	UserID    int64  `db:"user_id"`
	FirstName string `db:"first_name"`
	Value     int64  `db:"value"`
}

// PaymentStats counts payments by status.
type PaymentStats struct {
	Total      int64
	Pending    int64
	Processing int64
	Verified   int64
	Rejected   int64
}

// Engagement counts users active over rolling windows.
type Engagement struct {
	TotalUsers int64
	Active24h  int64
	Active7d   int64
	Active30d  int64
}

// Quote is a stored quote.
type Quote struct {
	ID       int64  `db:"id"`
	Text     string `db:"quote"`
	Author   string `db:"author"`
	Category string `db:"category"`
}

// Game types recorded in the games log.
const (
	GameCoin      = "coin"
	GameRPS       = "rps"
	GameDice      = "dice"
	GameTicTacToe = "tictactoe"
	GameHangman   = "hangman"
)

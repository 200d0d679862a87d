// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"upi-pay-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidStat  = errors.New("invalid stat field")
)

const userColumns = `user_id, username, first_name, last_name, join_date, last_interaction,
	games_played, quotes_read, payments_requested, successful_payments, spam_count, is_banned`

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.JoinDate,
		&u.LastInteraction,
		&u.GamesPlayed,
		&u.QuotesRead,
		&u.PaymentsRequested,
		&u.SuccessfulPayments,
		&u.SpamCount,
		&u.IsBanned,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the user on first contact. Later calls refresh the names
// and the last interaction time; counters are never touched.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, firstName, lastName string) (*model.User, error) {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			last_interaction = NOW()
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, userID, username, firstName, lastName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user. Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// IncrementStat adds by to one of the allow-listed counters.
func (r *UserRepository) IncrementStat(ctx context.Context, userID int64, field model.StatField, by int64) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStat, field)
	}
	// field is from the allow-list, so interpolation is safe.
	query := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s + $2 WHERE user_id = $1`, field)

	result, err := r.pool.Exec(ctx, query, userID, by)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetBanned bans or unbans a user.
func (r *UserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	const query = `UPDATE users SET is_banned = $2 WHERE user_id = $1`

	result, err := r.pool.Exec(ctx, query, userID, banned)
	if err != nil {
		return fmt.Errorf("failed to set ban flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IsBanned reports the ban flag. Unknown users are not banned.
func (r *UserRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT is_banned FROM users WHERE user_id = $1`

	var banned bool
	err := r.pool.QueryRow(ctx, query, userID).Scan(&banned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check ban flag: %w", err)
	}
	return banned, nil
}

// List returns the most recently active users.
func (r *UserRepository) List(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY last_interaction DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// IDs returns the ids of all users that are not banned.
func (r *UserRepository) IDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM users WHERE NOT is_banned ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect user ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of known users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CountActiveSince counts users whose last interaction is after since.
func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE last_interaction > $1`

	var n int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}

// TopByStat ranks users with a non-zero counter. field must be in the
// allow-list; anything else returns ErrInvalidStat without touching the
// database.
func (r *UserRepository) TopByStat(ctx context.Context, field model.StatField, limit int) ([]model.RankEntry, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStat, field)
	}
	query := fmt.Sprintf(`
		SELECT user_id, first_name, %[1]s AS value
		FROM users
		WHERE %[1]s > 0
		ORDER BY %[1]s DESC, user_id
		LIMIT $1
	`, field)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.RankEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to collect ranking: %w", err)
	}
	return entries, nil
}

// Stats returns the counters of one user.
func (r *UserRepository) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	const query = `
		SELECT games_played, quotes_read, payments_requested, successful_payments
		FROM users WHERE user_id = $1
	`

	var s model.UserStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.GamesPlayed,
		&s.QuotesRead,
		&s.PaymentsRequested,
		&s.SuccessfulPayments,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &s, nil
}

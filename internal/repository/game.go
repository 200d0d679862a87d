package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRepository records finished games.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Log appends one game outcome for the user.
func (r *GameRepository) Log(ctx context.Context, userID int64, gameType, result string) error {
	const query = `INSERT INTO games (user_id, game_type, result) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, userID, gameType, result); err != nil {
		return fmt.Errorf("failed to log game: %w", err)
	}
	return nil
}

// CountByUser returns how many games the user has logged.
func (r *GameRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM games WHERE user_id = $1`

	var n int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}

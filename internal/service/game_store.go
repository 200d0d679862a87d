package service

import (
	"context"

	"upi-pay-bot/internal/model"
)

// GameLog appends game outcomes.
type GameLog interface {
	Log(ctx context.Context, userID int64, gameType, result string) error
}

// GameRecorder adapts the repositories to session.Recorder.
type GameRecorder struct {
	games GameLog
	users *UserService
}

// NewGameRecorder creates a new GameRecorder instance.
func NewGameRecorder(games GameLog, users *UserService) *GameRecorder {
	return &GameRecorder{games: games, users: users}
}

// IncrementStat adds one to a user counter.
func (r *GameRecorder) IncrementStat(ctx context.Context, userID int64, field model.StatField) error {
	return r.users.IncrementStat(ctx, userID, field)
}

// LogGame appends an outcome to the games log.
func (r *GameRecorder) LogGame(ctx context.Context, userID int64, gameType, result string) error {
	return r.games.Log(ctx, userID, gameType, result)
}

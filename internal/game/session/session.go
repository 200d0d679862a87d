// Package session keeps each user's Tic-Tac-Toe or Hangman round between
// callbacks. A user has at most one session; starting a game replaces
// whatever was there.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"upi-pay-bot/internal/game"
	"upi-pay-bot/internal/game/hangman"
	"upi-pay-bot/internal/game/tictactoe"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/pkg/lock"
	"upi-pay-bot/internal/store"
)

// Namespace is the KV key prefix for sessions.
const Namespace = "game"

// DefaultTTL bounds how long an abandoned round is kept.
const DefaultTTL = 24 * time.Hour

// ErrNoSession is returned for a move on an absent, finished or
// different-kind session.
var ErrNoSession = errors.New("no active game session")

// Kind tags the session variant.
type Kind string

const (
	KindTicTacToe Kind = model.GameTicTacToe
	KindHangman   Kind = model.GameHangman
)

// Session is the stored state. Exactly one of Board or Hangman is
// meaningful, selected by Kind.
type Session struct {
	Kind      Kind            `json:"kind"`
	Board     tictactoe.Board `json:"board"`
	Hangman   *hangman.Game   `json:"hangman,omitempty"`
	StartedAt time.Time       `json:"started_at"`
}

// Recorder persists game statistics.
type Recorder interface {
	IncrementStat(ctx context.Context, userID int64, field model.StatField) error
	LogGame(ctx context.Context, userID int64, gameType, result string) error
}

// Turn is the result of a Tic-Tac-Toe move.
type Turn struct {
	Board   tictactoe.Board
	Reply   int // bot's index, -1 when it did not move
	Outcome tictactoe.Outcome
	Illegal bool
	Text    string
}

// Guess is the result of a Hangman guess.
type Guess struct {
	Result hangman.Result
	Text   string
}

// Manager owns game sessions.
type Manager struct {
	sessions *store.Typed[Session]
	rec      Recorder
	locks    *lock.UserLock
	words    []string
	rng      *rand.Rand
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithWords replaces the Hangman word list.
func WithWords(words []string) Option {
	return func(m *Manager) { m.words = words }
}

// WithRand fixes the random source, for tests. The source is not safe for
// concurrent use, so tests using it should drive one user at a time.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

// NewManager creates a Manager storing sessions in kv.
func NewManager(kv store.KV, rec Recorder, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		sessions: store.NewTyped[Session](kv, Namespace, ttl),
		rec:      rec,
		locks:    lock.NewUserLock(),
		words:    hangman.Words,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Begin counts a game start for the user.
func (m *Manager) Begin(ctx context.Context, userID int64) {
	if err := m.rec.IncrementStat(ctx, userID, model.StatGamesPlayed); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to count game start")
	}
}

func (m *Manager) logResult(ctx context.Context, userID int64, gameType, result string) {
	if err := m.rec.LogGame(ctx, userID, gameType, result); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("game", gameType).Msg("Failed to log game")
	}
}

// Play runs one round of a one-shot game and logs it.
func (m *Manager) Play(ctx context.Context, userID int64, g game.Game, choice string) (*game.Result, error) {
	res, err := g.Play(choice)
	if err != nil {
		return nil, err
	}
	m.logResult(ctx, userID, g.Command(), res.Outcome)
	return res, nil
}

// StartTicTacToe replaces the user's session with an empty board.
func (m *Manager) StartTicTacToe(ctx context.Context, userID int64) (tictactoe.Board, error) {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	s := Session{Kind: KindTicTacToe, StartedAt: m.now()}
	if err := m.sessions.Put(ctx, userID, s); err != nil {
		return s.Board, fmt.Errorf("failed to start tic tac toe: %w", err)
	}
	m.Begin(ctx, userID)
	return s.Board, nil
}

// StartHangman replaces the user's session with a fresh word.
func (m *Manager) StartHangman(ctx context.Context, userID int64) (*hangman.Game, error) {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	s := Session{Kind: KindHangman, Hangman: hangman.New(m.words, m.rng), StartedAt: m.now()}
	if err := m.sessions.Put(ctx, userID, s); err != nil {
		return nil, fmt.Errorf("failed to start hangman: %w", err)
	}
	m.Begin(ctx, userID)
	return s.Hangman, nil
}

func (m *Manager) load(ctx context.Context, userID int64, kind Kind) (Session, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return s, fmt.Errorf("failed to load game session: %w", err)
	}
	if !ok || s.Kind != kind || (kind == KindHangman && s.Hangman == nil) {
		return s, ErrNoSession
	}
	return s, nil
}

// MoveTicTacToe plays X at pos (1..9). An illegal move leaves the session
// unchanged and is reported in the turn, not as an error. A finished game
// deletes the session and logs the result.
func (m *Manager) MoveTicTacToe(ctx context.Context, userID int64, pos int) (*Turn, error) {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	s, err := m.load(ctx, userID, KindTicTacToe)
	if err != nil {
		return nil, err
	}

	next, reply, out, err := s.Board.Move(pos, m.rng)
	switch {
	case errors.Is(err, tictactoe.ErrIllegalMove):
		return &Turn{
			Board:   s.Board,
			Reply:   -1,
			Outcome: tictactoe.InProgress,
			Illegal: true,
			Text:    s.Board.Render() + "\nInvalid move! Choose an empty position.",
		}, nil
	case errors.Is(err, tictactoe.ErrGameOver):
		_ = m.sessions.Delete(ctx, userID)
		return nil, ErrNoSession
	case err != nil:
		return nil, err
	}

	turn := &Turn{Board: next, Reply: reply, Outcome: out, Text: next.Render()}
	if out.Terminal() {
		turn.Text += "\n" + out.Message()
		if err := m.sessions.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to end tic tac toe: %w", err)
		}
		m.logResult(ctx, userID, model.GameTicTacToe, out.Result())
		return turn, nil
	}

	s.Board = next
	if err := m.sessions.Put(ctx, userID, s); err != nil {
		return nil, fmt.Errorf("failed to save tic tac toe: %w", err)
	}
	return turn, nil
}

// GuessHangman applies a letter. A finished game deletes the session and
// logs the result.
func (m *Manager) GuessHangman(ctx context.Context, userID int64, letter string) (*Guess, error) {
	m.locks.Lock(userID)
	defer m.locks.Unlock(userID)

	s, err := m.load(ctx, userID, KindHangman)
	if err != nil {
		return nil, err
	}

	res, err := s.Hangman.Guess(letter)
	if errors.Is(err, hangman.ErrGameOver) {
		_ = m.sessions.Delete(ctx, userID)
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	g := &Guess{Result: res, Text: s.Hangman.Message(res, letter)}
	if res.Outcome != hangman.InProgress {
		if err := m.sessions.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to end hangman: %w", err)
		}
		m.logResult(ctx, userID, model.GameHangman, res.Outcome.Result())
		return g, nil
	}

	if !res.Repeated {
		if err := m.sessions.Put(ctx, userID, s); err != nil {
			return nil, fmt.Errorf("failed to save hangman: %w", err)
		}
	}
	return g, nil
}

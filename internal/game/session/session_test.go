package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upi-pay-bot/internal/game/coin"
	"upi-pay-bot/internal/game/hangman"
	"upi-pay-bot/internal/game/tictactoe"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/store"
)

type logged struct {
	userID   int64
	gameType string
	result   string
}

type fakeRecorder struct {
	mu     sync.Mutex
	starts map[int64]int
	logs   []logged
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{starts: map[int64]int{}}
}

func (f *fakeRecorder) IncrementStat(_ context.Context, userID int64, field model.StatField) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if field == model.StatGamesPlayed {
		f.starts[userID]++
	}
	return nil
}

func (f *fakeRecorder) LogGame(_ context.Context, userID int64, gameType, result string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logged{userID, gameType, result})
	return nil
}

func newManager(rec Recorder, opts ...Option) *Manager {
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewManager(store.NewMemory(), rec, 0, opts...)
}

// activeKind reports the kind of the user's stored session.
func activeKind(t *testing.T, m *Manager, userID int64) (Kind, bool) {
	t.Helper()
	s, ok, err := m.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	return s.Kind, ok
}

func TestTicTacToeSession(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	m := newManager(rec)

	_, err := m.MoveTicTacToe(ctx, 1, 5)
	assert.True(t, errors.Is(err, ErrNoSession))

	b, err := m.StartTicTacToe(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tictactoe.Board{}, b)
	assert.Equal(t, 1, rec.starts[1])

	turn, err := m.MoveTicTacToe(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, turn.Illegal)
	assert.Equal(t, tictactoe.X, turn.Board[4])
	assert.Contains(t, []int{0, 2, 6, 8}, turn.Reply)

	again, err := m.MoveTicTacToe(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, again.Illegal)
	assert.Equal(t, turn.Board, again.Board)
	assert.Contains(t, again.Text, "Invalid move! Choose an empty position.")

	kind, ok := activeKind(t, m, 1)
	assert.True(t, ok)
	assert.Equal(t, KindTicTacToe, kind)
}

func TestTicTacToePlaysToEnd(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	m := newManager(rec)

	_, err := m.StartTicTacToe(ctx, 7)
	require.NoError(t, err)

	var last *Turn
	for i := 0; i < 9; i++ {
		if _, ok := activeKind(t, m, 7); !ok {
			break
		}
		var board tictactoe.Board
		if last != nil {
			board = last.Board
		}
		pos := 0
		for j, c := range board {
			if c == tictactoe.Empty {
				pos = j + 1
				break
			}
		}
		last, err = m.MoveTicTacToe(ctx, 7, pos)
		require.NoError(t, err)
	}

	require.NotNil(t, last)
	assert.True(t, last.Outcome.Terminal())
	assert.Contains(t, last.Text, last.Outcome.Message())
	_, ok := activeKind(t, m, 7)
	assert.False(t, ok)

	require.Len(t, rec.logs, 1)
	assert.Equal(t, model.GameTicTacToe, rec.logs[0].gameType)
	assert.Equal(t, last.Outcome.Result(), rec.logs[0].result)
}

func TestHangmanSession(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	m := newManager(rec, WithWords([]string{"BOT"}))

	g, err := m.StartHangman(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "BOT", g.Answer())

	_, err = m.MoveTicTacToe(ctx, 2, 1)
	assert.True(t, errors.Is(err, ErrNoSession), "wrong kind")

	res, err := m.GuessHangman(ctx, 2, "b")
	require.NoError(t, err)
	assert.True(t, res.Result.Correct)

	res, err = m.GuessHangman(ctx, 2, "B")
	require.NoError(t, err)
	assert.True(t, res.Result.Repeated)

	_, err = m.GuessHangman(ctx, 2, "7")
	assert.True(t, errors.Is(err, hangman.ErrInvalidGuess))

	_, err = m.GuessHangman(ctx, 2, "o")
	require.NoError(t, err)
	res, err = m.GuessHangman(ctx, 2, "t")
	require.NoError(t, err)
	assert.Equal(t, hangman.Won, res.Result.Outcome)
	assert.Equal(t, "🎉 Congratulations! You won!\n\nThe word was: BOT", res.Text)

	_, err = m.GuessHangman(ctx, 2, "x")
	assert.True(t, errors.Is(err, ErrNoSession))
	require.Len(t, rec.logs, 1)
	assert.Equal(t, logged{2, model.GameHangman, "win"}, rec.logs[0])
}

func TestRestartDiscardsPrevious(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	m := newManager(rec, WithWords([]string{"UPI"}))

	_, err := m.StartTicTacToe(ctx, 3)
	require.NoError(t, err)
	_, err = m.MoveTicTacToe(ctx, 3, 1)
	require.NoError(t, err)

	_, err = m.StartHangman(ctx, 3)
	require.NoError(t, err)
	kind, _ := activeKind(t, m, 3)
	assert.Equal(t, KindHangman, kind)

	_, err = m.StartTicTacToe(ctx, 3)
	require.NoError(t, err)
	turn, err := m.MoveTicTacToe(ctx, 3, 1)
	require.NoError(t, err)
	assert.False(t, turn.Illegal, "fresh board accepts position 1 again")

	assert.Equal(t, 3, rec.starts[3])
	assert.Empty(t, rec.logs)
}

func TestPlayLogsOneShot(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	m := newManager(rec)

	g := coin.New(func(int) int { return 0 })
	res, err := m.Play(ctx, 4, g, coin.Heads)
	require.NoError(t, err)
	assert.Equal(t, "win", res.Outcome)

	_, err = m.Play(ctx, 4, g, "Edge")
	assert.Error(t, err)

	require.Len(t, rec.logs, 1)
	assert.Equal(t, logged{4, "coin", "win"}, rec.logs[0])
}

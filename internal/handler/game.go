package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/game"
	"upi-pay-bot/internal/game/coin"
	"upi-pay-bot/internal/game/hangman"
	"upi-pay-bot/internal/game/rps"
	"upi-pay-bot/internal/game/session"
	"upi-pay-bot/internal/game/tictactoe"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/router"
)

// Sessions runs games for users.
type Sessions interface {
	Begin(ctx context.Context, userID int64)
	Play(ctx context.Context, userID int64, g game.Game, choice string) (*game.Result, error)
	StartTicTacToe(ctx context.Context, userID int64) (tictactoe.Board, error)
	MoveTicTacToe(ctx context.Context, userID int64, pos int) (*session.Turn, error)
	StartHangman(ctx context.Context, userID int64) (*hangman.Game, error)
	GuessHangman(ctx context.Context, userID int64, letter string) (*session.Guess, error)
}

// Ranker ranks users by a counter.
type Ranker interface {
	TopUsers(ctx context.Context, field model.StatField, n int) ([]model.RankEntry, error)
}

const (
	gamesText        = "🎮 Mini Games\n\nChoose a game to play:"
	msgGameNotFound  = "❌ Game not found. Please start a new game!"
	msgGameFailed    = "❌ Something went wrong!"
	tttPrompt        = "\n\nChoose a position (1-9):\n1 2 3\n4 5 6\n7 8 9"
	leaderboardTitle = "🏆 Games Leaderboard\n\n"
	leaderboardSize  = 10
)

// GameHandler handles the games menu and every game callback.
type GameHandler struct {
	registry *game.Registry
	sessions Sessions
	ranker   Ranker
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(registry *game.Registry, sessions Sessions, ranker Ranker) *GameHandler {
	return &GameHandler{
		registry: registry,
		sessions: sessions,
		ranker:   ranker,
	}
}

// HandleGames handles /games.
func (h *GameHandler) HandleGames(c tele.Context) error {
	return c.Send(gamesText, GamesKeyboard())
}

// HandleGamesMenu handles the games_menu callback.
func (h *GameHandler) HandleGamesMenu(c tele.Context, _ router.Route) error {
	return c.Edit(gamesText, GamesKeyboard())
}

func (h *GameHandler) lookup(command string) (game.Game, error) {
	g, ok := h.registry.Get(command)
	if !ok {
		return nil, fmt.Errorf("game %q not registered", command)
	}
	return g, nil
}

// HandleCoinStart shows the coin panel and counts a game start.
func (h *GameHandler) HandleCoinStart(c tele.Context, _ router.Route) error {
	g, err := h.lookup(model.GameCoin)
	if err != nil {
		return err
	}
	h.sessions.Begin(context.Background(), c.Sender().ID)
	return c.Edit(g.Intro(), CoinKeyboard())
}

// HandleCoinChoice flips the coin against the chosen side.
func (h *GameHandler) HandleCoinChoice(c tele.Context, r router.Route) error {
	choice := coin.Tails
	if r.Action == router.ActionCoinHeads {
		choice = coin.Heads
	}
	return h.playRound(c, model.GameCoin, choice, CoinKeyboard())
}

// HandleRPSStart shows the weapon panel and counts a game start.
func (h *GameHandler) HandleRPSStart(c tele.Context, _ router.Route) error {
	g, err := h.lookup(model.GameRPS)
	if err != nil {
		return err
	}
	h.sessions.Begin(context.Background(), c.Sender().ID)
	return c.Edit(g.Intro(), RPSKeyboard())
}

// HandleRPSChoice plays the chosen weapon.
func (h *GameHandler) HandleRPSChoice(c tele.Context, r router.Route) error {
	choice := rps.Rock
	switch r.Action {
	case router.ActionRPSPaper:
		choice = rps.Paper
	case router.ActionRPSScissors:
		choice = rps.Scissors
	}
	return h.playRound(c, model.GameRPS, choice, RPSKeyboard())
}

// HandleDice rolls two dice. Every roll is a game start.
func (h *GameHandler) HandleDice(c tele.Context, _ router.Route) error {
	h.sessions.Begin(context.Background(), c.Sender().ID)
	return h.playRound(c, model.GameDice, "", DiceKeyboard())
}

func (h *GameHandler) playRound(c tele.Context, command, choice string, markup *tele.ReplyMarkup) error {
	g, err := h.lookup(command)
	if err != nil {
		return err
	}
	res, err := h.sessions.Play(context.Background(), c.Sender().ID, g, choice)
	if err != nil {
		return err
	}
	return c.Edit(res.Text, markup)
}

// HandleTicTacToeStart replaces any session with a fresh board.
func (h *GameHandler) HandleTicTacToeStart(c tele.Context, _ router.Route) error {
	board, err := h.sessions.StartTicTacToe(context.Background(), c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Edit(board.Render()+tttPrompt, TicTacToeKeyboard(false))
}

// HandleTicTacToeMove plays the user's move and the bot's reply.
func (h *GameHandler) HandleTicTacToeMove(c tele.Context, r router.Route) error {
	userID := c.Sender().ID
	turn, err := h.sessions.MoveTicTacToe(context.Background(), userID, r.Position)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return c.Edit(msgGameNotFound)
	case err != nil:
		log.Error().Err(err).Int64("user_id", userID).Int("position", r.Position).Msg("Tic tac toe move failed")
		return c.Edit(msgGameFailed, inline(
			[]tele.InlineButton{btn("🔄 Try Again", router.ActionGameTTT)},
			backTo(router.ActionGamesMenu),
		))
	}
	return editBoard(c, turn.Text, TicTacToeKeyboard(turn.Outcome.Terminal()))
}

// HandleHangmanStart replaces any session with a new word.
func (h *GameHandler) HandleHangmanStart(c tele.Context, _ router.Route) error {
	g, err := h.sessions.StartHangman(context.Background(), c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Edit(g.Render()+"\n\nGuess a letter:", HangmanKeyboard(false))
}

// HandleHangmanGuess applies a letter.
func (h *GameHandler) HandleHangmanGuess(c tele.Context, r router.Route) error {
	userID := c.Sender().ID
	g, err := h.sessions.GuessHangman(context.Background(), userID, string(r.Letter))
	switch {
	case errors.Is(err, session.ErrNoSession):
		return c.Edit(msgGameNotFound)
	case err != nil:
		return err
	}
	return editBoard(c, g.Text, HangmanKeyboard(g.Result.Outcome != hangman.InProgress))
}

// editBoard redraws a game message. An illegal move or a repeated letter
// leaves the board unchanged, and Telegram refuses that edit.
func editBoard(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if err := c.Edit(text, markup); err != nil && !errors.Is(err, tele.ErrSameMessageContent) {
		return err
	}
	return nil
}

// HandleLeaderboard shows the top players by games played.
func (h *GameHandler) HandleLeaderboard(c tele.Context, _ router.Route) error {
	entries, err := h.ranker.TopUsers(context.Background(), model.StatGamesPlayed, leaderboardSize)
	if err != nil {
		return err
	}
	return c.Edit(LeaderboardText(entries), LeaderboardKeyboard())
}

// LeaderboardText formats the games leaderboard.
func LeaderboardText(entries []model.RankEntry) string {
	if len(entries) == 0 {
		return leaderboardTitle + "No games played yet!"
	}
	var b strings.Builder
	b.WriteString(leaderboardTitle)
	for i, e := range entries {
		name := e.FirstName
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "%s %s - %d games\n", medal(i), name, e.Value)
	}
	return b.String()
}

func medal(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	}
	return fmt.Sprintf("%d.", i+1)
}

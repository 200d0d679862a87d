// Package rps implements Rock Paper Scissors.
package rps

import (
	"fmt"

	"upi-pay-bot/internal/game"
)

// Weapons.
const (
	Rock     = "Rock"
	Paper    = "Paper"
	Scissors = "Scissors"
)

var weapons = []string{Rock, Paper, Scissors}

// Emoji maps a weapon to its glyph.
var Emoji = map[string]string{
	Rock:     "✊",
	Paper:    "✋",
	Scissors: "✌️",
}

// beats[a] is the weapon a defeats.
var beats = map[string]string{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// Game implements game.Game.
type Game struct {
	intn game.IntN
}

// New creates an RPS game. A nil intn uses game.DefaultIntN.
func New(intn game.IntN) *Game {
	if intn == nil {
		intn = game.DefaultIntN
	}
	return &Game{intn: intn}
}

func (g *Game) Name() string    { return "Rock Paper Scissors" }
func (g *Game) Command() string { return "rps" }
func (g *Game) Intro() string   { return "🎮 Rock Paper Scissors\n\nChoose your weapon:" }

func (g *Game) Choices() []string {
	return append([]string(nil), weapons...)
}

// Play draws the bot's weapon and settles the round.
func (g *Game) Play(choice string) (*game.Result, error) {
	if _, ok := beats[choice]; !ok {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidChoice, choice)
	}
	return Outcome(choice, weapons[g.intn(len(weapons))]), nil
}

// Outcome settles user against bot. Both must be valid weapons.
func Outcome(user, bot string) *game.Result {
	var res game.Result
	var verdict string
	switch {
	case user == bot:
		res.Outcome, verdict = game.OutcomeTie, "It's a tie!"
	case beats[user] == bot:
		res.Outcome, verdict = game.OutcomeWin, "You win! 🎉"
	default:
		res.Outcome, verdict = game.OutcomeLoss, "I win! 😎"
	}
	res.Text = fmt.Sprintf("🎮 Rock Paper Scissors\n\nYou: %s %s\nMe: %s %s\n\n%s",
		Emoji[user], user, Emoji[bot], bot, verdict)
	return &res
}

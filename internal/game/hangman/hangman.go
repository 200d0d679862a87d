// Package hangman implements the letter-guessing game.
package hangman

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// MaxMisses is the number of wrong guesses that ends the game.
const MaxMisses = 6

var (
	ErrGameOver     = errors.New("game is over")
	ErrInvalidGuess = errors.New("guess must be a single letter A-Z")
)

// Words is the default word list.
var Words = []string{
	"PYTHON", "TELEGRAM", "BOT", "PAYMENT", "UPI", "SECURE", "SIGMA",
	"DARK", "CHANNEL", "PROOFS", "GAME", "QUOTE", "INNOVATION", "TECHNOLOGY",
}

// Outcome is the state after a guess.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Lost
)

// Result is the value recorded in the games log.
func (o Outcome) Result() string {
	switch o {
	case Won:
		return "win"
	case Lost:
		return "loss"
	default:
		return "in_progress"
	}
}

// Result describes one guess.
type Result struct {
	Outcome  Outcome
	Repeated bool // letter was already guessed; nothing changed
	Correct  bool
}

// Game is one round. Fields are exported so sessions can be stored as JSON.
type Game struct {
	Word    string `json:"word"`
	Guessed string `json:"guessed"`
	Misses  int    `json:"misses"`
}

// New picks a word uniformly from words. A nil rng uses the shared source;
// an empty list falls back to Words.
func New(words []string, rng *rand.Rand) *Game {
	if len(words) == 0 {
		words = Words
	}
	var i int
	if rng == nil {
		i = rand.IntN(len(words))
	} else {
		i = rng.IntN(len(words))
	}
	return &Game{Word: strings.ToUpper(words[i])}
}

func (g *Game) guessed(letter byte) bool {
	return strings.IndexByte(g.Guessed, letter) >= 0
}

func (g *Game) solved() bool {
	for i := 0; i < len(g.Word); i++ {
		if !g.guessed(g.Word[i]) {
			return false
		}
	}
	return true
}

// Outcome evaluates the current state.
func (g *Game) Outcome() Outcome {
	switch {
	case g.solved():
		return Won
	case g.Misses >= MaxMisses:
		return Lost
	default:
		return InProgress
	}
}

// Guess applies a letter. Case is ignored. A repeated letter reports
// Repeated and does not count as a miss.
func (g *Game) Guess(letter string) (Result, error) {
	if g.Outcome() != InProgress {
		return Result{Outcome: g.Outcome()}, ErrGameOver
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return Result{Outcome: InProgress}, fmt.Errorf("%w: %q", ErrInvalidGuess, letter)
	}
	l := letter[0]

	if g.guessed(l) {
		return Result{Outcome: InProgress, Repeated: true}, nil
	}
	g.Guessed += letter

	correct := strings.IndexByte(g.Word, l) >= 0
	if !correct {
		g.Misses++
	}
	return Result{Outcome: g.Outcome(), Correct: correct}, nil
}

// Masked shows guessed letters and underscores, space separated.
func (g *Game) Masked() string {
	parts := make([]string, len(g.Word))
	for i := 0; i < len(g.Word); i++ {
		if g.guessed(g.Word[i]) {
			parts[i] = string(g.Word[i])
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

// Answer returns the hidden word.
func (g *Game) Answer() string {
	return g.Word
}

// Render is the board text without a prompt.
func (g *Game) Render() string {
	return fmt.Sprintf("🎮 Hangman\n\nWord: %s\nIncorrect guesses: %d/%d", g.Masked(), g.Misses, MaxMisses)
}

// Message is the text shown after a guess.
func (g *Game) Message(res Result, letter string) string {
	switch {
	case res.Repeated:
		return g.Render() + fmt.Sprintf("\n\nYou already guessed '%s'!", strings.ToUpper(letter))
	case res.Outcome == Won:
		return "🎉 Congratulations! You won!\n\nThe word was: " + g.Word
	case res.Outcome == Lost:
		return "😢 Game Over!\n\nThe word was: " + g.Word + "\nBetter luck next time!"
	default:
		return g.Render() + "\n\nGuess a letter:"
	}
}

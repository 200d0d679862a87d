package game

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrDuplicate is returned when a command is registered twice.
var ErrDuplicate = errors.New("game already registered")

// Registry holds the one-shot games keyed by command. It is filled at
// startup and read by every callback.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game)}
}

// Register adds g under its command.
func (r *Registry) Register(g Game) error {
	if g == nil {
		return errors.New("cannot register nil game")
	}
	cmd := g.Command()
	if cmd == "" {
		return fmt.Errorf("game %q has no command", g.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[cmd]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, cmd)
	}
	r.games[cmd] = g
	return nil
}

// Get looks a game up by command.
func (r *Registry) Get(command string) (Game, bool) {
	r.mu.RLock()
	g, ok := r.games[command]
	r.mu.RUnlock()
	return g, ok
}

// Commands returns the registered commands, sorted.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]string, 0, len(r.games))
	for cmd := range r.games {
		cmds = append(cmds, cmd)
	}
	slices.Sort(cmds)
	return cmds
}

// List returns the registered games ordered by command.
func (r *Registry) List() []Game {
	cmds := r.Commands()
	r.mu.RLock()
	defer r.mu.RUnlock()
	games := make([]Game, 0, len(cmds))
	for _, cmd := range cmds {
		if g, ok := r.games[cmd]; ok {
			games = append(games, g)
		}
	}
	return games
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

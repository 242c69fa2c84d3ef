// Package bot fills seats with simple automated players.
//
// A Strategy looks at the committed table state and picks one of the legal
// moves for its seat. A Driver runs strategies against an authority: it
// receives every published state and acts whenever one of its seats is on
// the clock.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
)

// Strategy picks an action for seat. It is only asked when seat is the
// current seat of a betting phase.
type Strategy interface {
	Name() string
	MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision
}

// Decision is a chosen action plus a short reason for the log.
type Decision struct {
	Action    game.Action
	Reasoning string
}

// ValidAction is one legal move. Call and raise are both bets; Name tells
// them apart and the amounts bound the chips added.
type ValidAction struct {
	Name      string
	Kind      game.ActionKind
	MinAmount int
	MaxAmount int
}

// Action returns the game action for amount, clamped to the legal range.
func (v ValidAction) Action(amount int) game.Action {
	if v.Kind != game.ActionBet {
		return game.Action{Kind: v.Kind}
	}
	return game.Bet(min(max(amount, v.MinAmount), v.MaxAmount))
}

// ValidActions lists what seat may do. It is empty unless seat is to act.
func ValidActions(s *game.State, seat int) []ValidAction {
	if s.Phase != game.PhaseBetting || s.Current != seat {
		return nil
	}
	if s.Street == game.Showdown {
		actions := []ValidAction{{Name: "reveal", Kind: game.ActionCheck}}
		if !s.ForcedReveal(seat) {
			actions = append(actions, ValidAction{Name: "muck", Kind: game.ActionFold})
		}
		return actions
	}

	var actions []ValidAction
	call := s.CallAmount(seat)
	if s.CanCheck(seat) {
		actions = append(actions, ValidAction{Name: "check", Kind: game.ActionCheck})
	} else {
		actions = append(actions,
			ValidAction{Name: "fold", Kind: game.ActionFold},
			ValidAction{Name: "call", Kind: game.ActionBet, MinAmount: call, MaxAmount: call},
		)
	}

	p, _ := s.Player(seat)
	maxBet := s.MaximumBet(seat)
	minRaise := min(s.MinimumBet()-p.Bets[s.Street], maxBet)
	if maxBet > call && minRaise > 0 {
		actions = append(actions, ValidAction{Name: "raise", Kind: game.ActionBet, MinAmount: minRaise, MaxAmount: maxBet})
	}
	return actions
}

func findAction(validActions []ValidAction, names ...string) (ValidAction, bool) {
	for _, name := range names {
		for _, v := range validActions {
			if v.Name == name {
				return v, true
			}
		}
	}
	return ValidAction{}, false
}

var strategies = map[string]func(rng *rand.Rand, logger *log.Logger) Strategy{
	"call":   func(_ *rand.Rand, logger *log.Logger) Strategy { return NewCallBot(logger) },
	"fold":   func(_ *rand.Rand, logger *log.Logger) Strategy { return NewFoldBot(logger) },
	"maniac": func(rng *rand.Rand, logger *log.Logger) Strategy { return NewManiacBot(rng, logger) },
	"random": func(rng *rand.Rand, logger *log.Logger) Strategy { return NewRandBot(rng, logger) },
	"tight":  func(rng *rand.Rand, logger *log.Logger) Strategy { return NewTightBot(rng, logger) },
}

// Strategies lists the strategy names New accepts.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidStrategy reports whether New knows name.
func ValidStrategy(name string) bool {
	_, ok := strategies[strings.ToLower(name)]
	return ok
}

// New builds the named strategy.
func New(name string, rng *rand.Rand, logger *log.Logger) (Strategy, error) {
	build, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(Strategies(), ", "))
	}
	return build(rng, logger), nil
}

package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
)

// ManiacBot is an extremely aggressive bot that shoves frequently
type ManiacBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewManiacBot creates a new ManiacBot instance
func NewManiacBot(rng *rand.Rand, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: logger}
}

func (m *ManiacBot) Name() string { return "maniac" }

func (m *ManiacBot) MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision {
	// maniacs always show
	if v, ok := findAction(validActions, "reveal"); ok {
		return Decision{Action: v.Action(0), Reasoning: "maniac showing"}
	}

	raise, canRaise := findAction(validActions, "raise")
	if check, ok := findAction(validActions, "check"); ok {
		if canRaise && m.rng.Float64() < 0.85 {
			p, _ := state.Player(seat)
			if p.Bankroll <= 20*state.BigBlind || m.rng.Float64() < 0.3 {
				return Decision{Action: raise.Action(raise.MaxAmount), Reasoning: "maniac shove"}
			}
			return Decision{Action: raise.Action(raise.MinAmount + (raise.MaxAmount-raise.MinAmount)*3/4), Reasoning: "maniac big raise"}
		}
		return Decision{Action: check.Action(0), Reasoning: "maniac checking"}
	}

	// facing a bet
	r := m.rng.Float64()
	if r < 0.4 && canRaise {
		return Decision{Action: raise.Action(raise.MaxAmount), Reasoning: "maniac shove over bet"}
	}
	if call, ok := findAction(validActions, "call"); ok && r < 0.8 {
		return Decision{Action: call.Action(call.MinAmount), Reasoning: "maniac call"}
	}
	return Decision{Action: game.Fold(), Reasoning: "maniac fold"}
}

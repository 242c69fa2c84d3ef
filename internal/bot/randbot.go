package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
)

// RandBot is a simple bot that makes uniform random legal actions
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Name() string { return "random" }

func (r *RandBot) MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision {
	if len(validActions) == 0 {
		return Decision{Action: game.Fold(), Reasoning: "rand-bot no valid actions"}
	}

	choice := validActions[r.rng.IntN(len(validActions))]

	// For raises, pick random amount between min and max
	amount := choice.MinAmount
	if choice.MaxAmount > choice.MinAmount {
		amount = choice.MinAmount + r.rng.IntN(choice.MaxAmount-choice.MinAmount+1)
	}

	return Decision{Action: choice.Action(amount), Reasoning: "rand-bot random " + choice.Name}
}

package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/poker"
)

// TightBot is a tight aggressive bot: it raises strong starting hands and
// made hands, calls marginal ones some of the time and folds the rest.
type TightBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewTightBot creates a new TightBot instance
func NewTightBot(rng *rand.Rand, logger *log.Logger) *TightBot {
	return &TightBot{rng: rng, logger: logger}
}

func (b *TightBot) Name() string { return "tight" }

// strength grades the seat's hand 0 (give up) to 2 (raise).
func (b *TightBot) strength(state *game.State, seat int) int {
	p, ok := state.Player(seat)
	if !ok || !p.Dealt() {
		return 0
	}
	if state.Street == game.Preflop {
		switch poker.CategorizeHoleCards(p.Hole[0], p.Hole[1]) {
		case poker.CategoryPremium, poker.CategoryStrong:
			return 2
		case poker.CategoryMedium:
			return 1
		}
		return 0
	}

	cards := append([]poker.Card{p.Hole[0], p.Hole[1]}, state.VisibleBoard()...)
	score, err := poker.BestOf(cards)
	if err != nil {
		return 0
	}
	switch {
	case score.Category >= poker.TwoPair:
		return 2
	case score.Category == poker.OnePair:
		return 1
	}
	return 0
}

func (b *TightBot) MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision {
	if state.Street == game.Showdown {
		if v, ok := findAction(validActions, "reveal"); ok && (b.strength(state, seat) > 0 || state.ForcedReveal(seat)) {
			return Decision{Action: v.Action(0), Reasoning: "tight-bot showing"}
		}
		if v, ok := findAction(validActions, "muck", "reveal"); ok {
			return Decision{Action: v.Action(0), Reasoning: "tight-bot mucking"}
		}
	}

	strength := b.strength(state, seat)
	if strength == 2 {
		if v, ok := findAction(validActions, "raise"); ok {
			return Decision{Action: v.Action(v.MinAmount + (v.MaxAmount-v.MinAmount)/4), Reasoning: "tight-bot raising strength"}
		}
	}
	if v, ok := findAction(validActions, "check"); ok {
		return Decision{Action: v.Action(0), Reasoning: "tight-bot checking"}
	}
	if v, ok := findAction(validActions, "call"); ok && (strength == 2 || (strength == 1 && b.rng.Float64() < 0.5)) {
		return Decision{Action: v.Action(v.MinAmount), Reasoning: "tight-bot calling"}
	}
	return Decision{Action: game.Fold(), Reasoning: "tight-bot folding"}
}

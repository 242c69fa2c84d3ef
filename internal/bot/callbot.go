package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
)

// CallBot checks or calls every street and always shows its hand.
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger}
}

func (c *CallBot) Name() string { return "call" }

func (c *CallBot) MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision {
	if v, ok := findAction(validActions, "reveal", "check"); ok {
		return Decision{Action: v.Action(0), Reasoning: "call-bot checking"}
	}
	if v, ok := findAction(validActions, "call"); ok {
		return Decision{Action: v.Action(v.MinAmount), Reasoning: "call-bot calling"}
	}
	return Decision{Action: game.Fold(), Reasoning: "call-bot forced fold"}
}

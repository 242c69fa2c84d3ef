package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
)

// FoldBot is a simple bot that always folds (or checks when possible).
// At showdown it mucks unless the table makes it reveal.
type FoldBot struct {
	logger *log.Logger
}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: logger}
}

func (f *FoldBot) Name() string { return "fold" }

func (f *FoldBot) MakeDecision(state *game.State, seat int, validActions []ValidAction) Decision {
	if v, ok := findAction(validActions, "check", "muck", "fold"); ok {
		return Decision{Action: v.Action(0), Reasoning: "fold-bot " + v.Name}
	}
	if v, ok := findAction(validActions, "reveal"); ok {
		return Decision{Action: v.Action(0), Reasoning: "fold-bot forced reveal"}
	}
	return Decision{Action: game.Fold(), Reasoning: "fold-bot emergency"}
}

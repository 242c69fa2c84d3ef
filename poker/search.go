package poker

import "fmt"

// Stage selects which community cards are visible to the best-of-seven search.
type Stage uint8

const (
	StageFlop Stage = iota
	StageTurn
	StageRiver
)

// Positions in the seven-card layout: hole 0-1, flop 2-4, turn 5, river 6.
var (
	flopSubsets = [...][5]uint8{
		{0, 1, 2, 3, 4},
	}
	turnSubsets = [...][5]uint8{
		{1, 2, 3, 4, 5},
		{0, 2, 3, 4, 5},
		{0, 1, 3, 4, 5},
		{0, 1, 2, 4, 5},
		{0, 1, 2, 3, 5},
	}
	riverSubsets = [...][5]uint8{
		{2, 3, 4, 5, 6},
		{1, 3, 4, 5, 6},
		{1, 2, 4, 5, 6},
		{1, 2, 3, 5, 6},
		{1, 2, 3, 4, 6},
		{0, 3, 4, 5, 6},
		{0, 2, 4, 5, 6},
		{0, 2, 3, 5, 6},
		{0, 2, 3, 4, 6},
		{0, 1, 4, 5, 6},
		{0, 1, 3, 5, 6},
		{0, 1, 3, 4, 6},
		{0, 1, 2, 5, 6},
		{0, 1, 2, 4, 6},
		{0, 1, 2, 3, 6},
	}
)

// EvaluateStage returns the best score among the subsets introduced at stage.
// Only subsets containing the newly revealed card are examined past the flop.
func EvaluateStage(stage Stage, hole [2]Card, board [5]Card) HandScore {
	seven := [7]Card{hole[0], hole[1], board[0], board[1], board[2], board[3], board[4]}

	var subsets [][5]uint8
	switch stage {
	case StageFlop:
		subsets = flopSubsets[:]
	case StageTurn:
		subsets = turnSubsets[:]
	case StageRiver:
		subsets = riverSubsets[:]
	default:
		return HandScore{}
	}

	var best HandScore
	for _, idx := range subsets {
		var five [5]Card
		for i, p := range idx {
			five[i] = seven[p]
		}
		// Equal scores keep the incumbent.
		if score := Evaluate5(five); score.Beats(best) {
			best = score
		}
	}
	return best
}

// StreetBests holds the best score found at each of the three evaluated streets.
type StreetBests struct {
	Flop  HandScore `json:"flop"`
	Turn  HandScore `json:"turn"`
	River HandScore `json:"river"`
}

// BestOfSeven evaluates all 21 five-card subsets, grouped by the street that
// introduced them.
func BestOfSeven(hole [2]Card, board [5]Card) StreetBests {
	return StreetBests{
		Flop:  EvaluateStage(StageFlop, hole, board),
		Turn:  EvaluateStage(StageTurn, hole, board),
		River: EvaluateStage(StageRiver, hole, board),
	}
}

// Through returns the best hand visible once stage has been dealt.
func (b StreetBests) Through(stage Stage) HandScore {
	best := b.Flop
	if stage >= StageTurn && b.Turn.Beats(best) {
		best = b.Turn
	}
	if stage >= StageRiver && b.River.Beats(best) {
		best = b.River
	}
	return best
}

// Overall returns the best hand across all three streets.
func (b StreetBests) Overall() HandScore {
	return b.Through(StageRiver)
}

// BestOf scores five to seven distinct cards by exhaustive search.
func BestOf(cards []Card) (HandScore, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandScore{}, fmt.Errorf("need 5 to 7 cards, got %d", len(cards))
	}
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() || seen[c] {
			return HandScore{}, fmt.Errorf("invalid or duplicate card %s", c)
		}
		seen[c] = true
	}

	var best HandScore
	n := len(cards)
	var five [5]Card
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			if score := Evaluate5(five); score.Beats(best) {
				best = score
			}
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			five[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best, nil
}

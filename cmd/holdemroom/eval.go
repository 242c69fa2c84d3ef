package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lox/holdemroom/poker"
	ph "github.com/paulhankin/poker"
)

// EvalCmd scores hands of five to seven cards and ranks them.
type EvalCmd struct {
	Hands   []string `kong:"arg,help='Hands to evaluate, one quoted hand per argument'"`
	Compare bool     `kong:"help='Cross-check the ordering against github.com/paulhankin/poker'"`
}

// EvaluatedHand is one scored hand.
type EvaluatedHand struct {
	Input     string
	Cards     []poker.Card
	Score     poker.HandScore
	Reference int16
}

func (c *EvalCmd) Run() error {
	hands, err := evaluateHands(c.Hands, c.Compare)
	if err != nil {
		return err
	}
	return printEval(os.Stdout, hands, c.Compare)
}

func evaluateHands(inputs []string, compare bool) ([]EvaluatedHand, error) {
	hands := make([]EvaluatedHand, 0, len(inputs))
	for _, in := range inputs {
		cards, err := poker.ParseCards(in)
		if err != nil {
			return nil, fmt.Errorf("hand %q: %w", in, err)
		}
		score, err := poker.BestOf(cards)
		if err != nil {
			return nil, fmt.Errorf("hand %q: %w", in, err)
		}
		h := EvaluatedHand{Input: in, Cards: cards, Score: score}
		if compare {
			if h.Reference, err = referenceScore(cards); err != nil {
				return nil, fmt.Errorf("hand %q: %w", in, err)
			}
		}
		hands = append(hands, h)
	}
	sort.SliceStable(hands, func(i, j int) bool {
		return poker.Compare(hands[i].Score, hands[j].Score) > 0
	})
	return hands, nil
}

func printEval(w io.Writer, hands []EvaluatedHand, compare bool) error {
	for i, h := range hands {
		place := i + 1
		// tied hands share a place
		for place > 1 && poker.Compare(hands[place-2].Score, h.Score) == 0 {
			place--
		}
		line := fmt.Sprintf("%d. %s  %s", place, handStyle.Render(poker.FormatCards(h.Cards)), categoryStyle.Render(h.Score.Category.String()))
		if compare {
			line += infoStyle.Render(fmt.Sprintf("  (reference %d)", h.Reference))
		}
		fmt.Fprintln(w, line)
	}
	if !compare {
		return nil
	}
	for i := 1; i < len(hands); i++ {
		ours := poker.Compare(hands[i-1].Score, hands[i].Score)
		ref := sign(int(hands[i-1].Reference) - int(hands[i].Reference))
		if ours != ref {
			return fmt.Errorf("ordering disagrees with the reference: %s vs %s", hands[i-1].Input, hands[i].Input)
		}
	}
	fmt.Fprintln(w, successStyle.Render("Ordering agrees with the reference evaluator"))
	return nil
}

var phSuits = [poker.NumSuits]ph.Suit{
	poker.Spades:   ph.Spade,
	poker.Hearts:   ph.Heart,
	poker.Clubs:    ph.Club,
	poker.Diamonds: ph.Diamond,
}

func toReference(c poker.Card) (ph.Card, error) {
	// The reference library numbers ranks 1-13 with the ace at 1.
	return ph.MakeCard(phSuits[c.Suit()], ph.Rank(c.Rank()+1))
}

// referenceScore is the reference library's best five-card score; higher is better.
func referenceScore(cards []poker.Card) (int16, error) {
	refs := make([]ph.Card, len(cards))
	for i, c := range cards {
		r, err := toReference(c)
		if err != nil {
			return 0, err
		}
		refs[i] = r
	}
	switch len(refs) {
	case 5:
		return ph.Eval5((*[5]ph.Card)(refs)), nil
	case 7:
		return ph.Eval7((*[7]ph.Card)(refs)), nil
	}
	best := int16(-1 << 15)
	for skip := range refs {
		var five [5]ph.Card
		n := 0
		for i, r := range refs {
			if i != skip {
				five[n] = r
				n++
			}
		}
		best = max(best, ph.Eval5(&five))
	}
	return best, nil
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

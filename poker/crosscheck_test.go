package poker

import (
	"testing"

	"github.com/lox/holdemroom/internal/randutil"
	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"
)

var phSuits = [NumSuits]ph.Suit{
	Spades:   ph.Spade,
	Hearts:   ph.Heart,
	Clubs:    ph.Club,
	Diamonds: ph.Diamond,
}

func toReference(t *testing.T, five [5]Card) *[5]ph.Card {
	t.Helper()
	var out [5]ph.Card
	for i, c := range five {
		// The reference library numbers ranks 1-13 with the ace at 1.
		pc, err := ph.MakeCard(phSuits[c.Suit()], ph.Rank(c.Rank()+1))
		require.NoError(t, err)
		out[i] = pc
	}
	return &out
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

// TestEvaluatorAgreesWithReference compares pairwise ordering with an
// independent evaluator over random hands.
func TestEvaluatorAgreesWithReference(t *testing.T) {
	t.Parallel()
	deck := NewDeck(randutil.New(31337))
	deal := func() [5]Card {
		if deck.Remaining() < 5 {
			deck.Shuffle()
		}
		cards, err := deck.Deal(5)
		require.NoError(t, err)
		return [5]Card(cards)
	}

	for i := 0; i < 5000; i++ {
		a, b := deal(), deal()
		ours := Compare(Evaluate5(a), Evaluate5(b))
		ref := sign(int(ph.Eval5(toReference(t, a))) - int(ph.Eval5(toReference(t, b))))
		require.Equal(t, ref, ours, "%s vs %s", FormatCards(a[:]), FormatCards(b[:]))
	}
}

package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hole     string
		expected HoleCardCategory
	}{
		{"pocket aces", "As Ah", CategoryPremium},
		{"pocket jacks", "Jh Jd", CategoryPremium},
		{"ace king offsuit", "Ac Kh", CategoryPremium},
		{"king ace reversed", "Kh Ac", CategoryPremium},

		{"pocket tens", "Tc Th", CategoryStrong},
		{"ace queen suited", "As Qs", CategoryStrong},
		{"ace jack offsuit", "Ad Jc", CategoryStrong},

		{"pocket nines", "9c 9h", CategoryMedium},
		{"pocket sevens", "7h 7c", CategoryMedium},
		{"king queen suited", "Ks Qs", CategoryMedium},
		{"queen ten suited", "Qd Td", CategoryMedium},

		{"pocket sixes", "6c 6h", CategoryWeak},
		{"pocket twos", "2c 2h", CategoryWeak},
		{"seven six suited", "7h 6h", CategoryWeak},
		{"five three suited", "5d 3d", CategoryWeak},

		{"seven two offsuit", "7c 2h", CategoryTrash},
		{"jack four offsuit", "Jh 4c", CategoryTrash},
		{"king queen offsuit", "Ks Qd", CategoryTrash},
		{"ace two suited", "As 2s", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards, err := ParseCards(tt.hole)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, CategorizeHoleCards(cards[0], cards[1]))
		})
	}
}

func TestCategorizeHoleCardsUnknown(t *testing.T) {
	t.Parallel()

	ace := NewCard(Ace, Spades)
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(ace, NoCard))
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(ace, ace))
}

package game

import (
	"encoding/json"
	"testing"

	"github.com/lox/holdemroom/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingOrdersBestFirst(t *testing.T) {
	t.Parallel()

	scores := map[int]poker.HandScore{
		0: {Category: poker.OnePair, Primary: 3},
		1: {Category: poker.Flush, Kicker: 100},
		2: {Category: poker.HighCard, Kicker: 5},
		3: {Category: poker.OnePair, Primary: 7},
	}
	scoreOf := func(seat int) poker.HandScore { return scores[seat] }

	r := NewRanking()
	assert.Empty(t, r.Order())
	for seat := 0; seat < 4; seat++ {
		r.Insert(seat, scoreOf)
	}
	assert.Equal(t, []int{1, 3, 0, 2}, r.Order())
}

func TestRankingTiesPlaceNewcomerFirst(t *testing.T) {
	t.Parallel()

	tie := poker.HandScore{Category: poker.Straight, Primary: 40}
	scoreOf := func(seat int) poker.HandScore {
		if seat == 5 {
			return poker.HandScore{Category: poker.HighCard}
		}
		return tie
	}

	r := NewRanking()
	r.Insert(5, scoreOf)
	r.Insert(1, scoreOf)
	r.Insert(3, scoreOf)
	assert.Equal(t, []int{3, 1, 5}, r.Order())
}

func TestPotWinnersReturnsTiedRun(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 100, bankroll: 100},
		seatBet{bet: 100, bankroll: 100},
		seatBet{bet: 100, bankroll: 100},
		seatBet{bet: 100, bankroll: 100, folded: true},
	)
	best := poker.StreetBests{River: poker.HandScore{Category: poker.TwoPair, Primary: 50}}
	s.Players[0].Best = best
	s.Players[1].Best = poker.StreetBests{River: poker.HandScore{Category: poker.OnePair}}
	s.Players[2].Best = best
	s.Players[3].Best = poker.StreetBests{River: poker.HandScore{Category: poker.RoyalFlush}}
	for seat := 0; seat < 4; seat++ {
		s.Ranking.Insert(seat, func(i int) poker.HandScore { return s.Players[i].Best.Overall() })
	}

	assert.Equal(t, []int{3, 2, 0, 1}, s.Ranking.Order())
	assert.Equal(t, []int{2, 0}, s.PotWinners(0))
}

func TestActionParsingAndText(t *testing.T) {
	t.Parallel()

	cases := map[string]ActionKind{
		"fold": ActionFold, "muck": ActionFold,
		"check": ActionCheck, "Reveal": ActionCheck,
		"call": ActionBet, "raise": ActionBet, " allin ": ActionBet,
	}
	for in, want := range cases {
		got, err := ParseActionKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseActionKind("limp")
	assert.Error(t, err)

	data, err := json.Marshal(Bet(300))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"bet","amount":300}`, string(data))

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"raise","amount":50}`), &a))
	assert.Equal(t, Bet(50), a)
	assert.Equal(t, "bet 50", a.String())
	assert.Equal(t, "check", Check().String())
}

func TestStreetText(t *testing.T) {
	t.Parallel()

	for st := StreetInvalid; st <= Showdown; st++ {
		text, err := st.MarshalText()
		require.NoError(t, err)
		var back Street
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, st, back)
	}
	assert.Equal(t, "unknown", Street(9).String())

	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("dancing")))
}

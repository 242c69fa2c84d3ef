package replica

import (
	"encoding/json"
	"testing"

	"github.com/lox/holdemroom/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealtTable(t *testing.T) *game.TestTable {
	t.Helper()
	tt := game.NewTestTable(game.WithBankrolls(500, 2000, 2000))
	tt.Pool.Stack("test", "2c 7d 9h Js 3s").Stack("p0", "As Ad").Stack("p1", "Kh Kc").Stack("p2", "Qh Qc")
	require.NoError(t, tt.BeginRound())
	return tt
}

func TestApplyKeepsNewest(t *testing.T) {
	t.Parallel()

	tt := dealtTable(t)
	r := New()
	assert.False(t, r.Ready())

	older := tt.Snapshot()
	require.True(t, r.Apply(older))
	require.NoError(t, tt.Act(0, game.Bet(500)))
	newer := tt.Snapshot()

	assert.True(t, r.Apply(newer))
	assert.False(t, r.Apply(older), "stale version")
	assert.False(t, r.Apply(newer), "repeat delivery")
	assert.Equal(t, newer.Version, r.Version())
	assert.Equal(t, newer, r.State())
}

func TestReplicaAnswersLikeTheAuthority(t *testing.T) {
	t.Parallel()

	tt := dealtTable(t)
	require.NoError(t, tt.Act(0, game.Bet(500)))
	require.NoError(t, tt.Act(1, game.Bet(400)))
	require.NoError(t, tt.Act(2, game.Bet(300)))

	r := New()
	r.Apply(tt.Snapshot())
	s := tt.State()

	assert.Equal(t, s.PotCount(), r.PotCount())
	for i := 0; i < s.PotCount(); i++ {
		assert.Equal(t, s.Pot(i), r.Pot(i))
		assert.Equal(t, s.PotWinners(i), r.PotWinners(i))
	}
	assert.Equal(t, []int{0}, r.PotWinners(0))
	assert.Equal(t, "Pair", r.BestHandName(0))
	p, ok := r.Player(1)
	require.True(t, ok)
	assert.Equal(t, 1500, p.Bankroll)
	_, ok = r.Player(11)
	assert.False(t, ok)
}

func TestReplicaIsIsolatedFromSource(t *testing.T) {
	t.Parallel()

	tt := dealtTable(t)
	require.NoError(t, tt.Act(0, game.Bet(500)))
	require.NoError(t, tt.Act(1, game.Bet(400)))
	require.NoError(t, tt.Act(2, game.Bet(300)))
	snap := tt.Snapshot()

	r := New()
	r.Apply(snap)
	snap.Pots[0].Limit = 1
	assert.Equal(t, 1500, r.Pot(0))
}

func TestPublicViewRedactsHiddenCards(t *testing.T) {
	t.Parallel()

	tt := dealtTable(t)
	r := New()
	r.Apply(tt.Snapshot())

	v := r.Public()
	assert.Equal(t, game.PhaseBetting, v.Phase)
	assert.Empty(t, v.Board, "nothing visible preflop")
	require.Len(t, v.Seats, game.MaxSeats)
	for _, seat := range v.Seats {
		assert.Empty(t, seat.Hole)
		assert.Empty(t, seat.BestHand)
	}
	require.NotNil(t, v.ToAct)
	assert.Equal(t, 0, v.ToAct.Seat)
	assert.Equal(t, 200, v.ToAct.CallAmount)
	assert.Equal(t, 500, v.ToAct.MaximumBet)
	require.Len(t, v.Pots, 1)
	assert.Equal(t, 300, v.Pots[0].Amount)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"As"`)
	assert.NotContains(t, string(data), `"ranking"`)

	h, ok := r.Hand(0)
	require.True(t, ok)
	assert.Equal(t, "As", h.Hole[0].String())
	_, ok = r.Hand(5)
	assert.False(t, ok)
}

func TestPublicViewShowsRevealedHands(t *testing.T) {
	t.Parallel()

	tt := dealtTable(t)
	require.NoError(t, tt.Act(0, game.Bet(500)))
	require.NoError(t, tt.Act(1, game.Bet(400)))
	require.NoError(t, tt.Act(2, game.Bet(300)))
	for _, seat := range []int{1, 2, 1, 2, 1, 2, 1, 2} {
		require.NoError(t, tt.Act(seat, game.Check()))
	}
	require.Equal(t, game.PhaseRoundEnded, tt.State().Phase)

	r := New()
	r.Apply(tt.Snapshot())
	v := r.Public()

	require.Len(t, v.Pots, 2)
	assert.Equal(t, []int{0}, v.Pots[0].Limiters)
	assert.Nil(t, v.ToAct)
	require.Len(t, v.Results, 1, "the empty open pot pays nothing")
	for seat := 0; seat < 3; seat++ {
		assert.Len(t, v.Seats[seat].Hole, 2, "seat %d", seat)
		assert.Equal(t, "Pair", v.Seats[seat].BestHand)
	}
	assert.Len(t, v.Board, 5)
}

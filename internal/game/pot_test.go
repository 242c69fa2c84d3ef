package game

import (
	"testing"

	"github.com/lox/holdemroom/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatBet struct {
	bet      int
	bankroll int
	folded   bool
}

// streetState seats one player per entry with the given preflop contributions.
func streetState(bets ...seatBet) *State {
	s := NewState("t", MaxSeats, 5, 10)
	s.Street = Preflop
	s.Phase = PhaseBetting
	for i, b := range bets {
		p := &s.Players[i]
		p.OwnerID = OwnerName(i)
		p.Bankroll = b.bankroll
		p.Bets[Preflop] = b.bet
		p.LastBetStreet = Preflop
		p.Status = StatusBetted
		if b.folded {
			p.Status = StatusFolded
		}
	}
	return &s
}

func potTotal(s *State) int {
	total := 0
	for i := 0; i < s.PotCount(); i++ {
		total += s.Pot(i)
	}
	return total
}

func TestAllocateStreetPotsLayersAllIns(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 100, bankroll: 0},
		seatBet{bet: 300, bankroll: 200},
		seatBet{bet: 300, bankroll: 0},
		seatBet{bet: 300, bankroll: 700},
	)
	s.Pots = allocateStreetPots(s)

	require.Len(t, s.Pots, 2)
	assert.Equal(t, Pot{Limiter: 0, Limiters: 1 << 0, Limit: 100, Count: 4}, s.Pots[0])
	assert.Equal(t, Pot{Limiter: 2, Limiters: 1 << 2, Limit: 200, Count: 3}, s.Pots[1])
	assert.Equal(t, 400, s.Pot(0))
	assert.Equal(t, 600, s.Pot(1))
	assert.Equal(t, 0, s.Pot(2), "open pot")
	assert.Equal(t, s.SumOfAllBets(), potTotal(s))

	assert.True(t, s.Participates(0, 0))
	assert.False(t, s.Participates(0, 1))
	assert.True(t, s.Participates(2, 1))
	assert.False(t, s.Participates(2, 2))
	assert.True(t, s.Participates(3, 2))
}

func TestAllocateStreetPotsSharesCoLimiters(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 100, bankroll: 0},
		seatBet{bet: 100, bankroll: 0},
		seatBet{bet: 300, bankroll: 500},
		seatBet{bet: 300, bankroll: 500},
	)
	s.Pots = allocateStreetPots(s)

	require.Len(t, s.Pots, 1)
	assert.Equal(t, []int{0, 1}, s.Pots[0].LimiterSeats())
	assert.Equal(t, 400, s.Pot(0))
	assert.Equal(t, 400, s.Pot(1))
	assert.False(t, s.Participates(1, 1), "a co-limiter cannot win the pot above its level")
}

func TestAllocateStreetPotsCreditsDeadMoney(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 100, bankroll: 0},
		seatBet{bet: 300, bankroll: 100},
		seatBet{bet: 300, bankroll: 100},
		seatBet{bet: 150, bankroll: 800, folded: true},
	)
	s.Pots = allocateStreetPots(s)

	require.Len(t, s.Pots, 1)
	assert.Equal(t, 100, s.Pots[0].Carried)
	assert.Equal(t, 400, s.Pot(0))
	assert.Equal(t, 450, s.Pot(1))
	assert.False(t, s.Participates(3, 0), "folded seats win nothing")
}

func TestAllocateStreetPotsCarriesEarlierStreets(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 200, bankroll: 50},
		seatBet{bet: 200, bankroll: 800},
		seatBet{bet: 200, bankroll: 800},
	)
	s.Forfeited[Preflop] = 100
	s.Street = Flop
	s.Players[0].Bets[Flop] = 50
	s.Players[0].Bankroll = 0
	s.Players[0].LastBetStreet = Flop
	s.Players[1].Bets[Flop] = 300
	s.Players[1].LastBetStreet = Flop
	s.Players[2].Bets[Flop] = 300
	s.Players[2].LastBetStreet = Flop

	s.Pots = allocateStreetPots(s)
	require.Len(t, s.Pots, 1)
	assert.Equal(t, 700, s.Pots[0].Carried)
	assert.Equal(t, 850, s.Pot(0))
	assert.Equal(t, 500, s.Pot(1))
	assert.Equal(t, s.SumOfAllBets(), potTotal(s))
}

func TestAllocateStreetPotsSkipsUncalledExcess(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 300, bankroll: 0},
		seatBet{bet: 100, bankroll: 0},
	)
	s.Pots = allocateStreetPots(s)

	require.Len(t, s.Pots, 1, "no single-participant pot")
	assert.Equal(t, 200, s.Pot(0))
	assert.Equal(t, 200, s.Pot(1))
	assert.True(t, s.Participates(0, 1))
}

func TestAllocateStreetPotsNoAllIn(t *testing.T) {
	t.Parallel()

	s := streetState(
		seatBet{bet: 200, bankroll: 800},
		seatBet{bet: 200, bankroll: 800},
	)
	assert.Nil(t, allocateStreetPots(s))
	assert.Equal(t, 1, s.PotCount())
	assert.Equal(t, 400, s.Pot(0))
}

func TestPotsConserveChips(t *testing.T) {
	t.Parallel()

	rng := randutil.New(7)
	for iter := 0; iter < 500; iter++ {
		n := 2 + rng.IntN(MaxSeats-1)
		top := 100 + rng.IntN(2000)
		bets := make([]seatBet, n)
		for i := range bets {
			switch rng.IntN(3) {
			case 0:
				bets[i] = seatBet{bet: 1 + rng.IntN(top), bankroll: 0}
			case 1:
				bets[i] = seatBet{bet: rng.IntN(top), bankroll: 1 + rng.IntN(500), folded: true}
			default:
				bets[i] = seatBet{bet: top, bankroll: 1 + rng.IntN(500)}
			}
		}
		s := streetState(bets...)
		s.Pots = allocateStreetPots(s)

		require.Equal(t, s.SumOfAllBets(), potTotal(s), "iteration %d: %+v", iter, bets)
		for i, p := range s.Pots {
			assert.GreaterOrEqual(t, p.Count, 2, "iteration %d pot %d", iter, i)
			assert.Positive(t, p.Payable(), "iteration %d pot %d", iter, i)
		}
	}
}

func TestPotIndexOutOfRange(t *testing.T) {
	t.Parallel()

	s := streetState(seatBet{bet: 10, bankroll: 10}, seatBet{bet: 10, bankroll: 10})
	assert.Equal(t, 0, s.Pot(-1))
	assert.Equal(t, 0, s.Pot(5))
	assert.False(t, s.Participates(0, 3))
	assert.False(t, s.Participates(9, 0))
}

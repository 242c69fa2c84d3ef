package game

import (
	"math/bits"
	"sort"

	"github.com/lox/holdemroom/poker"
)

// Pot is a capped side pot. Every participant contributed Limit chips at this
// level; Carried holds chips from earlier streets and from folded or departed
// seats that also belong to it. The open (uncapped) pot is implicit and always last.
type Pot struct {
	Limiter  int   `json:"limiter"`
	Limiters uint8 `json:"limiters"`
	Limit    int   `json:"limit"`
	Count    int   `json:"count"`
	Carried  int   `json:"carried,omitempty"`
}

// Payable is the total this pot pays out.
func (p Pot) Payable() int { return p.Limit*p.Count + p.Carried }

// LimitedBy reports whether seat went all-in at this pot's level.
func (p Pot) LimitedBy(seat int) bool { return p.Limiters&(1<<uint(seat)) != 0 }

// LimiterSeats lists the seats capped at this pot's level.
func (p Pot) LimiterSeats() []int {
	seats := make([]int, 0, bits.OnesCount8(p.Limiters))
	for seat := 0; seat < MaxSeats; seat++ {
		if p.LimitedBy(seat) {
			seats = append(seats, seat)
		}
	}
	return seats
}

type streetBet struct {
	seat     int
	bet      int
	bankroll int
}

// allocateStreetPots splits the current street's contributions into capped pots,
// one per all-in level. It returns nil when nobody in the street is all-in.
func allocateStreetPots(s *State) []Pot {
	st := s.Street
	if st < Preflop || st > River {
		return nil
	}

	var inStreet []streetBet
	dead := append([]int(nil), s.Departed...)
	allIn := false
	for i := range s.Players {
		p := &s.Players[i]
		if !p.InRound() {
			continue
		}
		if p.Status == StatusFolded {
			if p.Bets[st] > 0 {
				dead = append(dead, p.Bets[st])
			}
			continue
		}
		if !p.HasMoney() && p.LastBetStreet != st {
			continue
		}
		inStreet = append(inStreet, streetBet{seat: i, bet: p.Bets[st], bankroll: p.Bankroll})
		if !p.HasMoney() && p.Bets[st] > 0 {
			allIn = true
		}
	}
	if !allIn {
		return nil
	}

	// Equal contributions sort the emptier bankroll first; seat order breaks the rest.
	sort.SliceStable(inStreet, func(a, b int) bool {
		if inStreet[a].bet != inStreet[b].bet {
			return inStreet[a].bet < inStreet[b].bet
		}
		return inStreet[a].bankroll < inStreet[b].bankroll
	})

	carried := s.openPotBefore(st)
	var pots []Pot
	level := 0
	remaining := len(inStreet)
	for _, e := range inStreet {
		if e.bankroll > 0 {
			break
		}
		if e.bet == level {
			// all-in at the same level as the pot just created
			if n := len(pots); n > 0 {
				pots[n-1].Limiters |= 1 << uint(e.seat)
			}
			remaining--
			continue
		}
		if remaining <= 1 {
			// uncalled excess stays in the open pot
			break
		}
		pot := Pot{
			Limiter:  e.seat,
			Limiters: 1 << uint(e.seat),
			Limit:    e.bet - level,
			Count:    remaining,
		}
		for _, d := range dead {
			pot.Carried += min(max(d-level, 0), e.bet-level)
		}
		if len(pots) == 0 {
			pot.Carried += carried
		}
		pots = append(pots, pot)
		level = e.bet
		remaining--
	}
	return pots
}

// openPotBefore is the money from streets before st not already in a capped pot.
func (s *State) openPotBefore(st Street) int {
	total := 0
	for i := range s.Players {
		for k := Preflop; k < st; k++ {
			total += s.Players[i].Bets[k]
		}
	}
	for k := Preflop; k < st; k++ {
		total += s.Forfeited[k]
	}
	for _, p := range s.Pots {
		total -= p.Payable()
	}
	return max(total, 0)
}

// SumOfAllBets is every chip wagered this round, including forfeited bets.
func (s *State) SumOfAllBets() int {
	total := 0
	for i := range s.Players {
		total += s.Players[i].TotalBet()
	}
	for _, f := range s.Forfeited {
		total += f
	}
	return total
}

// PotCount is the number of capped pots plus the open pot.
func (s *State) PotCount() int { return len(s.Pots) + 1 }

// Pot returns the payable amount of pot index. The last index is the open pot.
func (s *State) Pot(index int) int {
	switch {
	case index < 0 || index > len(s.Pots):
		return 0
	case index < len(s.Pots):
		return s.Pots[index].Payable()
	}
	open := s.SumOfAllBets()
	for _, p := range s.Pots {
		open -= p.Payable()
	}
	return max(open, 0)
}

// Participates reports whether seat can win pot index: it must be live and
// must not have been capped by an earlier pot.
func (s *State) Participates(seat, index int) bool {
	if !s.validSeat(seat) || index < 0 || index > len(s.Pots) {
		return false
	}
	if !s.Players[seat].Live() {
		return false
	}
	for j := 0; j < index; j++ {
		if s.Pots[j].LimitedBy(seat) {
			return false
		}
	}
	return true
}

// PotWinners returns the participants of pot index tied for the best hand,
// best-ranked first.
func (s *State) PotWinners(index int) []int {
	var winners []int
	var best poker.HandScore
	for _, seat := range s.Ranking.Order() {
		if !s.Participates(seat, index) {
			continue
		}
		score := s.Players[seat].Best.Overall()
		if winners == nil {
			winners = []int{seat}
			best = score
			continue
		}
		if poker.Compare(score, best) != 0 {
			break
		}
		winners = append(winners, seat)
	}
	return winners
}

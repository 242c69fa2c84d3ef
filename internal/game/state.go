package game

import (
	"fmt"

	"github.com/lox/holdemroom/poker"
)

// Phase is the table's lifecycle position around the street machine.
type Phase uint8

const (
	// PhaseIdle: no game running; players may sit and leave freely.
	PhaseIdle Phase = iota
	// PhaseWaiting: between rounds, waiting to deal.
	PhaseWaiting
	// PhaseBetting: a street is in progress and Current must act.
	PhaseBetting
	// PhaseRoundEnded: pots are settled and results are on display.
	PhaseRoundEnded
	// PhaseStalled: an invariant was violated; only Reset leaves this phase.
	PhaseStalled
)

var phaseNames = [...]string{"idle", "waiting", "betting", "round_ended", "stalled"}

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// PotResult records how one pot was paid.
type PotResult struct {
	Pot     int   `json:"pot"`
	Amount  int   `json:"amount"`
	Winners []int `json:"winners"`
	Payouts []int `json:"payouts"`
}

// State is the complete replicated table. The authority is its only writer;
// replicas hold copies and answer queries from them.
type State struct {
	TableID     string                     `json:"table_id"`
	Version     uint64                     `json:"version"`
	Seats       int                        `json:"seats"`
	SmallBlind  int                        `json:"small_blind"`
	BigBlind    int                        `json:"big_blind"`
	Round       int                        `json:"round"`
	Phase       Phase                      `json:"phase"`
	Street      Street                     `json:"street"`
	Dealer      int                        `json:"dealer"`
	Current     int                        `json:"current"`
	LastBettor  int                        `json:"last_bettor"`
	Board       [5]poker.Card              `json:"board"`
	Ranking     Ranking                    `json:"ranking"`
	Pots        []Pot                      `json:"pots,omitempty"`
	Forfeited   [NumStreets]int            `json:"forfeited"`
	Departed    []int                      `json:"departed,omitempty"` // this street's bets of seats that left
	Players     [MaxSeats]PlayerRoundState `json:"players"`
	DefaultWin  bool                       `json:"default_win,omitempty"`
	Results     []PotResult                `json:"results,omitempty"`
	LastWinners []int                      `json:"last_winners,omitempty"`
	StallReason string                     `json:"stall_reason,omitempty"`
}

// NewState returns an empty idle table.
func NewState(tableID string, seats, smallBlind, bigBlind int) State {
	s := State{
		TableID:    tableID,
		Seats:      seats,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
	}
	s.clearRound()
	s.Dealer = NoSeat
	for i := range s.Players {
		s.Players[i] = emptySeat(i)
	}
	return s
}

func (s *State) clearRound() {
	s.Street = StreetInvalid
	s.Current = NoSeat
	s.LastBettor = NoSeat
	s.Board = [5]poker.Card{poker.NoCard, poker.NoCard, poker.NoCard, poker.NoCard, poker.NoCard}
	s.Ranking = NewRanking()
	s.Pots = nil
	s.Forfeited = [NumStreets]int{}
	s.Departed = nil
	s.DefaultWin = false
	s.Results = nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	out := s
	if s.Pots != nil {
		out.Pots = append([]Pot(nil), s.Pots...)
	}
	if s.Departed != nil {
		out.Departed = append([]int(nil), s.Departed...)
	}
	if s.Results != nil {
		out.Results = make([]PotResult, len(s.Results))
		for i, r := range s.Results {
			r.Winners = append([]int(nil), r.Winners...)
			r.Payouts = append([]int(nil), r.Payouts...)
			out.Results[i] = r
		}
	}
	if s.LastWinners != nil {
		out.LastWinners = append([]int(nil), s.LastWinners...)
	}
	return out
}

func (s *State) validSeat(seat int) bool { return seat >= 0 && seat < s.Seats && seat < MaxSeats }

// Player returns a copy of the seat, or false for an out-of-range seat.
func (s *State) Player(seat int) (PlayerRoundState, bool) {
	if !s.validSeat(seat) {
		return PlayerRoundState{}, false
	}
	return s.Players[seat], true
}

// NumPlayersInRound counts seats dealt into the current round.
func (s *State) NumPlayersInRound() int {
	n := 0
	for i := 0; i < s.Seats; i++ {
		if s.Players[i].InRound() {
			n++
		}
	}
	return n
}

// NumLive counts seats in the round that have not folded.
func (s *State) NumLive() int {
	n := 0
	for i := 0; i < s.Seats; i++ {
		if s.Players[i].Live() {
			n++
		}
	}
	return n
}

// NumFunded counts seated players with chips, late joiners included.
func (s *State) NumFunded() int {
	n := 0
	for i := 0; i < s.Seats; i++ {
		if p := &s.Players[i]; p.HasOwner() && p.HasMoney() {
			n++
		}
	}
	return n
}

// AllButOneFolded reports whether at most one seat is still contesting the round.
func (s *State) AllButOneFolded() bool { return s.NumLive() <= 1 }

// OneOrLessActionable reports whether at most one live seat still has chips to act with.
func (s *State) OneOrLessActionable() bool {
	n := 0
	for i := 0; i < s.Seats; i++ {
		if p := &s.Players[i]; p.Live() && p.HasMoney() {
			n++
		}
	}
	return n <= 1
}

// AllChecked reports whether every live seat with chips has checked this street.
func (s *State) AllChecked() bool {
	for i := 0; i < s.Seats; i++ {
		p := &s.Players[i]
		if !p.Live() || !p.HasMoney() {
			continue
		}
		if p.Status != StatusChecked {
			return false
		}
	}
	return true
}

// ReadyToAdvance reports whether the current street's action is complete:
// everyone checked, or everyone acted and all contributions match.
func (s *State) ReadyToAdvance() bool {
	if s.Street < Preflop {
		return false
	}
	greatest := s.CurGreatestBet()
	allChecked, allActed, allEqual := true, true, true
	for i := 0; i < s.Seats; i++ {
		p := &s.Players[i]
		if !p.Live() {
			continue
		}
		if !p.HasMoney() && s.Street != Showdown {
			continue
		}
		if p.Status != StatusChecked {
			allChecked = false
		}
		acted := p.Status != StatusNone
		if s.Street != Preflop && s.Street != Showdown {
			acted = p.Status == StatusBetted
		}
		if !acted {
			allActed = false
		}
		if p.Bets[s.Street] != greatest {
			allEqual = false
		}
	}
	return allChecked || (allActed && allEqual)
}

// canAct reports whether seat takes turns on the current street. Seats without
// chips still act at showdown.
func (s *State) canAct(seat int) bool {
	p := &s.Players[seat]
	if !p.Live() {
		return false
	}
	return s.Street == Showdown || p.HasMoney()
}

// ForcedReveal reports whether seat must show its hand at showdown.
func (s *State) ForcedReveal(seat int) bool {
	if s.Street != Showdown || !s.validSeat(seat) {
		return false
	}
	return !s.Players[seat].HasMoney() || s.OneOrLessActionable()
}

// BestHandName names the best hand seat can make with the board dealt so far,
// or "none" before the flop or for a seat without cards.
func (s *State) BestHandName(seat int) string {
	return s.BestHand(seat).Category.String()
}

// BestHand is the score behind BestHandName.
func (s *State) BestHand(seat int) poker.HandScore {
	if !s.validSeat(seat) {
		return poker.HandScore{}
	}
	p := &s.Players[seat]
	if !p.InRound() || !p.Dealt() {
		return poker.HandScore{}
	}
	stage, ok := s.Street.stage()
	if !ok {
		return poker.HandScore{}
	}
	return p.Best.Through(stage)
}

// VisibleBoard returns the community cards revealed on the current street.
func (s *State) VisibleBoard() []poker.Card {
	n := 0
	switch {
	case s.Street >= River:
		n = 5
	case s.Street == Turn:
		n = 4
	case s.Street == Flop:
		n = 3
	}
	out := make([]poker.Card, 0, n)
	for _, c := range s.Board[:n] {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// nextTo returns the next seat after seat that is still live, or NoSeat.
func (s *State) nextTo(seat int) int {
	for i := 1; i <= s.Seats; i++ {
		idx := (seat + i) % s.Seats
		if s.Players[idx].Live() {
			return idx
		}
	}
	return NoSeat
}

// previousTo returns the first live seat before seat, or NoSeat.
func (s *State) previousTo(seat int) int {
	for i := 1; i <= s.Seats; i++ {
		idx := ((seat-i)%s.Seats + s.Seats) % s.Seats
		if s.Players[idx].Live() {
			return idx
		}
	}
	return NoSeat
}

// dealOrder is seat's position counting from the seat after the dealer.
func (s *State) dealOrder(seat int) int {
	return ((seat-s.Dealer-1)%s.Seats + s.Seats) % s.Seats
}

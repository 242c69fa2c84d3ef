package replica

import (
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/poker"
)

// View is the public picture of a table: unrevealed hole cards, the undealt
// board and the hand ranking are left out.
type View struct {
	TableID     string           `json:"table_id"`
	Version     uint64           `json:"version"`
	Phase       game.Phase       `json:"phase"`
	Street      game.Street      `json:"street"`
	Round       int              `json:"round"`
	SmallBlind  int              `json:"small_blind"`
	BigBlind    int              `json:"big_blind"`
	Dealer      int              `json:"dealer"`
	Current     int              `json:"current"`
	Board       []poker.Card     `json:"board"`
	Pots        []PotView        `json:"pots"`
	Seats       []SeatView       `json:"seats"`
	ToAct       *ToActView       `json:"to_act,omitempty"`
	Results     []game.PotResult `json:"results,omitempty"`
	DefaultWin  bool             `json:"default_win,omitempty"`
	LastWinners []int            `json:"last_winners,omitempty"`
	StallReason string           `json:"stall_reason,omitempty"`
}

// PotView is one pot. Limiters are the seats capped at this pot's level.
type PotView struct {
	Index    int   `json:"index"`
	Amount   int   `json:"amount"`
	Limiters []int `json:"limiters,omitempty"`
}

// SeatView is one seat as everyone sees it.
type SeatView struct {
	Seat       int          `json:"seat"`
	OwnerID    string       `json:"owner_id,omitempty"`
	Bankroll   int          `json:"bankroll"`
	StreetBet  int          `json:"street_bet"`
	TotalBet   int          `json:"total_bet"`
	Status     game.Status  `json:"status"`
	InRound    bool         `json:"in_round"`
	LateJoiner bool         `json:"late_joiner,omitempty"`
	Hole       []poker.Card `json:"hole,omitempty"`
	BestHand   string       `json:"best_hand,omitempty"`
}

// ToActView tells the seat to act what it may do.
type ToActView struct {
	Seat       int  `json:"seat"`
	CanCheck   bool `json:"can_check"`
	CallAmount int  `json:"call_amount"`
	MinimumBet int  `json:"minimum_bet"`
	MaximumBet int  `json:"maximum_bet"`
}

// NewView redacts s.
func NewView(s *game.State) View {
	v := View{
		TableID:     s.TableID,
		Version:     s.Version,
		Phase:       s.Phase,
		Street:      s.Street,
		Round:       s.Round,
		SmallBlind:  s.SmallBlind,
		BigBlind:    s.BigBlind,
		Dealer:      s.Dealer,
		Current:     s.Current,
		Board:       s.VisibleBoard(),
		Results:     s.Results,
		DefaultWin:  s.DefaultWin,
		LastWinners: s.LastWinners,
		StallReason: s.StallReason,
	}

	inRound := s.Phase == game.PhaseBetting || s.Phase == game.PhaseRoundEnded
	if inRound {
		for i := 0; i < s.PotCount(); i++ {
			pv := PotView{Index: i, Amount: s.Pot(i)}
			if i < len(s.Pots) {
				pv.Limiters = s.Pots[i].LimiterSeats()
			}
			v.Pots = append(v.Pots, pv)
		}
	}

	for seat := 0; seat < s.Seats; seat++ {
		p := s.Players[seat]
		sv := SeatView{
			Seat:       seat,
			OwnerID:    p.OwnerID,
			Bankroll:   p.Bankroll,
			TotalBet:   p.TotalBet(),
			Status:     p.Status,
			InRound:    inRound && p.InRound(),
			LateJoiner: p.LateJoiner,
		}
		if s.Street >= game.Preflop && s.Street <= game.Showdown {
			sv.StreetBet = p.Bets[s.Street]
		}
		if p.Revealed && p.Dealt() {
			sv.Hole = []poker.Card{p.Hole[0], p.Hole[1]}
			sv.BestHand = s.BestHandName(seat)
		}
		v.Seats = append(v.Seats, sv)
	}

	if s.Phase == game.PhaseBetting && s.Current != game.NoSeat {
		v.ToAct = &ToActView{
			Seat:       s.Current,
			CanCheck:   s.CanCheck(s.Current) || s.Street == game.Showdown,
			CallAmount: s.CallAmount(s.Current),
			MinimumBet: s.MinimumBet(),
			MaximumBet: s.MaximumBet(s.Current),
		}
	}
	return v
}

// HandView is what the seat's owner sees of their own hand.
type HandView struct {
	Seat     int          `json:"seat"`
	Hole     []poker.Card `json:"hole,omitempty"`
	BestHand string       `json:"best_hand"`
}

// Hand returns seat's private view. ok is false for an invalid or empty seat.
func (r *Replica) Hand(seat int) (h HandView, ok bool) {
	r.read(func(s *game.State) {
		p, valid := s.Player(seat)
		if !valid || !p.HasOwner() {
			return
		}
		ok = true
		h = HandView{Seat: seat, BestHand: s.BestHandName(seat)}
		if p.InRound() && p.Dealt() && s.Phase != game.PhaseIdle && s.Phase != game.PhaseWaiting {
			h.Hole = []poker.Card{p.Hole[0], p.Hole[1]}
		}
	})
	return h, ok
}

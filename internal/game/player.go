package game

import "github.com/lox/holdemroom/poker"

// MaxSeats is the largest table the room supports.
const MaxSeats = 8

// NoSeat marks an absent seat reference.
const NoSeat = -1

// PlayerRoundState is everything the table knows about one seat. It is part
// of the replicated State, so nothing here is derived lazily.
type PlayerRoundState struct {
	Seat          int               `json:"seat"`
	OwnerID       string            `json:"owner_id,omitempty"`
	Bankroll      int               `json:"bankroll"`
	Bets          [NumStreets]int   `json:"bets"`
	LastBetStreet Street            `json:"last_bet_street"`
	Status        Status            `json:"status"`
	LateJoiner    bool              `json:"late_joiner,omitempty"`
	Hole          [2]poker.Card     `json:"hole"`
	Best          poker.StreetBests `json:"best"`
	Revealed      bool              `json:"revealed,omitempty"`
}

func emptySeat(seat int) PlayerRoundState {
	return PlayerRoundState{
		Seat:          seat,
		LastBetStreet: StreetInvalid,
		Hole:          [2]poker.Card{poker.NoCard, poker.NoCard},
	}
}

// HasOwner reports whether someone sits in the seat.
func (p *PlayerRoundState) HasOwner() bool { return p.OwnerID != "" }

// HasMoney reports whether the seat can still put chips in.
func (p *PlayerRoundState) HasMoney() bool { return p.Bankroll > 0 }

// InRound reports whether the seat was dealt into the current round.
func (p *PlayerRoundState) InRound() bool { return p.HasOwner() && !p.LateJoiner }

// Live reports whether the seat is in the round and has not folded.
func (p *PlayerRoundState) Live() bool { return p.InRound() && p.Status != StatusFolded }

// Dealt reports whether the seat holds two hole cards.
func (p *PlayerRoundState) Dealt() bool { return p.Hole[0].Valid() && p.Hole[1].Valid() }

// TotalBet is the seat's contribution across all streets of the round.
func (p *PlayerRoundState) TotalBet() int {
	total := 0
	for _, b := range p.Bets {
		total += b
	}
	return total
}

// clearRound drops per-round data while keeping the seat's owner and bankroll.
func (p *PlayerRoundState) clearRound() {
	p.Bets = [NumStreets]int{}
	p.LastBetStreet = StreetInvalid
	p.Status = StatusNone
	p.Hole = [2]poker.Card{poker.NoCard, poker.NoCard}
	p.Best = poker.StreetBests{}
	p.Revealed = false
}

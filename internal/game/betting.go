package game

import (
	"fmt"
	"strings"

	"github.com/lox/holdemroom/poker"
)

// Street represents the betting round
type Street int8

const (
	StreetInvalid Street = iota - 1
	Preflop
	Flop
	Turn
	River
	Showdown
)

// NumStreets is the number of per-street bet slots a player carries.
const NumStreets = 5

var streetNames = [...]string{"invalid", "preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < StreetInvalid || s > Showdown {
		return "unknown"
	}
	return streetNames[s+1]
}

func (s Street) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Street) UnmarshalText(text []byte) error {
	for i, name := range streetNames {
		if name == string(text) {
			*s = Street(i - 1)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", text)
}

// stage maps a dealt street onto the evaluator's stage. ok is false before the flop.
func (s Street) stage() (poker.Stage, bool) {
	switch s {
	case Flop:
		return poker.StageFlop, true
	case Turn:
		return poker.StageTurn, true
	case River, Showdown:
		return poker.StageRiver, true
	}
	return 0, false
}

// Status is a seat's action state within the current street.
type Status uint8

const (
	StatusNone Status = iota
	StatusChecked
	StatusBetted
	StatusFolded
)

var statusNames = [...]string{"none", "checked", "betted", "folded"}

func (s Status) String() string {
	if int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// ActionKind is the only external input to the state machine.
type ActionKind uint8

const (
	ActionFold ActionKind = iota
	ActionCheck
	ActionBet
)

var actionNames = [...]string{"fold", "check", "bet"}

func (a ActionKind) String() string {
	if int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

func (a ActionKind) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ActionKind) UnmarshalText(text []byte) error {
	kind, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*a = kind
	return nil
}

// ParseActionKind accepts the action names plus the common aliases
// "call", "raise" and "allin" (all bets) and "reveal"/"muck" at showdown.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "muck":
		return ActionFold, nil
	case "check", "reveal":
		return ActionCheck, nil
	case "bet", "call", "raise", "allin", "all-in":
		return ActionBet, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a player decision. Amount is the number of additional chips for a bet.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

func Fold() Action { return Action{Kind: ActionFold} }
func Check() Action { return Action{Kind: ActionCheck} }
func Bet(amount int) Action { return Action{Kind: ActionBet, Amount: amount} }

func (a Action) String() string {
	if a.Kind == ActionBet {
		return fmt.Sprintf("bet %d", a.Amount)
	}
	return a.Kind.String()
}

// CurGreatestBet is the largest contribution any seat in the round has made this street.
func (s *State) CurGreatestBet() int {
	if s.Street < Preflop {
		return 0
	}
	greatest := 0
	for i := range s.Players {
		p := &s.Players[i]
		if p.InRound() && p.Bets[s.Street] > greatest {
			greatest = p.Bets[s.Street]
		}
	}
	return greatest
}

// CanCheck reports whether seat owes nothing this street.
func (s *State) CanCheck(seat int) bool {
	if !s.validSeat(seat) || s.Street < Preflop {
		return false
	}
	greatest := s.CurGreatestBet()
	return greatest == 0 || s.Players[seat].Bets[s.Street] == greatest
}

// CallAmount is the number of chips seat must add to match the greatest bet,
// limited by its bankroll.
func (s *State) CallAmount(seat int) int {
	if !s.validSeat(seat) || s.Street < Preflop {
		return 0
	}
	p := &s.Players[seat]
	owed := s.CurGreatestBet() - p.Bets[s.Street]
	if owed <= 0 {
		return 0
	}
	return min(owed, p.Bankroll)
}

// MinimumBet is the smallest street total a bet or raise must reach: the big
// blind when nobody has bet, otherwise twice the greatest bet.
func (s *State) MinimumBet() int {
	greatest := s.CurGreatestBet()
	if greatest == 0 {
		return s.BigBlind
	}
	return greatest * 2
}

// MaximumBet is the most seat may add this street. A seat cannot put in more
// than the richest live opponent could match.
func (s *State) MaximumBet(seat int) int {
	if !s.validSeat(seat) || s.Street < Preflop {
		return 0
	}
	p := &s.Players[seat]
	myCap := p.Bankroll + p.Bets[s.Street]
	oppCap := 0
	for i := range s.Players {
		o := &s.Players[i]
		if i == seat || !o.Live() {
			continue
		}
		oppCap = max(oppCap, o.Bankroll+o.Bets[s.Street])
	}
	if oppCap >= myCap {
		return p.Bankroll
	}
	return min(p.Bankroll, max(oppCap-p.Bets[s.Street], s.CallAmount(seat)))
}

// validateBet checks a bet of amount additional chips from seat.
func (s *State) validateBet(seat, amount int) error {
	p := &s.Players[seat]
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive", ErrBetTooSmall)
	}
	maxBet := s.MaximumBet(seat)
	if amount > maxBet {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrBetTooLarge, amount, maxBet)
	}
	call := s.CallAmount(seat)
	switch {
	case call > 0 && amount == call:
		return nil
	case p.Bets[s.Street]+amount >= s.MinimumBet():
		return nil
	case amount == maxBet:
		// all-in, or the largest amount the table can match
		return nil
	}
	return fmt.Errorf("%w: %d is below the minimum bet of %d (call %d)", ErrBetTooSmall, amount, s.MinimumBet()-p.Bets[s.Street], call)
}

package game

import "errors"

// Illegal actions and lifecycle errors. None of them leave a partial mutation behind.
var (
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrSeatTaken         = errors.New("seat taken")
	ErrSeatEmpty         = errors.New("seat empty")
	ErrInvalidOwner      = errors.New("invalid owner")
	ErrInvalidBankroll   = errors.New("invalid bankroll")
	ErrGameInProgress    = errors.New("game in progress")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrWrongPhase        = errors.New("wrong phase")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrIllegalAction     = errors.New("illegal action")
	ErrBetTooSmall       = errors.New("bet too small")
	ErrBetTooLarge       = errors.New("bet too large")
	ErrMustReveal        = errors.New("hand must be revealed")
	ErrTokensOutstanding = errors.New("card tokens outstanding")
	ErrMalformedDeal     = errors.New("malformed deal")
	ErrStalled           = errors.New("table stalled")
)

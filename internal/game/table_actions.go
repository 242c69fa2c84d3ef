package game

import "fmt"

// Act applies seat's action. An illegal action returns an error and leaves
// the state untouched.
func (t *Table) Act(seat int, action Action) error {
	return t.act(seat, action, false)
}

// TimeoutAction is what the table does for a seat that let its clock run
// out: check (reveal at showdown) when that is free, otherwise fold.
func (t *Table) TimeoutAction(seat int) Action {
	s := &t.state
	if s.Street == Showdown || s.CanCheck(seat) {
		return Check()
	}
	return Fold()
}

// ActOnTimeout applies TimeoutAction for the current seat.
func (t *Table) ActOnTimeout() error {
	seat := t.state.Current
	if t.state.Phase != PhaseBetting || seat == NoSeat {
		return fmt.Errorf("%w: nobody to time out", ErrWrongPhase)
	}
	return t.act(seat, t.TimeoutAction(seat), true)
}

func (t *Table) act(seat int, action Action, auto bool) error {
	s := &t.state
	switch s.Phase {
	case PhaseStalled:
		return ErrStalled
	case PhaseBetting:
	default:
		return fmt.Errorf("%w: no betting round while %s", ErrWrongPhase, s.Phase)
	}
	if err := t.checkSeat(seat); err != nil {
		return err
	}
	if seat != s.Current {
		return fmt.Errorf("%w: seat %d acted, seat %d to act", ErrNotYourTurn, seat, s.Current)
	}

	var err error
	if s.Street == Showdown {
		err = t.applyShowdown(seat, action, auto)
	} else {
		err = t.applyBetting(seat, action)
	}
	if err != nil {
		t.logger.Debug("Rejected action", "seat", seat, "action", action, "street", s.Street, "error", err)
		return err
	}

	t.logger.Debug("Action", "round", s.Round, "street", s.Street, "seat", seat, "action", action, "auto", auto)
	if s.Street != Showdown || action.Kind == ActionFold {
		t.publish(PlayerActionEvent{Round: s.Round, Seat: seat, Street: s.Street, Action: action, Auto: auto, At: t.clock.Now()})
	}
	t.advance()
	t.touch()
	return nil
}

func (t *Table) applyBetting(seat int, action Action) error {
	s := &t.state
	p := &s.Players[seat]
	switch action.Kind {
	case ActionFold:
		p.Status = StatusFolded
	case ActionCheck:
		if !s.CanCheck(seat) {
			return fmt.Errorf("%w: cannot check facing %d", ErrIllegalAction, s.CallAmount(seat))
		}
		p.Status = StatusChecked
	case ActionBet:
		if err := s.validateBet(seat, action.Amount); err != nil {
			return err
		}
		p.Bankroll -= action.Amount
		p.Bets[s.Street] += action.Amount
		p.LastBetStreet = s.Street
		p.Status = StatusBetted
		s.LastBettor = seat
	default:
		return fmt.Errorf("%w: unknown action %d", ErrIllegalAction, action.Kind)
	}
	return nil
}

// At showdown a check reveals and a fold mucks.
func (t *Table) applyShowdown(seat int, action Action, auto bool) error {
	s := &t.state
	switch action.Kind {
	case ActionCheck:
		t.reveal(seat, auto)
	case ActionFold:
		if s.ForcedReveal(seat) {
			return fmt.Errorf("%w: seat %d", ErrMustReveal, seat)
		}
		s.Players[seat].Status = StatusFolded
	default:
		return fmt.Errorf("%w: no betting at showdown", ErrIllegalAction)
	}
	return nil
}

package authority

import (
	"errors"
	"time"

	"github.com/lox/holdemroom/internal/game"
)

// settle publishes the committed state, deals when the table is waiting and
// the tokens are back, then arms the timer for whatever phase results.
func (a *Authority) settle() {
	for {
		a.publish()
		if a.table.State().Phase != game.PhaseWaiting || !a.tryDeal() {
			break
		}
	}
	a.arm()
}

func (a *Authority) publish() {
	v := a.table.Version()
	if a.everPublished && v == a.published {
		return
	}
	a.published = v
	a.everPublished = true
	a.publisher.Publish(a.table.Snapshot())
}

// tryDeal begins a round if every token has been returned. It reports
// whether the table changed.
func (a *Authority) tryDeal() bool {
	if !a.table.Pool().AllTokensReturned() {
		if a.waitDeadline.IsZero() {
			a.waitDeadline = a.clock.Now().Add(a.timing.TokenTimeout)
			a.logger.Debug("Waiting for tokens", "timeout", a.timing.TokenTimeout)
		}
		return false
	}
	a.waitDeadline = time.Time{}
	a.reclaimed = false

	if err := a.table.BeginRound(); err != nil {
		if errors.Is(err, game.ErrTokensOutstanding) {
			return false
		}
		a.logger.Error("Deal failed", "error", err)
	}
	return true
}

func (a *Authority) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// arm replaces the pending timer once the state has moved on. Every timer
// carries the generation it was armed in; a callback from an older
// generation is ignored.
func (a *Authority) arm() {
	v := a.table.Version()
	if a.timer != nil && v == a.armedVersion {
		return
	}
	a.stopTimer()
	a.gen++
	a.armedVersion = v
	gen := a.gen
	s := a.table.State()

	var d time.Duration
	var fire func(*game.Table) error
	switch s.Phase {
	case game.PhaseBetting:
		if s.Current == game.NoSeat {
			return
		}
		d = a.timing.ActionTimeout
		if s.Street == game.Showdown {
			d = a.timing.ShowdownTimeout
		}
		seat := s.Current
		fire = func(t *game.Table) error {
			a.logger.Warn("Action timed out", "seat", seat, "street", t.State().Street, "action", t.TimeoutAction(seat))
			return t.ActOnTimeout()
		}
	case game.PhaseRoundEnded:
		d = a.timing.RoundEndShowdown
		if s.DefaultWin {
			d = a.timing.RoundEndDefault
		}
		fire = func(t *game.Table) error { return t.FinishRound() }
	case game.PhaseWaiting:
		d = a.timing.TokenPoll
		fire = a.pollTokens
	default:
		return
	}

	a.timer = a.clock.AfterFunc(d, func() {
		a.enqueue(func(t *game.Table) error {
			if gen != a.gen {
				return nil
			}
			a.timer = nil
			if err := fire(t); err != nil {
				a.logger.Error("Timer action failed", "phase", t.State().Phase, "error", err)
			}
			return nil
		})
	}, "authority", s.Phase.String())
}

// pollTokens runs once per poll tick while the table waits to deal. Past the
// deadline it reclaims once; if tokens are still out after that, the table stalls.
func (a *Authority) pollTokens(t *game.Table) error {
	pool := t.Pool()
	if pool.AllTokensReturned() || a.clock.Now().Before(a.waitDeadline) {
		return nil
	}
	if !a.reclaimed {
		a.reclaimed = true
		if r, ok := pool.(game.Reclaimer); ok {
			n := r.Reclaim()
			a.logger.Warn("Token wait timed out, reclaimed", "tokens", n)
		}
		if pool.AllTokensReturned() {
			return nil
		}
	}
	a.logger.Error("Tokens still outstanding after reclaim")
	t.Stall("card tokens were not returned")
	a.waitDeadline = time.Time{}
	a.reclaimed = false
	return nil
}

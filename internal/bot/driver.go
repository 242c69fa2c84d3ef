package bot

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemroom/internal/game"
)

// Actor is the part of the authority a driver needs.
type Actor interface {
	Act(ctx context.Context, seat int, action game.Action) error
}

// ActorFunc adapts a function to Actor.
type ActorFunc func(ctx context.Context, seat int, action game.Action) error

func (f ActorFunc) Act(ctx context.Context, seat int, action game.Action) error {
	return f(ctx, seat, action)
}

// Driver plays strategies for a set of seats. Publish it alongside the other
// publishers of an authority, then Run it.
type Driver struct {
	actor  Actor
	clock  quartz.Clock
	think  time.Duration
	logger *log.Logger

	mu    sync.Mutex
	seats map[int]Strategy

	// latest published state; a newer state replaces one not yet handled
	states chan game.State
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithThinkTime delays every decision by d.
func WithThinkTime(d time.Duration) DriverOption {
	return func(dr *Driver) { dr.think = d }
}

func WithClock(clock quartz.Clock) DriverOption {
	return func(dr *Driver) { dr.clock = clock }
}

func WithLogger(logger *log.Logger) DriverOption {
	return func(dr *Driver) { dr.logger = logger }
}

// NewDriver creates a driver that acts through actor.
func NewDriver(actor Actor, opts ...DriverOption) *Driver {
	d := &Driver{
		actor:  actor,
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
		seats:  make(map[int]Strategy),
		states: make(chan game.State, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithPrefix("bot")
	return d
}

// Seat hands seat to strategy. A nil strategy releases the seat.
func (d *Driver) Seat(seat int, strategy Strategy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strategy == nil {
		delete(d.seats, seat)
		return
	}
	d.seats[seat] = strategy
}

func (d *Driver) strategy(seat int) Strategy {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seats[seat]
}

// Publish never blocks; only the newest state matters to a bot.
func (d *Driver) Publish(state game.State) {
	for {
		select {
		case d.states <- state:
			return
		default:
		}
		select {
		case <-d.states:
		default:
		}
	}
}

// Run acts for the driver's seats until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	var acted uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case state := <-d.states:
			if state.Phase != game.PhaseBetting || state.Version <= acted {
				continue
			}
			strategy := d.strategy(state.Current)
			if strategy == nil {
				continue
			}
			acted = state.Version
			if err := d.play(ctx, &state, strategy); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) play(ctx context.Context, state *game.State, strategy Strategy) error {
	seat := state.Current
	decision := strategy.MakeDecision(state, seat, ValidActions(state, seat))

	if d.think > 0 {
		timer := d.clock.NewTimer(d.think, "bot", "think")
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}

	d.logger.Debug("Bot decision made",
		"seat", seat,
		"strategy", strategy.Name(),
		"street", state.Street,
		"decision", decision.Action,
		"reasoning", decision.Reasoning)

	err := d.actor.Act(ctx, seat, decision.Action)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrWrongPhase):
		// the table moved on (a timeout, a leave) before the action arrived
		d.logger.Debug("Stale decision dropped", "seat", seat, "error", err)
	default:
		d.logger.Warn("Bot action rejected", "seat", seat, "action", decision.Action, "error", err)
	}
	return nil
}

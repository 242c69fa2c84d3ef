// Package authority runs the single writer for a table.
//
// An Authority owns a game.Table and drains a command queue on one goroutine,
// so no two transitions ever interleave. After each command it publishes the
// committed State (when its version moved) and re-arms the one timer the
// current phase needs: the action clock while betting, the results display
// once a round has ended, and the token-return wait before a deal.
package authority

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/holdemroom/internal/game"
)

// ErrStopped is returned for commands sent to an authority that is not running.
var ErrStopped = errors.New("authority stopped")

// Publisher receives every committed state. It is called on the authority's
// goroutine and must not block.
type Publisher interface {
	Publish(state game.State)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(game.State)

func (f PublisherFunc) Publish(state game.State) { f(state) }

// Publishers fans each state out in order.
type Publishers []Publisher

func (ps Publishers) Publish(state game.State) {
	for _, p := range ps {
		p.Publish(state)
	}
}

// Timing holds the authority's clocks.
type Timing struct {
	RoundEndShowdown time.Duration
	RoundEndDefault  time.Duration
	ActionTimeout    time.Duration
	ShowdownTimeout  time.Duration
	TokenPoll        time.Duration
	TokenTimeout     time.Duration
}

// DefaultTiming returns the standard table clocks.
func DefaultTiming() Timing {
	return Timing{
		RoundEndShowdown: 8 * time.Second,
		RoundEndDefault:  5 * time.Second,
		ActionTimeout:    30 * time.Second,
		ShowdownTimeout:  12 * time.Second,
		TokenPoll:        250 * time.Millisecond,
		TokenTimeout:     10 * time.Second,
	}
}

type command struct {
	run   func(*game.Table) error
	reply chan error
}

// Authority is the only writer of a table's state.
type Authority struct {
	id        string
	table     *game.Table
	timing    Timing
	clock     quartz.Clock
	logger    *log.Logger
	publisher Publisher

	commands chan command
	done     chan struct{}

	// Owned by the Run goroutine.
	timer         *quartz.Timer
	gen           uint64
	armedVersion  uint64
	published     uint64
	everPublished bool
	waitDeadline  time.Time
	reclaimed     bool
	handedOff     bool
}

// Option configures an Authority.
type Option func(*options)

type options struct {
	timing    Timing
	clock     quartz.Clock
	logger    *log.Logger
	tableOpts []game.TableOption
}

// WithTiming replaces the default clocks.
func WithTiming(timing Timing) Option {
	return func(o *options) { o.timing = timing }
}

// WithClock sets the clock used for every timer and event timestamp.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTableOptions passes options through to the table.
func WithTableOptions(opts ...game.TableOption) Option {
	return func(o *options) { o.tableOpts = append(o.tableOpts, opts...) }
}

// New creates an authority over a fresh table. Call Run to start it.
func New(pool game.TokenPool, publisher Publisher, opts ...Option) *Authority {
	o := options{timing: DefaultTiming()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if publisher == nil {
		publisher = PublisherFunc(func(game.State) {})
	}

	id := uuid.NewString()
	tableOpts := append([]game.TableOption{game.WithLogger(o.logger), game.WithClock(o.clock)}, o.tableOpts...)
	return &Authority{
		id:        id,
		table:     game.NewTable(pool, tableOpts...),
		timing:    o.timing,
		clock:     o.clock,
		logger:    o.logger.WithPrefix("authority").With("authority", id[:8]),
		publisher: publisher,
		commands:  make(chan command, 64),
		done:      make(chan struct{}),
	}
}

// Resume creates an authority that continues from a state committed by a
// previous one. Nothing already applied is run again.
func Resume(state game.State, pool game.TokenPool, publisher Publisher, opts ...Option) (*Authority, error) {
	a := New(pool, publisher, append([]Option{WithTableOptions(game.WithTableID(state.TableID))}, opts...)...)
	if err := a.table.Restore(state); err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	a.published = state.Version
	a.everPublished = true
	a.logger.Info("Resumed", "version", state.Version, "phase", state.Phase)
	return a, nil
}

// ID identifies this authority instance.
func (a *Authority) ID() string { return a.id }

// Run processes commands until ctx is cancelled or the authority is handed off.
func (a *Authority) Run(ctx context.Context) error {
	defer close(a.done)
	defer a.stopTimer()

	a.logger.Info("Authority running", "table", a.table.State().TableID)
	a.settle()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Authority stopping", "version", a.table.Version())
			return nil
		case cmd := <-a.commands:
			err := cmd.run(a.table)
			if !a.handedOff {
				a.settle()
			}
			if cmd.reply != nil {
				cmd.reply <- err
			}
			if a.handedOff {
				a.logger.Info("Handed off", "version", a.table.Version())
				return nil
			}
		}
	}
}

// do runs fn on the authority goroutine and waits for its result.
func (a *Authority) do(ctx context.Context, fn func(*game.Table) error) error {
	cmd := command{run: fn, reply: make(chan error, 1)}
	select {
	case a.commands <- cmd:
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue is used by timer callbacks, which must never block past shutdown.
func (a *Authority) enqueue(fn func(*game.Table) error) {
	select {
	case a.commands <- command{run: fn}:
	case <-a.done:
	}
}

// Join seats a player.
func (a *Authority) Join(ctx context.Context, seat int, ownerID string, bankroll int) error {
	return a.do(ctx, func(t *game.Table) error { return t.Join(seat, ownerID, bankroll) })
}

// Leave vacates a seat, folding it if a round is running.
func (a *Authority) Leave(ctx context.Context, seat int) error {
	return a.do(ctx, func(t *game.Table) error { return t.Leave(seat) })
}

// StartGame starts a game with seat as the first dealer. The first round is
// dealt as soon as every token is back.
func (a *Authority) StartGame(ctx context.Context, seat int) error {
	return a.do(ctx, func(t *game.Table) error { return t.StartGame(seat) })
}

// Act applies a player's action.
func (a *Authority) Act(ctx context.Context, seat int, action game.Action) error {
	return a.do(ctx, func(t *game.Table) error { return t.Act(seat, action) })
}

// Reset is the administrative recovery path out of any phase, including a stall.
func (a *Authority) Reset(ctx context.Context) error {
	return a.do(ctx, func(t *game.Table) error {
		t.Reset()
		a.waitDeadline = time.Time{}
		a.reclaimed = false
		return nil
	})
}

// Snapshot returns the committed state.
func (a *Authority) Snapshot(ctx context.Context) (game.State, error) {
	var state game.State
	err := a.do(ctx, func(t *game.Table) error {
		state = t.Snapshot()
		return nil
	})
	return state, err
}

// Handoff stops the authority and returns its last committed state for a
// successor to Resume from.
func (a *Authority) Handoff(ctx context.Context) (game.State, error) {
	var state game.State
	err := a.do(ctx, func(t *game.Table) error {
		a.stopTimer()
		a.handedOff = true
		state = t.Snapshot()
		return nil
	})
	return state, err
}

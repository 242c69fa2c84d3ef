package game

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Table runs the street state machine over a State. It is not safe for
// concurrent use: exactly one goroutine (the authority) may call its methods.
type Table struct {
	state  State
	pool   TokenPool
	cfg    tableConfig
	logger *log.Logger
	bus    EventBus
	clock  quartz.Clock
}

// NewTable creates an idle table drawing cards from pool.
func NewTable(pool TokenPool, opts ...TableOption) *Table {
	if pool == nil {
		panic("token pool is required")
	}
	cfg := defaultTableConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.fill()

	return &Table{
		state:  NewState(cfg.tableID, cfg.seats, cfg.smallBlind, cfg.bigBlind),
		pool:   pool,
		cfg:    cfg,
		logger: cfg.logger.WithPrefix("table").With("table", cfg.tableID),
		bus:    cfg.bus,
		clock:  cfg.clock,
	}
}

// Restore replaces the table's state with a committed snapshot, typically
// handed over by a previous authority. Nothing is re-run.
func (t *Table) Restore(s State) error {
	if s.Seats < 2 || s.Seats > MaxSeats {
		return fmt.Errorf("restore: invalid seat count %d", s.Seats)
	}
	if s.TableID != t.state.TableID {
		t.logger = t.cfg.logger.WithPrefix("table").With("table", s.TableID)
	}
	t.state = s.Clone()
	t.logger.Info("Restored table state", "version", s.Version, "round", s.Round, "phase", s.Phase, "street", s.Street)
	return nil
}

// Snapshot returns a deep copy of the committed state.
func (t *Table) Snapshot() State { return t.state.Clone() }

// State exposes the live state for read-only queries on the owning goroutine.
func (t *Table) State() *State { return &t.state }

// Version is bumped by every successful mutation.
func (t *Table) Version() uint64 { return t.state.Version }

// Pool returns the token pool the table deals from.
func (t *Table) Pool() TokenPool { return t.pool }

func (t *Table) touch() { t.state.Version++ }

func (t *Table) publish(event GameEvent) { t.bus.Publish(event) }

func (t *Table) checkSeat(seat int) error {
	if !t.state.validSeat(seat) {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	return nil
}

// Join seats ownerID with bankroll chips. Joining while a game runs makes the
// player a late joiner who is dealt in from the next round.
func (t *Table) Join(seat int, ownerID string, bankroll int) error {
	if err := t.checkSeat(seat); err != nil {
		return err
	}
	if ownerID == "" || ownerID == t.state.TableID {
		return fmt.Errorf("%w: %q", ErrInvalidOwner, ownerID)
	}
	if bankroll < t.cfg.minBankroll || bankroll > t.cfg.maxBankroll {
		return fmt.Errorf("%w: %d outside [%d, %d]", ErrInvalidBankroll, bankroll, t.cfg.minBankroll, t.cfg.maxBankroll)
	}
	p := &t.state.Players[seat]
	if p.HasOwner() {
		return fmt.Errorf("%w: seat %d held by %s", ErrSeatTaken, seat, p.OwnerID)
	}
	for i := 0; i < t.state.Seats; i++ {
		if t.state.Players[i].OwnerID == ownerID {
			return fmt.Errorf("%w: %s already sits at seat %d", ErrSeatTaken, ownerID, i)
		}
	}

	*p = emptySeat(seat)
	p.OwnerID = ownerID
	p.Bankroll = bankroll
	p.LateJoiner = t.state.Phase != PhaseIdle
	t.touch()

	t.logger.Info("Player joined", "seat", seat, "owner", ownerID, "bankroll", bankroll, "late", p.LateJoiner)
	t.publish(PlayerJoinedEvent{Seat: seat, OwnerID: ownerID, Bankroll: bankroll, LateJoiner: p.LateJoiner, At: t.clock.Now()})
	return nil
}

// Leave vacates seat. A player leaving mid-round folds and forfeits their bets
// to the pot. The action moves on if it was their turn or if the street is now
// complete.
func (t *Table) Leave(seat int) error {
	if err := t.checkSeat(seat); err != nil {
		return err
	}
	p := &t.state.Players[seat]
	if !p.HasOwner() {
		return fmt.Errorf("%w: %d", ErrSeatEmpty, seat)
	}

	owner := p.OwnerID
	wasLive := t.state.Phase == PhaseBetting && p.Live()
	forfeited := t.vacate(seat, false)
	t.touch()

	if wasLive && (t.state.Current == seat || t.state.AllButOneFolded() || t.state.ReadyToAdvance()) {
		t.advance()
	}
	t.logger.Info("Player left", "seat", seat, "owner", owner, "forfeited", forfeited)
	return nil
}

// vacate empties seat, moving any live bets into the forfeited totals.
func (t *Table) vacate(seat int, broke bool) int {
	p := &t.state.Players[seat]
	if st := t.state.Street; t.state.Phase == PhaseBetting && st >= Preflop && st <= River && p.InRound() && p.Bets[st] > 0 {
		t.state.Departed = append(t.state.Departed, p.Bets[st])
	}
	forfeited := 0
	for st, b := range p.Bets {
		t.state.Forfeited[st] += b
		forfeited += b
	}
	owner := p.OwnerID
	*p = emptySeat(seat)
	t.publish(PlayerLeftEvent{Seat: seat, OwnerID: owner, Forfeited: forfeited, Broke: broke, At: t.clock.Now()})
	return forfeited
}

// StartGame begins a game with seat as the first dealer.
func (t *Table) StartGame(seat int) error {
	if t.state.Phase == PhaseStalled {
		return ErrStalled
	}
	if t.state.Phase != PhaseIdle {
		return ErrGameInProgress
	}
	if err := t.checkSeat(seat); err != nil {
		return err
	}
	if !t.state.Players[seat].HasOwner() {
		return fmt.Errorf("%w: %d", ErrSeatEmpty, seat)
	}
	if n := t.state.NumFunded(); n < 2 {
		return fmt.Errorf("%w: %d funded", ErrNotEnoughPlayers, n)
	}

	for i := 0; i < t.state.Seats; i++ {
		t.state.Players[i].LateJoiner = false
	}
	// The first round moves the button forward onto seat.
	t.state.Dealer = (seat - 1 + t.state.Seats) % t.state.Seats
	t.state.LastWinners = nil
	t.state.Phase = PhaseWaiting
	t.touch()

	t.logger.Info("Game started", "starter", seat, "players", t.state.NumFunded())
	return nil
}

// Stall halts the table after an invariant violation. Only Reset recovers.
func (t *Table) Stall(reason string) {
	t.state.Phase = PhaseStalled
	t.state.StallReason = reason
	t.state.Current = NoSeat
	t.touch()

	t.logger.Error("Table stalled", "reason", reason, "round", t.state.Round)
	t.publish(TableStalledEvent{Reason: reason, At: t.clock.Now()})
}

// Reset is the administrative recovery path: bets of an unfinished round are
// refunded, tokens are recalled and the table returns to idle with everyone seated.
func (t *Table) Reset() {
	refunded := 0
	if t.state.Phase != PhaseRoundEnded {
		for i := range t.state.Players {
			p := &t.state.Players[i]
			b := p.TotalBet()
			p.Bankroll += b
			refunded += b
		}
	}
	for i := range t.state.Players {
		t.state.Players[i].clearRound()
		t.state.Players[i].LateJoiner = false
	}
	t.state.clearRound()
	t.state.Phase = PhaseIdle
	t.state.Dealer = NoSeat
	t.state.StallReason = ""
	t.pool.ReturnAll()
	if r, ok := t.pool.(Reclaimer); ok {
		r.Reclaim()
	}
	t.touch()

	t.logger.Warn("Table reset", "refunded", refunded)
}

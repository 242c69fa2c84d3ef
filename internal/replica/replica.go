// Package replica holds read-only copies of the authoritative table state.
//
// A replica never mutates anything: it takes whole committed states from the
// authority and answers queries by running the same pure functions over its
// copy. Applying an older or repeated version is a no-op, so redelivery and
// reordering in the transport cannot move a replica backwards.
package replica

import (
	"sync"

	"github.com/lox/holdemroom/internal/game"
)

// Replica is safe for concurrent use.
type Replica struct {
	mu      sync.RWMutex
	state   game.State
	applied bool
}

// New returns an empty replica. Until the first Apply it reports an idle,
// empty table.
func New() *Replica {
	return &Replica{state: game.NewState("", game.MaxSeats, 0, 0)}
}

// Apply installs state if it is newer than what the replica holds. It
// reports whether the replica changed.
func (r *Replica) Apply(state game.State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied && state.Version <= r.state.Version {
		return false
	}
	r.state = state.Clone()
	r.applied = true
	return true
}

// Ready reports whether any state has been applied.
func (r *Replica) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applied
}

// State returns a copy of the replicated state, hole cards included.
func (r *Replica) State() game.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// Version is the version of the applied state.
func (r *Replica) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Version
}

func (r *Replica) read(fn func(s *game.State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&r.state)
}

// PotCount is the number of pots including the open pot.
func (r *Replica) PotCount() (n int) {
	r.read(func(s *game.State) { n = s.PotCount() })
	return n
}

// Pot returns the amount in pot index.
func (r *Replica) Pot(index int) (amount int) {
	r.read(func(s *game.State) { amount = s.Pot(index) })
	return amount
}

// PotWinners returns the seats tied for best among pot index's participants.
func (r *Replica) PotWinners(index int) (seats []int) {
	r.read(func(s *game.State) { seats = s.PotWinners(index) })
	return seats
}

// BestHandName names seat's best hand on the visible board.
func (r *Replica) BestHandName(seat int) (name string) {
	r.read(func(s *game.State) { name = s.BestHandName(seat) })
	return name
}

// Player returns seat's state.
func (r *Replica) Player(seat int) (p game.PlayerRoundState, ok bool) {
	r.read(func(s *game.State) { p, ok = s.Player(seat) })
	return p, ok
}

// Public returns the redacted view every observer may see.
func (r *Replica) Public() (v View) {
	r.read(func(s *game.State) { v = NewView(s) })
	return v
}

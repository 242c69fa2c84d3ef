// Package game implements the Texas Hold'em table state machine.
//
// The main type is Table, which owns a single replicated State and is the
// only way to mutate it. Every successful mutation bumps State.Version so
// replicas can discard stale copies.
//
// # Basic Usage
//
// Seat players, start a game and deal:
//
//	t := game.NewTable(pool, game.WithBlinds(100, 200))
//	_ = t.Join(0, "alice", 10000)
//	_ = t.Join(1, "bob", 10000)
//	_ = t.StartGame(0)
//	_ = t.BeginRound()
//	_ = t.Act(t.State().Current, game.Bet(t.State().CallAmount(t.State().Current)))
//
// Cards come from a TokenPool. The table refuses to deal while the previous
// round's tokens are still out; the caller decides how long to wait.
//
// # Streets
//
// A round runs Preflop, Flop, Turn, River and Showdown. At showdown a check
// reveals and a fold mucks. When at most one seat can still bet, the board is
// run out and the round goes straight to showdown.
//
// # Pots
//
// Side pots are cut at the end of each street in which a live seat went
// all-in. Each Pot is capped at its limiters' contribution; the open pot is
// whatever the capped pots have not claimed and is always last.
//
// # Deterministic Testing
//
// NewTestTable seats players and starts a game over a StackedPool, which
// deals stacked cards to named owners before falling back to a seeded deck:
//
//	tt := game.NewTestTable(game.WithBankrolls(1000, 1000))
//	tt.Pool.Stack("test", "2c 7d 9h Js Kd").Stack("p0", "As Ah")
//	_ = tt.BeginRound()
package game

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/history"
	"github.com/lox/holdemroom/internal/replica"
	"github.com/lox/holdemroom/internal/server"
	"github.com/lox/holdemroom/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateHandsOrdersAndTies(t *testing.T) {
	t.Parallel()

	hands, err := evaluateHands([]string{
		"2c 2d 5h 7s 9c",
		"As Ks Qs Js Ts",
		"Ah Kh Qh Jh Th 2d 3c",
		"9h 9d 9s 4c 4d 2h",
	}, true)
	require.NoError(t, err)
	require.Len(t, hands, 4)

	assert.Equal(t, poker.RoyalFlush, hands[0].Score.Category)
	assert.Equal(t, poker.RoyalFlush, hands[1].Score.Category)
	assert.Equal(t, poker.FullHouse, hands[2].Score.Category)
	assert.Equal(t, poker.OnePair, hands[3].Score.Category)

	var out bytes.Buffer
	require.NoError(t, printEval(&out, hands, true))
	text := out.String()
	assert.Contains(t, text, "Royal Flush")
	assert.Contains(t, text, "3. ")
	assert.NotContains(t, text, "2. ", "tied royals share first place")
	assert.Contains(t, text, "Ordering agrees")
}

func TestEvaluateHandsRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hand string
	}{
		{name: "unknown card", hand: "Xx Ks Qs Js Ts"},
		{name: "duplicate", hand: "As As Qs Js Ts"},
		{name: "too few", hand: "As Ks Qs Js"},
		{name: "too many", hand: "As Ks Qs Js Ts 9s 8s 7s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := evaluateHands([]string{tt.hand}, false)
			assert.Error(t, err)
		})
	}
}

func TestReferenceScoreAgreesOnCategories(t *testing.T) {
	t.Parallel()

	flush, err := poker.ParseCards("2h 7h 9h Jh Kh")
	require.NoError(t, err)
	straight, err := poker.ParseCards("5c 6d 7h 8s 9c")
	require.NoError(t, err)

	f, err := referenceScore(flush)
	require.NoError(t, err)
	s, err := referenceScore(straight)
	require.NoError(t, err)
	assert.Greater(t, f, s)
}

func TestSimulateConservesChips(t *testing.T) {
	t.Parallel()

	seed := int64(7)
	cmd := &SimulateCmd{
		Bots:       []string{"call", "random", "random", "fold"},
		Rounds:     200,
		BuyIn:      2000,
		SmallBlind: 10,
		BigBlind:   20,
		Seed:       &seed,
	}
	result, err := simulate(cmd, seed, log.New(io.Discard))
	require.NoError(t, err)

	assert.Positive(t, result.Rounds)
	assert.LessOrEqual(t, result.Rounds, 200)
	total := 0
	for _, st := range result.Seats {
		assert.GreaterOrEqual(t, st.Bankroll, 0)
		total += st.Bankroll

		require.NoError(t, st.Stats.Validate())
		assert.LessOrEqual(t, st.Stats.Hands, result.Rounds)
		assert.InDelta(t, float64(st.Bankroll-2000), st.Stats.SumBB*20, 1e-6, "seat %d", st.Seat)
	}
	assert.Equal(t, 4*2000, total)

	var out bytes.Buffer
	printSimulation(&out, result)
	assert.Contains(t, out.String(), "random")
	assert.Contains(t, out.String(), "bb/100")
}

func TestSimulateIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func() *SimulationResult {
		seed := int64(99)
		r, err := simulate(&SimulateCmd{
			Bots:       []string{"random", "random", "call"},
			Rounds:     50,
			BuyIn:      1000,
			SmallBlind: 5,
			BigBlind:   10,
		}, seed, log.New(io.Discard))
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, run(), run())
}

func TestSimulateFoldersEndInDefaultWins(t *testing.T) {
	t.Parallel()

	r, err := simulate(&SimulateCmd{
		Bots:       []string{"fold", "fold"},
		Rounds:     10,
		BuyIn:      1000,
		SmallBlind: 5,
		BigBlind:   10,
	}, 1, log.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, 10, r.Rounds)
	assert.Zero(t, r.Showdowns)
}

func TestSimulateWritesHandHistories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, err := simulate(&SimulateCmd{
		Bots:       []string{"call", "tight"},
		Rounds:     5,
		BuyIn:      1000,
		SmallBlind: 5,
		BigBlind:   10,
		History:    dir,
	}, 3, log.New(io.Discard))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, history.SessionFile), r.History)

	data, err := os.ReadFile(r.History)
	require.NoError(t, err)
	assert.Equal(t, r.Rounds, strings.Count(string(data), "variant = \"NT\""))
	assert.Contains(t, string(data), "d dh p1 ")

	hands, err := history.ReadSession(r.History)
	require.NoError(t, err)
	require.Len(t, hands, r.Rounds)
	total := 0
	for _, h := range hands {
		for _, n := range h.Net() {
			total += n
		}
	}
	assert.Zero(t, total, "every hand is zero-sum")

	var out bytes.Buffer
	printHands(&out, hands, 2)
	assert.Contains(t, out.String(), fmt.Sprintf("%d hands", r.Rounds))
	assert.Contains(t, out.String(), "call-0")
	assert.Contains(t, out.String(), "tight-1")
}

func TestSimulateRejectsBadBots(t *testing.T) {
	t.Parallel()

	_, err := simulate(&SimulateCmd{Bots: []string{"call"}, Rounds: 1, BuyIn: 100, SmallBlind: 1, BigBlind: 2}, 1, log.New(io.Discard))
	assert.Error(t, err)

	_, err = simulate(&SimulateCmd{Bots: []string{"call", "shark"}, Rounds: 1, BuyIn: 100, SmallBlind: 1, BigBlind: 2}, 1, log.New(io.Discard))
	assert.ErrorContains(t, err, "unknown strategy")
}

func TestRenderView(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000, 1000))
	require.NoError(t, tt.BeginRound())

	text := renderView(replica.NewView(tt.State()))
	assert.Contains(t, text, "test")
	assert.Contains(t, text, "preflop")
	assert.Contains(t, text, game.OwnerName(0))
	assert.Contains(t, text, game.OwnerName(2))
	assert.Contains(t, text, "to act")
}

func TestRenderEmptyTable(t *testing.T) {
	t.Parallel()

	text := renderView(replica.View{TableID: "empty", Seats: []replica.SeatView{{Seat: 0}}})
	assert.Contains(t, text, "No players seated")
}

func TestWatcherRendersState(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000))
	msg, err := server.NewMessage(server.MessageTypeState, replica.NewView(tt.State()))
	require.NoError(t, err)

	// round-trip the message the way it arrives off the wire
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	var decoded server.Message
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var out bytes.Buffer
	w := &watcher{out: &out, logger: log.New(io.Discard)}
	require.NoError(t, w.handle(&decoded))
	assert.Contains(t, out.String(), game.OwnerName(1))
	assert.Contains(t, out.String(), "waiting")
}

func TestWatcherPrintsEventsWhenAsked(t *testing.T) {
	t.Parallel()

	msg, err := server.NewMessage(server.MessageTypeEvent, server.EventData{
		Type:  game.EventTypePlayerJoined,
		Event: game.PlayerJoinedEvent{Seat: 3, OwnerID: "carol", Bankroll: 500, At: time.Unix(0, 0)},
	})
	require.NoError(t, err)

	var quiet bytes.Buffer
	w := &watcher{out: &quiet, logger: log.New(io.Discard)}
	require.NoError(t, w.handle(msg))
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	w = &watcher{out: &loud, logger: log.New(io.Discard), events: true}
	require.NoError(t, w.handle(msg))
	assert.Contains(t, loud.String(), "player_joined")
	assert.Contains(t, loud.String(), "carol")
}

package history

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

func TestNewHandID(t *testing.T) {
	t.Parallel()

	id := NewHandID(randutil.New(1), testTime)
	require.Len(t, id, HandIDLength)
	require.NoError(t, ValidateHandID(id))

	assert.Equal(t, id, NewHandID(randutil.New(1), testTime), "same seed and time")
	assert.NotEqual(t, id, NewHandID(randutil.New(2), testTime))

	later := NewHandID(randutil.New(1), testTime.Add(time.Second))
	assert.Less(t, id, later, "ids sort by time")
}

func TestValidateHandID(t *testing.T) {
	t.Parallel()

	assert.Error(t, ValidateHandID("short"))
	assert.Error(t, ValidateHandID("8"+strings.Repeat("0", HandIDLength-1)))
	assert.Error(t, ValidateHandID(strings.Repeat("0", HandIDLength-1)+"u"))
	assert.NoError(t, ValidateHandID(strings.Repeat("0", HandIDLength)))
}

func TestEncodeHandHistory(t *testing.T) {
	t.Parallel()

	hand := &HandHistory{
		Variant:           Variant,
		Table:             "main",
		SeatCount:         3,
		Seats:             []int{1, 2, 3},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		FinishingStacks:   []int{199, 203, 198},
		Winnings:          []int{0, 5, 0},
		Actions:           []string{"d dh p1 ????", "p3 cbr 2"},
		Players:           []string{"alice", "bob", "carol"},
		HandID:            "hand-1",
		Timestamp:         testTime,
	}
	hand.setTime()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, hand))
	want := "" +
		"variant = \"NT\"\n" +
		"table = \"main\"\n" +
		"seat_count = 3\n" +
		"seats = [1, 2, 3]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"finishing_stacks = [199, 203, 198]\n" +
		"winnings = [0, 5, 0]\n" +
		"actions = [\"d dh p1 ????\", \"p3 cbr 2\"]\n" +
		"players = [\"alice\", \"bob\", \"carol\"]\n" +
		"hand = \"hand-1\"\n" +
		"time = \"03:04:05\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 2\n" +
		"month = 1\n" +
		"year = 2025\n"
	assert.Equal(t, want, buf.String())

	back, err := Decode(buf.String())
	require.NoError(t, err)
	assert.Equal(t, hand.Actions, back.Actions)
	assert.Equal(t, hand.Winnings, back.Winnings)

	assert.Error(t, Encode(&buf, nil))
}

// headsUp deals As Ad to seat 0 and Kh Kc to seat 1 on a dry board. Seat 0
// is the dealer and posts the small blind.
func headsUp(t *testing.T, cfg Config) (*game.TestTable, *Recorder) {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	rec, err := NewRecorder(cfg, WithRand(randutil.New(1)))
	require.NoError(t, err)

	bus := game.NewEventBus()
	bus.Subscribe(rec)
	tt := game.NewTestTable(
		game.WithBankrolls(1000, 1000),
		game.WithTableOptions(game.WithEventBus(bus), game.WithClock(quartz.NewMock(t))),
	)
	tt.Pool.Stack("test", "2c 7d 9h Js 4s").Stack(game.OwnerName(0), "As Ad").Stack(game.OwnerName(1), "Kh Kc")
	require.NoError(t, tt.BeginRound())
	return tt, rec
}

func finish(t *testing.T, tt *game.TestTable, rec *Recorder) *HandHistory {
	t.Helper()
	s := tt.State()
	require.Equal(t, game.PhaseRoundEnded, s.Phase)
	rec.Publish(*s)
	require.Equal(t, 1, rec.Buffered())
	return rec.buffer[0]
}

func TestRecorderShowdown(t *testing.T) {
	t.Parallel()

	tt, rec := headsUp(t, Config{IncludeHoleCards: true})
	require.NoError(t, tt.Act(0, game.Bet(100)))
	for tt.State().Phase == game.PhaseBetting {
		require.NoError(t, tt.Act(tt.State().Current, game.Check()))
	}

	hand := finish(t, tt, rec)
	assert.Equal(t, Variant, hand.Variant)
	assert.Equal(t, "test", hand.Table)
	assert.Equal(t, 1, hand.Round)
	assert.NoError(t, ValidateHandID(hand.HandID))
	assert.Equal(t, []int{1, 2}, hand.Seats)
	assert.Equal(t, []string{game.OwnerName(0), game.OwnerName(1)}, hand.Players)
	assert.Equal(t, []int{100, 200}, hand.BlindsOrStraddles)
	assert.Equal(t, []int{1000, 1000}, hand.StartingStacks)
	assert.Equal(t, []int{1200, 800}, hand.FinishingStacks)
	assert.Equal(t, []int{400, 0}, hand.Winnings)

	assert.Equal(t, []string{
		"d dh p1 AsAd",
		"d dh p2 KhKc",
		"p1 cc",
		"p2 cc",
		"d db 2c7d9h",
		"p2 cc",
		"p1 cc",
		"d db Js",
		"p2 cc",
		"p1 cc",
		"d db 4s",
		"p2 cc",
		"p1 cc",
		"p2 sm KhKc",
		"p1 sm AsAd",
	}, hand.Actions)
}

func TestRecorderRaisesAndDefaultWin(t *testing.T) {
	t.Parallel()

	tt, rec := headsUp(t, Config{})
	require.NoError(t, tt.Act(0, game.Bet(500)))
	require.NoError(t, tt.Act(1, game.Bet(400)))
	require.NoError(t, tt.Act(1, game.Bet(200)))
	require.NoError(t, tt.Act(0, game.Fold()))

	hand := finish(t, tt, rec)
	assert.Equal(t, []string{
		"d dh p1 ????",
		"d dh p2 ????",
		"p1 cbr 600",
		"p2 cc",
		"d db 2c7d9h",
		"p2 cbr 200",
		"p1 f",
	}, hand.Actions)
	assert.Equal(t, []int{400, 1600}, hand.FinishingStacks)
	assert.Equal(t, []int{0, 1400}, hand.Winnings)
	assert.Equal(t, []int{1000, 1000}, hand.StartingStacks)
}

func TestRecorderIgnoresOtherStates(t *testing.T) {
	t.Parallel()

	tt, rec := headsUp(t, Config{})
	rec.Publish(*tt.State())
	assert.Zero(t, rec.Buffered(), "round still in progress")

	stale := *tt.State()
	stale.Phase = game.PhaseRoundEnded
	stale.Round = 7
	rec.Publish(stale)
	assert.Zero(t, rec.Buffered(), "different round")
}

func TestRecorderFlushAppendsSections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		tt, rec := headsUp(t, Config{Dir: dir})
		require.NoError(t, tt.Act(0, game.Fold()))
		finish(t, tt, rec)
		require.NoError(t, rec.Flush())
		assert.Zero(t, rec.Buffered())
	}

	data, err := os.ReadFile(dir + "/" + SessionFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "[1]\n")
	assert.Contains(t, text, "[2]\n")
	assert.Equal(t, 2, strings.Count(text, "variant = \"NT\""))

	section := strings.TrimPrefix(strings.SplitN(text, "[2]\n", 2)[0], "[1]\n")
	hand, err := Decode(section)
	require.NoError(t, err)
	assert.Equal(t, []string{"d dh p1 ????", "d dh p2 ????", "p1 f"}, hand.Actions)
}

func TestRecorderRunFlushesOnShutdown(t *testing.T) {
	t.Parallel()

	tt, rec := headsUp(t, Config{})
	rec.clock = quartz.NewMock(t)
	require.NoError(t, tt.Act(0, game.Fold()))
	finish(t, tt, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))
	assert.Zero(t, rec.Buffered())
	assert.FileExists(t, rec.Path())
}

func TestRecorderDisablesAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	tt, rec := headsUp(t, Config{})
	require.NoError(t, tt.Act(0, game.Fold()))
	finish(t, tt, rec)

	// a directory where the session file should be makes every write fail
	require.NoError(t, os.Mkdir(rec.Path(), 0o755))
	for i := 0; i < maxFailures; i++ {
		assert.Error(t, rec.Flush())
	}
	assert.True(t, rec.Disabled())
	assert.Zero(t, rec.Buffered())
	assert.NoError(t, rec.Flush())
}

func TestNewRecorderRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewRecorder(Config{})
	assert.Error(t, err)
}

func TestReadSession(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rec *Recorder
	for i := 0; i < 3; i++ {
		var tt *game.TestTable
		tt, rec = headsUp(t, Config{Dir: dir})
		require.NoError(t, tt.Act(0, game.Fold()))
		finish(t, tt, rec)
		require.NoError(t, rec.Flush())
	}

	hands, err := ReadSession(rec.Path())
	require.NoError(t, err)
	require.Len(t, hands, 3)
	for _, hand := range hands {
		assert.Equal(t, []int{-100, 100}, hand.Net())
		assert.Equal(t, []string{game.OwnerName(0), game.OwnerName(1)}, hand.Players)
	}

	_, err = ReadSession(dir + "/missing.phhs")
	assert.Error(t, err)
}

package bot

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemroom/internal/authority"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(actions []ValidAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name
	}
	return out
}

func TestValidActionsFacingTheBigBlind(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000, 1000))
	require.NoError(t, tt.BeginRound())
	s := tt.State()
	require.Equal(t, 0, s.Current)

	actions := ValidActions(s, 0)
	assert.Equal(t, []string{"fold", "call", "raise"}, names(actions))
	assert.Equal(t, 200, actions[1].MinAmount)
	assert.Equal(t, 400, actions[2].MinAmount)
	assert.Equal(t, 1000, actions[2].MaxAmount)

	assert.Empty(t, ValidActions(s, 1), "not seat 1's turn")
}

func TestValidActionsBigBlindOption(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000, 1000))
	require.NoError(t, tt.BeginRound())
	require.NoError(t, tt.Act(0, game.Bet(200)))
	require.NoError(t, tt.Act(1, game.Bet(100)))

	s := tt.State()
	require.Equal(t, 2, s.Current)
	actions := ValidActions(s, 2)
	assert.Equal(t, []string{"check", "raise"}, names(actions))
	assert.Equal(t, 200, actions[1].MinAmount)
	assert.Equal(t, 800, actions[1].MaxAmount)
}

func TestValidActionsAtShowdown(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000))
	require.NoError(t, tt.BeginRound())
	require.NoError(t, tt.Act(0, game.Bet(100)))
	for _, seat := range []int{1, 1, 0, 1, 0, 1, 0} {
		require.NoError(t, tt.Act(seat, game.Check()))
	}

	s := tt.State()
	require.Equal(t, game.Showdown, s.Street)
	assert.Equal(t, []string{"reveal", "muck"}, names(ValidActions(s, s.Current)))
}

func TestValidActionClampsAmounts(t *testing.T) {
	t.Parallel()

	raise := ValidAction{Name: "raise", Kind: game.ActionBet, MinAmount: 400, MaxAmount: 1000}
	assert.Equal(t, game.Bet(400), raise.Action(10))
	assert.Equal(t, game.Bet(1000), raise.Action(5000))
	assert.Equal(t, game.Check(), ValidAction{Kind: game.ActionCheck}.Action(300))
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000, 1000))
	require.NoError(t, tt.BeginRound())
	s := tt.State()
	actions := ValidActions(s, 0)
	logger := log.New(io.Discard)

	tests := []struct {
		strategy string
		want     []game.Action
	}{
		{"call", []game.Action{game.Bet(200)}},
		{"fold", []game.Action{game.Fold()}},
		{"random", []game.Action{game.Fold(), game.Bet(200)}},
	}
	for _, tc := range tests {
		t.Run(tc.strategy, func(t *testing.T) {
			t.Parallel()
			strategy, err := New(tc.strategy, randutil.New(1), logger)
			require.NoError(t, err)
			assert.Equal(t, tc.strategy, strategy.Name())

			d := strategy.MakeDecision(s, 0, actions)
			if tc.strategy == "random" {
				if d.Action.Kind == game.ActionBet {
					assert.GreaterOrEqual(t, d.Action.Amount, 200)
					assert.LessOrEqual(t, d.Action.Amount, 1000)
				} else {
					assert.Equal(t, game.ActionFold, d.Action.Kind)
				}
				return
			}
			assert.Equal(t, tc.want[0], d.Action)
			assert.NotEmpty(t, d.Reasoning)
		})
	}

	_, err := New("chart", nil, logger)
	assert.ErrorContains(t, err, "call, fold, maniac, random, tight")
	assert.True(t, ValidStrategy("Random"))
}

func TestTightBotPreflop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hole string
		want game.Action
	}{
		{name: "premium raises a quarter of the range", hole: "As Ad", want: game.Bet(550)},
		{name: "strong raises", hole: "Ac Qd", want: game.Bet(550)},
		{name: "trash folds", hole: "7c 2h", want: game.Fold()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tt := game.NewTestTable(game.WithBankrolls(1000, 1000, 1000))
			tt.Pool.Stack(game.OwnerName(0), tc.hole)
			require.NoError(t, tt.BeginRound())

			s := tt.State()
			d := NewTightBot(randutil.New(1), log.New(io.Discard)).MakeDecision(s, 0, ValidActions(s, 0))
			assert.Equal(t, tc.want, d.Action)
			require.NoError(t, tt.Act(0, d.Action))
		})
	}
}

func TestTightBotShowdown(t *testing.T) {
	t.Parallel()

	tt := game.NewTestTable(game.WithBankrolls(1000, 1000))
	tt.Pool.Stack("test", "2c 7d 9h Js 4s").Stack(game.OwnerName(0), "3h 5d").Stack(game.OwnerName(1), "8c 6h")
	require.NoError(t, tt.BeginRound())
	require.NoError(t, tt.Act(0, game.Bet(100)))
	for _, seat := range []int{1, 1, 0, 1, 0, 1, 0} {
		require.NoError(t, tt.Act(seat, game.Check()))
	}

	s := tt.State()
	require.Equal(t, game.Showdown, s.Street)
	seat := s.Current
	d := NewTightBot(randutil.New(1), log.New(io.Discard)).MakeDecision(s, seat, ValidActions(s, seat))
	if s.ForcedReveal(seat) {
		assert.Equal(t, game.Check(), d.Action)
	} else {
		assert.Equal(t, game.Fold(), d.Action, "high card mucks")
	}
}

func TestTightBotOnlyPlaysLegalActions(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 20; seed++ {
		tt := game.NewTestTable(game.WithSeed(seed), game.WithBankrolls(1000, 1000, 1000))
		require.NoError(t, tt.BeginRound())
		b := NewTightBot(randutil.New(seed), log.New(io.Discard))
		for i := 0; i < 40 && tt.State().Phase == game.PhaseBetting; i++ {
			s := tt.State()
			d := b.MakeDecision(s, s.Current, ValidActions(s, s.Current))
			require.NoError(t, tt.Act(s.Current, d.Action), "seed %d step %d: %s", seed, i, d.Action)
		}
		assert.Equal(t, game.PhaseRoundEnded, tt.State().Phase, "seed %d", seed)
	}
}

func TestManiacBotOnlyPlaysLegalActions(t *testing.T) {
	t.Parallel()

	raised := false
	for seed := int64(0); seed < 20; seed++ {
		tt := game.NewTestTable(game.WithSeed(seed), game.WithBankrolls(1000, 1000, 1000))
		require.NoError(t, tt.BeginRound())
		b := NewManiacBot(randutil.New(seed), log.New(io.Discard))
		for i := 0; i < 40 && tt.State().Phase == game.PhaseBetting; i++ {
			s := tt.State()
			d := b.MakeDecision(s, s.Current, ValidActions(s, s.Current))
			if s.Street != game.Showdown && d.Action.Kind == game.ActionBet && d.Action.Amount > s.CallAmount(s.Current) {
				raised = true
			}
			require.NoError(t, tt.Act(s.Current, d.Action), "seed %d step %d: %s", seed, i, d.Action)
		}
		assert.Equal(t, game.PhaseRoundEnded, tt.State().Phase, "seed %d", seed)
	}
	assert.True(t, raised, "a maniac raises at some point")
}

func TestManiacBotAlwaysReveals(t *testing.T) {
	t.Parallel()

	valid := []ValidAction{{Name: "reveal", Kind: game.ActionCheck}, {Name: "muck", Kind: game.ActionFold}}
	s := game.NewState("test", 2, 100, 200)
	d := NewManiacBot(randutil.New(1), log.New(io.Discard)).MakeDecision(&s, 0, valid)
	assert.Equal(t, game.Check(), d.Action)
}

func TestRandBotOnlyPlaysLegalActions(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 20; seed++ {
		tt := game.NewTestTable(game.WithSeed(seed), game.WithBankrolls(1000, 1000, 1000))
		require.NoError(t, tt.BeginRound())
		r := NewRandBot(randutil.New(seed), log.New(io.Discard))
		for i := 0; i < 40 && tt.State().Phase == game.PhaseBetting; i++ {
			s := tt.State()
			d := r.MakeDecision(s, s.Current, ValidActions(s, s.Current))
			require.NoError(t, tt.Act(s.Current, d.Action), "seed %d step %d: %s", seed, i, d.Action)
		}
		assert.Equal(t, game.PhaseRoundEnded, tt.State().Phase, "seed %d", seed)
	}
}

func TestPublishKeepsLatest(t *testing.T) {
	t.Parallel()

	d := NewDriver(nil)
	d.Publish(game.State{Version: 1})
	d.Publish(game.State{Version: 2})
	d.Publish(game.State{Version: 3})
	assert.Equal(t, uint64(3), (<-d.states).Version)
	select {
	case s := <-d.states:
		t.Fatalf("unexpected state %d", s.Version)
	default:
	}
}

func driveTable(t *testing.T, strategies ...Strategy) (*authority.Authority, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	var driver *Driver
	a := authority.New(game.NewStackedPool(9), authority.PublisherFunc(func(s game.State) { driver.Publish(s) }),
		authority.WithClock(quartz.NewMock(t)),
		authority.WithTableOptions(game.WithBankrollLimits(1, 100000)),
	)
	driver = NewDriver(a)

	done := make(chan struct{}, 2)
	go func() { _ = a.Run(ctx); done <- struct{}{} }()
	go func() { _ = driver.Run(ctx); done <- struct{}{} }()
	t.Cleanup(func() {
		cancel()
		<-done
		<-done
	})

	for seat, strategy := range strategies {
		require.NoError(t, a.Join(ctx, seat, game.OwnerName(seat), 1000))
		driver.Seat(seat, strategy)
	}
	return a, ctx
}

func waitForPhase(t *testing.T, a *authority.Authority, ctx context.Context, phase game.Phase) game.State {
	t.Helper()
	var s game.State
	require.Eventually(t, func() bool {
		var err error
		s, err = a.Snapshot(ctx)
		return err == nil && s.Phase == phase
	}, 5*time.Second, 5*time.Millisecond)
	return s
}

func TestDriverPlaysToShowdown(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)
	a, ctx := driveTable(t, NewCallBot(logger), NewCallBot(logger))
	require.NoError(t, a.StartGame(ctx, 0))

	s := waitForPhase(t, a, ctx, game.PhaseRoundEnded)
	assert.False(t, s.DefaultWin)
	assert.Equal(t, game.Showdown, s.Street)
	assert.NotEmpty(t, s.Results)
	assert.Equal(t, 2000, s.Players[0].Bankroll+s.Players[1].Bankroll)
}

func TestDriverFoldsToDefaultWin(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)
	a, ctx := driveTable(t, NewFoldBot(logger), NewCallBot(logger))
	require.NoError(t, a.StartGame(ctx, 0))

	s := waitForPhase(t, a, ctx, game.PhaseRoundEnded)
	assert.True(t, s.DefaultWin)
	assert.Equal(t, 900, s.Players[0].Bankroll)
	assert.Equal(t, 1100, s.Players[1].Bankroll)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/bot"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/history"
	"github.com/lox/holdemroom/internal/randutil"
	"github.com/lox/holdemroom/internal/statistics"
	"github.com/lox/holdemroom/internal/tokens"
)

// SimulateCmd plays strategies against each other on a local table, with no
// authority or timers in between.
type SimulateCmd struct {
	Bots       []string `kong:"default='call,random,random,fold',help='Strategy per seat, seat 0 first'"`
	Rounds     int      `kong:"default='1000',help='Maximum rounds to play'"`
	BuyIn      int      `kong:"default='10000',help='Starting bankroll for every seat'"`
	SmallBlind int      `kong:"default='100',help='Small blind amount'"`
	BigBlind   int      `kong:"default='200',help='Big blind amount'"`
	Seed       *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	Debug      bool     `kong:"help='Enable debug logging'"`
	History    string   `kong:"help='Write hand histories into this directory',type='path'"`
}

// SeatStats tracks one seat across a simulation.
type SeatStats struct {
	Seat     int
	Strategy string
	Bankroll int
	Won      int
	Showdown int
	Default  int
	Stats    statistics.Statistics
}

// SimulationResult summarises a simulation.
type SimulationResult struct {
	Seed      int64
	Rounds    int
	Showdowns int
	GameOver  bool
	Seats     []SeatStats
	History   string
}

func (c *SimulateCmd) Run() error {
	level := "warn"
	if c.Debug {
		level = "debug"
	}
	logger := setupLogger(level, c.Debug)
	seed := randutil.Seed(c.Seed)

	result, err := simulate(c, seed, logger)
	if err != nil {
		return err
	}
	printSimulation(os.Stdout, result)
	return nil
}

func simulate(c *SimulateCmd, seed int64, logger *log.Logger) (*SimulationResult, error) {
	if len(c.Bots) < 2 || len(c.Bots) > game.MaxSeats {
		return nil, fmt.Errorf("need 2 to %d bots, got %d", game.MaxSeats, len(c.Bots))
	}

	result := &SimulationResult{Seed: seed}
	bus := game.NewEventBus()
	var recorder *history.Recorder
	if c.History != "" {
		var err error
		recorder, err = history.NewRecorder(history.Config{Dir: c.History, FlushHands: 1000, IncludeHoleCards: true},
			history.WithLogger(logger),
			history.WithRand(randutil.Derive(seed, historyStream)),
		)
		if err != nil {
			return nil, err
		}
		bus.Subscribe(recorder)
		result.History = recorder.Path()
	}

	pool := tokens.NewPool(randutil.Derive(seed, 0), tokens.WithLogger(logger))
	table := game.NewTable(pool,
		game.WithTableID("sim"),
		game.WithBlinds(c.SmallBlind, c.BigBlind),
		game.WithBankrollLimits(1, c.BuyIn),
		game.WithLogger(logger),
		game.WithEventBus(bus),
	)

	strategies := make([]bot.Strategy, len(c.Bots))
	for seat, name := range c.Bots {
		strategy, err := bot.New(name, randutil.Derive(seed, uint64(seat+1)), logger)
		if err != nil {
			return nil, err
		}
		strategies[seat] = strategy
		if err := table.Join(seat, fmt.Sprintf("%s-%d", strategy.Name(), seat), c.BuyIn); err != nil {
			return nil, err
		}
		result.Seats = append(result.Seats, SeatStats{Seat: seat, Strategy: strategy.Name()})
	}
	total := c.BuyIn * len(c.Bots)
	var start [game.MaxSeats]int

	if err := table.StartGame(0); err != nil {
		return nil, err
	}
	for result.Rounds < c.Rounds {
		s := table.State()
		switch s.Phase {
		case game.PhaseWaiting:
			for seat := range result.Seats {
				start[seat] = s.Players[seat].Bankroll
			}
			if err := table.BeginRound(); err != nil {
				return nil, fmt.Errorf("round %d: %w", result.Rounds+1, err)
			}
		case game.PhaseBetting:
			seat := s.Current
			d := strategies[seat].MakeDecision(s, seat, bot.ValidActions(s, seat))
			if err := table.Act(seat, d.Action); err != nil {
				return nil, fmt.Errorf("round %d seat %d %s: %w", s.Round, seat, d.Action, err)
			}
		case game.PhaseRoundEnded:
			result.Rounds++
			tally(result, s, start)
			if recorder != nil {
				recorder.Publish(*s)
				if recorder.Buffered() >= 1000 {
					if err := recorder.Flush(); err != nil {
						return nil, err
					}
				}
			}
			if err := table.FinishRound(); err != nil {
				return nil, err
			}
			if got := chipsOnTable(table.State()); got != total {
				return nil, fmt.Errorf("round %d: chips not conserved, %d on the table, want %d", s.Round, got, total)
			}
		case game.PhaseIdle:
			result.GameOver = true
			return finish(result, table.State(), recorder)
		case game.PhaseStalled:
			return nil, fmt.Errorf("table stalled: %s", s.StallReason)
		}
	}
	return finish(result, table.State(), recorder)
}

func tally(result *SimulationResult, s *game.State, start [game.MaxSeats]int) {
	if !s.DefaultWin {
		result.Showdowns++
	}
	pot := 0
	for _, r := range s.Results {
		pot += r.Amount
	}
	bb := float64(s.BigBlind)
	for i := range result.Seats {
		if !s.Players[i].InRound() {
			continue
		}
		net := s.Players[i].Bankroll - start[i]
		result.Seats[i].Stats.Add(float64(net)/bb, !s.DefaultWin, float64(pot)/bb)
	}
	for _, r := range s.Results {
		for i, seat := range r.Winners {
			st := &result.Seats[seat]
			st.Won += r.Payouts[i]
			if s.DefaultWin {
				st.Default++
			} else {
				st.Showdown++
			}
		}
	}
}

func chipsOnTable(s *game.State) int {
	total := 0
	for seat := 0; seat < s.Seats; seat++ {
		total += s.Players[seat].Bankroll
	}
	return total + s.SumOfAllBets()
}

func finish(result *SimulationResult, s *game.State, recorder *history.Recorder) (*SimulationResult, error) {
	for i := range result.Seats {
		result.Seats[i].Bankroll = s.Players[result.Seats[i].Seat].Bankroll
	}
	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			return nil, fmt.Errorf("write hand histories: %w", err)
		}
	}
	return result, nil
}

func printSimulation(w io.Writer, r *SimulationResult) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(" Simulation: %d rounds, seed %d ", r.Rounds, r.Seed)))
	if r.GameOver {
		fmt.Fprintln(w, warningStyle.Render("Game over: fewer than two players with chips"))
	}
	fmt.Fprintf(w, "%s %d of %d rounds\n", infoStyle.Render("Showdowns:"), r.Showdowns, r.Rounds)
	if r.History != "" {
		fmt.Fprintf(w, "%s %s\n", infoStyle.Render("Hand histories:"), r.History)
	}
	fmt.Fprintln(w)

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-8s %10s %10s %9s %9s %9s %19s\n", "seat", "strategy", "bankroll", "won", "showdown", "default", "bb/100", "95% ci")
	for _, st := range r.Seats {
		lo, hi := st.Stats.ConfidenceInterval95()
		fmt.Fprintf(&b, "%-5d %-8s %10d %10d %9d %9d %9.1f %19s\n", st.Seat, st.Strategy, st.Bankroll, st.Won, st.Showdown, st.Default,
			st.Stats.BBPer100(), fmt.Sprintf("[%.1f, %.1f]", lo*100, hi*100))
	}
	fmt.Fprint(w, tableStyle.Render(strings.TrimRight(b.String(), "\n")))
	fmt.Fprintln(w)
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/authority"
	"github.com/lox/holdemroom/internal/bot"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/history"
	"github.com/lox/holdemroom/internal/randutil"
	"github.com/lox/holdemroom/internal/replica"
	"github.com/lox/holdemroom/internal/server"
	"github.com/lox/holdemroom/internal/tokens"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs one table: the authority, the HTTP/websocket API and any
// configured bots.
type ServeCmd struct {
	Config    string        `kong:"help='HCL config file',type='path'"`
	Addr      string        `kong:"help='Listen address, overrides the config file'"`
	Debug     bool          `kong:"help='Enable debug logging'"`
	Seed      *int64        `kong:"help='Deterministic RNG seed (optional)'"`
	AutoStart bool          `kong:"help='Start the game once the configured bots are seated'"`
	ThinkTime time.Duration `kong:"default='500ms',help='Delay before each bot decision'"`
	History   string        `kong:"help='Record hand histories into this directory',type='path'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadEnv(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.SetAddress(c.Addr)
	}
	if c.Seed != nil {
		cfg.Table.Seed = *c.Seed
	}
	cfg.Table.AutoStart = cfg.Table.AutoStart || c.AutoStart
	if c.History != "" {
		cfg.History.Dir = c.History
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	timing, err := cfg.Timing.Durations()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Server.LogLevel, c.Debug)
	seed := cfg.Table.Seed
	if seed == 0 {
		seed = randutil.Seed(nil)
	}
	logger.Info("Using seed", "seed", seed)

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	pool := tokens.NewPool(randutil.Derive(seed, 0), tokens.WithLogger(logger))
	hub := server.NewHub(replica.New(), pool, logger)
	bus := game.NewEventBus()
	bus.Subscribe(hub)

	var a *authority.Authority
	driver := bot.NewDriver(bot.ActorFunc(func(ctx context.Context, seat int, action game.Action) error {
		return a.Act(ctx, seat, action)
	}), bot.WithLogger(logger), bot.WithThinkTime(c.ThinkTime))

	publishers := authority.Publishers{hub, driver}
	var recorder *history.Recorder
	if histCfg, ok, _ := cfg.History.Recorder(); ok {
		recorder, err = history.NewRecorder(histCfg,
			history.WithLogger(logger),
			history.WithRand(randutil.Derive(seed, historyStream)),
		)
		if err != nil {
			return err
		}
		bus.Subscribe(recorder)
		publishers = append(publishers, recorder)
		logger.Info("Recording hand histories", "path", recorder.Path())
	}

	tableOpts := append(cfg.TableOptions(), game.WithEventBus(bus))
	a = authority.New(pool, publishers,
		authority.WithTiming(timing),
		authority.WithLogger(logger),
		authority.WithTableOptions(tableOpts...),
	)
	srv := server.NewServer(cfg, a, hub, logger)

	logger.Info("Starting holdemroom",
		"address", cfg.Address(),
		"table", cfg.Table.Name,
		"seats", cfg.Table.Seats,
		"small_blind", cfg.Table.SmallBlind,
		"big_blind", cfg.Table.BigBlind,
		"bots", len(cfg.Bots))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error { return a.Run(ctx) })
	g.Go(func() error { return driver.Run(ctx) })
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	g.Go(func() error { return seatBots(ctx, cfg, a, driver, seed, logger) })
	if recorder != nil {
		g.Go(func() error { return recorder.Run(ctx) })
	}

	return g.Wait()
}

// historyStream is the random stream hand ids are drawn from; bots use 1..n.
const historyStream = 1 << 16

// seatBots joins the configured bots and starts the game if asked to.
func seatBots(ctx context.Context, cfg *server.Config, a *authority.Authority, driver *bot.Driver, seed int64, logger *log.Logger) error {
	for i, b := range cfg.Bots {
		strategy, err := bot.New(b.Strategy, randutil.Derive(seed, uint64(i+1)), logger)
		if err != nil {
			return err
		}
		driver.Seat(b.Seat, strategy)
		if err := a.Join(ctx, b.Seat, "bot-"+b.Name, b.BuyIn); err != nil {
			return fmt.Errorf("seat bot %s: %w", b.Name, err)
		}
		logger.Info("Bot seated", "name", b.Name, "seat", b.Seat, "strategy", b.Strategy, "buy_in", b.BuyIn)
	}

	if !cfg.Table.AutoStart || len(cfg.Bots) < 2 {
		return nil
	}
	if err := a.StartGame(ctx, cfg.Bots[0].Seat); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	logger.Info("Game started", "dealer", cfg.Bots[0].Seat)
	return nil
}

package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/holdemroom/internal/authority"
	"github.com/lox/holdemroom/internal/bot"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/history"
)

// Environment variables that override the config file.
const (
	EnvAddr     = "HOLDEMROOM_ADDR"
	EnvLogLevel = "HOLDEMROOM_LOG_LEVEL"
	EnvConfig   = "HOLDEMROOM_CONFIG"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings  `hcl:"server,block"`
	Table   TableSettings   `hcl:"table,block"`
	Timing  TimingSettings  `hcl:"timing,block"`
	History HistorySettings `hcl:"history,block"`
	Bots    []BotConfig     `hcl:"bot,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableSettings describes the one table this server runs.
type TableSettings struct {
	Name         string `hcl:"name,optional"`
	Seats        int    `hcl:"seats,optional"`
	SmallBlind   int    `hcl:"small_blind,optional"`
	BigBlind     int    `hcl:"big_blind,optional"`
	MinBankroll  int    `hcl:"min_bankroll,optional"`
	MaxBankroll  int    `hcl:"max_bankroll,optional"`
	DefaultBuyIn int    `hcl:"default_buy_in,optional"`
	Seed         int64  `hcl:"seed,optional"`
	AutoStart    bool   `hcl:"auto_start,optional"`
}

// TimingSettings holds the table clocks as duration strings ("8s", "250ms").
type TimingSettings struct {
	RoundEndShowdown string `hcl:"round_end_showdown,optional"`
	RoundEndDefault  string `hcl:"round_end_default,optional"`
	ActionTimeout    string `hcl:"action_timeout,optional"`
	ShowdownTimeout  string `hcl:"showdown_timeout,optional"`
	TokenPoll        string `hcl:"token_poll,optional"`
	TokenTimeout     string `hcl:"token_timeout,optional"`
}

// HistorySettings turns on hand history recording when Dir is set.
type HistorySettings struct {
	Dir           string `hcl:"dir,optional"`
	FlushInterval string `hcl:"flush_interval,optional"`
	FlushHands    int    `hcl:"flush_hands,optional"`
	HoleCards     bool   `hcl:"hole_cards,optional"`
}

// BotConfig seats a bot when the server starts.
type BotConfig struct {
	Name     string `hcl:"name,label"`
	Strategy string `hcl:"strategy,optional"`
	Seat     int    `hcl:"seat"`
	BuyIn    int    `hcl:"buy_in,optional"`
}

// hclFile mirrors Config with optional blocks so a file may omit any of them.
type hclFile struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Table   *TableSettings   `hcl:"table,block"`
	Timing  *TimingSettings  `hcl:"timing,block"`
	History *HistorySettings `hcl:"history,block"`
	Bots    []BotConfig      `hcl:"bot,block"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: TableSettings{
			Name:         "main",
			Seats:        game.MaxSeats,
			SmallBlind:   game.DefaultSmallBlind,
			BigBlind:     game.DefaultBigBlind,
			MinBankroll:  game.DefaultMinBankroll,
			MaxBankroll:  game.DefaultMaxBankroll,
			DefaultBuyIn: 10000,
		},
		Timing: TimingSettings{
			RoundEndShowdown: "8s",
			RoundEndDefault:  "5s",
			ActionTimeout:    "30s",
			ShowdownTimeout:  "12s",
			TokenPoll:        "250ms",
			TokenTimeout:     "10s",
		},
		History: HistorySettings{
			FlushInterval: "10s",
			FlushHands:    100,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults; anything the file leaves out keeps its default.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()
	if filename == "" {
		return config, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if parsed.Server != nil {
		mergeString(&config.Server.Address, parsed.Server.Address)
		mergeInt(&config.Server.Port, parsed.Server.Port)
		mergeString(&config.Server.LogLevel, parsed.Server.LogLevel)
	}
	if t := parsed.Table; t != nil {
		mergeString(&config.Table.Name, t.Name)
		mergeInt(&config.Table.Seats, t.Seats)
		mergeInt(&config.Table.SmallBlind, t.SmallBlind)
		mergeInt(&config.Table.BigBlind, t.BigBlind)
		mergeInt(&config.Table.MinBankroll, t.MinBankroll)
		mergeInt(&config.Table.MaxBankroll, t.MaxBankroll)
		mergeInt(&config.Table.DefaultBuyIn, t.DefaultBuyIn)
		if t.Seed != 0 {
			config.Table.Seed = t.Seed
		}
		config.Table.AutoStart = t.AutoStart
	}
	if t := parsed.Timing; t != nil {
		mergeString(&config.Timing.RoundEndShowdown, t.RoundEndShowdown)
		mergeString(&config.Timing.RoundEndDefault, t.RoundEndDefault)
		mergeString(&config.Timing.ActionTimeout, t.ActionTimeout)
		mergeString(&config.Timing.ShowdownTimeout, t.ShowdownTimeout)
		mergeString(&config.Timing.TokenPoll, t.TokenPoll)
		mergeString(&config.Timing.TokenTimeout, t.TokenTimeout)
	}

	if h := parsed.History; h != nil {
		mergeString(&config.History.Dir, h.Dir)
		mergeString(&config.History.FlushInterval, h.FlushInterval)
		mergeInt(&config.History.FlushHands, h.FlushHands)
		config.History.HoleCards = h.HoleCards
	}

	config.Bots = parsed.Bots
	for i := range config.Bots {
		if config.Bots[i].Strategy == "" {
			config.Bots[i].Strategy = "call"
		}
		if config.Bots[i].BuyIn == 0 {
			config.Bots[i].BuyIn = config.Table.DefaultBuyIn
		}
	}

	return config, nil
}

// LoadEnv reads a .env file if there is one and applies the HOLDEMROOM_*
// overrides. The config file named by HOLDEMROOM_CONFIG is loaded when path
// is empty.
func LoadEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.SetAddress(addr)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Server.LogLevel = level
	}
}

// SetAddress accepts "host:port", ":port" or a bare host.
func (c *Config) SetAddress(addr string) {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		c.Server.Address = addr
		return
	}
	if port, err := strconv.Atoi(portText); err == nil {
		c.Server.Port = port
	}
	c.Server.Address = host
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	t := c.Table
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table %s: small blind must be positive", t.Name)
	}
	if t.BigBlind <= t.SmallBlind {
		return fmt.Errorf("table %s: big blind must be greater than small blind", t.Name)
	}
	if t.Seats < 2 || t.Seats > game.MaxSeats {
		return fmt.Errorf("table %s: seats must be between 2 and %d", t.Name, game.MaxSeats)
	}
	if t.MinBankroll <= 0 || t.MinBankroll > t.MaxBankroll {
		return fmt.Errorf("table %s: bankroll bounds %d..%d out of order", t.Name, t.MinBankroll, t.MaxBankroll)
	}
	if t.DefaultBuyIn < t.MinBankroll || t.DefaultBuyIn > t.MaxBankroll {
		return fmt.Errorf("table %s: default buy-in %d outside %d..%d", t.Name, t.DefaultBuyIn, t.MinBankroll, t.MaxBankroll)
	}

	if _, err := c.Timing.Durations(); err != nil {
		return err
	}
	if _, _, err := c.History.Recorder(); err != nil {
		return err
	}

	seats := make(map[int]string)
	for _, b := range c.Bots {
		if !bot.ValidStrategy(b.Strategy) {
			return fmt.Errorf("bot %s: invalid strategy %s", b.Name, b.Strategy)
		}
		if b.Seat < 0 || b.Seat >= t.Seats {
			return fmt.Errorf("bot %s: seat %d out of range", b.Name, b.Seat)
		}
		if other, taken := seats[b.Seat]; taken {
			return fmt.Errorf("bot %s: seat %d already taken by %s", b.Name, b.Seat, other)
		}
		seats[b.Seat] = b.Name
		if b.BuyIn < t.MinBankroll || b.BuyIn > t.MaxBankroll {
			return fmt.Errorf("bot %s: buy-in %d outside %d..%d", b.Name, b.BuyIn, t.MinBankroll, t.MaxBankroll)
		}
	}

	return nil
}

// Durations parses the timing block.
func (t TimingSettings) Durations() (authority.Timing, error) {
	var timing authority.Timing
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"round_end_showdown", t.RoundEndShowdown, &timing.RoundEndShowdown},
		{"round_end_default", t.RoundEndDefault, &timing.RoundEndDefault},
		{"action_timeout", t.ActionTimeout, &timing.ActionTimeout},
		{"showdown_timeout", t.ShowdownTimeout, &timing.ShowdownTimeout},
		{"token_poll", t.TokenPoll, &timing.TokenPoll},
		{"token_timeout", t.TokenTimeout, &timing.TokenTimeout},
	}
	var errs []error
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("timing %s: %w", f.name, err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("timing %s: must be positive", f.name))
		default:
			*f.dst = d
		}
	}
	return timing, errors.Join(errs...)
}

// Recorder translates the history block. ok is false when recording is off.
func (h HistorySettings) Recorder() (cfg history.Config, ok bool, err error) {
	if h.Dir == "" {
		return cfg, false, nil
	}
	interval, err := time.ParseDuration(h.FlushInterval)
	if err != nil {
		return cfg, false, fmt.Errorf("history flush_interval: %w", err)
	}
	if interval <= 0 || h.FlushHands <= 0 {
		return cfg, false, errors.New("history: flush_interval and flush_hands must be positive")
	}
	return history.Config{
		Dir:              h.Dir,
		FlushInterval:    interval,
		FlushHands:       h.FlushHands,
		IncludeHoleCards: h.HoleCards,
	}, true, nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TableOptions translates the table block.
func (c *Config) TableOptions() []game.TableOption {
	return []game.TableOption{
		game.WithTableID(c.Table.Name),
		game.WithSeats(c.Table.Seats),
		game.WithBlinds(c.Table.SmallBlind, c.Table.BigBlind),
		game.WithBankrollLimits(c.Table.MinBankroll, c.Table.MaxBankroll),
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

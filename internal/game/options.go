package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Default table parameters.
const (
	DefaultSmallBlind  = 100
	DefaultBigBlind    = 200
	DefaultMinBankroll = 5000
	DefaultMaxBankroll = 20000
)

// TableOption configures a Table during creation.
type TableOption func(*tableConfig)

type tableConfig struct {
	tableID     string
	seats       int
	smallBlind  int
	bigBlind    int
	minBankroll int
	maxBankroll int
	logger      *log.Logger
	bus         EventBus
	clock       quartz.Clock
}

func defaultTableConfig() tableConfig {
	return tableConfig{
		tableID:     "table",
		seats:       MaxSeats,
		smallBlind:  DefaultSmallBlind,
		bigBlind:    DefaultBigBlind,
		minBankroll: DefaultMinBankroll,
		maxBankroll: DefaultMaxBankroll,
	}
}

// WithTableID names the table; the id doubles as the owner of community card tokens.
func WithTableID(id string) TableOption {
	return func(c *tableConfig) { c.tableID = id }
}

// WithSeats limits the table to n seats (2..MaxSeats).
func WithSeats(n int) TableOption {
	return func(c *tableConfig) { c.seats = n }
}

// WithBlinds sets the fixed blind sizes.
func WithBlinds(small, big int) TableOption {
	return func(c *tableConfig) {
		c.smallBlind = small
		c.bigBlind = big
	}
}

// WithBankrollLimits bounds the bankroll a player may sit down with.
func WithBankrollLimits(minimum, maximum int) TableOption {
	return func(c *tableConfig) {
		c.minBankroll = minimum
		c.maxBankroll = maximum
	}
}

func WithLogger(logger *log.Logger) TableOption {
	return func(c *tableConfig) { c.logger = logger }
}

func WithEventBus(bus EventBus) TableOption {
	return func(c *tableConfig) { c.bus = bus }
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) TableOption {
	return func(c *tableConfig) { c.clock = clock }
}

func (c *tableConfig) fill() {
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.bus == nil {
		c.bus = NewEventBus()
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.seats < 2 || c.seats > MaxSeats {
		c.seats = MaxSeats
	}
}

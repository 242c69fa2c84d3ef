package game

import (
	"fmt"

	"github.com/lox/holdemroom/internal/randutil"
	"github.com/lox/holdemroom/poker"
)

// StackedPool is a deterministic TokenPool for tests and replays. Cards
// stacked for an owner are dealt to that owner first; anything else comes
// from a seeded deck with the stacked cards removed.
type StackedPool struct {
	seed        int64
	stacked     map[string][]poker.Card
	deck        []poker.Card
	outstanding int
	hold        bool
	short       bool
}

// NewStackedPool creates a pool backed by a deck seeded with seed.
func NewStackedPool(seed int64) *StackedPool {
	return &StackedPool{seed: seed, stacked: make(map[string][]poker.Card)}
}

// Stack queues cards for owner's next request. It panics on unparsable cards.
func (p *StackedPool) Stack(owner, cards string) *StackedPool {
	parsed, err := poker.ParseCards(cards)
	if err != nil {
		panic(fmt.Sprintf("stack %s: %v", owner, err))
	}
	p.stacked[owner] = append(p.stacked[owner], parsed...)
	return p
}

// Hold makes ReturnAll leave tokens outstanding until Release.
func (p *StackedPool) Hold() { p.hold = true }

// Release returns every token, held or not.
func (p *StackedPool) Release() {
	p.hold = false
	p.outstanding = 0
}

// ShortDeal makes the next request return one card too few.
func (p *StackedPool) ShortDeal() { p.short = true }

func (p *StackedPool) Shuffle() {
	used := make(map[poker.Card]bool)
	for _, cards := range p.stacked {
		for _, c := range cards {
			used[c] = true
		}
	}
	p.deck = p.deck[:0]
	deck := poker.NewDeck(randutil.New(p.seed))
	p.seed++
	all, _ := deck.Deal(poker.NumCards)
	for _, c := range all {
		if !used[c] {
			p.deck = append(p.deck, c)
		}
	}
}

func (p *StackedPool) RequestTokens(owner string, count int) ([]poker.Card, error) {
	if p.short {
		p.short = false
		count--
	}
	out := make([]poker.Card, 0, count)
	for len(out) < count {
		if q := p.stacked[owner]; len(q) > 0 {
			out = append(out, q[0])
			p.stacked[owner] = q[1:]
			continue
		}
		if len(p.deck) == 0 {
			return nil, poker.ErrDeckExhausted
		}
		out = append(out, p.deck[0])
		p.deck = p.deck[1:]
	}
	p.outstanding += len(out)
	return out, nil
}

func (p *StackedPool) ReturnAll() {
	if !p.hold {
		p.outstanding = 0
	}
}

func (p *StackedPool) AllTokensReturned() bool { return p.outstanding == 0 }

// Outstanding is the number of tokens currently handed out.
func (p *StackedPool) Outstanding() int { return p.outstanding }

// TestTableOption configures test table creation
type TestTableOption func(*testTableBuilder)

type testTableBuilder struct {
	seed      int64
	opts      []TableOption
	bankrolls []int
	starter   int
	recorder  *EventRecorder
}

// WithSeed seeds the backing deck.
func WithSeed(seed int64) TestTableOption {
	return func(b *testTableBuilder) { b.seed = seed }
}

// WithBankrolls seats players p0..pN-1 in seats 0..N-1 with the given bankrolls.
func WithBankrolls(bankrolls ...int) TestTableOption {
	return func(b *testTableBuilder) { b.bankrolls = bankrolls }
}

// WithStarter makes seat the first dealer.
func WithStarter(seat int) TestTableOption {
	return func(b *testTableBuilder) { b.starter = seat }
}

// WithTableOptions passes options through to NewTable.
func WithTableOptions(opts ...TableOption) TestTableOption {
	return func(b *testTableBuilder) { b.opts = append(b.opts, opts...) }
}

// TestTable bundles a table with its deterministic pool and an event recorder.
type TestTable struct {
	*Table
	Pool   *StackedPool
	Events *EventRecorder
}

// OwnerName is the owner id NewTestTable gives seat.
func OwnerName(seat int) string { return fmt.Sprintf("p%d", seat) }

// NewTestTable creates a table with seated players and a started game. The
// first round is not dealt, so callers can stack cards before BeginRound.
func NewTestTable(opts ...TestTableOption) *TestTable {
	b := &testTableBuilder{
		seed:      42,
		bankrolls: []int{10000, 10000, 10000},
		recorder:  &EventRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}

	bus := NewEventBus()
	bus.Subscribe(b.recorder)
	pool := NewStackedPool(b.seed)
	tableOpts := append([]TableOption{
		WithTableID("test"),
		WithEventBus(bus),
		WithBankrollLimits(1, 1_000_000),
	}, b.opts...)
	table := NewTable(pool, tableOpts...)

	for seat, bankroll := range b.bankrolls {
		if bankroll <= 0 {
			continue
		}
		if err := table.Join(seat, OwnerName(seat), bankroll); err != nil {
			panic(err)
		}
	}
	if len(b.bankrolls) >= 2 {
		if err := table.StartGame(b.starter); err != nil {
			panic(err)
		}
	}
	return &TestTable{Table: table, Pool: pool, Events: b.recorder}
}

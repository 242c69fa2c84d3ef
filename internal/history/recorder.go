package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/randutil"
	"github.com/lox/holdemroom/poker"
)

// SessionFile is the name of the file hands are appended to.
const SessionFile = "session.phhs"

// maxFailures is how many flushes in a row may fail before recording stops.
const maxFailures = 3

// Config configures a Recorder.
type Config struct {
	Dir              string
	FlushInterval    time.Duration
	FlushHands       int
	IncludeHoleCards bool
}

// Recorder turns table events and committed states into hand histories.
// It subscribes to the table's event bus for actions and board cards and is
// published the committed state, whose round-ended snapshot supplies the
// stacks, hole cards and winnings.
type Recorder struct {
	cfg    Config
	path   string
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger

	mu       sync.Mutex
	flushMu  sync.Mutex
	current  *roundLog
	buffer   []*HandHistory
	section  int
	failures int
	disabled bool
	flushReq chan struct{}
}

type roundLog struct {
	id     string
	start  game.RoundStartEvent
	events []game.GameEvent
}

// Option configures a Recorder.
type Option func(*Recorder)

func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func WithClock(clock quartz.Clock) Option {
	return func(r *Recorder) { r.clock = clock }
}

// WithRand sets the source hand ids are drawn from.
func WithRand(rng *rand.Rand) Option {
	return func(r *Recorder) { r.rng = rng }
}

// NewRecorder prepares cfg.Dir and continues the section numbering of any
// session file already there.
func NewRecorder(cfg Config, opts ...Option) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, errors.New("history: Dir is required")
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.FlushHands <= 0 {
		cfg.FlushHands = 100
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	r := &Recorder{
		cfg:      cfg,
		path:     filepath.Join(cfg.Dir, SessionFile),
		clock:    quartz.NewReal(),
		logger:   log.New(io.Discard),
		flushReq: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = randutil.New(randutil.Seed(nil))
	}
	r.logger = r.logger.WithPrefix("history")

	section, err := lastSection(r.path)
	if err != nil {
		return nil, fmt.Errorf("history: read sections: %w", err)
	}
	r.section = section
	return r, nil
}

// Path is the session file hands are written to.
func (r *Recorder) Path() string { return r.path }

// OnEvent collects the current round's actions and board cards.
func (r *Recorder) OnEvent(event game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disabled {
		return
	}

	switch e := event.(type) {
	case game.RoundStartEvent:
		r.current = &roundLog{id: NewHandID(r.rng, e.At), start: e}
	case game.PlayerActionEvent:
		if r.current != nil && e.Round == r.current.start.Round {
			r.current.events = append(r.current.events, e)
		}
	case game.StreetChangeEvent:
		if r.current != nil && e.Round == r.current.start.Round {
			r.current.events = append(r.current.events, e)
		}
	case game.TableStalledEvent:
		r.current = nil
	}
}

// Publish completes the current hand once its round has ended.
func (r *Recorder) Publish(state game.State) {
	r.mu.Lock()
	if r.disabled || r.current == nil || state.Phase != game.PhaseRoundEnded || state.Round != r.current.start.Round {
		r.mu.Unlock()
		return
	}
	hand := r.current.hand(&state, r.cfg.IncludeHoleCards)
	r.current = nil
	r.buffer = append(r.buffer, hand)
	full := len(r.buffer) >= r.cfg.FlushHands
	r.mu.Unlock()

	r.logger.Debug("Hand recorded", "hand", hand.HandID, "round", hand.Round, "actions", len(hand.Actions))
	if full {
		select {
		case r.flushReq <- struct{}{}:
		default:
		}
	}
}

// Buffered is the number of hands waiting to be flushed.
func (r *Recorder) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Disabled reports whether recording stopped after repeated write failures.
func (r *Recorder) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

// Run flushes on an interval and whenever the buffer fills, until ctx is
// done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.cfg.FlushInterval, "history", "flush")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.Flush()
		case <-ticker.C:
			r.flushLogged()
		case <-r.flushReq:
			r.flushLogged()
		}
	}
}

func (r *Recorder) flushLogged() {
	err := r.Flush()
	if err == nil {
		return
	}
	r.logger.Error("Hand history flush failed", "error", err)
	if r.Disabled() {
		r.logger.Error("Hand history recording disabled after repeated failures", "path", r.path)
	}
}

// Flush appends buffered hands to the session file as numbered sections.
func (r *Recorder) Flush() error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	if r.disabled || len(r.buffer) == 0 {
		r.mu.Unlock()
		return nil
	}
	hands := append([]*HandHistory(nil), r.buffer...)
	section := r.section
	r.mu.Unlock()

	written, err := r.write(hands, section)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = r.buffer[written:]
	r.section = section + written
	if err != nil {
		r.failures++
		if r.failures >= maxFailures {
			r.disabled = true
			r.buffer = nil
		}
		return err
	}
	r.failures = 0
	return nil
}

func (r *Recorder) write(hands []*HandHistory, section int) (int, error) {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, hand := range hands {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d]\n", section+i+1)
		if err := Encode(&b, hand); err != nil {
			return i, err
		}
		b.WriteString("\n")
		if _, err := w.WriteString(b.String()); err != nil {
			return i, err
		}
		if err := w.Flush(); err != nil {
			return i, err
		}
	}
	return len(hands), nil
}

// lastSection is the highest "[n]" header in path, or 0.
func lastSection(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	last := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 3 || line[0] != '[' || line[len(line)-1] != ']' {
			continue
		}
		if n, err := strconv.Atoi(line[1 : len(line)-1]); err == nil && n > last {
			last = n
		}
	}
	return last, scanner.Err()
}

// hand renders the round from its events and the round-ended state.
func (l *roundLog) hand(s *game.State, holeCards bool) *HandHistory {
	start := l.start

	// position order from the small blind
	seats := append([]int(nil), start.Players...)
	sort.Slice(seats, func(i, j int) bool {
		return (seats[i]-start.SmallBlind+s.Seats)%s.Seats < (seats[j]-start.SmallBlind+s.Seats)%s.Seats
	})
	pos := make(map[int]int, len(seats))
	for i, seat := range seats {
		pos[seat] = i
	}

	winnings := make(map[int]int)
	for _, res := range s.Results {
		for i, seat := range res.Winners {
			winnings[seat] += res.Payouts[i]
		}
	}

	n := len(seats)
	h := &HandHistory{
		Variant:           Variant,
		Table:             s.TableID,
		SeatCount:         s.Seats,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            s.BigBlind,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Players:           make([]string, n),
		HandID:            l.id,
		Round:             start.Round,
		Timestamp:         start.At,
	}

	contributed := make([]int, n)
	for i, seat := range seats {
		p := s.Players[seat]
		h.Seats[i] = seat + 1
		h.Players[i] = p.OwnerID
		h.FinishingStacks[i] = p.Bankroll
		h.Winnings[i] = winnings[seat]
		h.StartingStacks[i] = p.Bankroll + p.TotalBet() - winnings[seat]

		switch seat {
		case start.SmallBlind:
			h.BlindsOrStraddles[i] = s.SmallBlind
			contributed[i] = min(s.SmallBlind, h.StartingStacks[i])
		case start.BigBlind:
			h.BlindsOrStraddles[i] = s.BigBlind
			contributed[i] = min(s.BigBlind, h.StartingStacks[i])
		}

		cards := "????"
		if holeCards && p.Dealt() {
			cards = cardRun(p.Hole[:])
		}
		h.Actions = append(h.Actions, fmt.Sprintf("d dh %s %s", player(i), cards))
	}

	dealt := 0
	for _, event := range l.events {
		switch e := event.(type) {
		case game.StreetChangeEvent:
			for _, size := range []int{3, 4, 5} {
				if dealt < size && len(e.Board) >= size {
					h.Actions = append(h.Actions, "d db "+cardRun(e.Board[dealt:size]))
					dealt = size
				}
			}
			if e.Street > game.Preflop {
				clear(contributed)
			}
		case game.PlayerActionEvent:
			i, ok := pos[e.Seat]
			if !ok {
				continue
			}
			if action := formatAction(i, e, contributed, s.Players[e.Seat].Hole); action != "" {
				h.Actions = append(h.Actions, action)
			}
		}
	}

	h.setTime()
	return h
}

// formatAction converts one table action to PHH, updating the street
// contributions. Calls and checks are "cc"; bets and raises are "cbr" to the
// seat's street total.
func formatAction(i int, e game.PlayerActionEvent, contributed []int, hole [2]poker.Card) string {
	if e.Street == game.Showdown {
		if e.Action.Kind == game.ActionCheck {
			return fmt.Sprintf("%s sm %s", player(i), cardRun(hole[:]))
		}
		return ""
	}

	switch e.Action.Kind {
	case game.ActionFold:
		return player(i) + " f"
	case game.ActionCheck:
		return player(i) + " cc"
	}
	highest := 0
	for _, c := range contributed {
		highest = max(highest, c)
	}
	contributed[i] += e.Action.Amount
	if contributed[i] <= highest {
		return player(i) + " cc"
	}
	return fmt.Sprintf("%s cbr %d", player(i), contributed[i])
}

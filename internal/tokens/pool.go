// Package tokens tracks the physical card tokens a table deals from.
//
// A token is handed to an owner (a player id, or the table id for the board)
// when dealt. Presentation clients that display tokens attach as holders;
// once a round is over the tokens only come back after every attached holder
// has released them, or when the pool reclaims them by force.
package tokens

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/poker"
)

// Pool is a deck-backed token pool. It is safe for concurrent use: the
// authority deals from it while holders release from their own goroutines.
type Pool struct {
	mu      sync.Mutex
	deck    *poker.Deck
	dealt   map[poker.Card]string
	holders map[string]bool
	pending map[string]bool
	logger  *log.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool's logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pool) { p.logger = logger.WithPrefix("tokens") }
}

// NewPool creates a pool whose shuffles draw from rng.
func NewPool(rng *rand.Rand, opts ...Option) *Pool {
	p := &Pool{
		deck:    poker.NewDeck(rng),
		dealt:   make(map[poker.Card]string),
		holders: make(map[string]bool),
		pending: make(map[string]bool),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Shuffle restores the undealt deck to all 52 tokens in a fresh order. It is
// only called once every token is back.
func (p *Pool) Shuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dealt) > 0 {
		p.logger.Warn("Shuffling with tokens outstanding", "outstanding", len(p.dealt))
		clear(p.dealt)
	}
	p.deck.Shuffle()
}

// RequestTokens deals count tokens to owner.
func (p *Pool) RequestTokens(owner string, count int) ([]poker.Card, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if owner == "" {
		return nil, fmt.Errorf("request tokens: empty owner")
	}
	cards, err := p.deck.Deal(count)
	if err != nil {
		return nil, fmt.Errorf("request %d tokens for %s: %w", count, owner, err)
	}
	for _, c := range cards {
		p.dealt[c] = owner
	}
	return cards, nil
}

// ReturnAll asks for every dealt token back. Without attached holders they
// return at once; otherwise each holder must Release first.
func (p *Pool) ReturnAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dealt) == 0 {
		return
	}
	if len(p.holders) == 0 {
		clear(p.dealt)
		return
	}
	for h := range p.holders {
		p.pending[h] = true
	}
	p.logger.Debug("Waiting for holders", "holders", len(p.pending), "outstanding", len(p.dealt))
}

// AllTokensReturned reports whether no token is out.
func (p *Pool) AllTokensReturned() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dealt) == 0
}

// Outstanding is the number of tokens currently dealt.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dealt)
}

// Held returns the tokens dealt to owner, in card order.
func (p *Pool) Held(owner string) []poker.Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	var cards []poker.Card
	for c, o := range p.dealt {
		if o == owner {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
	return cards
}

// Attach registers a holder that must release tokens before they return.
func (p *Pool) Attach(holder string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holders[holder] = true
}

// Detach removes a holder. A detaching holder releases anything it was asked for.
func (p *Pool) Detach(holder string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.holders, holder)
	p.releaseLocked(holder)
}

// Release acknowledges a ReturnAll on behalf of holder. It reports whether
// that was the last outstanding acknowledgement.
func (p *Pool) Release(holder string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.releaseLocked(holder)
}

func (p *Pool) releaseLocked(holder string) bool {
	if !p.pending[holder] {
		return false
	}
	delete(p.pending, holder)
	if len(p.pending) > 0 {
		return false
	}
	clear(p.dealt)
	return true
}

// Reclaim forcibly returns every outstanding token and reports how many there were.
func (p *Pool) Reclaim() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.dealt)
	if n > 0 {
		p.logger.Warn("Reclaiming tokens", "outstanding", n, "holders", len(p.pending))
	}
	clear(p.dealt)
	clear(p.pending)
	return n
}

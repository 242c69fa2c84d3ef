package game

import "github.com/lox/holdemroom/poker"

// TokenPool hands out the physical card tokens for a deal. Tokens come back
// asynchronously once presentation clients release them, so the table checks
// AllTokensReturned before every deal instead of assuming it.
type TokenPool interface {
	Shuffle()
	// RequestTokens returns exactly count fresh cards for ownerID or an error.
	RequestTokens(ownerID string, count int) ([]poker.Card, error)
	// ReturnAll asks every holder to give its tokens back.
	ReturnAll()
	AllTokensReturned() bool
}

// Reclaimer is implemented by pools that can forcibly take back tokens a
// holder never returned.
type Reclaimer interface {
	Reclaim() int
}

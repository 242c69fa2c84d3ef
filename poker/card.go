package poker

import (
	"fmt"
	"strings"
)

// Card is one of the 52 physical card identities, encoded as suit*13 + rank.
type Card uint8

// Suits in catalog order.
const (
	Spades uint8 = iota
	Hearts
	Clubs
	Diamonds
)

// Ranks. Ace is stored low (rank 0); HighAce is the synthetic rank used
// when an ace completes a broadway straight.
const (
	Ace uint8 = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	HighAce
)

const (
	NumRanks = 13
	NumSuits = 4
	NumCards = NumRanks * NumSuits

	// NoCard marks an empty slot in a hand or on the board.
	NoCard Card = 0xFF
)

const (
	rankChars = "A23456789TJQK"
	suitChars = "shcd"
)

// NewCard returns the card with the given rank (0-12, ace low) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(suit*NumRanks + rank)
}

// Rank returns the canonical rank 0-12 with the ace at 0.
func (c Card) Rank() uint8 {
	return uint8(c) % NumRanks
}

// Suit returns the suit 0-3.
func (c Card) Suit() uint8 {
	return uint8(c) / NumRanks
}

// Valid reports whether c is one of the 52 catalog cards.
func (c Card) Valid() bool {
	return c < NumCards
}

// HighRank returns the rank with the ace promoted above the king (1-13).
func (c Card) HighRank() uint8 {
	r := c.Rank()
	if r == Ace {
		return HighAce
	}
	return r
}

// String renders the card as rank then suit, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// MarshalText implements encoding.TextMarshaler.
func (c Card) MarshalText() ([]byte, error) {
	if c == NoCard {
		return []byte{}, nil
	}
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card id %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string decodes to NoCard.
func (c *Card) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = NoCard
		return nil
	}
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a two-character card such as "Ah" or "9c". "10" is accepted for ten.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return NoCard, fmt.Errorf("invalid card %q", s)
	}
	rank := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if rank < 0 {
		return NoCard, fmt.Errorf("invalid rank in card %q", s)
	}
	suit := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if suit < 0 {
		return NoCard, fmt.Errorf("invalid suit in card %q", s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses whitespace or comma separated cards, or a run of
// concatenated two-character cards ("AsKsQs").
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 1 && len(fields[0]) > 3 {
		run := strings.ReplaceAll(fields[0], "10", "T")
		if len(run)%2 != 0 {
			return nil, fmt.Errorf("invalid card run %q", s)
		}
		fields = fields[:0]
		for i := 0; i < len(run); i += 2 {
			fields = append(fields, run[i:i+2])
		}
	}

	cards := make([]Card, 0, len(fields))
	seen := make(map[Card]bool, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		cards = append(cards, c)
	}
	return cards, nil
}

// FormatCards joins cards with single spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

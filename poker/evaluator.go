package poker

import (
	"fmt"
	"math/bits"
)

// Category enumerates hand categories from weakest to strongest. The zero
// value NoHand sorts below every real hand.
type Category uint8

const (
	NoHand Category = iota
	HighCard
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	NoHand:        "none",
	HighCard:      "High Card",
	OnePair:       "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

// String returns a human-readable category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// HandScore orders hands lexicographically by Category, Primary then Kicker.
// Higher is better in every field.
type HandScore struct {
	Category Category `json:"category"`
	Primary  int64    `json:"primary"`
	Kicker   int64    `json:"kicker"`
}

// Compare returns -1, 0 or 1 as a is worse than, equal to, or better than b.
func Compare(a, b HandScore) int {
	switch {
	case a.Category != b.Category:
		return cmpInt64(int64(a.Category), int64(b.Category))
	case a.Primary != b.Primary:
		return cmpInt64(a.Primary, b.Primary)
	default:
		return cmpInt64(a.Kicker, b.Kicker)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Beats reports whether s is strictly better than other.
func (s HandScore) Beats(other HandScore) bool { return Compare(s, other) > 0 }

// IsZero reports whether no hand has been recorded.
func (s HandScore) IsZero() bool { return s.Category == NoHand }

func (s HandScore) String() string {
	return fmt.Sprintf("%s (%d/%d)", s.Category, s.Primary, s.Kicker)
}

// kickerWeights[r-1] is the base-10 digit weight of high rank r (two = 1, ace = 10^12).
var kickerWeights = func() [NumRanks]int64 {
	var w [NumRanks]int64
	v := int64(1)
	for i := range w {
		w[i] = v
		v *= 10
	}
	return w
}()

// straightScore maps the lowest slot of a five-rank window to its score.
func straightScore(start int) int64 { return int64(start*5 + 10) }

// Evaluate5 scores exactly five distinct cards.
func Evaluate5(cards [5]Card) HandScore {
	// slots[r] is the suit occupancy mask of rank r; slot 13 mirrors the ace.
	var slots [NumRanks + 1]uint8
	var suitCount [NumSuits]int
	var kicker int64
	for _, c := range cards {
		slots[c.Rank()] |= 1 << c.Suit()
		suitCount[c.Suit()]++
		kicker += kickerWeights[c.HighRank()-1]
	}
	slots[HighAce] = slots[Ace]

	var straight HandScore
	for start := int(HighAce) - 4; start >= 0; start-- {
		common := slots[start]
		if common == 0 {
			continue
		}
		complete := true
		for k := 1; k < 5; k++ {
			if slots[start+k] == 0 {
				complete = false
				break
			}
			common &= slots[start+k]
		}
		if !complete {
			continue
		}
		score := straightScore(start)
		if common != 0 {
			category := StraightFlush
			if start == int(HighAce)-4 {
				category = RoyalFlush
			}
			return HandScore{Category: category, Primary: score, Kicker: score}
		}
		if straight.IsZero() {
			straight = HandScore{Category: Straight, Primary: score, Kicker: score}
		}
	}

	quads, trips, highPair, lowPair, high := -1, -1, -1, -1, -1
	for r := int(HighAce); r >= 1 && quads < 0; r-- {
		switch bits.OnesCount8(slots[r]) {
		case 4:
			quads = r
		case 3:
			trips = r
		case 2:
			if highPair < 0 {
				highPair = r
			} else if lowPair < 0 {
				lowPair = r
			}
		case 1:
			if high < 0 {
				high = r
			}
		}
	}

	flush := false
	for _, n := range suitCount {
		if n == 5 {
			flush = true
		}
	}

	switch {
	case quads >= 0:
		return HandScore{Category: FourOfAKind, Primary: int64(quads), Kicker: kicker}
	case trips >= 0 && highPair >= 0:
		return HandScore{Category: FullHouse, Primary: int64(trips*16 + highPair), Kicker: kicker}
	case flush:
		return HandScore{Category: Flush, Primary: kicker, Kicker: kicker}
	case !straight.IsZero():
		return straight
	case trips >= 0:
		return HandScore{Category: ThreeOfAKind, Primary: int64(trips), Kicker: kicker}
	case lowPair >= 0:
		return HandScore{Category: TwoPair, Primary: int64(highPair*16 + lowPair), Kicker: kicker}
	case highPair >= 0:
		return HandScore{Category: OnePair, Primary: int64(highPair), Kicker: kicker}
	default:
		return HandScore{Category: HighCard, Primary: int64(high), Kicker: kicker}
	}
}

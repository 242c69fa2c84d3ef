// Package history records finished rounds as Poker Hand History (PHH)
// sections appended to a session file.
package history

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lox/holdemroom/poker"
)

// Variant is the PHH code for no-limit Texas hold'em.
const Variant = "NT"

// HandHistory represents a single hand encoded in PHH format. Players are
// listed in position order starting from the small blind.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Round             int      `toml:"round,omitempty"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
	Day               int      `toml:"day,omitempty"`
	Month             int      `toml:"month,omitempty"`
	Year              int      `toml:"year,omitempty"`

	Timestamp time.Time `toml:"-"`
}

// Encode writes the hand history to w in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("history: hand is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// Decode parses a single PHH hand.
func Decode(data string) (*HandHistory, error) {
	var hand HandHistory
	if _, err := toml.Decode(data, &hand); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	return &hand, nil
}

// setTime fills the PHH time fields from Timestamp.
func (h *HandHistory) setTime() {
	if h.Timestamp.IsZero() {
		return
	}
	utc := h.Timestamp.UTC()
	h.Time = utc.Format(time.TimeOnly)
	h.TimeZone = "UTC"
	h.Day = utc.Day()
	h.Month = int(utc.Month())
	h.Year = utc.Year()
}

// cardRun joins cards with no separator, the way PHH actions spell them.
func cardRun(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// player is the PHH name for position index i.
func player(i int) string { return fmt.Sprintf("p%d", i+1) }

// ReadSession decodes every section of a session file in section order.
func ReadSession(path string) ([]*HandHistory, error) {
	sections := make(map[string]*HandHistory)
	if _, err := toml.DecodeFile(path, &sections); err != nil {
		return nil, fmt.Errorf("history: read %s: %w", path, err)
	}
	keys := make([]int, 0, len(sections))
	for k := range sections {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("history: unexpected section %q", k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	hands := make([]*HandHistory, len(keys))
	for i, k := range keys {
		hands[i] = sections[strconv.Itoa(k)]
	}
	return hands, nil
}

// Net is each player's finishing stack less their starting stack.
func (h *HandHistory) Net() []int {
	net := make([]int, len(h.StartingStacks))
	for i := range net {
		if i < len(h.FinishingStacks) {
			net[i] = h.FinishingStacks[i] - h.StartingStacks[i]
		}
	}
	return net
}

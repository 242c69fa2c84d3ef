package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lox/holdemroom/internal/history"
)

// HandsCmd summarises a recorded hand history session.
type HandsCmd struct {
	File  string `kong:"arg,help='Path to a session.phhs file',type='existingfile'"`
	Limit int    `kong:"help='Maximum number of hands to list (0 = all)'"`
}

func (c *HandsCmd) Run() error {
	hands, err := history.ReadSession(c.File)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no hands found in %s", c.File)
	}
	printHands(os.Stdout, hands, c.Limit)
	return nil
}

func printHands(w io.Writer, hands []*history.HandHistory, limit int) {
	if limit <= 0 || limit > len(hands) {
		limit = len(hands)
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(" %d hands ", len(hands))))
	for i, h := range hands[:limit] {
		var board []string
		for _, a := range h.Actions {
			if cards, ok := strings.CutPrefix(a, "d db "); ok {
				board = append(board, cards)
			}
		}
		var winners []string
		for j, won := range h.Winnings {
			if won > 0 && j < len(h.Players) {
				winners = append(winners, fmt.Sprintf("%s +%d", h.Players[j], won))
			}
		}
		fmt.Fprintf(w, "%4d. round %-4d %s  board %-16s %s\n",
			i+1, h.Round, infoStyle.Render(h.HandID), strings.Join(board, " "), successStyle.Render(strings.Join(winners, ", ")))
	}

	net := make(map[string]int)
	for _, h := range hands {
		for j, n := range h.Net() {
			if j < len(h.Players) {
				net[h.Players[j]] += n
			}
		}
	}
	players := make([]string, 0, len(net))
	for p := range net {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if net[players[i]] != net[players[j]] {
			return net[players[i]] > net[players[j]]
		}
		return players[i] < players[j]
	})

	var b strings.Builder
	for _, p := range players {
		fmt.Fprintf(&b, "%-20s %+10d\n", p, net[p])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, tableStyle.Render(strings.TrimRight(b.String(), "\n")))
}

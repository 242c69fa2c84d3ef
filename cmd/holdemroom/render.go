package main

import (
	"fmt"
	"strings"

	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/replica"
	"github.com/lox/holdemroom/poker"
)

func renderCard(c poker.Card) string {
	if c.Suit() == poker.Hearts || c.Suit() == poker.Diamonds {
		return redCardStyle.Render(c.String())
	}
	return blackCardStyle.Render(c.String())
}

func renderCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return infoStyle.Render("-")
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = renderCard(c)
	}
	return strings.Join(out, " ")
}

// renderView draws the public view of a table.
func renderView(v replica.View) string {
	var b strings.Builder

	title := fmt.Sprintf(" %s  round %d  %s ", v.TableID, v.Round, v.Phase)
	if v.Phase == game.PhaseBetting || v.Phase == game.PhaseRoundEnded {
		title += fmt.Sprintf(" %s ", v.Street)
	}
	fmt.Fprintln(&b, headerStyle.Render(title))
	fmt.Fprintf(&b, "Blinds %d/%d   Board %s\n", v.SmallBlind, v.BigBlind, renderCards(v.Board))

	if v.StallReason != "" {
		fmt.Fprintln(&b, errorStyle.Render("Stalled: "+v.StallReason))
	}

	var seats strings.Builder
	for _, s := range v.Seats {
		if s.OwnerID == "" {
			continue
		}
		marker := "  "
		if v.ToAct != nil && v.ToAct.Seat == s.Seat {
			marker = "> "
		}
		dealer := " "
		if s.Seat == v.Dealer && v.Phase != game.PhaseIdle {
			dealer = "D"
		}
		line := fmt.Sprintf("%s%s %d %-16s %8d  bet %6d  total %6d  %-8s",
			marker, dealer, s.Seat, s.OwnerID, s.Bankroll, s.StreetBet, s.TotalBet, s.Status)
		if len(s.Hole) > 0 {
			line += " " + renderCards(s.Hole) + " " + categoryStyle.Render(s.BestHand)
		}
		switch {
		case v.ToAct != nil && v.ToAct.Seat == s.Seat:
			line = actingStyle.Render(line)
		case s.Status == game.StatusFolded:
			line = foldedStyle.Render(line)
		}
		fmt.Fprintln(&seats, line)
	}
	if seats.Len() > 0 {
		fmt.Fprintln(&b, tableStyle.Render(strings.TrimRight(seats.String(), "\n")))
	} else {
		fmt.Fprintln(&b, infoStyle.Render("No players seated"))
	}

	for _, p := range v.Pots {
		line := fmt.Sprintf("Pot %d: %d", p.Index, p.Amount)
		if len(p.Limiters) > 0 {
			line += infoStyle.Render(fmt.Sprintf("  capped by %v", p.Limiters))
		}
		fmt.Fprintln(&b, line)
	}

	if t := v.ToAct; t != nil {
		options := fmt.Sprintf("call %d", t.CallAmount)
		if t.CanCheck {
			options = "check"
		}
		if v.Street == game.Showdown {
			options = "reveal or muck"
		} else if t.MaximumBet > t.CallAmount {
			options += fmt.Sprintf(", bet up to %d (raise to %d)", t.MaximumBet, t.MinimumBet)
		}
		fmt.Fprintln(&b, actingStyle.Render(fmt.Sprintf("Seat %d to act: %s", t.Seat, options)))
	}

	for _, r := range v.Results {
		parts := make([]string, len(r.Winners))
		for i, seat := range r.Winners {
			parts[i] = fmt.Sprintf("seat %d +%d", seat, r.Payouts[i])
		}
		label := "Pot"
		if v.DefaultWin {
			label = "Uncontested pot"
		}
		fmt.Fprintln(&b, successStyle.Render(fmt.Sprintf("%s %d (%d): %s", label, r.Pot, r.Amount, strings.Join(parts, ", "))))
	}

	if v.Phase == game.PhaseIdle && len(v.LastWinners) > 0 {
		fmt.Fprintln(&b, successStyle.Render(fmt.Sprintf("Game over, still funded: %v", v.LastWinners)))
	}
	return b.String()
}

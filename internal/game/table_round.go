package game

import (
	"fmt"

	"github.com/lox/holdemroom/poker"
)

// BeginRound starts the next round: broke players leave, late joiners are
// dealt in, cards are drawn, the button moves and the blinds are posted.
// It fails with ErrTokensOutstanding, without touching state, while the
// previous round's tokens are still out.
func (t *Table) BeginRound() error {
	switch t.state.Phase {
	case PhaseStalled:
		return ErrStalled
	case PhaseWaiting:
	default:
		return fmt.Errorf("%w: cannot deal while %s", ErrWrongPhase, t.state.Phase)
	}
	if !t.pool.AllTokensReturned() {
		return ErrTokensOutstanding
	}

	t.determineRoundPlayers()
	if t.state.NumPlayersInRound() < 2 {
		t.endGame()
		return nil
	}

	board, holes, err := t.drawCards()
	if err != nil {
		t.Stall(err.Error())
		return err
	}

	s := &t.state
	s.clearRound()
	s.Round++
	s.Board = board
	for i := 0; i < s.Seats; i++ {
		p := &s.Players[i]
		p.clearRound()
		if !p.InRound() {
			continue
		}
		p.Hole = holes[i]
		p.Best = poker.BestOfSeven(p.Hole, board)
	}
	for i := 0; i < s.Seats; i++ {
		if s.Players[i].InRound() {
			s.Ranking.Insert(i, func(seat int) poker.HandScore { return s.Players[seat].Best.Overall() })
		}
	}

	s.Dealer = t.nextDealer(s.Dealer)
	sb, bb := t.postBlinds()
	s.Phase = PhaseBetting

	t.logger.Info("Round started", "round", s.Round, "dealer", s.Dealer, "small_blind", sb, "big_blind", bb, "players", s.NumPlayersInRound())
	players := make([]int, 0, s.Seats)
	for i := 0; i < s.Seats; i++ {
		if s.Players[i].InRound() {
			players = append(players, i)
		}
	}
	t.publish(RoundStartEvent{Round: s.Round, Dealer: s.Dealer, SmallBlind: sb, BigBlind: bb, Players: players, At: t.clock.Now()})

	t.goToNextStreet()
	t.advance()
	t.touch()
	return nil
}

// determineRoundPlayers removes broke players and promotes late joiners.
func (t *Table) determineRoundPlayers() {
	for i := 0; i < t.state.Seats; i++ {
		p := &t.state.Players[i]
		if !p.HasOwner() {
			continue
		}
		p.LateJoiner = false
		if !p.HasMoney() {
			t.logger.Info("Removing broke player", "seat", i, "owner", p.OwnerID)
			t.vacate(i, true)
		}
	}
}

// drawCards requests every token the round needs before anything is committed.
func (t *Table) drawCards() ([5]poker.Card, [MaxSeats][2]poker.Card, error) {
	var board [5]poker.Card
	var holes [MaxSeats][2]poker.Card

	t.pool.Shuffle()
	seen := make(map[poker.Card]bool, 5+2*MaxSeats)
	take := func(owner string, n int) ([]poker.Card, error) {
		cards, err := t.pool.RequestTokens(owner, n)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDeal, owner, err)
		}
		if len(cards) != n {
			return nil, fmt.Errorf("%w: %s got %d cards, want %d", ErrMalformedDeal, owner, len(cards), n)
		}
		for _, c := range cards {
			if !c.Valid() || seen[c] {
				return nil, fmt.Errorf("%w: %s got bad card %s", ErrMalformedDeal, owner, c)
			}
			seen[c] = true
		}
		return cards, nil
	}

	cards, err := take(t.state.TableID, 5)
	if err != nil {
		return board, holes, err
	}
	copy(board[:], cards)
	for i := 0; i < t.state.Seats; i++ {
		p := &t.state.Players[i]
		if !p.InRound() {
			continue
		}
		cards, err := take(p.OwnerID, 2)
		if err != nil {
			return board, holes, err
		}
		holes[i] = [2]poker.Card{cards[0], cards[1]}
	}
	return board, holes, nil
}

// nextDealer moves the button to the next seat dealt into the round.
func (t *Table) nextDealer(from int) int {
	if from < 0 {
		from = t.state.Seats - 1
	}
	for i := 1; i <= t.state.Seats; i++ {
		idx := (from + i) % t.state.Seats
		if t.state.Players[idx].InRound() {
			return idx
		}
	}
	return NoSeat
}

// postBlinds takes the forced bets. Heads-up, the dealer posts the small blind.
func (t *Table) postBlinds() (int, int) {
	s := &t.state
	sb := s.Dealer
	if s.NumPlayersInRound() > 2 {
		sb = s.nextTo(s.Dealer)
	}
	bb := s.nextTo(sb)
	t.post(sb, s.SmallBlind)
	t.post(bb, s.BigBlind)
	return sb, bb
}

func (t *Table) post(seat, amount int) {
	p := &t.state.Players[seat]
	amount = min(amount, p.Bankroll)
	p.Bankroll -= amount
	p.Bets[Preflop] += amount
	p.LastBetStreet = Preflop
}

// goToNextStreet moves to the next street and positions Current just before
// the first seat to act. From Showdown it ends the round.
func (t *Table) goToNextStreet() {
	s := &t.state
	if s.Street == Showdown {
		t.endRound()
		return
	}

	riverChecked := s.AllChecked()
	lastBettor := s.LastBettor

	s.Street++
	for i := 0; i < s.Seats; i++ {
		if p := &s.Players[i]; p.Live() {
			p.Status = StatusNone
		}
	}
	s.LastBettor = NoSeat
	s.Departed = nil
	s.Current = s.Dealer

	switch {
	case s.Street == Preflop:
		// Action starts left of the big blind.
		s.Current = s.nextTo(s.Dealer)
		if s.NumPlayersInRound() > 2 {
			s.Current = s.nextTo(s.Current)
		}
	case s.Street == Showdown && !riverChecked && lastBettor != NoSeat && s.Players[lastBettor].Live():
		// The last bettor shows first.
		s.Current = s.previousTo(lastBettor)
	}

	t.logger.Debug("Street change", "round", s.Round, "street", s.Street, "pot", s.SumOfAllBets())
	t.publish(StreetChangeEvent{Round: s.Round, Street: s.Street, Board: s.VisibleBoard(), Pot: s.SumOfAllBets(), At: t.clock.Now()})
}

// goToNextPlayer moves Current to the next seat able to act. It reports false
// when no seat can act.
func (t *Table) goToNextPlayer() bool {
	s := &t.state
	from := s.Current
	if from < 0 {
		from = s.Dealer
	}
	for i := 1; i <= s.Seats; i++ {
		idx := (from + i) % s.Seats
		if s.canAct(idx) {
			s.Current = idx
			return true
		}
	}
	s.Current = NoSeat
	return false
}

// advance drives the machine after a transition until some seat must act or
// the round is over.
func (t *Table) advance() {
	s := &t.state
	for s.Phase == PhaseBetting {
		if s.AllButOneFolded() {
			t.endRound()
			return
		}
		if !s.ReadyToAdvance() && t.goToNextPlayer() {
			if s.Street == Showdown && s.ForcedReveal(s.Current) {
				t.reveal(s.Current, true)
				continue
			}
			return
		}

		if pots := allocateStreetPots(s); len(pots) > 0 {
			s.Pots = append(s.Pots, pots...)
			t.logger.Debug("Side pots created", "street", s.Street, "count", len(pots), "total", len(s.Pots))
		}
		if s.Street < River && s.OneOrLessActionable() {
			// Nobody left to bet against: run the board out.
			s.Street = River
		}
		t.goToNextStreet()
	}
}

func (t *Table) reveal(seat int, auto bool) {
	p := &t.state.Players[seat]
	p.Status = StatusChecked
	p.Revealed = true
	t.publish(PlayerActionEvent{Round: t.state.Round, Seat: seat, Street: Showdown, Action: Check(), Auto: auto, At: t.clock.Now()})
}

// endRound settles the pots. A lone survivor takes everything unseen.
func (t *Table) endRound() {
	s := &t.state
	s.Phase = PhaseRoundEnded
	s.Current = NoSeat

	if s.AllButOneFolded() {
		s.DefaultWin = true
		total := s.SumOfAllBets()
		winner := NoSeat
		for i := 0; i < s.Seats; i++ {
			if s.Players[i].Live() {
				winner = i
			}
		}
		if winner == NoSeat {
			t.logger.Warn("Round ended with no live players", "round", s.Round, "unclaimed", total)
		} else {
			s.Players[winner].Bankroll += total
			s.Results = []PotResult{{Pot: 0, Amount: total, Winners: []int{winner}, Payouts: []int{total}}}
			t.logger.Info("Round won by default", "round", s.Round, "seat", winner, "amount", total)
		}
	} else {
		t.settlePots()
	}

	t.publish(RoundEndEvent{Round: s.Round, DefaultWin: s.DefaultWin, Results: s.Clone().Results, At: t.clock.Now()})
}

// settlePots pays each pot to its tied-best participants. The odd chip goes
// to the winner first in deal order; a pot nobody can claim rolls into the
// pot below it.
func (t *Table) settlePots() {
	s := &t.state
	n := s.PotCount()
	amounts := make([]int, n)
	for i := range amounts {
		amounts[i] = s.Pot(i)
	}

	results := make([]PotResult, 0, n)
	carry := 0
	for i := n - 1; i >= 0; i-- {
		amount := amounts[i] + carry
		carry = 0
		if amount == 0 {
			continue
		}
		winners := s.PotWinners(i)
		if len(winners) == 0 {
			carry = amount
			continue
		}

		share, odd := amount/len(winners), amount%len(winners)
		first := 0
		for k, seat := range winners {
			if s.dealOrder(seat) < s.dealOrder(winners[first]) {
				first = k
			}
		}
		payouts := make([]int, len(winners))
		for k, seat := range winners {
			payouts[k] = share
			if k == first {
				payouts[k] += odd
			}
			s.Players[seat].Bankroll += payouts[k]
		}
		results = append(results, PotResult{Pot: i, Amount: amount, Winners: winners, Payouts: payouts})
		t.logger.Info("Pot awarded", "round", s.Round, "pot", i, "amount", amount, "winners", winners)
	}
	if carry > 0 {
		t.logger.Error("Pot left unclaimed", "round", s.Round, "amount", carry)
	}

	// Report main pot first.
	for l, r := 0, len(results)-1; l < r; l, r = l+1, r-1 {
		results[l], results[r] = results[r], results[l]
	}
	s.Results = results
}

// FinishRound clears the settled round once its results have been shown.
// The game continues while two funded players remain.
func (t *Table) FinishRound() error {
	if t.state.Phase != PhaseRoundEnded {
		return fmt.Errorf("%w: no round to finish while %s", ErrWrongPhase, t.state.Phase)
	}
	for i := range t.state.Players {
		t.state.Players[i].clearRound()
	}
	t.state.Street = StreetInvalid
	t.state.Pots = nil
	t.state.Forfeited = [NumStreets]int{}
	t.state.Current = NoSeat
	t.pool.ReturnAll()

	if t.state.NumFunded() >= 2 {
		t.state.Phase = PhaseWaiting
	} else {
		t.endGame()
	}
	t.touch()
	return nil
}

func (t *Table) endGame() {
	s := &t.state
	var winners []int
	for i := 0; i < s.Seats; i++ {
		if p := &s.Players[i]; p.HasOwner() && p.HasMoney() {
			winners = append(winners, i)
		}
		s.Players[i].LateJoiner = false
	}
	s.LastWinners = winners
	s.Phase = PhaseIdle
	s.Current = NoSeat
	s.Street = StreetInvalid
	t.touch()

	t.logger.Info("Game over", "rounds", s.Round, "winners", winners)
	t.publish(GameEndEvent{Winners: append([]int(nil), winners...), Rounds: s.Round, At: t.clock.Now()})
}

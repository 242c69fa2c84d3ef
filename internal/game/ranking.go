package game

import "github.com/lox/holdemroom/poker"

// Ranking is an arena-indexed singly linked list of seats ordered best hand
// to worst. Next[seat] is the seat ranked immediately below seat.
type Ranking struct {
	First int           `json:"first"`
	Next  [MaxSeats]int `json:"next"`
}

// NewRanking returns an empty ranking.
func NewRanking() Ranking {
	r := Ranking{First: NoSeat}
	for i := range r.Next {
		r.Next[i] = NoSeat
	}
	return r
}

// Insert places seat before the first ranked seat whose score it equals or
// beats, so a newcomer lands above the seats it ties with.
func (r *Ranking) Insert(seat int, scoreOf func(seat int) poker.HandScore) {
	score := scoreOf(seat)
	prev := NoSeat
	for cur := r.First; cur != NoSeat; cur = r.Next[cur] {
		if poker.Compare(score, scoreOf(cur)) >= 0 {
			r.Next[seat] = cur
			if prev == NoSeat {
				r.First = seat
			} else {
				r.Next[prev] = seat
			}
			return
		}
		prev = cur
	}

	r.Next[seat] = NoSeat
	if prev == NoSeat {
		r.First = seat
	} else {
		r.Next[prev] = seat
	}
}

// Order walks the chain from the best seat.
func (r *Ranking) Order() []int {
	var order []int
	for cur := r.First; cur != NoSeat && len(order) < MaxSeats; cur = r.Next[cur] {
		order = append(order, cur)
	}
	return order
}

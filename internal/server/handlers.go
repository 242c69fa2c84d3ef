package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lox/holdemroom/internal/authority"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/replica"
)

// OwnerHeader identifies the caller when asking for a seat's hole cards.
const OwnerHeader = "X-Owner-ID"

var errBadRequest = errors.New("bad request")

type joinRequest struct {
	OwnerID  string `json:"owner_id"`
	Bankroll int    `json:"bankroll,omitempty"`
}

type actionRequest struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type startRequest struct {
	Seat int `json:"seat"`
}

// PotResponse is one pot. Winners are only reported once the round has
// ended and every contender's hand is known.
type PotResponse struct {
	replica.PotView
	Winners []int `json:"winners,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Replica().Public())
}

func (s *Server) pots() ([]PotResponse, bool) {
	view := s.hub.Replica().Public()
	settled := view.Phase == game.PhaseRoundEnded
	out := make([]PotResponse, 0, len(view.Pots))
	for _, pv := range view.Pots {
		pr := PotResponse{PotView: pv}
		if settled {
			pr.Winners = s.hub.Replica().PotWinners(pv.Index)
		}
		out = append(out, pr)
	}
	return out, settled
}

func (s *Server) handlePots(w http.ResponseWriter, r *http.Request) {
	pots, _ := s.pots()
	writeJSON(w, http.StatusOK, pots)
}

func (s *Server) handlePot(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.writeError(w, fmt.Errorf("%w: pot index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}
	pots, _ := s.pots()
	if index >= len(pots) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no pot %d", index)})
		return
	}
	writeJSON(w, http.StatusOK, pots[index])
}

// handleHand shows a seat's hole cards to its owner.
func (s *Server) handleHand(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.seatParam(w, r)
	if !ok {
		return
	}
	player, valid := s.hub.Replica().Player(seat)
	if !valid {
		s.writeError(w, game.ErrInvalidSeat)
		return
	}
	if !player.HasOwner() {
		s.writeError(w, game.ErrSeatEmpty)
		return
	}
	owner := r.Header.Get(OwnerHeader)
	if owner == "" {
		owner = r.URL.Query().Get("owner")
	}
	if owner != player.OwnerID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not the seat's owner"})
		return
	}
	hand, _ := s.hub.Replica().Hand(seat)
	writeJSON(w, http.StatusOK, hand)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.seatParam(w, r)
	if !ok {
		return
	}
	var req joinRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Bankroll == 0 {
		req.Bankroll = s.config.Table.DefaultBuyIn
	}
	s.command(w, r, func(ctx context.Context) error {
		return s.commands.Join(ctx, seat, req.OwnerID, req.Bankroll)
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.seatParam(w, r)
	if !ok {
		return
	}
	s.command(w, r, func(ctx context.Context) error { return s.commands.Leave(ctx, seat) })
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.seatParam(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, err := game.ParseActionKind(req.Action)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	action := game.Action{Kind: kind, Amount: req.Amount}
	s.command(w, r, func(ctx context.Context) error { return s.commands.Act(ctx, seat, action) })
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.command(w, r, func(ctx context.Context) error { return s.commands.StartGame(ctx, req.Seat) })
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, s.commands.Reset)
}

// command runs a write and answers with the view it produced. The authority
// publishes before it replies, so the replica already holds the result.
func (s *Server) command(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) error) {
	if err := fn(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.hub.Replica().Public())
}

func (s *Server) seatParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	seat, err := strconv.Atoi(chi.URLParam(r, "seat"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: seat %q", errBadRequest, chi.URLParam(r, "seat")))
		return 0, false
	}
	return seat, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(v); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

// StatusFor maps table errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, game.ErrInvalidSeat),
		errors.Is(err, game.ErrInvalidOwner),
		errors.Is(err, game.ErrInvalidBankroll):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSeatEmpty):
		return http.StatusNotFound
	case errors.Is(err, game.ErrStalled),
		errors.Is(err, authority.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrIllegalAction),
		errors.Is(err, game.ErrBetTooSmall),
		errors.Is(err, game.ErrBetTooLarge),
		errors.Is(err, game.ErrMustReveal),
		errors.Is(err, game.ErrSeatTaken),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrTokensOutstanding):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	} else {
		s.logger.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

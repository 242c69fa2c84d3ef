package game

import (
	"sync"
	"time"

	"github.com/lox/holdemroom/poker"
)

// EventType represents a table event type with type safety
type EventType string

// Presentation-facing notifications. No table logic depends on their delivery.
const (
	EventTypePlayerJoined EventType = "player_joined"
	EventTypePlayerLeft   EventType = "player_left"
	EventTypeRoundStart   EventType = "round_start"
	EventTypeStreetChange EventType = "street_change"
	EventTypePlayerAction EventType = "player_action"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeGameEnd      EventType = "game_end"
	EventTypeTableStalled EventType = "table_stalled"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs at the table
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerJoinedEvent is published when a seat is taken. Late joiners wait for the next round.
type PlayerJoinedEvent struct {
	Seat       int       `json:"seat"`
	OwnerID    string    `json:"owner_id"`
	Bankroll   int       `json:"bankroll"`
	LateJoiner bool      `json:"late_joiner"`
	At         time.Time `json:"at"`
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.At }

// PlayerLeftEvent is published when a seat is vacated, voluntarily or because the player went broke.
type PlayerLeftEvent struct {
	Seat      int       `json:"seat"`
	OwnerID   string    `json:"owner_id"`
	Forfeited int       `json:"forfeited"`
	Broke     bool      `json:"broke"`
	At        time.Time `json:"at"`
}

func (e PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Timestamp() time.Time { return e.At }

// RoundStartEvent is published after the deal and blinds.
type RoundStartEvent struct {
	Round      int       `json:"round"`
	Dealer     int       `json:"dealer"`
	SmallBlind int       `json:"small_blind_seat"`
	BigBlind   int       `json:"big_blind_seat"`
	Players    []int     `json:"players"`
	At         time.Time `json:"at"`
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.At }

// StreetChangeEvent is published when the betting round changes
type StreetChangeEvent struct {
	Round  int          `json:"round"`
	Street Street       `json:"street"`
	Board  []poker.Card `json:"board"`
	Pot    int          `json:"pot"`
	At     time.Time    `json:"at"`
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.At }

// PlayerActionEvent is published when a seat acts. Auto marks actions the table took on its behalf.
type PlayerActionEvent struct {
	Round  int       `json:"round"`
	Seat   int       `json:"seat"`
	Street Street    `json:"street"`
	Action Action    `json:"action"`
	Auto   bool      `json:"auto,omitempty"`
	At     time.Time `json:"at"`
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.At }

// RoundEndEvent is published once the pots are paid.
type RoundEndEvent struct {
	Round      int         `json:"round"`
	DefaultWin bool        `json:"default_win"`
	Results    []PotResult `json:"results"`
	At         time.Time   `json:"at"`
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.At }

// GameEndEvent is published when fewer than two players can continue.
type GameEndEvent struct {
	Winners []int     `json:"winners"`
	Rounds  int       `json:"rounds"`
	At      time.Time `json:"at"`
}

func (e GameEndEvent) EventType() EventType { return EventTypeGameEnd }
func (e GameEndEvent) Timestamp() time.Time { return e.At }

// TableStalledEvent is published when an invariant violation halts the table.
type TableStalledEvent struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

func (e TableStalledEvent) EventType() EventType { return EventTypeTableStalled }
func (e TableStalledEvent) Timestamp() time.Time { return e.At }

// EventSubscriber can subscribe to table events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously on the publisher's goroutine.
// Subscribers must not block.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := append([]EventSubscriber(nil), bus.subscribers...)
	bus.mu.RUnlock()
	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}

// EventRecorder collects events in order; handy for tests and replay logs.
type EventRecorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *EventRecorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far.
func (r *EventRecorder) Events() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameEvent(nil), r.events...)
}

// OfType returns recorded events of type t.
func (r *EventRecorder) OfType(t EventType) []GameEvent {
	var out []GameEvent
	for _, e := range r.Events() {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

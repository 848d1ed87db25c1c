package store

import "sync"

// Event types published by the store.
const (
	EventTeamCreated   = "team_created"
	EventCollected     = "collected"
	EventWinner        = "winner"
	EventWinnerCleared = "winner_cleared"
)

// Event is the payload published to live subscribers (SSE and websocket
// streams, winner watchers).
type Event struct {
	Type      string `json:"type"`
	TeamID    string `json:"teamId,omitempty"`
	TeamName  string `json:"teamName,omitempty"`
	Collected int    `json:"collected,omitempty"`
}

// Broker is an in-process pub/sub for store events.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives every published event.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the subscriber set.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

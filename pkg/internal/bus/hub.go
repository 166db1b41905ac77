package bus

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 16

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Subscriber is one live connection watching a poll. Messages arrive on
// Feed as pre-encoded JSON; the channel is closed on unsubscribe.
type Subscriber struct {
	ch     chan []byte
	closed bool
}

func NewSubscriber() *Subscriber {
	return &Subscriber{ch: make(chan []byte, subscriberBuffer)}
}

func (s *Subscriber) Feed() <-chan []byte {
	return s.ch
}

// Hub is the process-wide registry of live subscribers, keyed by share
// token. It is the only mutable state shared across requests and does
// its own locking; everything else in the service is per-request.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers the subscriber under the share token.
// Registering the same subscriber twice is a no-op.
func (h *Hub) Subscribe(token string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[token]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[token] = room
	}
	room[sub] = struct{}{}
}

// Unsubscribe removes the subscriber and closes its feed. Calling it
// again for the same subscriber is a no-op.
func (h *Hub) Unsubscribe(token string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[token]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}

	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, token)
	}
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

// Broadcast delivers the event to every subscriber of the token, best
// effort. A subscriber whose buffer is full simply misses the event;
// there is no replay and the caller never blocks or fails.
func (h *Hub) Broadcast(token string, event any) {
	payload, err := codec.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when encoding broadcast event...")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[token] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers watch the token.
func (h *Hub) SubscriberCount(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

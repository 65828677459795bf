package events

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types pushed to attached views.
const (
	ChatMessage       = "chat.message"
	ChatDeleted       = "chat.deleted"
	ChatCleared       = "chat.cleared"
	ChatPending       = "chat.pending"
	MealUpdated       = "meal.updated"
	BloodSugarUpdated = "bloodsugar.updated"
	SessionChanged    = "session.changed"
)

const subscriberBuffer = 32

// Event is one change notification.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher is the side of the hub the services depend on.
type Publisher interface {
	Publish(eventType string, data any)
}

// Subscription receives events until Close is called.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}

// Hub fans events out to every subscriber. A subscriber whose buffer is full
// misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
	log  *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[*Subscription]struct{}),
		log:  logrus.WithField("component", "events"),
	}
}

// Subscribe registers a new listener.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish delivers an event without blocking.
func (h *Hub) Publish(eventType string, data any) {
	event := Event{Type: eventType, Data: data, Timestamp: time.Now().UnixMilli()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.log.WithField("type", eventType).Warn("subscriber too slow, dropping event")
		}
	}
}

// Subscribers returns the number of attached listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(string, any) {}

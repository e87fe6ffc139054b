package events

import (
	"sync"
	"time"
)

// Subscriber receives events for one topic. The channel is buffered; a
// subscriber that stops draining loses events rather than blocking the
// publisher.
type Subscriber struct {
	topic string
	ch    chan Event
}

// C is the event stream. Closed on Unsubscribe.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Hub fans events out to topic subscribers. Publishing to a topic with no
// subscribers is a no-op; pipeline progress is always persisted regardless
// of who is listening.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscriber {
	sub := &Subscriber{topic: topic, ch: make(chan Event, 16)}
	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sub.topic]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
			if len(set) == 0 {
				delete(h.subs, sub.topic)
			}
		}
	}
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber of topic, stamping the event
// time if unset. Slow subscribers are skipped.
func (h *Hub) Publish(topic string, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

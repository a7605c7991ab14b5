// Package events is the in-process publish/subscribe bus. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
package events

import (
	"log/slog"
	"sync"
	"time"

	"techpoints/internal/pkg/clock"

	"github.com/google/uuid"
)

const defaultBuffer = 32

type Event struct {
	ID         uuid.UUID `json:"id"`
	Topic      string    `json:"topic"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Subscription struct {
	id     uint64
	topics map[string]bool
	ch     chan Event
	bus    *Bus
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event { return s.ch }

// Unsubscribe detaches the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

func (s *Subscription) wants(topic string) bool {
	return len(s.topics) == 0 || s.topics[topic]
}

type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
	clock  clock.Clock
	closed bool
}

func NewBus(clk clock.Clock) *Bus {
	return &Bus{
		subs:  make(map[uint64]*Subscription),
		clock: clk,
	}
}

// Subscribe registers for the given topics; no topics means every topic.
func (b *Bus) Subscribe(topics ...string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		topics: make(map[string]bool, len(topics)),
		ch:     make(chan Event, defaultBuffer),
		bus:    b,
	}
	for _, t := range topics {
		sub.topics[t] = true
	}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// SubscribeFunc runs fn on its own goroutine for each matching event until
// the returned function is called.
func (b *Bus) SubscribeFunc(fn func(Event), topics ...string) func() {
	sub := b.Subscribe(topics...)
	go func() {
		for ev := range sub.Events() {
			fn(ev)
		}
	}()
	return sub.Unsubscribe
}

func (b *Bus) Publish(topic string, payload any) {
	ev := Event{
		ID:         uuid.New(),
		Topic:      topic,
		Payload:    payload,
		OccurredAt: b.clock.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(topic) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("event dropped for slow subscriber", "topic", topic, "subscription", sub.id)
		}
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Close detaches every subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

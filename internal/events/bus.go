// Package events carries change notifications between services and the
// websocket hub. Publishing never blocks the publisher.
package events

import (
	"sync"
	"time"

	"github.com/vrsandeep/homebase/internal/logger"
)

// Topics published by the application.
const (
	ArticlesChanged = "articles.changed"
	LinksChanged    = "links.changed"
	NotesChanged    = "notes.changed"
	BooksChanged    = "books.changed"
	FeedsChanged    = "feeds.changed"
	EpisodesChanged = "episodes.changed"
	PlayerState     = "player.state"
	JobProgress     = "jobs.progress"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// Event is a single notification. UserID zero addresses every user.
type Event struct {
	Topic   string      `json:"topic"`
	UserID  int64       `json:"-"`
	Payload interface{} `json:"payload,omitempty"`
	Time    time.Time   `json:"time"`
}

// Subscription receives the events of the topics it asked for on C.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	topics map[string]bool
}

func (s *Subscription) wants(topic string) bool {
	return len(s.topics) == 0 || s.topics[topic]
}

// Bus fans published events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	log    logger.Logger
}

// NewBus creates a bus. A nil logger discards drop warnings.
func NewBus(log logger.Logger) *Bus {
	if log == nil {
		log = logger.NewNop()
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: DefaultBuffer,
		log:    log,
	}
}

// Subscribe registers interest in topics; no topics means all of them.
func (b *Bus) Subscribe(topics ...string) *Subscription {
	ch := make(chan Event, b.buffer)
	sub := &Subscription{C: ch, ch: ch, topics: make(map[string]bool, len(topics))}
	for _, t := range topics {
		sub.topics[t] = true
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call twice.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers e to every interested subscriber. A subscriber whose
// buffer is full misses the event.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if !sub.wants(e.Topic) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.log.Warn("Dropping event for slow subscriber",
				logger.String("topic", e.Topic),
				logger.Int64("user_id", e.UserID))
		}
	}
}

// Emit is shorthand for publishing a user-scoped event.
func (b *Bus) Emit(topic string, userID int64, payload interface{}) {
	b.Publish(Event{Topic: topic, UserID: userID, Payload: payload})
}

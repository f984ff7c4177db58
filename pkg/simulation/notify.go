package simulation

import (
	"sync"
	"time"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

// Event is published once for every committed move of a body.
//
// Delivery: at-least-once per commit, in commit order for a given BodyID,
// with no ordering between different bodies.
type Event struct {
	BodyID   int
	Seq      uint64 // per-body commit counter, starts at 1
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	At       time.Time
}

// Feed fans events out to any number of subscriptions.
// Publishing never blocks: each subscription buffers on its own.
type Feed struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newFeed() *Feed {
	return &Feed{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new consumer. Subscribing to a closed feed returns a
// subscription whose channel is already closed.
func (f *Feed) Subscribe() *Subscription {
	s := newSubscription(f)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		s.end()
		return s
	}
	f.subs[s] = struct{}{}
	f.mu.Unlock()
	return s
}

// publish returns false once the feed is closed.
func (f *Feed) publish(ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	for s := range f.subs {
		s.push(ev)
	}
	return true
}

func (f *Feed) remove(s *Subscription) {
	f.mu.Lock()
	delete(f.subs, s)
	f.mu.Unlock()
}

// close ends every subscription: queued events are still delivered, then
// their channels are closed.
func (f *Feed) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()
	for s := range subs {
		s.end()
	}
}

// Subscription is one consumer of a Feed. Events wait in an unbounded queue
// until the consumer reads them from C, so a slow reader costs memory, never
// latency on the publishing body.
type Subscription struct {
	feed *Feed
	out  chan Event
	wake chan struct{}
	quit chan struct{}

	mu    sync.Mutex
	queue []Event
	ended bool

	closeOnce sync.Once
}

func newSubscription(f *Feed) *Subscription {
	s := &Subscription{
		feed: f,
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go s.pump()
	return s
}

// C is closed after the feed was closed and every queued event was read,
// or right after Close.
func (s *Subscription) C() <-chan Event {
	return s.out
}

// Close unsubscribes and discards anything not yet read. Idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.feed.remove(s)
		close(s.quit)
	})
}

// Pending returns how many events are queued but not yet read.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			ended := s.ended
			s.queue = s.queue[:0]
			s.mu.Unlock()
			if ended {
				return
			}
			select {
			case <-s.wake:
				continue
			case <-s.quit:
				return
			}
		}
		ev := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.quit:
			return
		}
	}
}

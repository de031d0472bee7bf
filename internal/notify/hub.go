// Package notify fans lead change signals out to live observers.
//
// Delivery is at-least-once and coalesced: each subscriber holds at most one
// pending signal, so a burst of changes arriving while its callback runs
// produces exactly one further callback. Signals carry no delta; observers
// re-fetch whatever they display.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type Option func(*Hub)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Hub routes changes to the subscribers of the lead's owner. Broadcast
// changes reach every subscriber.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	closed      bool
	wg          sync.WaitGroup
	logger      *zap.Logger
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subscribers: map[string]map[*subscriber]struct{}{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = h.logger.Named("notify")
	return h
}

// Subscribe calls onChange on its own goroutine whenever a change for
// ownerID is published. The returned func unsubscribes and may be called
// any number of times, including from inside onChange.
func (h *Hub) Subscribe(ownerID string, onChange func()) (unsubscribe func()) {
	sub := &subscriber{
		pending:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		onChange: onChange,
		logger:   h.logger,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return func() {}
	}
	if h.subscribers[ownerID] == nil {
		h.subscribers[ownerID] = map[*subscriber]struct{}{}
	}
	h.subscribers[ownerID][sub] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	go sub.run(&h.wg)

	return func() { h.remove(ownerID, sub) }
}

func (h *Hub) Publish(change entity.LeadChange) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if change.Broadcast() {
		for _, subs := range h.subscribers {
			for sub := range subs {
				sub.signal()
			}
		}
		return
	}
	for sub := range h.subscribers[change.UserID] {
		sub.signal()
	}
}

// Subscribers returns how many observers ownerID currently has.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[ownerID])
}

// Close stops every subscriber and waits for their goroutines. It must not
// be called from inside a callback.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for owner, subs := range h.subscribers {
		for sub := range subs {
			sub.stop()
		}
		delete(h.subscribers, owner)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) remove(ownerID string, sub *subscriber) {
	h.mu.Lock()
	if subs := h.subscribers[ownerID]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, ownerID)
		}
	}
	h.mu.Unlock()
	sub.stop()
}

type subscriber struct {
	pending  chan struct{}
	done     chan struct{}
	once     sync.Once
	onChange func()
	logger   *zap.Logger
}

func (s *subscriber) signal() {
	select {
	case s.pending <- struct{}{}:
	default:
		// already pending
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.pending:
			select {
			case <-s.done:
				return
			default:
			}
			s.invoke()
		}
	}
}

func (s *subscriber) invoke() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("change callback panicked", zap.Any("panic", r))
		}
	}()
	s.onChange()
}

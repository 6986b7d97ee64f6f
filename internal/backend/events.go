package backend

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// AuthEvent names an auth state change.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthChange is delivered to subscribers. Session is nil for EventSignedOut.
type AuthChange struct {
	Event   AuthEvent
	UserID  string
	Session *Session
}

// Listener receives auth changes on the hub goroutine, in emit order.
type Listener func(ctx context.Context, change AuthChange)

// Subscription detaches a listener.
type Subscription struct {
	id  uint64
	hub *eventHub
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.remove(s.id)
}

// eventHub fans auth changes out asynchronously: Emit returns before any
// listener runs, the way a hosted auth service pushes on a separate channel.
type eventHub struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]Listener

	events    chan AuthChange
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *zap.Logger
}

func newEventHub(buffer int, logger *zap.Logger) *eventHub {
	h := &eventHub{
		listeners: make(map[uint64]Listener),
		events:    make(chan AuthChange, buffer),
		done:      make(chan struct{}),
		logger:    logger,
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *eventHub) subscribe(l Listener) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.listeners[h.nextID] = l
	return &Subscription{id: h.nextID, hub: h}
}

func (h *eventHub) remove(id uint64) {
	h.mu.Lock()
	delete(h.listeners, id)
	h.mu.Unlock()
}

// emit queues change. It blocks only while the buffer is full.
func (h *eventHub) emit(ctx context.Context, change AuthChange) {
	select {
	case h.events <- change:
	case <-ctx.Done():
		h.logger.Warn("auth event dropped", zap.String("event", string(change.Event)), zap.Error(ctx.Err()))
	case <-h.done:
	}
}

func (h *eventHub) run() {
	defer h.wg.Done()
	for {
		select {
		case change := <-h.events:
			h.dispatch(change)
		case <-h.done:
			return
		}
	}
}

func (h *eventHub) dispatch(change AuthChange) {
	h.mu.RLock()
	ls := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		ls = append(ls, l)
	}
	h.mu.RUnlock()

	for _, l := range ls {
		h.safeCall(l, change)
	}
}

func (h *eventHub) safeCall(l Listener, change AuthChange) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("auth listener panicked", zap.Any("panic", r), zap.String("event", string(change.Event)))
		}
	}()
	l(context.Background(), change)
}

func (h *eventHub) close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
}

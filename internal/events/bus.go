// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed = errors.New("event bus is shutting down")
	ErrBusFull   = errors.New("event queue full")
)

// Publisher is the publishing half of the bus, as seen by the launchpad service.
type Publisher interface {
	Publish(event Event) error
	PublishSync(ctx context.Context, event Event) error
}

// Handler processes events matched by a subscription.
type Handler interface {
	// Handle processes an event. Should not block.
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow the use of ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Filter selects the events a subscription receives. No Types means every type; an
// empty Subject field matches any token or creator.
type Filter struct {
	Types   []EventType
	Subject Subject
}

// ForToken follows every event about one token.
func ForToken(token string, types ...EventType) Filter {
	return Filter{Types: types, Subject: Subject{Token: token}}
}

// ForCreator follows every event about one creator, across all of their tokens.
func ForCreator(creator string, types ...EventType) Filter {
	return Filter{Types: types, Subject: Subject{Creator: creator}}
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Event) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type()) {
		return false
	}
	about := e.About()
	if f.Subject.Token != "" && f.Subject.Token != about.Token {
		return false
	}
	if f.Subject.Creator != "" && f.Subject.Creator != about.Creator {
		return false
	}
	return true
}

// Subscription represents a subscription to events.
type Subscription interface {
	ID() string
	// Unsubscribe removes the subscription.
	Unsubscribe()
}

type subscription struct {
	id      string
	filter  Filter
	handler Handler
	bus     *Bus
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.id)
}

// Bus is an in-memory event bus.
//
// Publish queues events for a single dispatcher, so subscribers see asynchronous events
// in publish order: a token's trade.settled always arrives before the token.graduated it
// caused. PublishSync delivers on the caller's goroutine and is not ordered against the
// queue.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan Event
	done   chan struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a bus whose queue holds bufferSize undelivered events.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		logger: logger.Named("event_bus"),
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}

	go bus.dispatch()
	return bus
}

// Subscribe registers handler for the events matching filter.
func (b *Bus) Subscribe(filter Filter, handler Handler) Subscription {
	sub := &subscription{
		id:      uuid.New().String(),
		filter:  filter,
		handler: handler,
		bus:     b,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed",
		zap.String("subscription_id", sub.id),
		zap.Any("types", filter.Types),
		zap.String("token", filter.Subject.Token),
		zap.String("creator", filter.Subject.Creator))
	return sub
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *Bus) SubscribeFunc(filter Filter, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(filter, HandlerFunc(fn))
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	b.subs = slices.DeleteFunc(b.subs, func(s *subscription) bool { return s.id == id })
	b.mu.Unlock()

	b.logger.Debug("Handler unsubscribed", zap.String("subscription_id", id))
}

// Publish queues an event for asynchronous delivery. A full queue drops the event.
func (b *Bus) Publish(event Event) error {
	if b.ctx.Err() != nil {
		return ErrBusClosed
	}
	select {
	case b.queue <- event:
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", string(event.Type())),
			zap.String("token", event.About().Token))
		return fmt.Errorf("%s: %w", event.Type(), ErrBusFull)
	}
}

// PublishSync delivers an event to every matching handler before returning.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Копия, чтобы не держать блокировку во время обработки
	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.filter.Match(event) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if err := s.handler.Handle(ctx, event); err != nil {
			b.failed.Add(1)
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("subscription_id", s.id),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		b.delivered.Add(1)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handlers failed on %s: %w", len(errs), event.Type(), errors.Join(errs...))
	}
	return nil
}

// dispatch delivers queued events one at a time; after shutdown it drains the queue.
func (b *Bus) dispatch() {
	defer close(b.done)

	for {
		select {
		case <-b.ctx.Done():
			for {
				select {
				case event := <-b.queue:
					_ = b.PublishSync(context.Background(), event)
				default:
					return
				}
			}
		case event := <-b.queue:
			// Ошибки обработчиков уже залогированы в PublishSync
			_ = b.PublishSync(b.ctx, event)
		}
	}
}

// Shutdown stops accepting events and waits until the queue is drained.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.logger.Info("Shutting down event bus")
	b.cancel()

	select {
	case <-b.done:
		b.logger.Info("Event bus shutdown complete", zap.Uint64("delivered", b.delivered.Load()))
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout", zap.Int("pending", len(b.queue)))
		return ctx.Err()
	}
}

// Stats describes the bus load.
type Stats struct {
	BufferSize    int    `json:"buffer_size"`
	PendingEvents int    `json:"pending_events"`
	Subscriptions int    `json:"subscriptions"`
	Delivered     uint64 `json:"delivered"`
	Dropped       uint64 `json:"dropped"`
	Failed        uint64 `json:"failed"`
}

// Stats returns statistics about the event bus.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	subs := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		BufferSize:    cap(b.queue),
		PendingEvents: len(b.queue),
		Subscriptions: subs,
		Delivered:     b.delivered.Load(),
		Dropped:       b.dropped.Load(),
		Failed:        b.failed.Load(),
	}
}

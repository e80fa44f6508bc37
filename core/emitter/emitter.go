package emitter

import (
	"errors"
	"fmt"
	"sync"

	"plinth/core/logger"
)

// Listener handles a published event payload. A listener error is isolated:
// it is logged and the remaining listeners for the event still run.
type Listener func(payload any) error

type registration struct {
	name string
	fn   Listener
}

// Emitter is the synchronous in-process event bus. Modules publish named
// domain events; listeners run on the calling goroutine in subscription
// order, which the kernel makes deterministic by wiring subscriptions in
// resolved module order. Subscription happens at boot; after that the
// tables are read-mostly, so Emit only takes a read lock.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]registration
	log       logger.Logger
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used for listener failure records.
func WithLogger(log logger.Logger) Option {
	return func(e *Emitter) { e.log = log }
}

// New creates an event bus.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		listeners: make(map[string][]registration),
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// On appends an anonymous listener to the event's ordered list.
func (e *Emitter) On(event string, fn Listener) {
	e.Listen(event, "anonymous", fn)
}

// Listen appends a named listener; the name identifies the listener in
// failure logs (the kernel uses the subscribing module's name).
func (e *Emitter) Listen(event, name string, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], registration{name: name, fn: fn})
}

// ListenerCount returns the number of listeners subscribed to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// Emit invokes every listener subscribed to event, in subscription order.
// Listener errors and panics are logged and swallowed so one misbehaving
// listener cannot block unrelated listeners or fail the publisher.
func (e *Emitter) Emit(event string, payload any) {
	_ = e.dispatch(event, payload, false)
}

// Publish is the propagating variant of Emit: listeners still all run, but
// their failures are joined into the returned error for publishers that
// need to observe them.
func (e *Emitter) Publish(event string, payload any) error {
	return e.dispatch(event, payload, true)
}

func (e *Emitter) dispatch(event string, payload any, propagate bool) error {
	e.mu.RLock()
	regs := e.listeners[event]
	e.mu.RUnlock()

	var errs []error
	for _, reg := range regs {
		if err := e.invoke(event, reg, payload); err != nil {
			e.log.Error("event listener failed",
				logger.String("event", event),
				logger.String("listener", reg.name),
				logger.String("error", err.Error()))
			if propagate {
				errs = append(errs, fmt.Errorf("listener %q: %w", reg.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (e *Emitter) invoke(event string, reg registration, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic on event %q: %v", event, r)
		}
	}()
	return reg.fn(payload)
}

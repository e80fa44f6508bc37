package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"plinth/core/logger"
)

// Command is an instruction with exactly one authoritative handler.
type Command interface {
	CommandName() string
}

// Query is a question with exactly one authoritative answerer.
type Query interface {
	QueryName() string
}

// CommandHandler executes a command.
type CommandHandler func(ctx context.Context, cmd Command) error

// QueryHandler answers a query.
type QueryHandler func(ctx context.Context, q Query) (any, error)

// HandlerAlreadyRegisteredError is returned when a second handler is
// registered for the same message type. Unlike events, commands and
// queries are exactly-one-handler by design.
type HandlerAlreadyRegisteredError struct {
	MessageType string
	Owner       string // module that registered first, if known
}

func (e *HandlerAlreadyRegisteredError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("handler for %q already registered by module %q", e.MessageType, e.Owner)
	}
	return fmt.Sprintf("handler for %q already registered", e.MessageType)
}

// NoHandlerRegisteredError is returned by Dispatch/Ask when no handler is
// bound to the message type. This is a terminal error, not a no-op.
type NoHandlerRegisteredError struct {
	MessageType string
}

func (e *NoHandlerRegisteredError) Error() string {
	return fmt.Sprintf("no handler registered for %q", e.MessageType)
}

type commandEntry struct {
	owner   string
	handler CommandHandler
}

type queryEntry struct {
	owner   string
	handler QueryHandler
}

// Dispatcher routes commands and queries to their single registered
// handler. Registration happens at boot; dispatching is stateless per call
// and safe for concurrent use afterwards.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]commandEntry
	queries  map[string]queryEntry
	log      logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatch failure records.
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// New creates an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		commands: make(map[string]commandEntry),
		queries:  make(map[string]queryEntry),
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterCommand binds a handler to a command type.
func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) error {
	return d.RegisterCommandFor("", name, handler)
}

// RegisterCommandFor binds a handler to a command type on behalf of a
// module; the owner is reported in duplicate-registration errors.
func (d *Dispatcher) RegisterCommandFor(owner, name string, handler CommandHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.commands[name]; ok {
		return &HandlerAlreadyRegisteredError{MessageType: name, Owner: existing.owner}
	}
	d.commands[name] = commandEntry{owner: owner, handler: handler}
	return nil
}

// RegisterQuery binds a handler to a query type.
func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) error {
	return d.RegisterQueryFor("", name, handler)
}

// RegisterQueryFor binds a handler to a query type on behalf of a module.
func (d *Dispatcher) RegisterQueryFor(owner, name string, handler QueryHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.queries[name]; ok {
		return &HandlerAlreadyRegisteredError{MessageType: name, Owner: existing.owner}
	}
	d.queries[name] = queryEntry{owner: owner, handler: handler}
	return nil
}

// Dispatch resolves the command's handler by its name and invokes it.
// Handler errors are logged and propagated to the caller unchanged; the
// caller is synchronously waiting and is the right place to decide
// retry or compensation.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	name := cmd.CommandName()

	d.mu.RLock()
	entry, ok := d.commands[name]
	d.mu.RUnlock()

	if !ok {
		return &NoHandlerRegisteredError{MessageType: name}
	}

	if err := entry.handler(ctx, cmd); err != nil {
		d.log.Error("command failed",
			logger.String("command", name),
			logger.String("error", err.Error()))
		return err
	}
	return nil
}

// Ask resolves the query's handler and returns its result.
func (d *Dispatcher) Ask(ctx context.Context, q Query) (any, error) {
	name := q.QueryName()

	d.mu.RLock()
	entry, ok := d.queries[name]
	d.mu.RUnlock()

	if !ok {
		return nil, &NoHandlerRegisteredError{MessageType: name}
	}

	result, err := entry.handler(ctx, q)
	if err != nil {
		d.log.Error("query failed",
			logger.String("query", name),
			logger.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

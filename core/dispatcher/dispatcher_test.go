package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placeOrder struct{ id int }

func (placeOrder) CommandName() string { return "orders.place" }

type orderTotal struct{ id int }

func (orderTotal) QueryName() string { return "orders.total" }

func TestDispatchRoutesToHandler(t *testing.T) {
	d := New()
	var got int

	require.NoError(t, d.RegisterCommand("orders.place", func(ctx context.Context, cmd Command) error {
		got = cmd.(placeOrder).id
		return nil
	}))

	require.NoError(t, d.Dispatch(context.Background(), placeOrder{id: 42}))
	assert.Equal(t, 42, got)
}

func TestDispatchWithoutHandler(t *testing.T) {
	d := New()
	err := d.Dispatch(context.Background(), placeOrder{})

	var noHandler *NoHandlerRegisteredError
	require.True(t, errors.As(err, &noHandler))
	assert.Equal(t, "orders.place", noHandler.MessageType)
}

func TestAskWithoutHandler(t *testing.T) {
	d := New()
	_, err := d.Ask(context.Background(), orderTotal{})

	var noHandler *NoHandlerRegisteredError
	require.True(t, errors.As(err, &noHandler))
	assert.Equal(t, "orders.total", noHandler.MessageType)
}

func TestDuplicateCommandRegistration(t *testing.T) {
	d := New()
	handler := func(ctx context.Context, cmd Command) error { return nil }

	require.NoError(t, d.RegisterCommandFor("orders", "orders.place", handler))
	err := d.RegisterCommandFor("rival", "orders.place", handler)

	var already *HandlerAlreadyRegisteredError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, "orders.place", already.MessageType)
	assert.Equal(t, "orders", already.Owner)
}

func TestDuplicateQueryRegistration(t *testing.T) {
	d := New()
	handler := func(ctx context.Context, q Query) (any, error) { return nil, nil }

	require.NoError(t, d.RegisterQuery("orders.total", handler))
	err := d.RegisterQuery("orders.total", handler)

	var already *HandlerAlreadyRegisteredError
	require.True(t, errors.As(err, &already))
}

func TestHandlerErrorPropagatesUnchanged(t *testing.T) {
	d := New()
	cause := errors.New("insufficient stock")

	require.NoError(t, d.RegisterCommand("orders.place", func(ctx context.Context, cmd Command) error {
		return cause
	}))

	err := d.Dispatch(context.Background(), placeOrder{})
	assert.Equal(t, cause, err, "dispatcher must not wrap handler errors")
}

func TestAskReturnsHandlerResult(t *testing.T) {
	d := New()
	require.NoError(t, d.RegisterQuery("orders.total", func(ctx context.Context, q Query) (any, error) {
		return q.(orderTotal).id * 10, nil
	}))

	result, err := d.Ask(context.Background(), orderTotal{id: 7})
	require.NoError(t, err)
	assert.Equal(t, 70, result)
}

func TestConcurrentDispatchIsSafe(t *testing.T) {
	d := New()
	var mu sync.Mutex
	count := 0

	require.NoError(t, d.RegisterCommand("orders.place", func(ctx context.Context, cmd Command) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))
	require.NoError(t, d.RegisterQuery("orders.total", func(ctx context.Context, q Query) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		return count, nil
	}))

	const goroutines = 64
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Dispatch(context.Background(), placeOrder{}))
		}()
		go func() {
			defer wg.Done()
			_, err := d.Ask(context.Background(), orderTotal{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, count)
}

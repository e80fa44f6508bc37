package emitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitRunsListenersInSubscriptionOrder(t *testing.T) {
	e := New()
	var got []string

	e.Listen("posts.created", "first", func(any) error {
		got = append(got, "first")
		return nil
	})
	e.Listen("posts.created", "second", func(any) error {
		got = append(got, "second")
		return nil
	})
	e.Listen("posts.created", "third", func(any) error {
		got = append(got, "third")
		return nil
	})

	e.Emit("posts.created", nil)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestEmitPassesPayload(t *testing.T) {
	e := New()
	var got any

	e.On("users.registered", func(payload any) error {
		got = payload
		return nil
	})

	e.Emit("users.registered", "the user")
	assert.Equal(t, "the user", got)
}

func TestEmitContinuesAfterListenerFailure(t *testing.T) {
	e := New()
	var got []string

	e.Listen("posts.created", "broken", func(any) error {
		return errors.New("db gone")
	})
	e.Listen("posts.created", "healthy", func(any) error {
		got = append(got, "healthy")
		return nil
	})

	e.Emit("posts.created", nil)
	assert.Equal(t, []string{"healthy"}, got, "failure must not block later listeners")
}

func TestEmitRecoversPanics(t *testing.T) {
	e := New()
	ran := false

	e.Listen("posts.created", "panicky", func(any) error {
		panic("boom")
	})
	e.Listen("posts.created", "after", func(any) error {
		ran = true
		return nil
	})

	assert.NotPanics(t, func() { e.Emit("posts.created", nil) })
	assert.True(t, ran)
}

func TestPublishAggregatesFailures(t *testing.T) {
	e := New()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	e.Listen("x", "a", func(any) error { return errA })
	e.Listen("x", "ok", func(any) error { return nil })
	e.Listen("x", "b", func(any) error { return errB })

	err := e.Publish("x", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errA))
	assert.True(t, errors.Is(err, errB))
}

func TestPublishNoFailures(t *testing.T) {
	e := New()
	e.On("x", func(any) error { return nil })
	assert.NoError(t, e.Publish("x", nil))
}

func TestEmitWithoutListenersIsNoOp(t *testing.T) {
	e := New()
	assert.NotPanics(t, func() { e.Emit("silence", nil) })
	assert.Equal(t, 0, e.ListenerCount("silence"))
}

func TestListenerCount(t *testing.T) {
	e := New()
	e.On("x", func(any) error { return nil })
	e.On("x", func(any) error { return nil })
	assert.Equal(t, 2, e.ListenerCount("x"))
}

package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterInstance("users", "users.service", "svc", true))

	got, err := r.Get("users.service")
	require.NoError(t, err)
	assert.Equal(t, "svc", got)

	owner, ok := r.Owner("users.service")
	require.True(t, ok)
	assert.Equal(t, "users", owner)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterInstance("users", "cache", 1, true))

	err := r.RegisterInstance("posts", "cache", 2, true)
	var dup *DuplicateServiceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "cache", dup.Service)
	assert.Equal(t, "users", dup.Owner)
	assert.Equal(t, "posts", dup.Claimant)

	// First registration stays untouched.
	got, err := r.Get("cache")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestGetUnknownService(t *testing.T) {
	r := New()
	_, err := r.Get("ghost")

	var notFound *ServiceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.Service)
}

func TestResolvePublicEnforcesVisibility(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterInstance("users", "users.lookup", "private thing", false))

	_, err := r.ResolvePublic("users.lookup")
	var notPublic *ServiceNotPublicError
	require.True(t, errors.As(err, &notPublic))
	assert.Equal(t, "users", notPublic.Owner)

	// Kernel-level Get still reaches it.
	got, err := r.Get("users.lookup")
	require.NoError(t, err)
	assert.Equal(t, "private thing", got)
}

func TestFactoryBuildsLazySingleton(t *testing.T) {
	r := New()
	calls := 0
	require.NoError(t, r.Register("users", "users.lookup", func() (any, error) {
		calls++
		return &struct{ n int }{n: calls}, nil
	}, false))

	assert.Equal(t, 0, calls, "factory must not run at registration")

	first, err := r.Get("users.lookup")
	require.NoError(t, err)
	second, err := r.Get("users.lookup")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
}

func TestFactoryErrorIsCached(t *testing.T) {
	r := New()
	calls := 0
	require.NoError(t, r.Register("users", "flaky", func() (any, error) {
		calls++
		return nil, errors.New("db unavailable")
	}, true))

	_, err1 := r.Get("flaky")
	require.Error(t, err1)
	_, err2 := r.Get("flaky")
	require.Error(t, err2)

	assert.Equal(t, 1, calls, "failed factory must not be retried")
}

func TestScopeVisibility(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterInstance("users", "users.service", "public svc", true))
	require.NoError(t, r.RegisterInstance("users", "users.lookup", "private svc", false))

	own := r.Scope("users")
	foreign := r.Scope("posts")

	assert.Equal(t, "users", own.Module())

	// Owner sees both.
	assert.True(t, own.Has("users.service"))
	assert.True(t, own.Has("users.lookup"))
	got, err := own.Get("users.lookup")
	require.NoError(t, err)
	assert.Equal(t, "private svc", got)

	// Foreign scope sees only the public one.
	assert.True(t, foreign.Has("users.service"))
	assert.False(t, foreign.Has("users.lookup"))

	_, err = foreign.Get("users.lookup")
	var notPublic *ServiceNotPublicError
	require.True(t, errors.As(err, &notPublic))

	_, err = foreign.Get("nope")
	var notFound *ServiceNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestNamesSorted(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterInstance("m", "zeta", 1, true))
	require.NoError(t, r.RegisterInstance("m", "alpha", 2, true))

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestConcurrentGetBuildsOnce(t *testing.T) {
	r := New()
	calls := 0
	var mu sync.Mutex
	require.NoError(t, r.Register("m", "shared", func() (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "built", nil
	}, true))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Get("shared")
			assert.NoError(t, err)
			assert.Equal(t, "built", got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

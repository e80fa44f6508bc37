package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestsFor(deps map[string][]string) map[string]Manifest {
	manifests := make(map[string]Manifest, len(deps))
	for name, dependsOn := range deps {
		manifests[name] = Manifest{Name: name, DependsOn: dependsOn}
	}
	return manifests
}

func TestResolveOrdersDependenciesFirst(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"logging":  nil,
		"user":     {"logging"},
		"security": {"user"},
	})

	order, err := Resolve(manifests)
	require.NoError(t, err)
	assert.Equal(t, []string{"logging", "user", "security"}, order)
}

func TestResolveBreaksTiesLexically(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"zeta":  nil,
		"alpha": nil,
		"mid":   {"alpha", "zeta"},
	})

	order, err := Resolve(manifests)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta", "mid"}, order)
}

func TestResolveIsDeterministic(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"a": nil, "b": nil, "c": nil, "d": {"a", "c"}, "e": {"b"},
	})

	first, err := Resolve(manifests)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		next, err := Resolve(manifests)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestResolveMissingDependency(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"user": {"database"},
	})

	_, err := Resolve(manifests)
	require.Error(t, err)

	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "user", missing.Module)
	assert.Equal(t, "database", missing.Dependency)
}

func TestResolveMissingDependencyIsDeterministic(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"alpha": {"ghost-one"},
		"beta":  {"ghost-two"},
	})

	for i := 0; i < 20; i++ {
		_, err := Resolve(manifests)
		var missing *MissingDependencyError
		require.True(t, errors.As(err, &missing))
		// Modules are validated in name order, so alpha always reports first.
		assert.Equal(t, "alpha", missing.Module)
		assert.Equal(t, "ghost-one", missing.Dependency)
	}
}

func TestResolveDirectCycle(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"mod_a": {"mod_b"},
		"mod_b": {"mod_a"},
	})

	_, err := Resolve(manifests)
	require.Error(t, err)

	var cyclic *CyclicDependencyError
	require.True(t, errors.As(err, &cyclic))
	assert.ElementsMatch(t, []string{"mod_a", "mod_b"}, cyclic.Modules)
}

func TestResolveLongerCycleNamesAllMembers(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"a": {"c"},
		"b": {"a"},
		"c": {"b"},
		// Independent module outside the cycle must not be reported.
		"standalone": nil,
	})

	_, err := Resolve(manifests)
	require.Error(t, err)

	var cyclic *CyclicDependencyError
	require.True(t, errors.As(err, &cyclic))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cyclic.Modules)
	assert.NotContains(t, cyclic.Modules, "standalone")
}

func TestResolveSelfDependency(t *testing.T) {
	manifests := manifestsFor(map[string][]string{
		"selfish": {"selfish"},
	})

	_, err := Resolve(manifests)
	var cyclic *CyclicDependencyError
	require.True(t, errors.As(err, &cyclic))
	assert.Equal(t, []string{"selfish"}, cyclic.Modules)
}

func TestResolveEmptyInput(t *testing.T) {
	order, err := Resolve(map[string]Manifest{})
	require.NoError(t, err)
	assert.Empty(t, order)
}

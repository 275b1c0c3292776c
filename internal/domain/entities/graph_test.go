package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasebot/cascade/internal/domain/entities"
)

func mustRegistry(t *testing.T, modules ...entities.Module) *entities.Registry {
	t.Helper()
	registry, err := entities.NewRegistry(modules)
	require.NoError(t, err)
	return registry
}

func module(name, version string, deps ...string) entities.Module {
	return entities.Module{Name: name, Version: version, Dependencies: deps, Release: true}
}

func TestNewDependencyGraph(t *testing.T) {
	t.Parallel()

	t.Run("should order every dependency before its dependents", func(t *testing.T) {
		t.Parallel()

		// given
		registry := mustRegistry(t,
			module("module-c", "1.0.0", "module-b"),
			module("module-b", "1.0.0", "module-a"),
			module("module-a", "1.0.0"),
			module("module-d", "1.0.0", "module-a", "module-c"),
		)

		// when
		graph, err := entities.NewDependencyGraph(registry)

		// then
		require.NoError(t, err)
		order := graph.TopologicalOrder()
		position := make(map[string]int, len(order))
		for i, name := range order {
			position[name] = i
		}
		for _, name := range registry.Names() {
			for _, dep := range registry.Get(name).Dependencies {
				assert.Less(t, position[dep], position[name],
					"%s must come before %s", dep, name)
			}
		}
	})

	t.Run("should produce a deterministic order", func(t *testing.T) {
		t.Parallel()

		// given
		build := func() []string {
			registry := mustRegistry(t,
				module("module-b", "1.0.0"),
				module("module-a", "1.0.0"),
				module("module-c", "1.0.0", "module-a", "module-b"),
			)
			graph, err := entities.NewDependencyGraph(registry)
			require.NoError(t, err)
			return graph.TopologicalOrder()
		}

		// when
		first := build()
		second := build()

		// then
		assert.Equal(t, []string{"module-a", "module-b", "module-c"}, first)
		assert.Equal(t, first, second)
	})

	t.Run("should detect a two-module cycle and name its members", func(t *testing.T) {
		t.Parallel()

		// given
		registry := mustRegistry(t,
			module("module-a", "1.0.0", "module-b"),
			module("module-b", "1.0.0", "module-a"),
		)

		// when
		graph, err := entities.NewDependencyGraph(registry)

		// then
		require.Error(t, err)
		assert.Nil(t, graph)
		var cycleErr *entities.CycleDetectedError
		require.ErrorAs(t, err, &cycleErr)
		assert.Contains(t, cycleErr.Members, "module-a")
		assert.Contains(t, cycleErr.Members, "module-b")
		assert.Contains(t, err.Error(), "dependency cycle detected")
	})

	t.Run("should detect a cycle behind an acyclic prefix", func(t *testing.T) {
		t.Parallel()

		// given
		registry := mustRegistry(t,
			module("module-root", "1.0.0"),
			module("module-x", "1.0.0", "module-root", "module-z"),
			module("module-y", "1.0.0", "module-x"),
			module("module-z", "1.0.0", "module-y"),
		)

		// when
		_, err := entities.NewDependencyGraph(registry)

		// then
		var cycleErr *entities.CycleDetectedError
		require.ErrorAs(t, err, &cycleErr)
		assert.ElementsMatch(t, []string{"module-x", "module-y", "module-z"}, cycleErr.Members)
	})

	t.Run("should assign longest-path levels in a diamond", func(t *testing.T) {
		t.Parallel()

		// given: d depends on b and c, both depend on a
		registry := mustRegistry(t,
			module("module-a", "1.0.0"),
			module("module-b", "1.0.0", "module-a"),
			module("module-c", "1.0.0", "module-a"),
			module("module-d", "1.0.0", "module-b", "module-c"),
		)

		// when
		_, err := entities.NewDependencyGraph(registry)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, registry.Get("module-a").Level)
		assert.Equal(t, 2, registry.Get("module-b").Level)
		assert.Equal(t, 2, registry.Get("module-c").Level)
		assert.Equal(t, 3, registry.Get("module-d").Level)
	})

	t.Run("should prefer the longest path when levels disagree", func(t *testing.T) {
		t.Parallel()

		// given: c depends on a directly and through b
		registry := mustRegistry(t,
			module("module-a", "1.0.0"),
			module("module-b", "1.0.0", "module-a"),
			module("module-c", "1.0.0", "module-a", "module-b"),
		)

		// when
		_, err := entities.NewDependencyGraph(registry)

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, registry.Get("module-c").Level)
	})

	t.Run("should prune dependents reachable through intermediates", func(t *testing.T) {
		t.Parallel()

		// given: c depends on both a and b, while b already depends on a,
		// so c is not an immediate dependent of a
		registry := mustRegistry(t,
			module("module-a", "1.0.0"),
			module("module-b", "1.0.0", "module-a"),
			module("module-c", "1.0.0", "module-a", "module-b"),
		)

		// when
		_, err := entities.NewDependencyGraph(registry)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"module-b"}, registry.Get("module-a").Dependents)
		assert.Equal(t, []string{"module-c"}, registry.Get("module-b").Dependents)
		assert.Empty(t, registry.Get("module-c").Dependents)
	})

	t.Run("should list transitive dependents in topological order", func(t *testing.T) {
		t.Parallel()

		// given
		registry := mustRegistry(t,
			module("module-a", "1.0.0"),
			module("module-b", "1.0.0", "module-a"),
			module("module-c", "1.0.0", "module-b"),
			module("module-d", "1.0.0"),
		)
		graph, err := entities.NewDependencyGraph(registry)
		require.NoError(t, err)

		// when
		dependents := graph.TransitiveDependents("module-a")

		// then
		assert.Equal(t, []string{"module-b", "module-c"}, dependents)
		assert.Empty(t, graph.TransitiveDependents("module-c"))
	})
}

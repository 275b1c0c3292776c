package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasebot/cascade/internal/domain/entities"
)

func TestNextVersion(t *testing.T) {
	t.Parallel()

	t.Run("should bump the patch component", func(t *testing.T) {
		t.Parallel()

		// given
		current := "1.2.3"

		// when
		next, err := entities.NextVersion(current, entities.BumpPatch)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.4", next)
	})

	t.Run("should bump the minor component and reset patch", func(t *testing.T) {
		t.Parallel()

		// given
		current := "1.2.3"

		// when
		next, err := entities.NextVersion(current, entities.BumpMinor)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.3.0", next)
	})

	t.Run("should preserve a v prefix", func(t *testing.T) {
		t.Parallel()

		// when
		next, err := entities.NextVersion("v2.0.0", entities.BumpPatch)

		// then
		require.NoError(t, err)
		assert.Equal(t, "v2.0.1", next)
	})

	t.Run("should drop pre-release metadata on bump", func(t *testing.T) {
		t.Parallel()

		// when
		next, err := entities.NextVersion("1.2.0-beta.2", entities.BumpPatch)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", next)
	})

	t.Run("should reject a non-semver version", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NextVersion("not-a-version", entities.BumpPatch)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid semantic version")
	})
}

func TestIsNewerVersion(t *testing.T) {
	t.Parallel()

	t.Run("should compare semantic versions", func(t *testing.T) {
		t.Parallel()

		assert.True(t, entities.IsNewerVersion("1.0.0", "1.0.1"))
		assert.True(t, entities.IsNewerVersion("1.9.0", "1.10.0"))
		assert.False(t, entities.IsNewerVersion("2.0.0", "1.9.9"))
		assert.False(t, entities.IsNewerVersion("1.0.0", "1.0.0"))
	})

	t.Run("should handle mixed v prefixes", func(t *testing.T) {
		t.Parallel()

		assert.True(t, entities.IsNewerVersion("v1.0.0", "1.0.1"))
		assert.True(t, entities.IsNewerVersion("1.0.0", "v1.1.0"))
	})
}

func TestParseBumpPolicy(t *testing.T) {
	t.Parallel()

	t.Run("should default to patch for empty input", func(t *testing.T) {
		t.Parallel()

		policy, err := entities.ParseBumpPolicy("")

		require.NoError(t, err)
		assert.Equal(t, entities.BumpPatch, policy)
	})

	t.Run("should accept minor case-insensitively", func(t *testing.T) {
		t.Parallel()

		policy, err := entities.ParseBumpPolicy(" Minor ")

		require.NoError(t, err)
		assert.Equal(t, entities.BumpMinor, policy)
	})

	t.Run("should reject unknown policies", func(t *testing.T) {
		t.Parallel()

		_, err := entities.ParseBumpPolicy("major")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown bump policy")
	})
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should reject duplicate module names", func(t *testing.T) {
		t.Parallel()

		// given
		modules := []entities.Module{
			module("module-a", "1.0.0"),
			module("module-a", "2.0.0"),
		}

		// when
		_, err := entities.NewRegistry(modules)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate module "module-a"`)
	})

	t.Run("should reject an unknown declared dependency", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewRegistry([]entities.Module{
			module("module-a", "1.0.0", "module-missing"),
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown dependency "module-missing"`)
	})

	t.Run("should reject a self-dependency", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewRegistry([]entities.Module{
			module("module-a", "1.0.0", "module-a"),
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "depends on itself")
	})

	t.Run("should reject an invalid version", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewRegistry([]entities.Module{
			module("module-a", "one-dot-oh"),
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid version")
	})

	t.Run("should expose modules sorted by level then name", func(t *testing.T) {
		t.Parallel()

		// given
		registry := mustRegistry(t,
			module("module-z", "1.0.0"),
			module("module-a", "1.0.0", "module-z"),
			module("module-m", "1.0.0"),
		)
		_, err := entities.NewDependencyGraph(registry)
		require.NoError(t, err)

		// when
		modules := registry.Modules()

		// then
		names := make([]string, 0, len(modules))
		for _, m := range modules {
			names = append(names, m.Name)
		}
		assert.Equal(t, []string{"module-m", "module-z", "module-a"}, names)
	})
}

//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasebot/cascade/internal/domain/commands"
	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/test/domain/entitybuilders"
	"github.com/releasebot/cascade/test/infrastructure/repositorydoubles"
)

func chainRegistry(t *testing.T) *entities.Registry {
	t.Helper()
	return testRegistry(t,
		entitybuilders.NewModuleBuilder().
			WithName("module-platform-lang").
			WithVersion("1.0.0").
			BuildModule(),
		entitybuilders.NewModuleBuilder().
			WithName("module-platform-io").
			WithVersion("1.2.0").
			WithDependencies("module-platform-lang").
			BuildModule(),
		entitybuilders.NewModuleBuilder().
			WithName("module-platform-http").
			WithVersion("2.0.0").
			WithDependencies("module-platform-io").
			BuildModule(),
	)
}

func TestPropagateCommand_Execute(t *testing.T) {
	t.Run("should bump dependents of a changed module and save", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{Changes: []string{"module-platform-lang=1.1.0"}})

		// then
		require.NoError(t, err)
		require.Len(t, registryRepo.SavedRegistries, 1)

		saved := registryRepo.SavedRegistries[0]
		assert.Equal(t, "1.1.0", saved.Get("module-platform-lang").Version)
		assert.Equal(t, "1.2.1", saved.Get("module-platform-io").Version)
		assert.Equal(t, "2.0.1", saved.Get("module-platform-http").Version)
	})

	t.Run("should honor the policy flag over the configured policy", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{
				Changes: []string{"module-platform-lang=1.1.0"},
				Policy:  "minor",
			})

		// then
		require.NoError(t, err)
		require.Len(t, registryRepo.SavedRegistries, 1)
		assert.Equal(t, "1.3.0", registryRepo.SavedRegistries[0].Get("module-platform-io").Version)
	})

	t.Run("should not save when there is nothing to propagate", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, registryRepo.SavedRegistries)
	})

	t.Run("should skip unknown modules without failing the run", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{Changes: []string{
				"module-retired-socket=9.9.9",
				"module-platform-lang=1.1.0",
			}})

		// then
		require.NoError(t, err)
		require.Len(t, registryRepo.SavedRegistries, 1)
		saved := registryRepo.SavedRegistries[0]
		assert.Equal(t, "1.1.0", saved.Get("module-platform-lang").Version)
		assert.Nil(t, saved.Get("module-retired-socket"))
	})

	t.Run("should not save on a dry run", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{
				DryRun:  true,
				Changes: []string{"module-platform-lang=1.1.0"},
			})

		// then
		require.NoError(t, err)
		assert.Empty(t, registryRepo.SavedRegistries)
	})

	t.Run("should reject malformed change flags", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{Changes: []string{"module-platform-lang"}})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected name=version")
		assert.Empty(t, registryRepo.SavedRegistries)
	})

	t.Run("should consume changes detected from git", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{}
		changeRepo := &repositorydoubles.SpyChangeRepository{
			Changes: []entities.VersionChange{{
				Name:       "module-platform-io",
				OldVersion: "1.1.0",
				NewVersion: "1.3.0",
				Origin:     "git",
			}},
		}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{FromGit: "/work/module-registry"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"/work/module-registry"}, changeRepo.DetectedDirs)
		require.Len(t, registryRepo.SavedRegistries, 1)

		saved := registryRepo.SavedRegistries[0]
		assert.Equal(t, "1.3.0", saved.Get("module-platform-io").Version)
		assert.Equal(t, "2.0.1", saved.Get("module-platform-http").Version)
		assert.Equal(t, "1.0.0", saved.Get("module-platform-lang").Version)
	})

	t.Run("should derive changes from newer release tags", func(t *testing.T) {
		// given
		registryRepo := &repositorydoubles.SpyRegistryRepository{Registry: chainRegistry(t)}
		metadataRepo := &repositorydoubles.SpyMetadataRepository{
			ReleaseTags: map[string]string{
				"module-platform-lang": "2.0.0",
				"module-platform-io":   "1.2.0",
			},
		}
		changeRepo := &repositorydoubles.SpyChangeRepository{}
		command := commands.NewPropagateCommand(registryRepo, metadataRepo.Factory(), changeRepo)

		// when
		err := command.Execute(context.Background(), testSettings("modules.yaml"),
			commands.PropagateOptions{FromReleases: true})

		// then
		require.NoError(t, err)
		require.Len(t, registryRepo.SavedRegistries, 1)

		saved := registryRepo.SavedRegistries[0]
		assert.Equal(t, "2.0.0", saved.Get("module-platform-lang").Version)
		assert.Equal(t, "1.2.1", saved.Get("module-platform-io").Version)
	})
}

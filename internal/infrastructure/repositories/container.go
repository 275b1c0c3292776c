package repositories

import (
	"go.uber.org/dig"

	"github.com/releasebot/cascade/internal/domain/entities"
	domainRepos "github.com/releasebot/cascade/internal/domain/repositories"
	ghRepo "github.com/releasebot/cascade/internal/infrastructure/repositories/github"
	"github.com/releasebot/cascade/internal/infrastructure/repositories/gitchanges"
	"github.com/releasebot/cascade/internal/infrastructure/repositories/registryfile"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register repository constructors
	if err := container.Provide(registryfile.NewFileRegistryRepository); err != nil {
		return err
	}
	if err := container.Provide(gitchanges.NewChangeRepository); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(
		func(impl *registryfile.FileRegistryRepository) domainRepos.RegistryRepository {
			return impl
		},
	); err != nil {
		return err
	}
	if err := container.Provide(
		func(impl *gitchanges.ChangeRepository) domainRepos.ChangeRepository {
			return impl
		},
	); err != nil {
		return err
	}

	// Metadata repositories are built per run, once the source settings
	// are known.
	if err := container.Provide(func() domainRepos.MetadataFactory {
		return func(source entities.SourceSettings) domainRepos.MetadataRepository {
			return ghRepo.NewMetadataRepository(source)
		}
	}); err != nil {
		return err
	}

	return nil
}

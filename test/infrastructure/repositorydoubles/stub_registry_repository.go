//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// SpyRegistryRepository implements repositories.RegistryRepository as a
// configurable spy.
type SpyRegistryRepository struct {
	// --- Load ---
	Registry *entities.Registry
	LoadErr  error
	// spy: paths that were loaded
	LoadedPaths []string

	// --- Save ---
	SaveErr error
	// spy: registries that were saved, by path
	SavedPaths      []string
	SavedRegistries []*entities.Registry
}

var _ repositories.RegistryRepository = (*SpyRegistryRepository)(nil)

func (r *SpyRegistryRepository) Load(path string) (*entities.Registry, error) {
	r.LoadedPaths = append(r.LoadedPaths, path)
	return r.Registry, r.LoadErr
}

func (r *SpyRegistryRepository) Save(path string, registry *entities.Registry) error {
	r.SavedPaths = append(r.SavedPaths, path)
	r.SavedRegistries = append(r.SavedRegistries, registry)
	return r.SaveErr
}

package repositories

import (
	"github.com/releasebot/cascade/internal/domain/entities"
)

// RegistryRepository persists the module registry. Implementations own
// the file format; the domain only sees validated registries.
type RegistryRepository interface {
	// Load reads and validates the registry at the given path. A
	// malformed file yields an *entities.LoadError.
	Load(path string) (*entities.Registry, error)

	// Save atomically rewrites the registry file at the given path,
	// preserving the format it was loaded in.
	Save(path string, registry *entities.Registry) error
}

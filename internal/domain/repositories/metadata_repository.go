package repositories

import (
	"context"

	"github.com/releasebot/cascade/internal/domain/entities"
)

// MetadataRepository reads module metadata from the hosting service.
type MetadataRepository interface {
	// FetchVersion returns the version recorded in the module repo's
	// version properties file.
	FetchVersion(ctx context.Context, name string) (string, error)

	// FetchDependencies returns the module names referenced by the
	// module repo's build file.
	FetchDependencies(ctx context.Context, name string) ([]string, error)

	// LatestReleaseTag returns the tag of the module's latest published
	// release, without any leading "v".
	LatestReleaseTag(ctx context.Context, name string) (string, error)
}

// MetadataFactory builds a MetadataRepository for a configured source.
// Settings are only known at execution time, so commands receive the
// factory rather than a bound repository.
type MetadataFactory func(source entities.SourceSettings) MetadataRepository

// ChangeRepository derives version changes from a local source, such as
// the git history of the registry file.
type ChangeRepository interface {
	// DetectChanges compares the working-tree registry against the
	// committed one and returns a change per module whose version moved.
	DetectChanges(ctx context.Context, repoDir, registryPath string) ([]entities.VersionChange, error)
}

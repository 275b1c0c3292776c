//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// SpyMetadataRepository implements repositories.MetadataRepository as a
// configurable spy.
type SpyMetadataRepository struct {
	// --- FetchVersion ---
	Versions   map[string]string // module name -> version
	VersionErr error
	// spy: modules whose version was fetched
	VersionFetches []string

	// --- FetchDependencies ---
	Dependencies    map[string][]string // module name -> dependency names
	DependenciesErr error

	// --- LatestReleaseTag ---
	ReleaseTags map[string]string // module name -> tag
	ReleaseErr  error
}

var _ repositories.MetadataRepository = (*SpyMetadataRepository)(nil)

func (m *SpyMetadataRepository) FetchVersion(_ context.Context, name string) (string, error) {
	m.VersionFetches = append(m.VersionFetches, name)
	if m.VersionErr != nil {
		return "", m.VersionErr
	}
	if version, ok := m.Versions[name]; ok {
		return version, nil
	}
	return "", fmt.Errorf("no version configured for %s", name)
}

func (m *SpyMetadataRepository) FetchDependencies(_ context.Context, name string) ([]string, error) {
	if m.DependenciesErr != nil {
		return nil, m.DependenciesErr
	}
	return m.Dependencies[name], nil
}

func (m *SpyMetadataRepository) LatestReleaseTag(_ context.Context, name string) (string, error) {
	if m.ReleaseErr != nil {
		return "", m.ReleaseErr
	}
	return m.ReleaseTags[name], nil
}

// Factory returns a repositories.MetadataFactory that always yields
// this spy, regardless of the source settings.
func (m *SpyMetadataRepository) Factory() repositories.MetadataFactory {
	return func(_ entities.SourceSettings) repositories.MetadataRepository {
		return m
	}
}

// SpyChangeRepository implements repositories.ChangeRepository as a
// configurable spy.
type SpyChangeRepository struct {
	Changes   []entities.VersionChange
	DetectErr error
	// spy: repo directories that were inspected
	DetectedDirs []string
}

var _ repositories.ChangeRepository = (*SpyChangeRepository)(nil)

func (c *SpyChangeRepository) DetectChanges(
	_ context.Context,
	repoDir, _ string,
) ([]entities.VersionChange, error) {
	c.DetectedDirs = append(c.DetectedDirs, repoDir)
	return c.Changes, c.DetectErr
}

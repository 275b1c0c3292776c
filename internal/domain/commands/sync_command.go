package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// Sync is the interface for the sync command.
type Sync interface {
	Execute(ctx context.Context, settings *entities.Settings, opts SyncOptions) error
}

// SyncOptions holds runtime options for a single sync run.
type SyncOptions struct {
	DryRun  bool
	Verbose bool
}

// SyncCommand refreshes the registry from the hosting service: it
// fetches every module's recorded version and declared dependencies,
// rebuilds the dependency graph, and rewrites the registry file and the
// README dashboard with the recomputed levels and dependents.
type SyncCommand struct {
	registryRepo    repositories.RegistryRepository
	metadataFactory repositories.MetadataFactory
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand(
	registryRepo repositories.RegistryRepository,
	metadataFactory repositories.MetadataFactory,
) *SyncCommand {
	return &SyncCommand{
		registryRepo:    registryRepo,
		metadataFactory: metadataFactory,
	}
}

// Execute runs the full sync cycle.
func (it *SyncCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts SyncOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	registry, err := it.registryRepo.Load(settings.Registry)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d modules from %s", registry.Len(), settings.Registry)

	refreshed, fetchErr := it.fetchModules(ctx, settings, registry)
	if fetchErr != nil {
		return fetchErr
	}

	updated, newErr := entities.NewRegistry(refreshed)
	if newErr != nil {
		return fmt.Errorf("remote metadata produced an invalid registry: %w", newErr)
	}

	graph, graphErr := entities.NewDependencyGraph(updated)
	if graphErr != nil {
		return graphErr
	}
	logger.Info("Rebuilt dependency graph and recomputed module levels")

	if opts.DryRun {
		for _, module := range graph.Registry().Modules() {
			logger.Infof("[DRY RUN] %s: version %s, level %d, dependents %v",
				module.Name, module.Version, module.Level, module.Dependents)
		}
		return nil
	}

	if saveErr := it.registryRepo.Save(settings.Registry, graph.Registry()); saveErr != nil {
		return fmt.Errorf("failed to save registry: %w", saveErr)
	}
	logger.Infof("Updated registry %s", settings.Registry)

	return writeDashboard(settings, graph.Registry())
}

// fetchModules reads the remote version and dependency list of every
// registered module. Any fetch failure aborts the run so a partial
// registry is never written.
func (it *SyncCommand) fetchModules(
	ctx context.Context,
	settings *entities.Settings,
	registry *entities.Registry,
) ([]entities.Module, error) {
	metadataRepo := it.metadataFactory(settings.Source)

	known := make(map[string]bool, registry.Len())
	for _, name := range registry.Names() {
		known[name] = true
	}

	var modules []entities.Module
	for _, name := range registry.Names() {
		current := registry.Get(name)

		version, err := metadataRepo.FetchVersion(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch version of %s: %w", name, err)
		}

		dependencies, depErr := metadataRepo.FetchDependencies(ctx, name)
		if depErr != nil {
			return nil, fmt.Errorf("failed to fetch dependencies of %s: %w", name, depErr)
		}

		// Dependency references outside the registry (tooling repos,
		// archived modules) are not graph edges.
		var tracked []string
		for _, dep := range dependencies {
			if dep == name {
				continue
			}
			if known[dep] {
				tracked = append(tracked, dep)
			} else {
				logger.Debugf("%s references untracked module %s, ignoring", name, dep)
			}
		}

		logger.Debugf("%s: version %s, %d tracked dependencies", name, version, len(tracked))
		modules = append(modules, entities.Module{
			Name:         name,
			Version:      version,
			Dependencies: tracked,
			Release:      current.Release,
		})
	}

	return modules, nil
}

// writeDashboard re-renders the README module table when a dashboard
// path is configured.
func writeDashboard(settings *entities.Settings, registry *entities.Registry) error {
	if settings.Dashboard == "" {
		return nil
	}

	content, err := os.ReadFile(settings.Dashboard)
	if err != nil {
		return fmt.Errorf("failed to read dashboard %q: %w", settings.Dashboard, err)
	}

	rendered := entities.RenderDashboard(
		string(content), settings.Source.Organization, registry.Modules(),
	)
	if rendered == string(content) {
		logger.Debug("Dashboard unchanged")
		return nil
	}

	if writeErr := os.WriteFile(settings.Dashboard, []byte(rendered), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write dashboard %q: %w", settings.Dashboard, writeErr)
	}
	logger.Infof("Updated dashboard %s", settings.Dashboard)
	return nil
}

package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// Propagate is the interface for the propagate command.
type Propagate interface {
	Execute(ctx context.Context, settings *entities.Settings, opts PropagateOptions) error
}

// PropagateOptions holds runtime options for a propagation run.
type PropagateOptions struct {
	DryRun  bool
	Verbose bool
	// Changes are explicit "name=version" pairs from the command line.
	Changes []string
	// FromGit derives changes by diffing the registry file against the
	// committed copy in the given repository directory.
	FromGit string
	// FromReleases derives changes from the latest published release
	// tag of every registered module.
	FromReleases bool
	// Policy overrides the configured bump policy when non-empty.
	Policy string
}

// PropagateCommand consumes a set of version changes, walks the
// dependency graph in topological order, bumps every transitively
// affected module, and rewrites the registry.
type PropagateCommand struct {
	registryRepo    repositories.RegistryRepository
	metadataFactory repositories.MetadataFactory
	changeRepo      repositories.ChangeRepository
}

// NewPropagateCommand creates a new PropagateCommand.
func NewPropagateCommand(
	registryRepo repositories.RegistryRepository,
	metadataFactory repositories.MetadataFactory,
	changeRepo repositories.ChangeRepository,
) *PropagateCommand {
	return &PropagateCommand{
		registryRepo:    registryRepo,
		metadataFactory: metadataFactory,
		changeRepo:      changeRepo,
	}
}

// Execute runs one propagation cycle.
func (it *PropagateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts PropagateOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	policy := settings.BumpPolicy()
	if opts.Policy != "" {
		parsed, err := entities.ParseBumpPolicy(opts.Policy)
		if err != nil {
			return err
		}
		policy = parsed
	}

	registry, err := it.registryRepo.Load(settings.Registry)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d modules from %s", registry.Len(), settings.Registry)

	graph, graphErr := entities.NewDependencyGraph(registry)
	if graphErr != nil {
		return graphErr
	}

	changes, changesErr := it.collectChanges(ctx, settings, registry, opts)
	if changesErr != nil {
		return changesErr
	}
	if len(changes) == 0 {
		logger.Info("No version changes to propagate, nothing to do.")
		return nil
	}
	for _, change := range changes {
		logger.Debugf("Change (%s): %s %s -> %s",
			change.Origin, change.Name, change.OldVersion, change.NewVersion)
	}

	result, propErr := graph.Propagate(changes, policy)
	if propErr != nil {
		return propErr
	}

	for i := range result.Skipped {
		logger.Warnf("Skipping: %v", &result.Skipped[i])
	}

	if len(result.Updates) == 0 {
		logger.Info("All changes already applied, registry is up to date.")
		return nil
	}

	for _, update := range result.Updates {
		prefix := ""
		if opts.DryRun {
			prefix = "[DRY RUN] "
		}
		logger.Infof("%s%s: %s -> %s", prefix, update.Name, update.OldVersion, update.NewVersion)
	}

	if opts.DryRun {
		return nil
	}

	registry.Apply(result.Updates)
	if saveErr := it.registryRepo.Save(settings.Registry, registry); saveErr != nil {
		return fmt.Errorf("failed to save registry: %w", saveErr)
	}
	logger.Infof("Updated registry %s (%d modules bumped)", settings.Registry, len(result.Updates))

	return writeDashboard(settings, registry)
}

// collectChanges gathers version changes from all requested sources.
func (it *PropagateCommand) collectChanges(
	ctx context.Context,
	settings *entities.Settings,
	registry *entities.Registry,
	opts PropagateOptions,
) ([]entities.VersionChange, error) {
	var changes []entities.VersionChange

	for _, raw := range opts.Changes {
		change, err := parseChangeFlag(raw, registry)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}

	if opts.FromGit != "" {
		detected, err := it.changeRepo.DetectChanges(ctx, opts.FromGit, settings.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to detect changes from git: %w", err)
		}
		logger.Infof("Detected %d version change(s) from git history", len(detected))
		changes = append(changes, detected...)
	}

	if opts.FromReleases {
		released, err := it.releaseChanges(ctx, settings, registry)
		if err != nil {
			return nil, err
		}
		logger.Infof("Detected %d version change(s) from published releases", len(released))
		changes = append(changes, released...)
	}

	return changes, nil
}

// releaseChanges asks the hosting service for every module's latest
// release tag and reports the ones that moved past the registry.
func (it *PropagateCommand) releaseChanges(
	ctx context.Context,
	settings *entities.Settings,
	registry *entities.Registry,
) ([]entities.VersionChange, error) {
	metadataRepo := it.metadataFactory(settings.Source)

	var changes []entities.VersionChange
	for _, name := range registry.Names() {
		module := registry.Get(name)

		tag, err := metadataRepo.LatestReleaseTag(ctx, name)
		if err != nil {
			logger.Warnf("Failed to fetch latest release of %s: %v", name, err)
			continue
		}
		if tag == "" || !entities.IsNewerVersion(module.Version, tag) {
			continue
		}

		changes = append(changes, entities.VersionChange{
			Name:       name,
			OldVersion: module.Version,
			NewVersion: tag,
			Origin:     "release",
		})
	}
	return changes, nil
}

// parseChangeFlag parses a "name=version" pair from the command line.
func parseChangeFlag(raw string, registry *entities.Registry) (entities.VersionChange, error) {
	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return entities.VersionChange{}, fmt.Errorf(
			"invalid change %q (expected name=version)", raw,
		)
	}

	change := entities.VersionChange{
		Name:       parts[0],
		NewVersion: parts[1],
		Origin:     "flag",
	}
	if module := registry.Get(change.Name); module != nil {
		change.OldVersion = module.Version
	}
	return change, nil
}

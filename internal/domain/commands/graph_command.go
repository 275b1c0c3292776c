package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// Graph is the interface for the graph command.
type Graph interface {
	Execute(ctx context.Context, settings *entities.Settings, opts GraphOptions) error
}

// GraphOptions holds runtime options for a graph inspection run.
type GraphOptions struct {
	Verbose bool
	// Check suppresses the listing; only the cycle check result matters.
	Check bool
}

// GraphCommand loads the registry, builds the dependency graph, and
// prints the topological ordering with each module's level. With Check
// set it only reports whether the graph is acyclic.
type GraphCommand struct {
	registryRepo repositories.RegistryRepository
}

// NewGraphCommand creates a new GraphCommand.
func NewGraphCommand(registryRepo repositories.RegistryRepository) *GraphCommand {
	return &GraphCommand{registryRepo: registryRepo}
}

// Execute inspects the dependency graph.
func (it *GraphCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts GraphOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	registry, err := it.registryRepo.Load(settings.Registry)
	if err != nil {
		return err
	}

	graph, graphErr := entities.NewDependencyGraph(registry)
	if graphErr != nil {
		return graphErr
	}

	if opts.Check {
		logger.Infof("Graph OK: %d modules, no cycles", registry.Len())
		return nil
	}

	for _, name := range graph.TopologicalOrder() {
		module := registry.Get(name)
		logger.Infof("level %d  %s %s  (dependents: %v)",
			module.Level, module.Name, module.Version, module.Dependents)
	}
	return nil
}

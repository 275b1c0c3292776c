package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasebot/cascade/internal/domain/commands"
	"github.com/releasebot/cascade/internal/domain/entities"
)

// GraphController handles the "graph" subcommand.
type GraphController struct {
	command commands.Graph
}

// NewGraphController creates a new GraphController.
func NewGraphController(command commands.Graph) *GraphController {
	return &GraphController{command: command}
}

// GetBind returns the Cobra command metadata for the graph controller.
func (it *GraphController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "graph",
		Short: "Inspect the module dependency graph",
		Long: `Load the registry, build the dependency graph, and print the
topological ordering with each module's release level.

With --check only the cycle check runs; the process exits non-zero
when the graph has a dependency cycle, which makes it usable as a
CI gate.`,
	}
}

// Execute runs the graph inspection mode.
func (it *GraphController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	verbose, _ := cmd.Flags().GetBool("verbose")
	check, _ := cmd.Flags().GetBool("check")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	if runErr := it.command.Execute(ctx, settings, commands.GraphOptions{
		Verbose: verbose,
		Check:   check,
	}); runErr != nil {
		logger.Errorf("Graph inspection failed: %v", runErr)
		os.Exit(1)
	}
}

// AddFlags adds the graph-specific flags to the given Cobra command.
func (it *GraphController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("check", false, "Only verify the graph is acyclic")
}

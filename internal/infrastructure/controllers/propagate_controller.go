package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasebot/cascade/internal/domain/commands"
	"github.com/releasebot/cascade/internal/domain/entities"
)

// PropagateController handles the "propagate" subcommand.
type PropagateController struct {
	command commands.Propagate
}

// NewPropagateController creates a new PropagateController.
func NewPropagateController(command commands.Propagate) *PropagateController {
	return &PropagateController{command: command}
}

// GetBind returns the Cobra command metadata for the propagate controller.
func (it *PropagateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "propagate",
		Short: "Propagate version changes through the dependency graph",
		Long: `Consume a set of module version changes, walk the dependency graph
in topological order, bump every transitively affected module, and
rewrite the registry.

Changes come from explicit --change flags, from the git history of
the registry file (--from-git), or from the latest published release
of every module (--from-releases). Sources combine.`,
	}
}

// Execute runs the propagation mode.
func (it *PropagateController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	changes, _ := cmd.Flags().GetStringArray("change")
	fromGit, _ := cmd.Flags().GetString("from-git")
	fromReleases, _ := cmd.Flags().GetBool("from-releases")
	policy, _ := cmd.Flags().GetString("policy")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}

	logger.Info("Starting version propagation...")

	if runErr := it.command.Execute(ctx, settings, commands.PropagateOptions{
		DryRun:       dryRun,
		Verbose:      verbose,
		Changes:      changes,
		FromGit:      fromGit,
		FromReleases: fromReleases,
		Policy:       policy,
	}); runErr != nil {
		logger.Errorf("Propagation failed: %v", runErr)
	}
}

// AddFlags adds the propagate-specific flags to the given Cobra command.
func (it *PropagateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("change", nil,
		"Version change as name=version (repeatable)")
	cmd.Flags().String("from-git", "",
		"Derive changes by diffing the registry against HEAD of this repo directory")
	cmd.Flags().Bool("from-releases", false,
		"Derive changes from the latest published release of every module")
	cmd.Flags().String("policy", "",
		"Bump policy for affected dependents (patch, minor); overrides config")
}

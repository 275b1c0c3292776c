package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasebot/cascade/internal/domain/commands"
	"github.com/releasebot/cascade/internal/domain/entities"
)

// SyncController handles the "sync" subcommand.
type SyncController struct {
	command commands.Sync
}

// NewSyncController creates a new SyncController.
func NewSyncController(command commands.Sync) *SyncController {
	return &SyncController{command: command}
}

// GetBind returns the Cobra command metadata for the sync controller.
func (it *SyncController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "sync",
		Short: "Refresh the registry from the hosting service",
		Long: `Fetch every registered module's recorded version and declared
dependencies from its repository, rebuild the dependency graph,
and rewrite the registry file and the README dashboard with the
recomputed release levels and dependent sets.

This is the command intended to run on a schedule in CI.`,
	}
}

// Execute runs the sync mode.
func (it *SyncController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}

	logger.Info("Starting registry sync...")

	if runErr := it.command.Execute(ctx, settings, commands.SyncOptions{
		DryRun:  dryRun,
		Verbose: verbose,
	}); runErr != nil {
		logger.Errorf("Sync failed: %v", runErr)
	}
}

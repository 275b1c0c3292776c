package controllers

import (
	"github.com/releasebot/cascade/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewSyncController); err != nil {
		return err
	}
	if err := container.Provide(NewGraphController); err != nil {
		return err
	}
	if err := container.Provide(NewPropagateController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	syncController *SyncController,
	graphController *GraphController,
	propagateController *PropagateController,
) *[]entities.Controller {
	return &[]entities.Controller{
		syncController,
		graphController,
		propagateController,
	}
}

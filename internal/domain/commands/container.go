package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	if err := container.Provide(NewSyncCommand); err != nil {
		return err
	}
	if err := container.Provide(NewGraphCommand); err != nil {
		return err
	}
	if err := container.Provide(NewPropagateCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *SyncCommand) Sync {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *GraphCommand) Graph {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *PropagateCommand) Propagate {
		return impl
	}); err != nil {
		return err
	}

	return nil
}

package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasebot/cascade/internal/domain/entities"
)

// loadSettings resolves the configuration for a controller run: an
// explicit --config path, an auto-detected config file, or a minimal
// settings object when only --registry is given.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	registryOverride, _ := cmd.Flags().GetString("registry")

	if configPath == "" {
		found, err := entities.FindConfigFile()
		if err != nil {
			if registryOverride != "" {
				// No config file, but the registry path alone is enough
				// for graph-only operations.
				return &entities.Settings{Registry: registryOverride}, nil
			}
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create cascade.yaml",
				err,
			)
		}
		configPath = found
	}

	logger.Infof("Using config file: %s", configPath)

	settings, err := entities.NewSettings(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if registryOverride != "" {
		settings.Registry = registryOverride
	}
	return settings, nil
}

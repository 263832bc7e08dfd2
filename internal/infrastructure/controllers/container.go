package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/patchforge/patchforge/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewVerifyController); err != nil {
		return err
	}
	if err := container.Provide(NewUpgradeController); err != nil {
		return err
	}
	if err := container.Provide(NewReconcileController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	verifyController *VerifyController,
	upgradeController *UpgradeController,
	reconcileController *ReconcileController,
) *[]entities.Controller {
	return &[]entities.Controller{
		verifyController,
		upgradeController,
		reconcileController,
	}
}

// loadSettings resolves the settings for one command execution: an explicit
// --config path wins, then auto-detection, then defaults.
func loadSettings(cmd *cobra.Command) *entities.Settings {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		detected, err := entities.FindConfigFile()
		if err != nil {
			return entities.DefaultSettings()
		}
		configPath = detected
	}

	settings, err := entities.NewSettings(configPath)
	if err != nil {
		logger.Warnf("Failed to load config %q: %v (using defaults)", configPath, err)
		return entities.DefaultSettings()
	}

	logger.Debugf("Using config file: %s", configPath)
	return settings
}

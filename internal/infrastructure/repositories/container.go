package repositories

import (
	"go.uber.org/dig"

	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(patchfile.NewRepository)
}

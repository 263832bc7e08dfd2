package internal

import (
	"github.com/patchforge/patchforge/internal/domain/entities"
)

// AppInternal aggregates the wired controllers for the CLI layer.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application aggregate from the DIG container.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns every registered controller.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}

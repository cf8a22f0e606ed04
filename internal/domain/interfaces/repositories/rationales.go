package repositories

import (
	"context"

	"github.com/ochairo/moddefs/internal/domain/entities"
)

// RationaleRepository defines the interface for loading per-module
// inclusion/justification lists
type RationaleRepository interface {
	// LoadRationales returns the name -> justification map for one module.
	// A listed name with no justification maps to the empty string; the
	// classifier substitutes the default. A missing list yields an empty
	// map, not an error.
	LoadRationales(ctx context.Context, module entities.ModuleName) (map[string]string, error)
}

// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/moddefs/internal/domain/entities"
)

// PackageListRepository defines the interface for loading the per-arch
// package list inputs
type PackageListRepository interface {
	// LoadSets reads every architecture's self-hosting and runtime lists
	// and unions them into the two global identifier sets
	LoadSets(ctx context.Context) (*entities.PackageSets, error)
}

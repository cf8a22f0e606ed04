// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
	"github.com/ochairo/moddefs/internal/domain/interfaces/repositories"
	"github.com/ochairo/moddefs/internal/domain/services"
)

// ReferenceResolver produces identifier -> reference mappings for a package set.
type ReferenceResolver interface {
	Resolve(ctx context.Context, identifiers entities.PackageSet) (map[string]string, error)
}

// DescriptorEmitter renders one module's component table into a descriptor
// document. An empty variant selects the standard descriptor.
type DescriptorEmitter interface {
	Emit(ctx context.Context, module entities.ModuleName, variant string, components entities.ComponentTable) error
}

// Alternate-descriptor pass: the placeholder components get this reference in
// a second emission named after the downstream branch target.
const (
	alternateVariant   = "f27"
	alternateReference = "f27"
)

// GenerateOrchestrator coordinates the complete descriptor generation
// workflow for one run mode: load package sets, resolve references, classify
// modules in their fixed order and emit each module's descriptors.
type GenerateOrchestrator struct {
	lists      repositories.PackageListRepository
	rationales repositories.RationaleRepository
	resolver   ReferenceResolver
	classifier *services.Classifier
	emitter    DescriptorEmitter
	logger     interfaces.Logger
}

// NewGenerateOrchestrator creates a new generation orchestrator.
func NewGenerateOrchestrator(
	lists repositories.PackageListRepository,
	rationales repositories.RationaleRepository,
	resolver ReferenceResolver,
	classifier *services.Classifier,
	emitter DescriptorEmitter,
	logger interfaces.Logger,
) *GenerateOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &GenerateOrchestrator{
		lists:      lists,
		rationales: rationales,
		resolver:   resolver,
		classifier: classifier,
		emitter:    emitter,
		logger:     logger,
	}
}

// Run executes the workflow for the selected mode. Host and shim are always
// classified before platform within a run, so the exclusion snapshots they
// return already hold every claim platform must honor.
func (o *GenerateOrchestrator) Run(ctx context.Context, mode entities.RunMode) error {
	sets, err := o.lists.LoadSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load package lists: %w", err)
	}

	switch mode {
	case entities.ModeBootstrap:
		return o.runBootstrap(ctx, sets)
	case entities.ModeAtomic:
		return o.runAtomic(ctx, sets)
	default:
		return o.runCombined(ctx, sets)
	}
}

func (o *GenerateOrchestrator) runBootstrap(ctx context.Context, sets *entities.PackageSets) error {
	refs, err := o.resolver.Resolve(ctx, sets.SelfHosting)
	if err != nil {
		return err
	}

	table := o.classifier.Bootstrap(sets.SelfHosting, refs)
	o.logger.Info("module classified",
		interfaces.F("module", entities.ModuleBootstrap),
		interfaces.F("components", len(table)))
	return o.emit(ctx, entities.ModuleBootstrap, table)
}

func (o *GenerateOrchestrator) runAtomic(ctx context.Context, sets *entities.PackageSets) error {
	refs, err := o.resolver.Resolve(ctx, sets.Runtime)
	if err != nil {
		return err
	}

	rationales, err := o.rationales.LoadRationales(ctx, entities.ModuleAtomic)
	if err != nil {
		return err
	}

	table := o.classifier.Atomic(sets.Runtime, rationales, refs, entities.NewExclusions())
	o.logger.Info("module classified",
		interfaces.F("module", entities.ModuleAtomic),
		interfaces.F("components", len(table)))
	return o.emitWithAlternate(ctx, entities.ModuleAtomic, table)
}

func (o *GenerateOrchestrator) runCombined(ctx context.Context, sets *entities.PackageSets) error {
	refs, err := o.resolver.Resolve(ctx, sets.Runtime)
	if err != nil {
		return err
	}

	excl := entities.NewExclusions()

	hostRationales, err := o.rationales.LoadRationales(ctx, entities.ModuleHost)
	if err != nil {
		return err
	}
	hostTable, excl := o.classifier.Host(sets.Runtime, hostRationales, refs, excl)
	o.logger.Info("module classified",
		interfaces.F("module", entities.ModuleHost),
		interfaces.F("components", len(hostTable)))
	if err := o.emit(ctx, entities.ModuleHost, hostTable); err != nil {
		return err
	}

	shimRationales, err := o.rationales.LoadRationales(ctx, entities.ModuleShim)
	if err != nil {
		return err
	}
	shimTable, excl := o.classifier.Shim(sets.Runtime, shimRationales, refs, excl)
	o.logger.Info("module classified",
		interfaces.F("module", entities.ModuleShim),
		interfaces.F("components", len(shimTable)))
	if err := o.emit(ctx, entities.ModuleShim, shimTable); err != nil {
		return err
	}

	platformRationales, err := o.rationales.LoadRationales(ctx, entities.ModulePlatform)
	if err != nil {
		return err
	}
	platformTable := o.classifier.Platform(sets.Runtime, platformRationales, refs, excl)
	o.logger.Info("module classified",
		interfaces.F("module", entities.ModulePlatform),
		interfaces.F("components", len(platformTable)))
	return o.emitWithAlternate(ctx, entities.ModulePlatform, platformTable)
}

func (o *GenerateOrchestrator) emit(ctx context.Context, module entities.ModuleName, table entities.ComponentTable) error {
	if err := o.emitter.Emit(ctx, module, "", table); err != nil {
		return fmt.Errorf("failed to emit %s descriptor: %w", module, err)
	}
	return nil
}

// emitWithAlternate emits the standard descriptor, then emits the same table
// once more with the placeholder components pinned to the alternate branch
// target.
func (o *GenerateOrchestrator) emitWithAlternate(ctx context.Context, module entities.ModuleName, table entities.ComponentTable) error {
	if err := o.emit(ctx, module, table); err != nil {
		return err
	}

	patched := make(entities.ComponentTable, len(table))
	for name, comp := range table {
		patched[name] = comp
	}
	for _, name := range []string{services.ModularReleaseName, services.ModularReposName} {
		if comp, ok := patched[name]; ok {
			comp.Reference = alternateReference
			patched[name] = comp
		}
	}

	if err := o.emitter.Emit(ctx, module, alternateVariant, patched); err != nil {
		return fmt.Errorf("failed to emit %s.%s descriptor: %w", module, alternateVariant, err)
	}
	return nil
}

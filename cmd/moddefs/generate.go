package main

import (
	"context"

	"github.com/ochairo/moddefs/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/moddefs/internal/domain-orchestrators"
	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
	"github.com/ochairo/moddefs/internal/domain/services"
	"github.com/ochairo/moddefs/internal/external-adapters/packagelist"
	"github.com/ochairo/moddefs/internal/external-adapters/rationale"
	"github.com/ochairo/moddefs/internal/external-adapters/refcache"
	"github.com/ochairo/moddefs/internal/external-adapters/yaml"
)

// runGenerate wires the adapters and services and executes one run. The
// cache lock is released on every exit path: Save releases it on success and
// the deferred Close covers failures between Load and Save.
func runGenerate(ctx context.Context, baseDir string, mode entities.RunMode, buildsysURL, cachePath string, logger interfaces.Logger) error {
	cache := refcache.New(cachePath)
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("failed to release reference cache", interfaces.F("error", err))
		}
	}()

	resolver := services.NewReferenceResolver(
		cache,
		gateways.NewHTTPBuildLookupGateway(buildsysURL),
		services.DefaultOverrides(),
		logger,
	)

	orchestrator := orchestrators.NewGenerateOrchestrator(
		packagelist.NewRepository(baseDir, logger),
		rationale.NewRepository(baseDir, logger),
		resolver,
		services.NewClassifier(),
		yaml.NewDescriptorEmitter(baseDir),
		logger,
	)

	return orchestrator.Run(ctx, mode)
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
	"github.com/ochairo/moddefs/internal/domain/interfaces/gateways"
	"github.com/ochairo/moddefs/internal/domain/interfaces/repositories"
)

// ReferenceOverride pins a package family to a fixed reference, bypassing
// both the cache and the remote lookup.
type ReferenceOverride struct {
	NamePrefix string
	Reference  string
}

// DefaultOverrides returns the built-in reference pins.
func DefaultOverrides() []ReferenceOverride {
	return []ReferenceOverride{
		{NamePrefix: "shim", Reference: "f27"},
	}
}

// ReferenceResolver reconciles package references from three sources, in
// precedence order: hardcoded overrides, the durable cache, and a single
// two-phase batch lookup against the remote build system covering exactly
// the identifiers the first two sources left unresolved.
type ReferenceResolver struct {
	cache     repositories.ReferenceCache
	lookup    gateways.BuildLookupGateway
	overrides []ReferenceOverride
	logger    interfaces.Logger
}

// NewReferenceResolver creates a resolver over the given cache and lookup
// gateway.
func NewReferenceResolver(cache repositories.ReferenceCache, lookup gateways.BuildLookupGateway, overrides []ReferenceOverride, logger interfaces.Logger) *ReferenceResolver {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ReferenceResolver{
		cache:     cache,
		lookup:    lookup,
		overrides: overrides,
		logger:    logger,
	}
}

// Resolve produces an identifier -> reference mapping for the given set.
// Identifiers with no override, no cache entry and no remote result are left
// absent; callers fill in the default reference. The resulting mapping is
// merged back into the cache and persisted before returning, so later runs
// benefit even when the remote phase fails partway.
func (r *ReferenceResolver) Resolve(ctx context.Context, identifiers entities.PackageSet) (map[string]string, error) {
	cached, err := r.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference cache: %w", err)
	}

	resolved := make(map[string]string, len(identifiers))
	var unresolved []string
	for id := range identifiers {
		if ref, ok := r.overrideFor(entities.NameOf(id)); ok {
			resolved[id] = ref
			continue
		}
		if ref, ok := cached[id]; ok {
			resolved[id] = ref
			continue
		}
		unresolved = append(unresolved, id)
	}
	sort.Strings(unresolved)

	if len(unresolved) > 0 {
		remote, err := r.lookupReferences(ctx, unresolved)
		if err != nil {
			// The remote phase degrades, never aborts: entries from
			// overrides and the cache stay valid and the caller fills
			// the gaps with defaults.
			r.logger.Warn("build system lookup failed, continuing with defaults",
				interfaces.F("unresolved", len(unresolved)),
				interfaces.F("error", err))
		}
		for id, ref := range remote {
			if _, ok := resolved[id]; !ok {
				resolved[id] = ref
			}
		}
	}

	for id, ref := range resolved {
		cached[id] = ref
	}
	if err := r.cache.Save(cached); err != nil {
		return nil, fmt.Errorf("failed to persist reference cache: %w", err)
	}

	return resolved, nil
}

func (r *ReferenceResolver) overrideFor(name string) (string, bool) {
	for _, o := range r.overrides {
		if strings.HasPrefix(name, o.NamePrefix) {
			return o.Reference, true
		}
	}
	return "", false
}

// lookupReferences runs the two-phase batch: build records first, then task
// labels for every record with a build task. Identifiers with no build, no
// task, or an unparseable label contribute no entry.
func (r *ReferenceResolver) lookupReferences(ctx context.Context, nvrs []string) (map[string]string, error) {
	builds, err := r.lookup.GetBuilds(ctx, nvrs)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	if len(builds) != len(nvrs) {
		return nil, fmt.Errorf("build lookup returned %d records for %d identifiers", len(builds), len(nvrs))
	}

	var taskIDs []int64
	var taskNVRs []string
	for i, b := range builds {
		if b == nil || b.TaskID == 0 {
			continue
		}
		taskIDs = append(taskIDs, b.TaskID)
		taskNVRs = append(taskNVRs, nvrs[i])
	}
	if len(taskIDs) == 0 {
		return map[string]string{}, nil
	}

	labels, err := r.lookup.GetTaskLabels(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query task labels: %w", err)
	}
	if len(labels) != len(taskIDs) {
		return nil, fmt.Errorf("task lookup returned %d labels for %d tasks", len(labels), len(taskIDs))
	}

	refs := make(map[string]string, len(labels))
	for i, label := range labels {
		target, ok := targetFromLabel(label)
		if !ok {
			r.logger.Debug("skipping unparseable task label",
				interfaces.F("nvr", taskNVRs[i]),
				interfaces.F("label", label))
			continue
		}
		refs[taskNVRs[i]] = target
	}
	return refs, nil
}

// targetFromLabel extracts the build target from a task label of the form
// "build (<target>, <source>)".
func targetFromLabel(label string) (string, bool) {
	open := strings.Index(label, "(")
	comma := strings.Index(label, ",")
	if open < 0 || comma < open {
		return "", false
	}
	target := strings.TrimSpace(label[open+1 : comma])
	return target, target != ""
}

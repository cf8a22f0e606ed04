// Package services implements the domain policy logic.
package services

import (
	"strings"

	"github.com/ochairo/moddefs/internal/domain/entities"
)

// Defaults applied when no source supplies a reference or rationale.
const (
	DefaultReference = "master"
	DefaultRationale = "No explicit rationale recorded."
)

// bootstrapExcludePrefix names the package family never included in the
// bootstrap module.
const bootstrapExcludePrefix = "shim-signed"

// Traditional package names replaced or supplemented by synthetic modular
// placeholder components in the platform and atomic modules.
const (
	TraditionalReleaseName = "fedora-release"
	ModularReleaseName     = "fedora-modular-release"
	TraditionalReposName   = "fedora-repos"
	ModularReposName       = "fedora-modular-repos"
)

// placeholderVersionRelease is the dummy version-release suffix carried by
// placeholder identifiers so that name derivation still succeeds. Placeholders
// are not buildable packages and never resolve to a real reference.
const placeholderVersionRelease = "999-1"

// Classifier partitions the global package sets into per-module component
// tables, applying each module's inclusion, exclusion and substitution rules.
type Classifier struct {
	defaultReference string
	defaultRationale string
}

// NewClassifier creates a classifier with the standard defaults.
func NewClassifier() *Classifier {
	return &Classifier{
		defaultReference: DefaultReference,
		defaultRationale: DefaultRationale,
	}
}

// Bootstrap includes every self-hosting package except the shim-signed
// family. It claims nothing.
func (c *Classifier) Bootstrap(selfHosting entities.PackageSet, refs map[string]string) entities.ComponentTable {
	table := make(entities.ComponentTable, len(selfHosting))
	for id := range selfHosting {
		name := entities.NameOf(id)
		if strings.HasPrefix(name, bootstrapExcludePrefix) {
			continue
		}
		table[name] = c.component(id, refs, "")
	}
	return table
}

// Host includes only runtime packages listed in host's rationale map and
// claims every rationale-listed name for the host/shim exclusion set.
func (c *Classifier) Host(runtime entities.PackageSet, rationales map[string]string, refs map[string]string, excl entities.Exclusions) (entities.ComponentTable, entities.Exclusions) {
	return c.claimListed(runtime, rationales, refs, excl, false)
}

// Shim includes only runtime packages listed in shim's rationale map and
// claims every rationale-listed name for both the host/shim and the shim
// exclusion sets.
func (c *Classifier) Shim(runtime entities.PackageSet, rationales map[string]string, refs map[string]string, excl entities.Exclusions) (entities.ComponentTable, entities.Exclusions) {
	return c.claimListed(runtime, rationales, refs, excl, true)
}

func (c *Classifier) claimListed(runtime entities.PackageSet, rationales map[string]string, refs map[string]string, excl entities.Exclusions, byShim bool) (entities.ComponentTable, entities.Exclusions) {
	table := make(entities.ComponentTable, len(rationales))
	for id := range runtime {
		name := entities.NameOf(id)
		rationale, listed := rationales[name]
		if !listed {
			continue
		}
		table[name] = c.component(id, refs, rationale)
	}

	// Every listed name is claimed, present in the runtime set or not.
	claimed := make([]string, 0, len(rationales))
	for name := range rationales {
		claimed = append(claimed, name)
	}
	return table, excl.Claim(claimed, byShim)
}

// Platform includes every runtime package not already claimed by host or
// shim, applying the modular placeholder substitution.
func (c *Classifier) Platform(runtime entities.PackageSet, rationales map[string]string, refs map[string]string, excl entities.Exclusions) entities.ComponentTable {
	table := make(entities.ComponentTable, len(runtime))
	for id := range runtime {
		name := entities.NameOf(id)
		if excl.ClaimedByHostShim(name) {
			continue
		}
		c.addSubstituted(table, id, name, rationales, refs)
	}
	return table
}

// Atomic includes every runtime package not claimed by shim, applying the
// modular placeholder substitution.
func (c *Classifier) Atomic(runtime entities.PackageSet, rationales map[string]string, refs map[string]string, excl entities.Exclusions) entities.ComponentTable {
	table := make(entities.ComponentTable, len(runtime))
	for id := range runtime {
		name := entities.NameOf(id)
		if excl.ClaimedByShim(name) {
			continue
		}
		c.addSubstituted(table, id, name, rationales, refs)
	}
	return table
}

// addSubstituted adds a runtime package to the table, replacing the
// traditional release package with its modular placeholder and supplementing
// the traditional repos package with one. The repos rule is the only one that
// expands a single input package into two output components.
func (c *Classifier) addSubstituted(table entities.ComponentTable, id, name string, rationales map[string]string, refs map[string]string) {
	switch name {
	case TraditionalReleaseName:
		c.addPlaceholder(table, ModularReleaseName, rationales, refs)
	case TraditionalReposName:
		table[name] = c.component(id, refs, rationales[name])
		c.addPlaceholder(table, ModularReposName, rationales, refs)
	default:
		table[name] = c.component(id, refs, rationales[name])
	}
}

func (c *Classifier) addPlaceholder(table entities.ComponentTable, name string, rationales map[string]string, refs map[string]string) {
	id := name + "-" + placeholderVersionRelease
	table[name] = c.component(id, refs, rationales[name])
}

// component builds a record with defaults filled in: a package with no
// resolved reference gets the default branch, one with no justification gets
// the default rationale.
func (c *Classifier) component(id string, refs map[string]string, rationale string) entities.Component {
	ref, ok := refs[id]
	if !ok || ref == "" {
		ref = c.defaultReference
	}
	if rationale == "" {
		rationale = c.defaultRationale
	}
	return entities.Component{
		Identifier: id,
		Reference:  ref,
		Rationale:  rationale,
	}
}

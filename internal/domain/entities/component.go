package entities

import "path/filepath"

// ModuleName identifies one of the five emitted module descriptors.
type ModuleName string

// Module identities, in classification order.
const (
	ModuleBootstrap ModuleName = "bootstrap"
	ModuleHost      ModuleName = "host"
	ModuleShim      ModuleName = "shim"
	ModulePlatform  ModuleName = "platform"
	ModuleAtomic    ModuleName = "atomic"
)

// RunMode selects which modules a single invocation emits.
type RunMode string

const (
	// ModeBootstrap emits only the bootstrap module.
	ModeBootstrap RunMode = "bootstrap"
	// ModeAtomic emits only the atomic module.
	ModeAtomic RunMode = "atomic"
	// ModeCombined emits host, shim and platform together.
	ModeCombined RunMode = "combined"
)

// ModeFromPath derives the run mode from the last segment of the base
// directory path. Anything other than "bootstrap" or "atomic" selects the
// combined host/shim/platform mode.
func ModeFromPath(baseDir string) RunMode {
	switch filepath.Base(filepath.Clean(baseDir)) {
	case string(ModeBootstrap):
		return ModeBootstrap
	case string(ModeAtomic):
		return ModeAtomic
	default:
		return ModeCombined
	}
}

// Component is the unit handed to the descriptor emitter per package, per
// module. Reference and Rationale are always non-empty once classified.
type Component struct {
	Identifier string
	Reference  string
	Rationale  string
}

// ComponentTable maps package names to their classified components.
type ComponentTable map[string]Component

// PackageSet is a set of package identifiers.
type PackageSet map[string]struct{}

// NewPackageSet builds a set from identifier strings.
func NewPackageSet(identifiers ...string) PackageSet {
	s := make(PackageSet, len(identifiers))
	for _, id := range identifiers {
		s[id] = struct{}{}
	}
	return s
}

// PackageSets holds the two global package sets built from the per-arch
// input lists.
type PackageSets struct {
	SelfHosting PackageSet
	Runtime     PackageSet
}

// Exclusions records package names claimed by earlier modules. Values are
// snapshots: Claim returns an extended copy and never mutates the receiver,
// so each classification step sees exactly the claims made before it.
type Exclusions struct {
	hostShim map[string]struct{}
	shim     map[string]struct{}
}

// NewExclusions returns an empty exclusion snapshot.
func NewExclusions() Exclusions {
	return Exclusions{
		hostShim: map[string]struct{}{},
		shim:     map[string]struct{}{},
	}
}

// Claim returns a copy of the snapshot with the given names added to the
// host/shim claim set, and additionally to the shim claim set when byShim
// is true.
func (e Exclusions) Claim(names []string, byShim bool) Exclusions {
	next := Exclusions{
		hostShim: make(map[string]struct{}, len(e.hostShim)+len(names)),
		shim:     make(map[string]struct{}, len(e.shim)+len(names)),
	}
	for n := range e.hostShim {
		next.hostShim[n] = struct{}{}
	}
	for n := range e.shim {
		next.shim[n] = struct{}{}
	}
	for _, n := range names {
		next.hostShim[n] = struct{}{}
		if byShim {
			next.shim[n] = struct{}{}
		}
	}
	return next
}

// ClaimedByHostShim reports whether a package name was claimed by host or shim.
func (e Exclusions) ClaimedByHostShim(name string) bool {
	_, ok := e.hostShim[name]
	return ok
}

// ClaimedByShim reports whether a package name was claimed by shim.
func (e Exclusions) ClaimedByShim(name string) bool {
	_, ok := e.shim[name]
	return ok
}

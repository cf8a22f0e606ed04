// Package entities defines core domain models and data structures.
package entities

import (
	"regexp"
	"strings"
)

// epochPattern matches an RPM epoch marker, either leading ("2:name-...")
// or embedded between name and version ("name-2:1.0-1").
var epochPattern = regexp.MustCompile(`^\d+:|-\d+:`)

// knownArches are the architecture segments stripped from package filenames.
var knownArches = map[string]bool{
	"x86_64":  true,
	"i686":    true,
	"i386":    true,
	"noarch":  true,
	"aarch64": true,
	"armv7hl": true,
	"ppc64":   true,
	"ppc64le": true,
	"s390x":   true,
	"src":     true,
}

// IdentifierOf derives the canonical name-version-release identifier from a
// raw package filename, collapsing "name-epoch:version-release.arch.ext"
// forms into "name-version-release". Malformed input yields a best-effort
// string; the function never fails.
func IdentifierOf(raw string) string {
	s := strings.TrimSpace(raw)

	s = epochPattern.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "-") {
			return "-"
		}
		return ""
	})

	s = strings.TrimSuffix(s, ".rpm")

	// Strip a trailing architecture segment when one is recognized. The
	// release portion itself contains dots ("1.fc27"), so only known
	// architecture names are safe to remove.
	if i := strings.LastIndex(s, "."); i >= 0 && knownArches[s[i+1:]] {
		s = s[:i]
	}

	return s
}

// NameOf derives the package name from an identifier by stripping the
// trailing version and release segments. Names containing hyphens that
// collide with version/release segments are a known limitation of this
// rightmost-two-segments heuristic.
func NameOf(identifier string) string {
	i := strings.LastIndex(identifier, "-")
	if i < 0 {
		return identifier
	}
	j := strings.LastIndex(identifier[:i], "-")
	if j < 0 {
		return identifier
	}
	return identifier[:j]
}

// Package packagelist implements repositories.PackageListRepository over the
// per-architecture flat-file inputs under the base directory.
package packagelist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
)

// List file names expected inside every architecture directory.
const (
	selfHostingFile = "self-hosting.txt"
	runtimeFile     = "runtime.txt"
)

// Repository reads <base>/<arch>/self-hosting.txt and <base>/<arch>/runtime.txt
// for every architecture subdirectory and unions them into the two global
// identifier sets.
type Repository struct {
	baseDir string
	logger  interfaces.Logger
}

// NewRepository creates a package list repository rooted at the base directory.
func NewRepository(baseDir string, logger interfaces.Logger) *Repository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Repository{baseDir: baseDir, logger: logger}
}

// LoadSets builds the global self-hosting and runtime sets. A subdirectory
// counts as an architecture directory when it carries both list files; other
// directories (templates, scratch space) are skipped.
func (r *Repository) LoadSets(_ context.Context) (*entities.PackageSets, error) {
	dirEntries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory %s: %w", r.baseDir, err)
	}

	sets := &entities.PackageSets{
		SelfHosting: entities.PackageSet{},
		Runtime:     entities.PackageSet{},
	}

	arches := 0
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		archDir := filepath.Join(r.baseDir, entry.Name())
		if !isArchDir(archDir) {
			r.logger.Debug("skipping non-architecture directory",
				interfaces.F("dir", entry.Name()))
			continue
		}
		arches++

		if err := readListInto(filepath.Join(archDir, selfHostingFile), sets.SelfHosting); err != nil {
			return nil, err
		}
		if err := readListInto(filepath.Join(archDir, runtimeFile), sets.Runtime); err != nil {
			return nil, err
		}
	}

	if arches == 0 {
		return nil, fmt.Errorf("no architecture directories found under %s", r.baseDir)
	}

	r.logger.Debug("package sets loaded",
		interfaces.F("arches", arches),
		interfaces.F("self_hosting", len(sets.SelfHosting)),
		interfaces.F("runtime", len(sets.Runtime)))
	return sets, nil
}

func isArchDir(dir string) bool {
	for _, name := range []string{selfHostingFile, runtimeFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// readListInto parses one package filename per line, normalizing each into
// its identifier. Blank lines and #-comments are skipped.
func readListInto(path string, set entities.PackageSet) error {
	//nolint:gosec // G304: path is derived from the user-supplied base directory
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open package list %s: %w", path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[entities.IdentifierOf(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read package list %s: %w", path, err)
	}
	return nil
}

// Package rationale implements repositories.RationaleRepository over the
// per-module CSV justification lists.
package rationale

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mitchellh/go-wordwrap"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
)

// justificationWidth is the line width justifications are reflowed to before
// being embedded in generated documents.
const justificationWidth = 66

// Repository reads <base>/<module>.csv files of (name, justification) rows.
type Repository struct {
	baseDir string
	logger  interfaces.Logger
}

// NewRepository creates a rationale repository rooted at the base directory.
func NewRepository(baseDir string, logger interfaces.Logger) *Repository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Repository{baseDir: baseDir, logger: logger}
}

// LoadRationales returns the name -> justification map for one module. A
// missing file yields an empty map; a listed name with an empty justification
// column maps to the empty string so the classifier substitutes the default.
func (r *Repository) LoadRationales(_ context.Context, module entities.ModuleName) (map[string]string, error) {
	path := filepath.Join(r.baseDir, string(module)+".csv")
	//nolint:gosec // G304: path is derived from the user-supplied base directory
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("no rationale list for module", interfaces.F("module", module))
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open rationale list %s: %w", path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rationale list %s: %w", path, err)
	}

	rationales := make(map[string]string, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		justification := ""
		if len(record) > 1 {
			justification = strings.TrimSpace(record[1])
		}
		if justification != "" {
			justification = normalizeJustification(justification)
		}
		rationales[name] = justification
	}
	return rationales, nil
}

// normalizeJustification sentence-cases the text, guarantees a trailing
// period and reflows it to the embedding width.
func normalizeJustification(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	s = string(runes)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return wordwrap.WrapString(s, justificationWidth)
}

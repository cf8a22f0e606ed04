// Package yaml renders per-module component tables into YAML descriptor
// documents from on-disk templates.
package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/moddefs/internal/domain/entities"
)

// templatesDir holds the per-module document templates under the base
// directory.
const templatesDir = "templates"

// DescriptorEmitter loads the module's template document, injects the
// component table under data.components.rpms and writes the rendered
// descriptor next to the inputs. Any failure here is fatal for the run.
type DescriptorEmitter struct {
	baseDir string
}

// NewDescriptorEmitter creates an emitter rooted at the base directory.
func NewDescriptorEmitter(baseDir string) *DescriptorEmitter {
	return &DescriptorEmitter{baseDir: baseDir}
}

// Emit renders one descriptor. An empty variant writes <module>.yaml; a
// non-empty variant writes <module>.<variant>.yaml.
func (e *DescriptorEmitter) Emit(_ context.Context, module entities.ModuleName, variant string, components entities.ComponentTable) error {
	templatePath := filepath.Join(e.baseDir, templatesDir, string(module)+".yaml")
	//nolint:gosec // G304: template path is derived from the user-supplied base directory
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	rpms := make(map[string]interface{}, len(components))
	for name, comp := range components {
		rpms[name] = map[string]interface{}{
			"nvr":       comp.Identifier,
			"ref":       comp.Reference,
			"rationale": comp.Rationale,
		}
	}
	ensureMap(ensureMap(doc, "data"), "components")["rpms"] = rpms

	rendered, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to render %s descriptor: %w", module, err)
	}

	name := string(module) + ".yaml"
	if variant != "" {
		name = string(module) + "." + variant + ".yaml"
	}
	outPath := filepath.Join(e.baseDir, name)
	if err := os.WriteFile(outPath, rendered, 0o644); err != nil { //nolint:gosec // G306: descriptors are world-readable data files
		return fmt.Errorf("failed to write descriptor %s: %w", outPath, err)
	}
	return nil
}

// ensureMap returns the nested map at key, creating it when the template did
// not predefine the section.
func ensureMap(parent map[string]interface{}, key string) map[string]interface{} {
	if m, ok := parent[key].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	parent[key] = m
	return m
}

// Package mcf holds the canonical metadata model produced from a catalog
// record and consumed by the output document templates.
package mcf

import (
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"
)

// DefaultCharset is used when a model does not declare metadata.charset.
const DefaultCharset = "UTF-8"

// Model is a canonical metadata record: a nested mapping with the top-level
// sections mcf, metadata, spatial, identification, contact, distribution
// and optionally dataquality and acquisition.
type Model map[string]any

// Section returns a top-level section, or nil when absent or not a mapping.
func (m Model) Section(name string) map[string]any {
	s, _ := m[name].(map[string]any)
	return s
}

// Lookup walks path through nested mappings.
func (m Model) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(m)
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path formatted as a string, or "" when absent.
func (m Model) String(path ...string) string {
	v, ok := m.Lookup(path...)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Set stores value at path, creating intermediate mappings.
func (m Model) Set(value any, path ...string) {
	if len(path) == 0 {
		return
	}
	node := map[string]any(m)
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[key] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}

// Identifier returns metadata.identifier.
func (m Model) Identifier() string {
	return m.String("metadata", "identifier")
}

// Charset returns metadata.charset, defaulting to UTF-8.
func (m Model) Charset() string {
	if c := strings.TrimSpace(m.String("metadata", "charset")); c != "" {
		return c
	}
	return DefaultCharset
}

// ToYAML serializes the model.
func (m Model) ToYAML() ([]byte, error) {
	return yaml.Marshal(map[string]any(m))
}

// FromYAML parses a model previously written with ToYAML or authored by hand.
func FromYAML(data []byte) (Model, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing canonical model: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return Model(m), nil
}

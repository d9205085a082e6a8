// Package schema provides the output schemas a canonical model can be
// written to and imported from.
package schema

import (
	"sort"
	"sync"

	"github.com/catalogbridge/ckan2csw/internal/mcf"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

// Names of the built-in output schemas.
const (
	ISO19139        = "iso19139"
	ISO19139Inspire = "iso19139_inspire"

	// Default is selected when a configured name is not registered.
	Default = ISO19139
)

// OutputSchema converts canonical models to and from one document format.
type OutputSchema interface {
	// Name returns the schema key used in configuration.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Write renders a canonical model into a document.
	Write(m mcf.Model) (string, error)

	// Import reconstructs a canonical model from a document. Fields absent
	// from the document are omitted.
	Import(doc string) (mcf.Model, error)
}

// Renderer renders a canonical model through a document template profile.
type Renderer interface {
	RenderDocument(m mcf.Model, templateDir string) (string, error)
}

// Registry holds output schemas by name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]OutputSchema
}

// NewRegistry returns a registry with the built-in ISO 19139 schemas bound
// to renderer.
func NewRegistry(renderer Renderer) *Registry {
	r := &Registry{schemas: make(map[string]OutputSchema)}
	r.Register(NewISO19139(renderer))
	r.Register(NewInspire(renderer))
	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(s OutputSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name()] = s
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (OutputSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Select returns the schema registered under name, or the Default schema
// when name is unknown.
func (r *Registry) Select(name string) OutputSchema {
	if s, ok := r.Get(name); ok {
		return s
	}
	output.Warn("unknown output schema, using default", "schema", name, "default", Default)
	s, _ := r.Get(Default)
	return s
}

// Names returns the registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

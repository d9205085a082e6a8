// Package codelist resolves values against controlled-vocabulary tables.
//
// A table is a YAML file named <codelist>.yaml under the resolver root. Flat
// tables map a value straight to its translation. List tables hold ordered
// rows of objects that are searched by an input field.
package codelist

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

// Options configures a Resolver.
type Options struct {
	// Cache keeps loaded tables in memory until invalidated.
	// Off by default so a redeployed table is picked up on the next call.
	Cache bool
}

// Resolver loads codelist tables from a root filesystem.
type Resolver struct {
	root  fs.FS
	cache bool

	mu     sync.RWMutex
	tables map[string]any
}

// New creates a Resolver reading tables from root.
func New(root fs.FS, opts Options) *Resolver {
	return &Resolver{
		root:   root,
		cache:  opts.Cache,
		tables: make(map[string]any),
	}
}

// NewDir creates a Resolver over a directory on disk.
func NewDir(dir string, opts Options) *Resolver {
	return New(os.DirFS(dir), opts)
}

// Root returns the filesystem tables are read from.
func (r *Resolver) Root() fs.FS {
	return r.root
}

// Resolve translates value through the flat mapping named codelist.
// A value with no entry is returned unchanged.
func (r *Resolver) Resolve(value any, codelist string) (any, error) {
	table, err := r.Load(codelist)
	if err != nil {
		return nil, &MappingNotFoundError{Value: value, Codelist: codelist, Cause: err}
	}
	if value == nil {
		return nil, nil
	}
	m, ok := table.(map[string]any)
	if !ok {
		return value, nil
	}
	if out, ok := m[keyOf(value)]; ok {
		return out, nil
	}
	return value, nil
}

// Load returns the parsed table named codelist.
func (r *Resolver) Load(codelist string) (any, error) {
	if r.cache {
		r.mu.RLock()
		t, ok := r.tables[codelist]
		r.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	t, err := r.read(codelist)
	if err != nil {
		return nil, err
	}

	if r.cache {
		r.mu.Lock()
		r.tables[codelist] = t
		r.mu.Unlock()
	}
	return t, nil
}

// Invalidate drops a cached table.
func (r *Resolver) Invalidate(codelist string) {
	r.mu.Lock()
	delete(r.tables, codelist)
	r.mu.Unlock()
}

// InvalidateAll drops every cached table.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.tables = make(map[string]any)
	r.mu.Unlock()
}

// Cached reports whether codelist is currently held in memory.
func (r *Resolver) Cached(codelist string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[codelist]
	return ok
}

func (r *Resolver) read(codelist string) (any, error) {
	if r.root == nil {
		return nil, fmt.Errorf("no codelist root configured")
	}
	data, err := fs.ReadFile(r.root, path.Clean(codelist)+".yaml")
	if err != nil {
		return nil, err
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s.yaml: %w", codelist, err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return normalize(raw), nil
}

// normalize converts YAML maps with non-string keys into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[keyOf(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func keyOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

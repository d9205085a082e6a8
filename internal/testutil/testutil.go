// Package testutil provides test helpers shared by the ckan2csw packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteJSON marshals v into dir/name.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", name, err)
	}
	return WriteFile(t, dir, name, string(data))
}

// Record returns a catalog record that renders cleanly through the
// GeoDCAT-AP profile. Tests delete or override fields to provoke failures.
func Record(name, id string) map[string]any {
	return map[string]any{
		"id":                id,
		"name":              name,
		"type":              "dataset",
		"title":             "Title of " + name,
		"notes":             "Abstract of " + name,
		"license_id":        "cc-by",
		"metadata_modified": "2023-01-05T10:20:30.123456",
		"language":          `["http://publications.europa.eu/resource/authority/language/SPA"]`,
		"theme":             `["http://inspire.ec.europa.eu/theme/hy"]`,
		"spatial":           `{"type": "Polygon", "coordinates": [[[-9.3, 36.0], [3.3, 36.0], [3.3, 43.8], [-9.3, 43.8], [-9.3, 36.0]]]}`,
		"tags":              []any{map[string]any{"name": "hydrology"}},
		"organization":      map[string]any{"title": "Water Agency"},
		"resources": []any{
			map[string]any{
				"id":     "csv",
				"url":    "http://catalog.example/" + name + ".csv",
				"name":   "CSV of " + name,
				"format": "CSV",
			},
		},
	}
}

// Catalog is an in-process CKAN action API serving package_search over a
// fixed record list.
type Catalog struct {
	*httptest.Server
	requests atomic.Int32
}

// NewCatalog starts a Catalog. It is closed when the test ends.
func NewCatalog(t *testing.T, records []map[string]any) *Catalog {
	t.Helper()
	c := &Catalog{}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.requests.Add(1)
		if r.URL.Path != "/api/3/action/package_search" {
			http.NotFound(w, r)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
		end := min(start+rows, len(records))
		page := []map[string]any{}
		if start < end {
			page = records[start:end]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"count": len(records), "results": page},
		})
	}))
	t.Cleanup(c.Close)
	return c
}

// BaseURL is the catalog root with a trailing slash.
func (c *Catalog) BaseURL() string {
	return c.URL + "/"
}

// Requests returns the number of requests served so far.
func (c *Catalog) Requests() int {
	return int(c.requests.Load())
}

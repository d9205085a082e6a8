// Package dataset wraps one catalog record with its public URL and renders
// it into a canonical model on demand.
package dataset

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

// Canonicalizer renders a catalog record into a canonical model.
type Canonicalizer interface {
	RenderCanonical(record map[string]any, url, templateDir string) (mcf.Model, error)
}

// Options configures a Dataset.
type Options struct {
	// TemplateDir is the source profile used by Render.
	TemplateDir string
}

// Dataset is one catalog record ready to be rendered.
type Dataset struct {
	raw  map[string]any
	name string
	url  string
	opts Options

	once  sync.Once
	model mcf.Model
	err   error
}

// New wraps raw. The record's URL is baseURL joined with dataset/<name>/.
func New(raw map[string]any, baseURL string, opts Options) (*Dataset, error) {
	name, _ := raw["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, &oerrors.DetailError{
			Type:    "invalid record",
			Message: "record has no name",
			Field:   "name",
			Cause:   oerrors.ErrValidation,
		}
	}

	u, err := Join(baseURL, name)
	if err != nil {
		return nil, err
	}

	return &Dataset{raw: raw, name: name, url: u, opts: opts}, nil
}

// Join resolves dataset/<name>/ against base the way a browser resolves a
// relative link: a base without a trailing slash loses its last segment.
func Join(base, name string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: catalog URL %q: %v", oerrors.ErrConfig, base, err)
	}
	ref := &url.URL{Path: "dataset/" + name + "/"}
	return b.ResolveReference(ref).String(), nil
}

// Name returns the record's unique slug.
func (d *Dataset) Name() string {
	return d.name
}

// URL returns the record's public landing page.
func (d *Dataset) URL() string {
	return d.url
}

// Raw returns the record as received.
func (d *Dataset) Raw() map[string]any {
	return d.raw
}

// DCATType returns the record's category, the last path segment of its
// dcat_type field, or "dataset" when the field is absent.
func (d *Dataset) DCATType() string {
	return DCATType(d.raw)
}

// Render builds the canonical model once and returns the cached result on
// later calls.
func (d *Dataset) Render(engine Canonicalizer) (mcf.Model, error) {
	d.once.Do(func() {
		d.model, d.err = engine.RenderCanonical(d.raw, d.url, d.opts.TemplateDir)
	})
	return d.model, d.err
}

// DCATType returns the lower-cased last path segment of a record's dcat_type
// field, or "dataset" when absent.
func DCATType(raw map[string]any) string {
	v, _ := raw["dcat_type"].(string)
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if v == "" {
		return "dataset"
	}
	return strings.ToLower(v[strings.LastIndex(v, "/")+1:])
}

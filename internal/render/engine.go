// Package render runs the two template stages that turn a catalog record
// into a canonical model and a canonical model into an XML document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
	"text/template/parse"

	"gopkg.in/yaml.v3"

	"github.com/catalogbridge/ckan2csw/internal/assets"
	"github.com/catalogbridge/ckan2csw/internal/codelist"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/extract"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

// SchemaType selects a rendering stage.
type SchemaType string

const (
	// SchemaCKAN renders a catalog record into a canonical model.
	SchemaCKAN SchemaType = "ckan"

	// SchemaISO renders a canonical model into an ISO 19139 document.
	SchemaISO SchemaType = "iso"
)

// BaseProfile is the source profile that needs no schema-mapping document.
const BaseProfile = "iso19139_base"

// AssignmentsCodelist maps a source profile to its schema-mapping directory.
const AssignmentsCodelist = "ckan-csw_assignments"

const (
	mainTemplate  = "main.tmpl"
	schemaMapping = "ckan_schema.yaml"
)

// Options configures an Engine. Nil filesystems fall back to the embedded
// defaults.
type Options struct {
	// Templates holds ckan/<profile>/*.tmpl and iso/<profile>/*.tmpl.
	Templates fs.FS

	// Mappings holds codelist tables and <dir>/ckan_schema.yaml documents.
	Mappings fs.FS

	// CacheCodelists keeps loaded codelist tables in memory.
	CacheCodelists bool

	// Validator checks models before the document stage. Optional.
	Validator *mcf.Validator
}

// Engine renders records and models through profile templates.
// An Engine is safe for concurrent use.
type Engine struct {
	templates fs.FS
	mappings  fs.FS
	codelists *codelist.Resolver
	validator *mcf.Validator

	mu     sync.Mutex
	parsed map[string]*template.Template
}

// CanonicalData is the data passed to source-to-canonical templates.
type CanonicalData struct {
	// Record is the repaired catalog record.
	Record map[string]any

	// URL is the record's public landing page.
	URL string

	// Schema is the profile's schema-mapping document, nil for the base
	// profile.
	Schema map[string]any

	// Profile is the template directory name.
	Profile string
}

// DocumentData is the data passed to canonical-to-document templates.
type DocumentData struct {
	Record  map[string]any
	Profile string
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		templates: opts.Templates,
		mappings:  opts.Mappings,
		validator: opts.Validator,
		parsed:    make(map[string]*template.Template),
	}
	if e.templates == nil {
		e.templates = assets.Templates()
	}
	if e.mappings == nil {
		e.mappings = assets.Mappings()
	}
	if e.validator == nil {
		v, err := mcf.NewValidator()
		if err != nil {
			return nil, err
		}
		e.validator = v
	}
	e.codelists = codelist.New(e.mappings, codelist.Options{Cache: opts.CacheCodelists})
	return e, nil
}

// Codelists returns the resolver templates use.
func (e *Engine) Codelists() *codelist.Resolver {
	return e.codelists
}

// Preflight checks that both profiles exist, parse and define every
// partial they call, so a misconfigured deployment fails before any record
// is processed.
func (e *Engine) Preflight(sourceProfile, documentProfile string) error {
	if _, err := e.template(SchemaCKAN, sourceProfile); err != nil {
		return err
	}
	if _, err := e.schemaMapping(sourceProfile); err != nil {
		return err
	}
	_, err := e.template(SchemaISO, documentProfile)
	return err
}

// RenderCanonical renders a catalog record into a canonical model with the
// source profile templateDir.
func (e *Engine) RenderCanonical(record map[string]any, url, templateDir string) (mcf.Model, error) {
	tmpl, err := e.template(SchemaCKAN, templateDir)
	if err != nil {
		return nil, err
	}
	schema, err := e.schemaMapping(templateDir)
	if err != nil {
		return nil, err
	}

	data := CanonicalData{
		Record:  Repair(record),
		URL:     url,
		Schema:  schema,
		Profile: templateDir,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering canonical model: %w", err)
	}

	out, err := parseLenient(path.Join(string(SchemaCKAN), templateDir, mainTemplate), buf.Bytes())
	if err != nil {
		return nil, err
	}
	return mcf.Model(out), nil
}

// RenderDocument validates model and renders it with the document profile
// templateDir, pretty-printed in the model's declared charset.
func (e *Engine) RenderDocument(model mcf.Model, templateDir string) (string, error) {
	tmpl, err := e.template(SchemaISO, templateDir)
	if err != nil {
		return "", err
	}
	if err := e.validator.Validate(model); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := DocumentData{Record: model, Profile: templateDir}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}

	return extract.PrettyPrint(buf.Bytes(), XMLEncoding(model.Charset()))
}

// XMLEncoding maps a canonical charset code to an XML encoding label.
func XMLEncoding(charset string) string {
	switch extract.NormalizeCharstring(charset) {
	case "utf8":
		return "UTF-8"
	case "utf16":
		return "UTF-16"
	case "8859part1", "iso88591", "latin1":
		return "ISO-8859-1"
	case "8859part15", "iso885915":
		return "ISO-8859-15"
	}
	return charset
}

// template returns the parsed main template of a profile. Every *.tmpl file
// in the profile directory is parsed so main.tmpl can call partials.
func (e *Engine) template(kind SchemaType, profile string) (*template.Template, error) {
	if profile == "" {
		return nil, oerrors.NewConfigError("no template directory configured", string(kind), "")
	}
	dir := path.Join(string(kind), profile)

	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.parsed[dir]; ok {
		return t, nil
	}

	if _, err := fs.Stat(e.templates, path.Join(dir, mainTemplate)); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "missing metadata template",
			Location: path.Join(dir, mainTemplate),
			Hint:     "Check the templates directory and the configured profile name.",
			Cause:    errors.Join(oerrors.ErrConfig, err),
		}
	}

	t, err := template.New(mainTemplate).
		Funcs(e.funcMap()).
		ParseFS(e.templates, path.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "template does not parse: " + err.Error(),
			Location: dir,
			Cause:    errors.Join(oerrors.ErrConfig, err),
		}
	}

	if missing := undefinedTemplates(t); len(missing) > 0 {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "template calls undefined partial(s): " + strings.Join(missing, ", "),
			Location: dir,
			Hint:     "Deploy every *.tmpl file of the profile, including the _ prefixed partials.",
			Cause:    oerrors.ErrConfig,
		}
	}

	output.Debug("loaded template", "dir", dir)
	e.parsed[dir] = t
	return t, nil
}

// schemaMapping loads the profile's schema-mapping document through the
// assignments codelist. The base profile has none.
func (e *Engine) schemaMapping(profile string) (map[string]any, error) {
	if profile == BaseProfile {
		return nil, nil
	}

	assigned, err := e.codelists.Resolve(profile, AssignmentsCodelist)
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "cannot resolve schema mapping for profile " + profile,
			Location: AssignmentsCodelist + ".yaml",
			Cause:    errors.Join(oerrors.ErrConfig, err),
		}
	}

	file := path.Join(str(assigned), schemaMapping)
	data, err := fs.ReadFile(e.mappings, file)
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "missing schema-mapping file",
			Location: file,
			Hint:     "Add the profile to " + AssignmentsCodelist + ".yaml or deploy its " + schemaMapping + ".",
			Cause:    errors.Join(oerrors.ErrConfig, err),
		}
	}

	var schema map[string]any
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "schema-mapping file does not parse: " + err.Error(),
			Location: file,
			Cause:    errors.Join(oerrors.ErrConfig, err),
		}
	}
	return schema, nil
}

// undefinedTemplates lists the names invoked with {{template}} anywhere in
// t's set that no file of the set defines.
func undefinedTemplates(t *template.Template) []string {
	called := make(map[string]bool)
	for _, tt := range t.Templates() {
		if tt.Tree != nil {
			collectCalls(tt.Tree.Root, called)
		}
	}

	var missing []string
	for name := range called {
		if def := t.Lookup(name); def == nil || def.Tree == nil {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func collectCalls(node parse.Node, called map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectCalls(child, called)
		}
	case *parse.IfNode:
		collectCalls(n.List, called)
		collectCalls(n.ElseList, called)
	case *parse.RangeNode:
		collectCalls(n.List, called)
		collectCalls(n.ElseList, called)
	case *parse.WithNode:
		collectCalls(n.List, called)
		collectCalls(n.ElseList, called)
	case *parse.TemplateNode:
		called[n.Name] = true
	}
}

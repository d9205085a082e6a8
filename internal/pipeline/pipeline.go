// Package pipeline runs one harvest: catalog records are rendered into
// canonical models, written in the output schema and indexed.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/catalogbridge/ckan2csw/internal/ckan"
	"github.com/catalogbridge/ckan2csw/internal/dataset"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/index"
	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/schema"
)

// Pipeline wires a source, the rendering engine, an output schema and a
// store for one or more runs.
type Pipeline struct {
	source Source
	engine Engine
	schema schema.OutputSchema
	store  Store
	opts   Options
}

// New creates a Pipeline.
func New(source Source, engine Engine, out schema.OutputSchema, store Store, opts Options) *Pipeline {
	return &Pipeline{source: source, engine: engine, schema: out, store: store, opts: opts}
}

// Run executes one harvest.
//
// Phase sequence:
//  1. PREFLIGHT: both template profiles must exist
//  2. RESET:     the store is emptied
//  3. HARVEST:   adapt -> canonical -> document -> index, per record
//  4. EXPORT:    the store is written to ExportDir
//
// Configuration errors, source failures and store failures abort the run
// and return the partial Result with the error. Per-record failures land in
// Result.Errors and the run continues.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	res := &Result{RunID: uuid.NewString(), Errors: make([]error, 0)}
	defer func() { res.Duration = time.Since(started) }()

	// Phase 1: PREFLIGHT
	if err := p.engine.Preflight(p.opts.SourceProfile, p.schema.Name()); err != nil {
		return res, err
	}

	// Phase 2: RESET
	if err := p.store.Reset(ctx); err != nil {
		return res, err
	}

	output.Info("harvest started", "run", res.RunID, "catalog", p.opts.BaseURL, "schema", p.schema.Name())

	// Phase 3: HARVEST
	err := p.source.Datasets(ctx, func(record map[string]any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return p.process(ctx, record, res)
	})
	if err != nil {
		return res, err
	}

	// Phase 4: EXPORT
	if p.opts.ExportDir != "" {
		n, err := p.store.Export(ctx, p.opts.ExportDir, p.opts.Workers)
		if err != nil {
			return res, err
		}
		res.Exported = n
	}

	output.Info("harvest finished",
		"run", res.RunID,
		"processed", res.Processed,
		"indexed", res.Indexed,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

// process handles one record. A non-nil return aborts the run.
func (p *Pipeline) process(ctx context.Context, record map[string]any, res *Result) error {
	res.Processed++

	dcatType := ckan.DCATType(record)
	name, _ := record["name"].(string)

	if !ckan.Allowed(dcatType) {
		res.Skipped++
		output.RecordLogger(name, dcatType).Debug("category not harvested")
		p.report(name, dcatType, output.StatusSkipped)
		return nil
	}

	fail := func(stage string, cause error) error {
		rerr := &RecordError{Name: name, DCATType: dcatType, Stage: stage, Cause: cause}
		res.Failed++
		res.Errors = append(res.Errors, rerr)
		output.RecordLogger(name, dcatType).Error("record failed", "stage", stage, "error", cause)
		p.report(name, dcatType, output.StatusFailed)
		return nil
	}

	ds, err := dataset.New(record, p.opts.BaseURL, dataset.Options{TemplateDir: p.opts.SourceProfile})
	if err != nil {
		return fail("adapt", err)
	}

	model, err := ds.Render(p.engine)
	if err != nil {
		if errors.Is(err, oerrors.ErrConfig) {
			return err
		}
		return fail("canonical", err)
	}

	doc, err := p.schema.Write(model)
	if err != nil {
		if errors.Is(err, oerrors.ErrConfig) {
			return err
		}
		return fail("document", err)
	}

	err = p.store.Insert(ctx, index.Record{
		Identifier: model.Identifier(),
		Name:       ds.Name(),
		Type:       dcatType,
		Schema:     p.schema.Name(),
		Title:      model.String("identification", "title"),
		RunID:      res.RunID,
		XML:        doc,
	})
	if err != nil {
		var dup *index.DuplicateError
		if errors.As(err, &dup) || errors.Is(err, oerrors.ErrValidation) {
			return fail("index", err)
		}
		return err
	}

	res.Indexed++
	output.RecordLogger(name, dcatType).Debug("record indexed", "identifier", model.Identifier())
	p.report(name, dcatType, output.StatusIndexed)
	return nil
}

func (p *Pipeline) report(name, dcatType, status string) {
	if p.opts.OnRecord != nil {
		p.opts.OnRecord(name, dcatType, status)
	}
}

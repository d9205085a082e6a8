package pipeline

import (
	"context"
	"time"

	"github.com/catalogbridge/ckan2csw/internal/index"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

// Source yields raw catalog records.
type Source interface {
	Datasets(ctx context.Context, yield func(record map[string]any) error) error
}

// Engine builds canonical models and checks profiles before a run.
type Engine interface {
	RenderCanonical(record map[string]any, url, templateDir string) (mcf.Model, error)
	Preflight(sourceProfile, documentProfile string) error
}

// Store receives rendered documents.
type Store interface {
	Reset(ctx context.Context) error
	Insert(ctx context.Context, r index.Record) error
	Export(ctx context.Context, dir string, workers int) (int, error)
}

// Options configures a run.
type Options struct {
	// BaseURL is the catalog URL record landing pages are joined to.
	BaseURL string

	// SourceProfile is the source-to-canonical template directory.
	SourceProfile string

	// ExportDir receives one XML file per record after the run. Empty skips
	// the export phase.
	ExportDir string

	// Workers bounds concurrent export writes.
	Workers int

	// OnRecord is called once per record with its final status.
	// Optional.
	OnRecord func(name, dcatType, status string)
}

// Result summarizes a run.
type Result struct {
	// RunID identifies the run. Stamped on every indexed record.
	RunID string

	// Processed counts every record received from the source.
	Processed int

	// Indexed counts records written to the store.
	Indexed int

	// Skipped counts records whose category is not harvested.
	Skipped int

	// Failed counts records that could not be transformed.
	Failed int

	// Exported counts files written in the export phase.
	Exported int

	// Errors holds one *RecordError per failed record.
	Errors []error

	// Duration is the wall time of the run.
	Duration time.Duration
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/catalogbridge/ckan2csw/internal/ckan"
	"github.com/catalogbridge/ckan2csw/internal/config"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/index"
	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/pipeline"
	"github.com/catalogbridge/ckan2csw/internal/render"
	"github.com/catalogbridge/ckan2csw/internal/schema"
	"github.com/catalogbridge/ckan2csw/internal/version"
)

// newEngine builds the rendering engine from c, reading templates and
// codelists from disk when override directories are configured.
func newEngine(c *config.Config) (*render.Engine, error) {
	opts := render.Options{CacheCodelists: c.CacheCodelists}
	if c.TemplatesDir != "" {
		opts.Templates = os.DirFS(c.TemplatesDir)
	}
	if c.MappingsDir != "" {
		opts.Mappings = os.DirFS(c.MappingsDir)
	}
	return render.New(opts)
}

// validateConfig rejects unusable configuration before any work starts.
func validateConfig(c *config.Config) error {
	v, err := config.NewValidator()
	if err != nil {
		return err
	}
	return v.Validate(c)
}

// harvester runs full harvests with one engine, so cached codelists
// survive between scheduled runs.
type harvester struct {
	cfg    *config.Config
	engine *render.Engine
	out    schema.OutputSchema
	w      io.Writer
}

func newHarvester(c *config.Config, w io.Writer) (*harvester, error) {
	if err := validateConfig(c); err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(c); err != nil {
		return nil, oerrors.NewConfigError("could not create working directories: "+err.Error(), c.AppDir, "")
	}

	engine, err := newEngine(c)
	if err != nil {
		return nil, err
	}

	return &harvester{
		cfg:    c,
		engine: engine,
		out:    schema.NewRegistry(engine).Select(c.OutputSchema),
		w:      w,
	}, nil
}

// run performs one harvest and prints a summary.
func (h *harvester) run(ctx context.Context) (*pipeline.Result, error) {
	client, err := ckan.New(h.cfg.CKANURL, ckan.Options{
		PageSize:  h.cfg.PageSize,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	store, err := index.Open(h.cfg.Database)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	p := pipeline.New(client, h.engine, h.out, store, pipeline.Options{
		BaseURL:       h.cfg.CKANURL,
		SourceProfile: h.cfg.CKANSchema,
		ExportDir:     h.cfg.ExportDir,
		Workers:       h.cfg.Workers,
		OnRecord: func(name, dcatType, status string) {
			fmt.Fprintln(h.w, output.FormatRecordLine(dcatType, name, status))
		},
	})

	res, err := p.Run(ctx)
	if err != nil {
		return res, err
	}

	printSummary(h.w, res)
	return res, nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	if len(res.Errors) > 0 {
		failures := make([]output.FailedRecord, 0, len(res.Errors))
		for _, err := range res.Errors {
			var rerr *pipeline.RecordError
			if !errors.As(err, &rerr) {
				failures = append(failures, output.FailedRecord{Message: shortError(err)})
				continue
			}
			failures = append(failures, output.FailedRecord{
				Name:    rerr.Name,
				Type:    rerr.DCATType,
				Message: rerr.Stage + ": " + shortError(rerr.Cause),
			})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.RenderFailureTable(failures))
	}

	fmt.Fprintln(w, output.FormatCheckmark(fmt.Sprintf(
		"Indexed %d of %d records (%d skipped, %d failed), exported %d in %s",
		res.Indexed, res.Processed, res.Skipped, res.Failed, res.Exported,
		res.Duration.Round(time.Millisecond),
	)))
}

// shortError returns a one-line description of err for tables.
func shortError(err error) string {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		if detail.Field != "" {
			return detail.Message + " (" + detail.Field + ")"
		}
		return detail.Message
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/index"
	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/pipeline"
	"github.com/catalogbridge/ckan2csw/internal/render"
	"github.com/catalogbridge/ckan2csw/internal/schema"
	"github.com/catalogbridge/ckan2csw/internal/testutil"
)

type sliceSource []map[string]any

func (s sliceSource) Datasets(ctx context.Context, yield func(map[string]any) error) error {
	for _, r := range s {
		if err := yield(r); err != nil {
			return err
		}
	}
	return nil
}

type failingSource struct{ err error }

func (s failingSource) Datasets(context.Context, func(map[string]any) error) error {
	return s.err
}

func record(name, id string) map[string]any {
	return testutil.Record(name, id)
}

type fixture struct {
	engine *render.Engine
	out    schema.OutputSchema
	store  *index.Index
	dir    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	engine, err := render.New(render.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := index.Open(filepath.Join(dir, "cite.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return fixture{
		engine: engine,
		out:    schema.NewRegistry(engine).Select(schema.ISO19139Inspire),
		store:  store,
		dir:    dir,
	}
}

func (f fixture) pipeline(src pipeline.Source, opts pipeline.Options) *pipeline.Pipeline {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://catalog.example/"
	}
	if opts.SourceProfile == "" {
		opts.SourceProfile = "iso19139_geodcatap"
	}
	return pipeline.New(src, f.engine, f.out, f.store, opts)
}

func TestRun_ContinuesPastRecordFailures(t *testing.T) {
	f := newFixture(t)

	noLicense := record("no-license", "id-2")
	delete(noLicense, "license_id")

	publication := record("a-publication", "id-4")
	publication["dcat_type"] = "http://inspire.ec.europa.eu/metadata-codelist/ResourceType/publication"

	unnamed := record("", "id-5")

	src := sliceSource{
		record("first", "id-1"),
		noLicense,
		record("third", "id-3"),
		publication,
		unnamed,
		record("dup-of-first", "id-1"),
	}

	statuses := map[string]string{}
	exportDir := filepath.Join(f.dir, "metadata")
	p := f.pipeline(src, pipeline.Options{
		ExportDir: exportDir,
		Workers:   2,
		OnRecord:  func(name, _, status string) { statuses[name] = status },
	})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 6, res.Processed)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 2, res.Exported)
	require.Len(t, res.Errors, 3)

	var rerr *pipeline.RecordError
	require.True(t, errors.As(res.Errors[0], &rerr))
	assert.Equal(t, "no-license", rerr.Name)
	assert.Equal(t, "dataset", rerr.DCATType)
	assert.Equal(t, "canonical", rerr.Stage)
	var missing *render.MissingFieldError
	assert.True(t, errors.As(rerr, &missing))

	require.True(t, errors.As(res.Errors[1], &rerr))
	assert.Equal(t, "adapt", rerr.Stage)

	require.True(t, errors.As(res.Errors[2], &rerr))
	assert.Equal(t, "index", rerr.Stage)
	var dup *index.DuplicateError
	assert.True(t, errors.As(rerr, &dup))

	assert.Equal(t, output.StatusIndexed, statuses["first"])
	assert.Equal(t, output.StatusFailed, statuses["no-license"])
	assert.Equal(t, output.StatusIndexed, statuses["third"])
	assert.Equal(t, output.StatusSkipped, statuses["a-publication"])

	stored, err := f.store.Get(context.Background(), "id-3")
	require.NoError(t, err)
	assert.Equal(t, "Title of third", stored.Title)
	assert.Equal(t, res.RunID, stored.RunID)
	assert.Equal(t, schema.ISO19139Inspire, stored.Schema)
	assert.Contains(t, stored.XML, "http://catalog.example/dataset/third/")

	data, err := os.ReadFile(filepath.Join(exportDir, "id-1.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Title of first")
}

func TestRun_ResetsIndexEachRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline(sliceSource{record("a", "id-a"), record("b", "id-b")}, pipeline.Options{}).Run(ctx)
	require.NoError(t, err)

	res, err := f.pipeline(sliceSource{record("c", "id-c")}, pipeline.Options{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_ConfigErrorAbortsBeforeReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline(sliceSource{record("a", "id-a")}, pipeline.Options{}).Run(ctx)
	require.NoError(t, err)

	res, err := f.pipeline(sliceSource{record("b", "id-b")}, pipeline.Options{SourceProfile: "no_such_profile"}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrConfig))
	assert.Zero(t, res.Processed)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "previous run's index is kept")
}

func TestRun_UndefinedPartialAbortsBeforeReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline(sliceSource{record("a", "id-a")}, pipeline.Options{}).Run(ctx)
	require.NoError(t, err)

	broken, err := render.New(render.Options{
		Templates: fstest.MapFS{
			"ckan/partial_missing/main.tmpl": {Data: []byte(`{"metadata": {{ template "stringList" .Record.tags }}}`)},
		},
		Mappings: fstest.MapFS{},
	})
	require.NoError(t, err)

	p := pipeline.New(sliceSource{record("b", "id-b")}, broken, f.out, f.store, pipeline.Options{
		BaseURL:       "http://catalog.example/",
		SourceProfile: "partial_missing",
	})
	res, err := p.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrConfig), "got %v", err)
	assert.Contains(t, err.Error(), "stringList")
	assert.Zero(t, res.Processed)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "previous run's index is kept")
}

func TestRun_SourceFailureAborts(t *testing.T) {
	f := newFixture(t)

	boom := oerrors.Wrap(oerrors.ErrConnectivity, "catalog down")
	_, err := f.pipeline(failingSource{err: boom}, pipeline.Options{}).Run(context.Background())
	assert.True(t, errors.Is(err, oerrors.ErrConnectivity))
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline(sliceSource{record("a", "id-a")}, pipeline.Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

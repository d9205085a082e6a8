package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

type countingEngine struct {
	calls int
	url   string
	dir   string
}

func (e *countingEngine) RenderCanonical(record map[string]any, url, templateDir string) (mcf.Model, error) {
	e.calls++
	e.url = url
	e.dir = templateDir
	return mcf.Model{"metadata": map[string]any{"identifier": record["name"]}}, nil
}

func TestNew_URL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{name: "trailing slash", base: "http://catalog.example/", want: "http://catalog.example/dataset/rivers-2020/"},
		{name: "sub path", base: "http://catalog.example/ckan/", want: "http://catalog.example/ckan/dataset/rivers-2020/"},
		{name: "no trailing slash", base: "http://catalog.example/ckan", want: "http://catalog.example/dataset/rivers-2020/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(map[string]any{"name": "rivers-2020"}, tt.base, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.URL())
			assert.Equal(t, "rivers-2020", d.Name())
		})
	}
}

func TestNew_MissingName(t *testing.T) {
	for _, raw := range []map[string]any{{}, {"name": ""}, {"name": 42}} {
		_, err := New(raw, "http://catalog.example/", Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	}
}

func TestNew_BadBaseURL(t *testing.T) {
	_, err := New(map[string]any{"name": "x"}, "http://[::1", Options{})
	assert.True(t, errors.Is(err, oerrors.ErrConfig))
}

func TestDCATType(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: nil, want: "dataset"},
		{value: "", want: "dataset"},
		{value: "http://inspire.ec.europa.eu/metadata-codelist/ResourceType/series", want: "series"},
		{value: "http://inspire.ec.europa.eu/metadata-codelist/ResourceType/Service/", want: "service"},
		{value: "dataset", want: "dataset"},
	}

	for _, tt := range tests {
		raw := map[string]any{"name": "x"}
		if tt.value != nil {
			raw["dcat_type"] = tt.value
		}
		assert.Equal(t, tt.want, DCATType(raw), "dcat_type=%v", tt.value)
	}
}

func TestRender_Lazy(t *testing.T) {
	engine := &countingEngine{}
	d, err := New(map[string]any{"name": "rivers-2020"}, "http://catalog.example/", Options{TemplateDir: "iso19139_geodcatap"})
	require.NoError(t, err)
	assert.Equal(t, 0, engine.calls)

	m, err := d.Render(engine)
	require.NoError(t, err)
	assert.Equal(t, "rivers-2020", m.Identifier())

	_, err = d.Render(engine)
	require.NoError(t, err)

	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, "http://catalog.example/dataset/rivers-2020/", engine.url)
	assert.Equal(t, "iso19139_geodcatap", engine.dir)
}

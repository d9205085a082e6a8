package codelist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

func testTables() fstest.MapFS {
	return fstest.MapFS{
		"iso_19115_codes.yaml": &fstest.MapFile{Data: []byte(`
dataset: dataset
series: series
service: service
`)},
		"ckan-csw_assignments.yaml": &fstest.MapFile{Data: []byte(`
iso19139_geodcatap: geodcatap
`)},
		"languages.yaml": &fstest.MapFile{Data: []byte(`
- id: http://publications.europa.eu/resource/authority/language/SPA
  iso_639_2: spa
  label: Spanish
- id: http://publications.europa.eu/resource/authority/language/ENG
  iso_639_2: eng
  label: English
- id: http://publications.europa.eu/resource/authority/language/ZZZ
  iso_639_2:
  label: Unknown
`)},
		"licenses.yaml": &fstest.MapFile{Data: []byte(`
- ids: [cc-by, CC-BY-4.0]
  url: https://creativecommons.org/licenses/by/4.0/
- ids: [odc-odbl]
  url: https://opendatacommons.org/licenses/odbl/
`)},
		"numbers.yaml": &fstest.MapFile{Data: []byte(`
1: one
2: two
`)},
		"empty.yaml":  &fstest.MapFile{Data: []byte(``)},
		"broken.yaml": &fstest.MapFile{Data: []byte("key: [unclosed\n")},
	}
}

func TestResolve(t *testing.T) {
	r := New(testTables(), Options{})

	tests := []struct {
		name     string
		value    any
		codelist string
		want     any
	}{
		{"hit", "series", "iso_19115_codes", "series"},
		{"profile assignment", "iso19139_geodcatap", "ckan-csw_assignments", "geodcatap"},
		{"miss returns input", "nonexistent", "iso_19115_codes", "nonexistent"},
		{"non-string key", 2, "numbers", "two"},
		{"nil value", nil, "iso_19115_codes", nil},
		{"empty table", "x", "empty", "x"},
		{"flat lookup on list table", "spa", "languages", "spa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.value, tt.codelist)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_MissingTable(t *testing.T) {
	r := New(testTables(), Options{})

	for _, name := range []string{"does_not_exist", "broken"} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve("x", name)
			require.Error(t, err)

			var mnf *MappingNotFoundError
			require.True(t, errors.As(err, &mnf))
			assert.Equal(t, name, mnf.Codelist)
			assert.Equal(t, "x", mnf.Value)
			assert.True(t, errors.Is(err, oerrors.ErrNotFound))
		})
	}
}

func TestResolve_NilRoot(t *testing.T) {
	r := New(nil, Options{})
	_, err := r.Resolve("x", "anything")

	var mnf *MappingNotFoundError
	assert.True(t, errors.As(err, &mnf))
}

func TestResolveFromList(t *testing.T) {
	r := New(testTables(), Options{})

	tests := []struct {
		name     string
		value    any
		input    string
		output   string
		codelist string
		want     any
	}{
		{
			name:     "substring match on string field",
			value:    "language/SPA",
			input:    "id",
			output:   "iso_639_2",
			codelist: "languages",
			want:     "spa",
		},
		{
			name:     "first row wins",
			value:    "http://publications.europa.eu/resource/authority/language/",
			input:    "id",
			output:   "label",
			codelist: "languages",
			want:     "Spanish",
		},
		{
			name:     "membership in list field",
			value:    "CC-BY-4.0",
			input:    "ids",
			output:   "url",
			codelist: "licenses",
			want:     "https://creativecommons.org/licenses/by/4.0/",
		},
		{
			name:     "list membership is exact",
			value:    "odc",
			input:    "ids",
			output:   "url",
			codelist: "licenses",
			want:     "odc",
		},
		{
			name:     "no match returns input",
			value:    "FRA",
			input:    "id",
			output:   "iso_639_2",
			codelist: "languages",
			want:     "FRA",
		},
		{
			name:     "null output returns input",
			value:    "ZZZ",
			input:    "id",
			output:   "iso_639_2",
			codelist: "languages",
			want:     "ZZZ",
		},
		{
			name:     "missing output field returns input",
			value:    "ENG",
			input:    "id",
			output:   "nope",
			codelist: "languages",
			want:     "ENG",
		},
		{
			name:     "empty value",
			value:    "",
			input:    "id",
			output:   "iso_639_2",
			codelist: "languages",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveFromList(tt.value, tt.input, tt.output, tt.codelist)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFromList_MissingTable(t *testing.T) {
	r := New(testTables(), Options{})
	_, err := r.ResolveFromList("x", "id", "label", "nope")

	var mnf *MappingNotFoundError
	require.True(t, errors.As(err, &mnf))
	assert.Equal(t, "nope", mnf.Codelist)
}

func TestResolveEntryFromList(t *testing.T) {
	r := New(testTables(), Options{})

	got, err := r.ResolveEntryFromList("ENG", "id", "iso_639_2", "languages")
	require.NoError(t, err)
	row, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "English", row["label"])
	assert.Equal(t, "eng", row["iso_639_2"])

	got, err = r.ResolveEntryFromList("ZZZ", "id", "iso_639_2", "languages")
	require.NoError(t, err)
	assert.Equal(t, "ZZZ", got)
}

func TestResolver_Cache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: first\n"), 0o644))

	t.Run("uncached reads every call", func(t *testing.T) {
		r := NewDir(dir, Options{})
		got, err := r.Resolve("a", "codes")
		require.NoError(t, err)
		assert.Equal(t, "first", got)
		assert.False(t, r.Cached("codes"))

		require.NoError(t, os.WriteFile(path, []byte("a: second\n"), 0o644))
		got, err = r.Resolve("a", "codes")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("cached until invalidated", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("a: first\n"), 0o644))
		r := NewDir(dir, Options{Cache: true})

		got, err := r.Resolve("a", "codes")
		require.NoError(t, err)
		assert.Equal(t, "first", got)
		assert.True(t, r.Cached("codes"))

		require.NoError(t, os.WriteFile(path, []byte("a: second\n"), 0o644))
		got, err = r.Resolve("a", "codes")
		require.NoError(t, err)
		assert.Equal(t, "first", got)

		r.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
		assert.False(t, r.Cached("codes"))

		got, err = r.Resolve("a", "codes")
		require.NoError(t, err)
		assert.Equal(t, "second", got)

		r.InvalidateAll()
		assert.False(t, r.Cached("codes"))
	})
}

func TestHandleEvent_IgnoresOtherFiles(t *testing.T) {
	r := New(testTables(), Options{Cache: true})
	_, err := r.Resolve("dataset", "iso_19115_codes")
	require.NoError(t, err)

	r.handleEvent(fsnotify.Event{Name: "/x/iso_19115_codes.txt", Op: fsnotify.Write})
	r.handleEvent(fsnotify.Event{Name: "/x/iso_19115_codes.yaml", Op: fsnotify.Chmod})
	assert.True(t, r.Cached("iso_19115_codes"))
}

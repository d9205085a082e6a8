package assets_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogbridge/ckan2csw/internal/assets"
)

func TestTemplates_IncludesPartials(t *testing.T) {
	tests := []string{
		"ckan/iso19139_base/main.tmpl",
		"ckan/iso19139_geodcatap/main.tmpl",
		"ckan/iso19139_geodcatap/_helpers.tmpl",
		"iso/iso19139/main.tmpl",
		"iso/iso19139/_party.tmpl",
		"iso/iso19139_inspire/main.tmpl",
		"iso/iso19139_inspire/_party.tmpl",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fs.Stat(assets.Templates(), name)
			assert.NoError(t, err)
		})
	}
}

func TestMappings(t *testing.T) {
	for _, name := range []string{"ckan-csw_assignments.yaml", "languages.yaml", "licenses.yaml"} {
		_, err := fs.Stat(assets.Mappings(), name)
		assert.NoError(t, err, name)
	}

	entries, err := fs.ReadDir(assets.Mappings(), "geodcatap")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

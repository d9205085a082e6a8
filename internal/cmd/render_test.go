package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogbridge/ckan2csw/internal/testutil"
)

func TestRender_Formats(t *testing.T) {
	dir := isolate(t)
	path := testutil.WriteJSON(t, dir, "rivers.json", testutil.Record("rivers", "id-1"))

	tests := []struct {
		name   string
		format string
		want   []string
	}{
		{
			name:   "xml document",
			format: "xml",
			want:   []string{"<?xml", "gmd:MD_Metadata", "id-1", "Title of rivers", "http://localhost:5000/dataset/rivers/"},
		},
		{
			name:   "canonical yaml",
			format: "mcf",
			want:   []string{"identifier: id-1", "title: Title of rivers"},
		},
		{
			name:   "canonical json",
			format: "json",
			want:   []string{`"identifier": "id-1"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "render", path, "--format", tt.format)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRender_UnwrapsPackageShowEnvelope(t *testing.T) {
	dir := isolate(t)
	path := testutil.WriteJSON(t, dir, "response.json", map[string]any{"success": true, "result": testutil.Record("lakes", "id-2")})

	out, err := execute(t, "render", path, "-o", "mcf")
	require.NoError(t, err)
	assert.Contains(t, out, "identifier: id-2")
}

func TestRender_ToFile(t *testing.T) {
	dir := isolate(t)
	path := testutil.WriteJSON(t, dir, "rivers.json", testutil.Record("rivers", "id-1"))
	target := filepath.Join(dir, "rivers.xml")

	out, err := execute(t, "render", path, "--file", target, "--output-schema", "iso19139")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
	assert.NotContains(t, string(data), "INSPIRE Technical Guidelines")
}

func TestRender_Errors(t *testing.T) {
	dir := isolate(t)

	noLicense := testutil.Record("rivers", "id-1")
	delete(noLicense, "license_id")
	noLicensePath := testutil.WriteJSON(t, dir, "no-license.json", noLicense)

	brokenPath := testutil.WriteFile(t, dir, "broken.json", `{"name": `)

	noNamePath := testutil.WriteJSON(t, dir, "no-name.json", map[string]any{"id": "x"})

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "missing file", args: []string{"render", filepath.Join(dir, "absent.json")}, wantCode: ExitNotFound},
		{name: "not json", args: []string{"render", brokenPath}, wantCode: ExitValidationError},
		{name: "missing license", args: []string{"render", noLicensePath}, wantCode: ExitValidationError},
		{name: "missing name", args: []string{"render", noNamePath}, wantCode: ExitValidationError},
		{name: "unknown profile", args: []string{"render", noLicensePath, "--ckan-schema", "nope"}, wantCode: ExitConfigError},
		{name: "no argument", args: []string{"render"}, wantCode: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCodeFromError(err))
		})
	}
}

func TestRoundtrip(t *testing.T) {
	dir := isolate(t)
	path := testutil.WriteJSON(t, dir, "rivers.json", testutil.Record("rivers", "id-1"))

	out, err := execute(t, "roundtrip", path)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

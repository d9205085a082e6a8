package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

func TestGetBBox(t *testing.T) {
	tests := []struct {
		name    string
		spatial any
		want    []float64
	}{
		{
			name:    "polygon string",
			spatial: `{"type":"Polygon","coordinates":[[[-9.3,36.0],[3.3,36.0],[3.3,43.8],[-9.3,43.8],[-9.3,36.0]]]}`,
			want:    []float64{-9.3, 36.0, 3.3, 43.8},
		},
		{
			name:    "point",
			spatial: `{"type":"Point","coordinates":[-3.7,40.4]}`,
			want:    []float64{-3.7, 40.4, -3.7, 40.4},
		},
		{
			name: "decoded object",
			spatial: map[string]any{
				"type":        "LineString",
				"coordinates": []any{[]any{0.0, 1.0}, []any{2.0, -1.0}},
			},
			want: []float64{0, -1, 2, 1},
		},
		{name: "nil", spatial: nil, want: nil},
		{name: "empty string", spatial: "  ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetBBox(tt.spatial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBBox_Malformed(t *testing.T) {
	_, err := GetBBox(`{"type":`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrParse))
}

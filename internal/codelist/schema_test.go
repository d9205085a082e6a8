package codelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() map[string]any {
	return map[string]any{
		"dataset_fields": []any{
			map[string]any{
				"field_name": "theme_es",
				"choices": []any{
					map[string]any{"value": "http://datos.gob.es/kos/sector-publico/sector/medio-ambiente", "label": "Medio ambiente"},
					map[string]any{"value": "http://datos.gob.es/kos/sector-publico/sector/transporte", "label": "Transporte"},
				},
			},
		},
		"resource_fields": []any{},
	}
}

func TestRawValueFromSchema(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"matching uri", "http://datos.gob.es/kos/sector-publico/sector/medio-ambiente", "medio-ambiente"},
		{"unmatched lower-cased", "Other", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RawValueFromSchema(tt.value, testSchema(), "theme_es", "dataset"))
		})
	}

	assert.Equal(t, "x", RawValueFromSchema("X", testSchema(), "missing_field", "dataset"))
}

func TestURIValueFromSchema(t *testing.T) {
	uri := "http://datos.gob.es/kos/sector-publico/sector/transporte"
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"full uri", uri, uri},
		{"short code", "transporte", uri},
		{"short code any case", "TRANSPORTE", uri},
		{"label", "Transporte", uri},
		{"unmatched", "ciencia", "ciencia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URIValueFromSchema(tt.value, testSchema(), "theme_es", "dataset"))
		})
	}
}

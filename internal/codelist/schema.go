package codelist

import (
	"strings"
)

// choices returns the choice list for fieldName from a schema-mapping
// document. Fields are grouped under "<fieldsType>_fields".
func choices(schema map[string]any, fieldName, fieldsType string) []map[string]any {
	fields, _ := schema[fieldsType+"_fields"].([]any)
	for _, f := range fields {
		field, ok := f.(map[string]any)
		if !ok || keyOf(field["field_name"]) != fieldName {
			continue
		}
		list, _ := field["choices"].([]any)
		out := make([]map[string]any, 0, len(list))
		for _, c := range list {
			if choice, ok := c.(map[string]any); ok {
				out = append(out, choice)
			}
		}
		return out
	}
	return nil
}

// RawValueFromSchema maps a choice URI to its short code: the last path
// segment of the matching choice value, lower-cased. Unmatched values are
// lower-cased as-is.
func RawValueFromSchema(value string, schema map[string]any, fieldName, fieldsType string) string {
	for _, c := range choices(schema, fieldName, fieldsType) {
		if keyOf(c["value"]) == value {
			value = lastSegment(value)
			break
		}
	}
	return strings.ToLower(value)
}

// URIValueFromSchema maps a value to the full choice URI. The value may be
// the URI itself, its last path segment or the choice label, compared
// case-insensitively. Unmatched values come back unchanged.
func URIValueFromSchema(value string, schema map[string]any, fieldName, fieldsType string) string {
	for _, c := range choices(schema, fieldName, fieldsType) {
		uri := keyOf(c["value"])
		if uri == value ||
			strings.EqualFold(lastSegment(uri), value) ||
			(c["label"] != nil && strings.EqualFold(keyOf(c["label"]), value)) {
			return uri
		}
	}
	return value
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

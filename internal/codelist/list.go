package codelist

import (
	"strings"
)

// ResolveFromList searches the list table named codelist for the first row
// whose inputField contains value and returns that row's outputField.
//
// Containment is substring match for string fields, membership for list
// fields and equality otherwise. When no row matches, or the matched row has
// a null or empty output, value is returned unchanged.
func (r *Resolver) ResolveFromList(value any, inputField, outputField, codelist string) (any, error) {
	row, err := r.findRow(value, inputField, codelist)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return value, nil
	}
	out, ok := row[outputField]
	if !ok || isEmpty(out) {
		return value, nil
	}
	return out, nil
}

// ResolveEntryFromList is ResolveFromList returning the whole matched row.
// The row is returned only when its outputField holds a value; otherwise the
// original value comes back.
func (r *Resolver) ResolveEntryFromList(value any, inputField, outputField, codelist string) (any, error) {
	row, err := r.findRow(value, inputField, codelist)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return value, nil
	}
	if out, ok := row[outputField]; !ok || isEmpty(out) {
		return value, nil
	}
	return row, nil
}

func (r *Resolver) findRow(value any, inputField, codelist string) (map[string]any, error) {
	table, err := r.Load(codelist)
	if err != nil {
		return nil, &MappingNotFoundError{Value: value, Codelist: codelist, Cause: err}
	}
	if value == nil || value == "" {
		return nil, nil
	}
	rows, ok := table.([]any)
	if !ok {
		return nil, nil
	}
	needle := keyOf(value)
	for _, item := range rows {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if contains(row[inputField], needle) {
			return row, nil
		}
	}
	return nil, nil
}

func contains(field any, needle string) bool {
	switch f := field.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(f, needle)
	case []any:
		for _, el := range f {
			if el != nil && keyOf(el) == needle {
				return true
			}
		}
		return false
	default:
		return keyOf(f) == needle
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

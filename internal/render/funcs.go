package render

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/catalogbridge/ckan2csw/internal/codelist"
	"github.com/catalogbridge/ckan2csw/internal/extract"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

// funcMap exposes the extractors and codelist lookups to templates. Every
// helper accepts absent values so templates never touch a nil map directly.
func (e *Engine) funcMap() template.FuncMap {
	return template.FuncMap{
		"get":       get,
		"str":       str,
		"json":      toJSON,
		"rawList":   rawList,
		"xml":       xmlText,
		"default":   withDefault,
		"empty":     isEmpty,
		"required":  required,
		"list":      list,
		"dict":      dict,
		"keys":      keys,
		"join":      join,
		"first":     first,
		"isMap":     isMap,
		"isList":    isList,
		"add":       func(a, b int) int { return a + b },
		"append":    func(l []any, v any) []any { return append(l, v) },
		"extra":     extra,
		"lower":     func(v any) string { return strings.ToLower(str(v)) },
		"upper":     func(v any) string { return strings.ToUpper(str(v)) },
		"trim":      func(v any) string { return strings.TrimSpace(str(v)) },
		"contains":  func(sub string, v any) bool { return strings.Contains(str(v), sub) },
		"hasPrefix": func(prefix string, v any) bool { return strings.HasPrefix(str(v), prefix) },
		"split":     func(sep string, v any) []string { return strings.Split(str(v), sep) },
		"replace":   func(old, repl string, v any) string { return strings.ReplaceAll(str(v), old, repl) },
		"lastSegment": func(v any) string {
			s := strings.TrimRight(str(v), "/")
			return s[strings.LastIndex(s, "/")+1:]
		},

		"datetime":      func(v any) (string, error) { return extract.NormalizeDatetime(str(v)) },
		"datestring":    extract.NormalizeDatestring,
		"bbox":          extract.GetBBox,
		"charstring":    charstring,
		"distLang":      func(v any) string { return extract.DistributionLanguage(str(v)) },
		"coerceList":    extract.CoerceJSONList,
		"jsonList":      extract.JSONList,
		"pruneFormats":  func(v any) []map[string]any { return extract.PruneDistributionFormats(asMap(v)) },
		"pruneTransfer": func(v any, lang any) []any { return extract.PruneTransferOption(asMap(v), str(lang)) },
		"normCharset":   func(v any) string { return extract.NormalizeCharstring(str(v)) },

		"codelist": e.codelists.Resolve,
		"codelistFromList": func(value any, in, out, name string) (any, error) {
			return e.codelists.ResolveFromList(value, in, out, name)
		},
		"codelistEntry": func(value any, in, out, name string) (any, error) {
			return e.codelists.ResolveEntryFromList(value, in, out, name)
		},
		"rawValue": func(value any, schema any, field, fieldsType string) string {
			return codelist.RawValueFromSchema(str(value), asMap(schema), field, fieldsType)
		},
		"uriValue": func(value any, schema any, field, fieldsType string) string {
			return codelist.URIValueFromSchema(str(value), asMap(schema), field, fieldsType)
		},
	}
}

// get walks path through maps (string keys) and lists (int indexes),
// returning nil as soon as a step is missing.
func get(v any, path ...any) any {
	cur := v
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m := asMap(cur)
			if m == nil {
				return nil
			}
			cur = m[key]
		case int:
			l, ok := cur.([]any)
			if !ok || key < 0 || key >= len(l) {
				return nil
			}
			cur = l[key]
		default:
			return nil
		}
	}
	return cur
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case mcf.Model:
		return m
	}
	return nil
}

// str formats a scalar for output. Absent values print as "".
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func toJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// rawList prints a JSON array of strings that are already escaped for a
// JSON string literal. Other elements are JSON encoded.
func rawList(v any) (string, error) {
	items, ok := v.([]any)
	if !ok {
		if ss, isStrings := v.([]string); isStrings {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		}
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if s, isStr := it.(string); isStr {
			parts = append(parts, `"`+s+`"`)
			continue
		}
		enc, err := toJSON(it)
		if err != nil {
			return "", err
		}
		parts = append(parts, enc)
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func xmlText(v any) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(str(v)))
	return b.String()
}

// withDefault returns v unless it is empty. Argument order follows the
// pipeline form: {{ get .Record "x" | default "fallback" }}.
func withDefault(def, v any) any {
	if isEmpty(v) {
		return def
	}
	return v
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case []float64:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func required(field string, v any) (any, error) {
	if isEmpty(v) {
		return nil, &MissingFieldError{Field: field}
	}
	return v, nil
}

// extra returns the value of the CKAN extras entry named key.
func extra(record any, key string) any {
	items, _ := get(record, "extras").([]any)
	for _, it := range items {
		if str(get(it, "key")) == key {
			return get(it, "value")
		}
	}
	return nil
}

func list(items ...any) []any {
	return items
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[str(kv[i])] = kv[i+1]
	}
	return m, nil
}

func keys(v any) []string {
	m := asMap(v)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func join(sep string, v any) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, sep)
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			parts = append(parts, str(el))
		}
		return strings.Join(parts, sep)
	}
	return str(v)
}

func first(v any) any {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return t[0]
		}
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case []float64:
		if len(t) > 0 {
			return t[0]
		}
	case string:
		return t
	}
	return nil
}

func isMap(v any) bool {
	return asMap(v) != nil
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string, []float64:
		return true
	}
	return false
}

func charstring(option any, language, alternate any) []any {
	pair := extract.GetCharstring(option, str(language), str(alternate))
	return pair[:]
}

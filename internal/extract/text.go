package extract

import (
	"encoding/json"
	"sort"
	"strings"
)

// NilReasons are the values accepted in place of a language to mean "any".
var NilReasons = []string{"missing", "withheld", "inapplicable", "unknown", "template"}

// GetCharstring resolves a possibly multilingual value to a
// [primary, alternate] pair.
func GetCharstring(option any, language, alternate string) [2]any {
	switch v := option.(type) {
	case nil:
		return [2]any{nil, nil}
	case map[string]any:
		return [2]any{v[language], v[alternate]}
	default:
		return [2]any{v, nil}
	}
}

// DistributionLanguage derives a language code from a section key such as
// "http_es". Keys without a suffix default to "en".
func DistributionLanguage(section string) string {
	parts := strings.Split(section, "_")
	if len(parts) < 2 {
		return "en"
	}
	return parts[1]
}

// NormalizeCharstring lower-cases s and strips dashes, spaces and tabs.
func NormalizeCharstring(s string) string {
	return strings.ToLower(strings.NewReplacer("-", "", " ", "", "\t", "").Replace(s))
}

// EscapeJSONString escapes s for embedding between double quotes in a JSON
// document.
func EscapeJSONString(s string) string {
	return jsonEscaper.Replace(s)
}

var jsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
)

// CoerceJSONList turns a JSON array string, a comma separated string or a
// list into a list of trimmed strings ready to embed in a JSON string
// literal. Malformed JSON and plain strings are returned unchanged.
func CoerceJSONList(value any) any {
	items, ok := listItems(value)
	if !ok {
		return value
	}
	out := make([]any, 0, len(items))
	for _, el := range items {
		s, ok := el.(string)
		if !ok {
			out = append(out, el)
			continue
		}
		out = append(out, EscapeJSONString(cleanElement(s)))
	}
	return out
}

// JSONList is the unescaped form of CoerceJSONList: empty and non-string
// elements are dropped. Malformed JSON is kept as a single element.
func JSONList(value any) []string {
	items, ok := listItems(value)
	if !ok {
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) != "" {
			return []string{strings.TrimSpace(s)}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, el := range items {
		s, ok := el.(string)
		if !ok {
			continue
		}
		s = cleanElement(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func listItems(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return []any{}, true
		}
		if !strings.HasPrefix(trimmed, "[") {
			if !strings.Contains(trimmed, ",") {
				return nil, false
			}
			parts := strings.Split(trimmed, ",")
			out := make([]any, 0, len(parts))
			for _, p := range parts {
				out = append(out, p)
			}
			return out, true
		}
		var parsed []any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

func cleanElement(s string) string {
	if strings.Contains(s, "http") {
		s = strings.ReplaceAll(s, " ", "")
	}
	return strings.TrimSpace(s)
}

// PruneDistributionFormats collects the format* fields of each distribution
// entry and removes duplicates. Entries are visited in key order.
func PruneDistributionFormats(formats map[string]any) []map[string]any {
	var unique []map[string]any
	for _, key := range sortedKeys(formats) {
		entry, _ := formats[key].(map[string]any)
		row := make(map[string]any)
		for k, v := range entry {
			if strings.HasPrefix(k, "format") {
				row[k] = v
			}
		}
		if !containsRow(unique, row) {
			unique = append(unique, row)
		}
	}
	return unique
}

// PruneTransferOption keeps the options whose key contains the requested
// language, or every option when language is a nil reason.
func PruneTransferOption(options map[string]any, language string) []any {
	lang := strings.SplitN(language, ";", 2)[0]
	anyLang := isNilReason(language)

	var out []any
	for _, key := range sortedKeys(options) {
		if anyLang || strings.Contains(key, lang) {
			out = append(out, options[key])
		}
	}
	return out
}

func isNilReason(s string) bool {
	for _, r := range NilReasons {
		if s == r {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsRow(rows []map[string]any, row map[string]any) bool {
	for _, r := range rows {
		if len(r) != len(row) {
			continue
		}
		same := true
		for k, v := range row {
			if other, ok := r[k]; !ok || !equalScalar(other, v) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func equalScalar(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ab) == string(bb)
}

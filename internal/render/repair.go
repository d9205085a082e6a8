package render

import (
	"encoding/json"
	"strings"

	"github.com/catalogbridge/ckan2csw/internal/extract"
)

// repairRule rewrites a raw string field. ok is false when the rule does not
// apply and the next rule should be tried.
type repairRule struct {
	name  string
	apply func(s string) (any, bool)
}

// repairRules run in order; the first rule that applies wins. Strings no
// rule claims are escaped and then trimmed.
var repairRules = []repairRule{
	{name: "json-list", apply: repairJSONList},
	{name: "json-object", apply: repairJSONObject},
	{name: "empty-list", apply: repairEmptyList},
}

// repairJSONList parses a serialized JSON list of strings.
func repairJSONList(s string) (any, bool) {
	if s == "[]" || !(strings.HasPrefix(s, `["`) || strings.HasSuffix(s, `"]`)) {
		return nil, false
	}
	out := extract.CoerceJSONList(s)
	if _, isList := out.([]any); !isList {
		return nil, false
	}
	return out, true
}

// repairJSONObject parses a serialized JSON object.
func repairJSONObject(s string) (any, bool) {
	if !(strings.HasPrefix(s, `{"`) || strings.HasSuffix(s, `"}`)) {
		return nil, false
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, false
	}
	return out, true
}

// repairEmptyList turns the "[]" marker into an empty string.
func repairEmptyList(s string) (any, bool) {
	if s != "[]" {
		return nil, false
	}
	return "", true
}

// repairEscape escapes backslashes, line breaks and quotes.
func repairEscape(s string) string {
	return extract.EscapeJSONString(s)
}

func repairTrim(s string) string {
	return strings.TrimSpace(s)
}

// RepairString applies the repair rules to a single value.
func RepairString(s string) any {
	for _, r := range repairRules {
		if out, ok := r.apply(s); ok {
			return out
		}
	}
	return repairTrim(repairEscape(s))
}

// Repair returns a copy of record with every top-level string field and every
// string field of each resource repaired. record is not modified.
func Repair(record map[string]any) map[string]any {
	out := repairFields(record)
	resources, ok := record["resources"].([]any)
	if !ok {
		return out
	}
	fixed := make([]any, len(resources))
	for i, r := range resources {
		if res, ok := r.(map[string]any); ok {
			fixed[i] = repairFields(res)
		} else {
			fixed[i] = r
		}
	}
	out["resources"] = fixed
	return out
}

func repairFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok {
			out[k] = RepairString(s)
		} else {
			out[k] = v
		}
	}
	return out
}

package course

import (
	"encoding/json"
	"fmt"
)

// Normalize rewrites the MCQ payloads of a raw course document into the
// canonical questions[] shape. Three input shapes are accepted, checked in
// priority order per template:
//
//  1. canonical: data.questions[] — passed through unchanged, even when
//     legacy fields are also present (canonical data is never overwritten)
//  2. flat legacy: data.question + data.options[] — wrapped into a
//     single-element questions[]
//  3. JSON-stuffed: data.content holds a text-encoded shape-2 document —
//     decoded, then wrapped like shape 2
//
// A shape-3 payload that fails to decode is left exactly as found; the
// structural validator reports it, echoing the undecodable text.
//
// Normalize is a pure transform: it deep-copies doc and never mutates it.
func Normalize(doc map[string]any) map[string]any {
	out, _ := copyValue(doc).(map[string]any)
	if out == nil {
		return map[string]any{}
	}

	templates, ok := out["templates"].([]any)
	if !ok {
		return out
	}

	for _, raw := range templates {
		tpl, ok := raw.(map[string]any)
		if !ok || tpl["type"] != string(KindMCQ) {
			continue
		}
		data, ok := tpl["data"].(map[string]any)
		if !ok {
			continue
		}
		normalizeMCQData(tpl, data)
	}
	return out
}

func normalizeMCQData(tpl, data map[string]any) {
	// Shape 1: canonical questions[] already present.
	if qs, ok := data["questions"].([]any); ok && len(qs) > 0 {
		return
	}

	// Shape 2: flat legacy question/options pair.
	if question, options, ok := legacyPair(data); ok {
		content, _ := data["content"].(string)
		tpl["data"] = wrapLegacy(templateID(tpl), content, question, options)
		return
	}

	// Shape 3: shape-2 document stuffed into the content string.
	raw, ok := data["content"].(string)
	if !ok || raw == "" {
		return
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return // undecodable; surfaced by the structural stage
	}
	if question, options, ok := legacyPair(parsed); ok {
		tpl["data"] = wrapLegacy(templateID(tpl), "", question, options)
	}
}

// legacyPair extracts the flat legacy question/options fields if both are
// present and non-empty.
func legacyPair(data map[string]any) (string, []any, bool) {
	question, _ := data["question"].(string)
	options, _ := data["options"].([]any)
	if question == "" || len(options) == 0 {
		return "", nil, false
	}
	return question, options, true
}

// wrapLegacy builds a canonical data payload around a single legacy
// question. The generated question id is derived from the template id so
// repeated normalization stays stable.
func wrapLegacy(tplID, content, question string, options []any) map[string]any {
	return map[string]any{
		"content": content,
		"questions": []any{
			map[string]any{
				"id":       fmt.Sprintf("%s_q1", tplID),
				"question": question,
				"options":  options,
			},
		},
	}
}

func templateID(tpl map[string]any) string {
	if id, ok := tpl["id"].(string); ok && id != "" {
		return id
	}
	return "mcq"
}

// copyValue deep-copies the JSON-shaped value v (maps, slices, scalars).
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = copyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}

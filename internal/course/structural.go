package course

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed course_schema.json
var courseSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func courseSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(courseSchemaJSON))
	})
	return schema, schemaErr
}

// Parse type-checks a normalized document against the canonical model and
// decodes it into a Course. Every shape defect found anywhere in the
// document becomes one structural ValidationIssue; the function never stops
// at the first error. A non-nil Course is returned only when the issue list
// is empty.
func Parse(doc map[string]any) (*Course, []ValidationIssue) {
	s, err := courseSchema()
	if err != nil {
		// Broken embedded schema is a programming fault, not user input.
		panic(fmt.Sprintf("course: invalid embedded schema: %v", err))
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, []ValidationIssue{structural("course", fmt.Sprintf("document is not a valid JSON object: %v", err), nil)}
	}

	var issues []ValidationIssue
	for _, e := range result.Errors() {
		loc := e.Field()
		if loc == "(root)" {
			loc = "course"
		}
		issues = append(issues, structural(loc, e.Description(), e.Value()))
	}

	issues = append(issues, checkMCQShape(doc)...)
	if len(issues) > 0 {
		return nil, issues
	}

	c, err := decodeCourse(doc)
	if err != nil {
		return nil, []ValidationIssue{structural("course", fmt.Sprintf("decoding canonical model: %v", err), nil)}
	}
	return c, nil
}

// checkMCQShape verifies that every mcq template carries the canonical
// questions[] payload. The normalizer converts the accepted legacy shapes
// before this point, so anything still missing questions here is either a
// JSON-stuffed payload that failed to decode or a genuinely incomplete
// template. The raw content text is echoed so the caller can see what was
// left undecoded.
func checkMCQShape(doc map[string]any) []ValidationIssue {
	templates, _ := doc["templates"].([]any)

	var issues []ValidationIssue
	for i, raw := range templates {
		tpl, ok := raw.(map[string]any)
		if !ok || tpl["type"] != string(KindMCQ) {
			continue
		}
		loc := fmt.Sprintf("templates.%d.data.questions", i)

		data, ok := tpl["data"].(map[string]any)
		if !ok {
			issues = append(issues, structural(loc, "mcq template data must be an object", tpl["data"]))
			continue
		}
		if qs, ok := data["questions"].([]any); ok && len(qs) > 0 {
			continue
		}

		var offending any
		if content, ok := data["content"].(string); ok && content != "" {
			offending = content
		}
		issues = append(issues, structural(loc, "mcq template has no questions; legacy payload could not be recovered", offending))
	}
	return issues
}

func decodeCourse(doc map[string]any) (*Course, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var c Course
	if err := json.Unmarshal(buf, &c); err != nil {
		return nil, err
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	return &c, nil
}

package scorm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/courseforge/courseforge/internal/course"
)

func validDoc() map[string]any {
	return map[string]any{
		"courseId": "math101",
		"title":    "Arithmetic",
		"author":   "Ada",
		"templates": []any{
			map[string]any{
				"id":    "t1",
				"type":  "welcome",
				"order": 0,
				"title": "Welcome",
				"data":  map[string]any{"content": "Hello"},
			},
			map[string]any{
				"id":    "t2",
				"type":  "mcq",
				"order": 1,
				"title": "Quiz",
				"data": map[string]any{
					"content": "",
					"questions": []any{
						map[string]any{
							"id":       "q1",
							"question": "2+2?",
							"options": []any{
								map[string]any{"id": "a", "text": "4", "isCorrect": true},
								map[string]any{"id": "b", "text": "5", "isCorrect": false},
							},
						},
					},
				},
			},
		},
	}
}

func validCourse() *course.Course {
	return &course.Course{
		CourseID: "math101",
		Title:    "Arithmetic",
		Author:   "Ada",
		Language: "en",
		Version:  "1.0.0",
		Templates: []course.Template{
			{ID: "t1", Kind: course.KindWelcome, Order: 0, Title: "Welcome",
				Data: course.TemplateData{Content: "Hello"}},
			{ID: "t2", Kind: course.KindMCQ, Order: 1, Title: "Quiz",
				Data: course.TemplateData{Questions: []course.Question{
					{ID: "q1", Question: "2+2?", Options: []course.Option{
						{ID: "a", Text: "4", IsCorrect: true},
						{ID: "b", Text: "5", IsCorrect: false},
					}},
				}}},
		},
	}
}

func exportError(t *testing.T, err error) *ExportError {
	t.Helper()
	var ee *ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v (%T), want *ExportError", err, err)
	}
	return ee
}

func TestBuild_HappyPath(t *testing.T) {
	b := NewBuilder(course.DefaultLimits())

	pkg, err := b.Build(validDoc())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.HasPrefix(pkg.Identifier, "course_math101_") {
		t.Errorf("Identifier = %q, want course_math101_ prefix", pkg.Identifier)
	}
	if len(pkg.DataBlob) == 0 {
		t.Error("DataBlob is empty")
	}
	if pkg.ManifestXML == "" {
		t.Error("ManifestXML is empty")
	}
	if pkg.EstimatedSizeBytes <= baseStructureBytes {
		t.Errorf("EstimatedSizeBytes = %d, want more than the base overhead", pkg.EstimatedSizeBytes)
	}
	if len(pkg.Contract.Objectives) != 2 {
		t.Errorf("Objectives = %d, want 2", len(pkg.Contract.Objectives))
	}
	if len(pkg.Contract.Interactions) != 1 {
		t.Errorf("Interactions = %d, want 1", len(pkg.Contract.Interactions))
	}
}

func TestBuild_LegacyMCQShape(t *testing.T) {
	doc := validDoc()
	tpl := doc["templates"].([]any)[1].(map[string]any)
	tpl["data"] = map[string]any{
		"question": "2+2?",
		"options": []any{
			map[string]any{"id": "a", "text": "4", "isCorrect": true},
			map[string]any{"id": "b", "text": "5", "isCorrect": false},
		},
	}

	pkg, err := NewBuilder(course.DefaultLimits()).Build(doc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := pkg.Contract.Interactions[0].QuestionID; got != "t2_q1" {
		t.Errorf("recovered question id = %q, want t2_q1", got)
	}
}

func TestBuild_ValidationFailureCarriesIssues(t *testing.T) {
	doc := validDoc()
	delete(doc, "title")
	doc["templates"].([]any)[0].(map[string]any)["order"] = "first"

	pkg, err := NewBuilder(course.DefaultLimits()).Build(doc)
	if pkg != nil {
		t.Fatal("Build() returned a package despite validation failure")
	}

	ee := exportError(t, err)
	if ee.Reason != FailValidation {
		t.Fatalf("Reason = %q, want validation", ee.Reason)
	}
	if len(ee.Issues) < 2 {
		t.Errorf("Issues = %v, want the full collection", ee.Issues)
	}
}

func TestBuild_BusinessRuleFailure(t *testing.T) {
	doc := validDoc()
	// Break ordering contiguity; structure is still fine.
	doc["templates"].([]any)[1].(map[string]any)["order"] = 5

	_, err := NewBuilder(course.DefaultLimits()).Build(doc)
	ee := exportError(t, err)
	if ee.Reason != FailValidation {
		t.Fatalf("Reason = %q, want validation", ee.Reason)
	}
	if len(ee.Issues) != 1 || ee.Issues[0].Kind != course.IssueBusinessRule {
		t.Errorf("Issues = %v, want one business-rule issue", ee.Issues)
	}
}

func TestBuildCourse_SizeExceeded(t *testing.T) {
	lim := course.DefaultLimits()
	c := validCourse()
	c.Assets = []course.Asset{
		{ID: "a1", Path: "video/big.mp4", Type: "video", Name: "big", Size: lim.MaxPackageBytes + 1},
	}

	pkg, err := NewBuilder(lim).BuildCourse(c)
	if pkg != nil {
		t.Fatal("BuildCourse() returned a package despite size breach")
	}

	ee := exportError(t, err)
	if ee.Reason != FailSizeExceeded {
		t.Fatalf("Reason = %q, want size-exceeded", ee.Reason)
	}
	if ee.Measured <= ee.Limit {
		t.Errorf("Measured = %d, Limit = %d, want measured over limit", ee.Measured, ee.Limit)
	}
	if ee.Limit != lim.MaxPackageBytes {
		t.Errorf("Limit = %d, want %d", ee.Limit, lim.MaxPackageBytes)
	}
}

func TestBuildCourse_UnsupportedTemplate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*course.Course)
		wantID string
	}{
		{"unknown kind", func(c *course.Course) {
			c.Templates[0].Kind = "hologram"
		}, "t1"},
		{"welcome without content", func(c *course.Course) {
			c.Templates[0].Data.Content = ""
		}, "t1"},
		{"video without source", func(c *course.Course) {
			c.Templates[0] = course.Template{
				ID: "t1", Kind: course.KindContentVideo, Order: 0, Title: "Video",
			}
		}, "t1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCourse()
			tt.mutate(c)

			pkg, err := NewBuilder(course.DefaultLimits()).BuildCourse(c)
			if pkg != nil {
				t.Fatal("BuildCourse() returned a package for an unrenderable template")
			}
			ee := exportError(t, err)
			if ee.Reason != FailUnsupportedTemplate {
				t.Fatalf("Reason = %q, want unsupported-template", ee.Reason)
			}
			if ee.TemplateID != tt.wantID {
				t.Errorf("TemplateID = %q, want %q", ee.TemplateID, tt.wantID)
			}
		})
	}
}

func TestBuildCourse_StepBudgetExhausted(t *testing.T) {
	lim := course.DefaultLimits()
	lim.StepBudget = 1

	pkg, err := NewBuilder(lim).BuildCourse(validCourse())
	if pkg != nil {
		t.Fatal("BuildCourse() returned a package despite exhausted budget")
	}
	if ee := exportError(t, err); ee.Reason != FailResourceExhausted {
		t.Errorf("Reason = %q, want resource-exhausted", ee.Reason)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder(course.DefaultLimits())

	first, err := b.Build(validDoc())
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(validDoc())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first.DataBlob, second.DataBlob) {
		t.Error("DataBlob differs between identical builds")
	}
	if first.Identifier != second.Identifier {
		t.Errorf("Identifier differs: %q vs %q", first.Identifier, second.Identifier)
	}
	if first.ManifestXML != second.ManifestXML {
		t.Error("ManifestXML differs between identical builds")
	}
}

func TestBuild_SanitizesRenderedContent(t *testing.T) {
	doc := validDoc()
	tpl := doc["templates"].([]any)[0].(map[string]any)
	tpl["data"] = map[string]any{"content": `<p>Hi<script>alert(1)</script></p>`}

	pkg, err := NewBuilder(course.DefaultLimits()).Build(doc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if bytes.Contains(pkg.DataBlob, []byte("<script>")) {
		t.Error("DataBlob still carries a script tag")
	}
}

func TestExportError_Messages(t *testing.T) {
	tests := []struct {
		err  *ExportError
		want string
	}{
		{&ExportError{Reason: FailValidation, Issues: make([]course.ValidationIssue, 3)}, "3 issue(s)"},
		{&ExportError{Reason: FailSizeExceeded, Measured: 10, Limit: 5}, "10 bytes"},
		{&ExportError{Reason: FailUnsupportedTemplate, TemplateID: "t9", Kind: "hologram"}, `"t9"`},
		{&ExportError{Reason: FailResourceExhausted}, "step budget"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); !strings.Contains(got, tt.want) {
			t.Errorf("Error() = %q, want it to contain %q", got, tt.want)
		}
	}
}

package course_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/courseforge/courseforge/internal/course"
)

func twoOptions() []course.Option {
	return []course.Option{
		{ID: "a", Text: "4", IsCorrect: true},
		{ID: "b", Text: "5", IsCorrect: false},
	}
}

func validCourse() *course.Course {
	return &course.Course{
		CourseID: "math101",
		Title:    "Arithmetic",
		Author:   "Ada",
		Language: "en",
		Templates: []course.Template{
			{ID: "t1", Kind: course.KindWelcome, Order: 0, Title: "Welcome",
				Data: course.TemplateData{Content: "Hello"}},
			{ID: "t2", Kind: course.KindMCQ, Order: 1, Title: "Quiz",
				Data: course.TemplateData{Questions: []course.Question{
					{ID: "q1", Question: "2+2?", Options: twoOptions()},
				}}},
			{ID: "t3", Kind: course.KindSummary, Order: 2, Title: "Recap",
				Data: course.TemplateData{Content: "Bye"}},
		},
	}
}

func businessIssues(t *testing.T, issues []course.ValidationIssue) []course.ValidationIssue {
	t.Helper()
	for _, issue := range issues {
		if issue.Kind != course.IssueBusinessRule {
			t.Errorf("issue %v has kind %q, want business-rule", issue, issue.Kind)
		}
	}
	return issues
}

func TestValidateRules_ValidCourse(t *testing.T) {
	issues := course.ValidateRules(validCourse(), course.DefaultLimits())
	if len(issues) != 0 {
		t.Errorf("ValidateRules() = %v, want no issues", issues)
	}
}

func TestValidateRules_GappyOrderingSingleIssue(t *testing.T) {
	c := validCourse()
	c.Templates[1].Order = 2 // duplicate of t3; sequence is now 0,2,2

	issues := businessIssues(t, course.ValidateRules(c, course.DefaultLimits()))
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want exactly one ordering issue", issues)
	}
	if !strings.Contains(issues[0].Location, ".order") {
		t.Errorf("issue location = %q, want an order location", issues[0].Location)
	}
}

func TestValidateRules_TemplateCeiling(t *testing.T) {
	c := validCourse()
	c.Templates = nil
	for i := 0; i < 150; i++ {
		c.Templates = append(c.Templates, course.Template{
			ID:    fmt.Sprintf("t%d", i),
			Kind:  course.KindContentText,
			Order: i,
			Title: "Slide",
			Data:  course.TemplateData{Content: "x"},
		})
	}

	issues := businessIssues(t, course.ValidateRules(c, course.DefaultLimits()))
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one ceiling issue", issues)
	}
	if !strings.Contains(issues[0].Message, "150 templates") {
		t.Errorf("issue message = %q, want the measured count", issues[0].Message)
	}
}

func TestValidateRules_AssetCeiling(t *testing.T) {
	c := validCourse()
	for i := 0; i < 201; i++ {
		c.Assets = append(c.Assets, course.Asset{
			ID: fmt.Sprintf("a%d", i), Path: fmt.Sprintf("img/%d.png", i), Type: "image", Name: "img",
		})
	}

	issues := course.ValidateRules(c, course.DefaultLimits())
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one asset ceiling issue", issues)
	}
}

func TestValidateRules_TitleBounds(t *testing.T) {
	lim := course.DefaultLimits()

	tests := []struct {
		name   string
		mutate func(*course.Course)
		loc    string
	}{
		{"empty course title", func(c *course.Course) { c.Title = "  " }, "title"},
		{"overlong course title", func(c *course.Course) {
			c.Title = strings.Repeat("a", lim.MaxCourseTitleLen+1)
		}, "title"},
		{"empty template title", func(c *course.Course) { c.Templates[0].Title = "" }, "templates.0.title"},
		{"overlong template title", func(c *course.Course) {
			c.Templates[0].Title = strings.Repeat("a", lim.MaxTemplateTitleLen+1)
		}, "templates.0.title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCourse()
			tt.mutate(c)

			issues := course.ValidateRules(c, lim)
			if len(issues) != 1 {
				t.Fatalf("ValidateRules() = %v, want one issue", issues)
			}
			if issues[0].Location != tt.loc {
				t.Errorf("issue location = %q, want %q", issues[0].Location, tt.loc)
			}
		})
	}
}

func TestValidateRules_MCQCorrectness(t *testing.T) {
	tests := []struct {
		name    string
		options []course.Option
		found   int
	}{
		{"no correct option", []course.Option{
			{ID: "a", Text: "4", IsCorrect: false},
			{ID: "b", Text: "5", IsCorrect: false},
		}, 0},
		{"two correct options", []course.Option{
			{ID: "a", Text: "4", IsCorrect: true},
			{ID: "b", Text: "5", IsCorrect: true},
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCourse()
			c.Templates[1].Data.Questions[0].Options = tt.options

			issues := course.ValidateRules(c, course.DefaultLimits())
			if len(issues) != 1 {
				t.Fatalf("ValidateRules() = %v, want one issue", issues)
			}
			want := fmt.Sprintf("exactly one correct option, found %d", tt.found)
			if !strings.Contains(issues[0].Message, want) {
				t.Errorf("issue message = %q, want it to contain %q", issues[0].Message, want)
			}
		})
	}
}

func TestValidateRules_TooManyOptions(t *testing.T) {
	lim := course.DefaultLimits()
	c := validCourse()

	opts := []course.Option{{ID: "a", Text: "yes", IsCorrect: true}}
	for i := 1; i <= lim.MaxOptionsPerQuestion; i++ {
		opts = append(opts, course.Option{ID: fmt.Sprintf("o%d", i), Text: "no"})
	}
	c.Templates[1].Data.Questions[0].Options = opts

	issues := course.ValidateRules(c, lim)
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one options ceiling issue", issues)
	}
}

func TestValidateRules_EmptyQuestionAndOptionText(t *testing.T) {
	c := validCourse()
	q := &c.Templates[1].Data.Questions[0]
	q.Question = " "
	q.Options[0].Text = ""
	q.Options[1].ID = ""

	issues := course.ValidateRules(c, course.DefaultLimits())
	if len(issues) != 3 {
		t.Fatalf("ValidateRules() = %v, want three issues", issues)
	}
}

func TestValidateRules_NoTemplates(t *testing.T) {
	c := validCourse()
	c.Templates = nil

	issues := course.ValidateRules(c, course.DefaultLimits())
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one issue", issues)
	}
	if issues[0].Location != "templates" {
		t.Errorf("issue location = %q, want templates", issues[0].Location)
	}
}

func TestValidateRules_BadLanguageTag(t *testing.T) {
	c := validCourse()
	c.Language = "not a tag!"

	issues := course.ValidateRules(c, course.DefaultLimits())
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one issue", issues)
	}
	if issues[0].Location != "language" {
		t.Errorf("issue location = %q, want language", issues[0].Location)
	}
}

func TestValidateRules_BadVideoURL(t *testing.T) {
	c := validCourse()
	c.Templates[0] = course.Template{
		ID: "t1", Kind: course.KindContentVideo, Order: 0, Title: "Video",
		Data: course.TemplateData{VideoURL: "ftp://host/movie.mp4"},
	}

	issues := course.ValidateRules(c, course.DefaultLimits())
	if len(issues) != 1 {
		t.Fatalf("ValidateRules() = %v, want one issue", issues)
	}
	if !strings.Contains(issues[0].Location, "videoUrl") {
		t.Errorf("issue location = %q, want a videoUrl location", issues[0].Location)
	}
}

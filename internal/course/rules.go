package course

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ValidateRules evaluates the cross-cutting business invariants on a
// structurally valid course: ordering contiguity, count ceilings, title
// bounds and MCQ completeness. Every rule is evaluated independently and
// every violation instance yields its own issue, so the caller receives the
// complete defect list in one pass. An empty result means the course passed.
func ValidateRules(c *Course, lim Limits) []ValidationIssue {
	var issues []ValidationIssue

	issues = append(issues, checkMetadata(c, lim)...)
	issues = append(issues, checkOrdering(c)...)
	issues = append(issues, checkCeilings(c, lim)...)

	for i := range c.Templates {
		issues = append(issues, checkTemplate(&c.Templates[i], i, lim)...)
	}
	return issues
}

func checkMetadata(c *Course, lim Limits) []ValidationIssue {
	var issues []ValidationIssue

	if strings.TrimSpace(c.Title) == "" {
		issues = append(issues, businessRule("title", "course title is required", c.Title))
	} else if len(c.Title) > lim.MaxCourseTitleLen {
		issues = append(issues, businessRule("title",
			fmt.Sprintf("course title exceeds %d characters (got %d)", lim.MaxCourseTitleLen, len(c.Title)), c.Title))
	}

	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			issues = append(issues, businessRule("language",
				fmt.Sprintf("unrecognized language tag %q", c.Language), c.Language))
		}
	}

	if len(c.Templates) == 0 {
		issues = append(issues, businessRule("templates", "course must have at least one template", nil))
	}
	return issues
}

// checkOrdering verifies that the order indices form the contiguous
// sequence 0..n-1. Templates are compared in sorted order so a single
// misplaced index produces exactly one issue naming the offending template.
func checkOrdering(c *Course) []ValidationIssue {
	var issues []ValidationIssue
	for i, tpl := range c.SortedTemplates() {
		if tpl.Order != i {
			issues = append(issues, businessRule(
				fmt.Sprintf("templates.%s.order", tpl.ID),
				fmt.Sprintf("template %q has order %d, expected %d; orders must be the contiguous sequence 0..%d",
					tpl.ID, tpl.Order, i, len(c.Templates)-1),
				tpl.Order))
		}
	}
	return issues
}

func checkCeilings(c *Course, lim Limits) []ValidationIssue {
	var issues []ValidationIssue
	if n := len(c.Templates); n > lim.MaxTemplates {
		issues = append(issues, businessRule("templates",
			fmt.Sprintf("course has %d templates, exceeding the ceiling of %d", n, lim.MaxTemplates), n))
	}
	if n := len(c.Assets); n > lim.MaxAssets {
		issues = append(issues, businessRule("assets",
			fmt.Sprintf("course has %d assets, exceeding the ceiling of %d", n, lim.MaxAssets), n))
	}
	return issues
}

func checkTemplate(tpl *Template, idx int, lim Limits) []ValidationIssue {
	loc := fmt.Sprintf("templates.%d", idx)

	var issues []ValidationIssue
	if strings.TrimSpace(tpl.Title) == "" {
		issues = append(issues, businessRule(loc+".title", "template title is required", tpl.Title))
	} else if len(tpl.Title) > lim.MaxTemplateTitleLen {
		issues = append(issues, businessRule(loc+".title",
			fmt.Sprintf("template title exceeds %d characters (got %d)", lim.MaxTemplateTitleLen, len(tpl.Title)), tpl.Title))
	}

	switch tpl.Kind {
	case KindMCQ:
		issues = append(issues, checkMCQ(tpl, loc, lim)...)
	case KindContentVideo:
		if tpl.Data.VideoURL != "" &&
			!strings.HasPrefix(tpl.Data.VideoURL, "http://") &&
			!strings.HasPrefix(tpl.Data.VideoURL, "https://") {
			issues = append(issues, businessRule(loc+".data.videoUrl",
				"video URL must be an http or https URL", tpl.Data.VideoURL))
		}
	}
	return issues
}

// checkMCQ re-verifies MCQ completeness on the typed model. The normalizer
// and structural stage already converted legacy shapes, but the rule is
// enforced here again so a caller bypassing those stages cannot slip an
// incomplete quiz through.
func checkMCQ(tpl *Template, loc string, lim Limits) []ValidationIssue {
	var issues []ValidationIssue
	if len(tpl.Data.Questions) == 0 {
		issues = append(issues, businessRule(loc+".data.questions",
			"mcq template must have at least one question", nil))
		return issues
	}

	for qi, q := range tpl.Data.Questions {
		qloc := fmt.Sprintf("%s.data.questions.%d", loc, qi)

		if strings.TrimSpace(q.Question) == "" {
			issues = append(issues, businessRule(qloc+".question", "question text is required", q.Question))
		}
		if len(q.Options) == 0 {
			issues = append(issues, businessRule(qloc+".options", "question must have at least one option", nil))
			continue
		}
		if len(q.Options) > lim.MaxOptionsPerQuestion {
			issues = append(issues, businessRule(qloc+".options",
				fmt.Sprintf("question has %d options, exceeding the ceiling of %d", len(q.Options), lim.MaxOptionsPerQuestion),
				len(q.Options)))
		}

		correct := 0
		for oi, opt := range q.Options {
			oloc := fmt.Sprintf("%s.options.%d", qloc, oi)
			if strings.TrimSpace(opt.Text) == "" {
				issues = append(issues, businessRule(oloc+".text", "option text is required", opt.Text))
			}
			if opt.ID == "" {
				issues = append(issues, businessRule(oloc+".id", "option id is required", nil))
			}
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			issues = append(issues, businessRule(qloc+".options",
				fmt.Sprintf("question must have exactly one correct option, found %d", correct), correct))
		}
	}
	return issues
}

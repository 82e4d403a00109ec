package course

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy = bluemonday.UGCPolicy()

	scriptTagPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)

	// Cheap markup sniff mirroring the authoring front end: content with
	// these openings is treated as rich text and kept as sanitized HTML
	// instead of being escaped flat.
	htmlIndicators = []string{
		"<p>", "<br", "<div", "<span", "<strong", "<em",
		"<h1", "<h2", "<h3", "<ul", "<ol", "<li",
	}
)

// Sanitize returns a copy of the course with every free-text leaf
// neutralized against markup and script injection. The transform dispatches
// per field: only string-typed content fields are touched, so booleans
// (isCorrect), identifiers and order indices pass through bit-identical.
// The input course is never mutated; callers may keep the unsanitized value
// for audit or display.
func Sanitize(c Course) Course {
	out := c
	out.Title = cleanText(c.Title)
	out.Author = cleanText(c.Author)
	out.Description = cleanText(c.Description)

	out.Templates = make([]Template, len(c.Templates))
	for i, tpl := range c.Templates {
		out.Templates[i] = sanitizeTemplate(tpl)
	}
	out.Assets = make([]Asset, len(c.Assets))
	copy(out.Assets, c.Assets)
	return out
}

func sanitizeTemplate(tpl Template) Template {
	out := tpl
	out.Title = cleanText(tpl.Title)
	out.Data.Content = cleanText(tpl.Data.Content)
	out.Data.Subtitle = cleanText(tpl.Data.Subtitle)
	// VideoURL is a media reference, not free text; the business rules
	// restrict it to http(s).

	out.Data.Questions = make([]Question, len(tpl.Data.Questions))
	for i, q := range tpl.Data.Questions {
		sq := q
		sq.Question = cleanText(q.Question)
		sq.Options = make([]Option, len(q.Options))
		for j, opt := range q.Options {
			sq.Options[j] = Option{
				ID:        opt.ID,
				Text:      cleanText(opt.Text),
				IsCorrect: opt.IsCorrect,
			}
		}
		out.Data.Questions[i] = sq
	}
	return out
}

// cleanText neutralizes one free-text value. HTML-looking content goes
// through the structural sanitizer, which keeps safe formatting tags;
// everything else is stripped of script constructs and escaped flat.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	if looksLikeHTML(s) {
		return htmlPolicy.Sanitize(s)
	}
	return escapePlain(s)
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, indicator := range htmlIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func escapePlain(s string) string {
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	return html.EscapeString(s)
}

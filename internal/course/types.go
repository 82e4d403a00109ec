// Package course defines the canonical course model and the
// normalization/validation/sanitization pipeline that turns loosely-shaped
// authoring documents into validated, export-ready courses.
package course

import "time"

// TemplateKind identifies the slide type of a template. The set is closed:
// the structural validator rejects anything else.
type TemplateKind string

const (
	KindWelcome      TemplateKind = "welcome"
	KindContentVideo TemplateKind = "content-video"
	KindContentText  TemplateKind = "content-text"
	KindMCQ          TemplateKind = "mcq"
	KindSummary      TemplateKind = "summary"
)

// Kinds lists every valid template kind in a stable order.
func Kinds() []TemplateKind {
	return []TemplateKind{KindWelcome, KindContentVideo, KindContentText, KindMCQ, KindSummary}
}

// Valid reports whether k is a member of the closed kind set.
func (k TemplateKind) Valid() bool {
	switch k {
	case KindWelcome, KindContentVideo, KindContentText, KindMCQ, KindSummary:
		return true
	}
	return false
}

// Option is a single MCQ answer option.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is an MCQ question with its ordered options. Exactly one option
// must be marked correct.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// TemplateData carries the kind-specific payload of a template. Which fields
// are meaningful depends on Template.Kind: Content for text-bearing kinds,
// VideoURL for content-video, Questions for mcq.
type TemplateData struct {
	Content   string     `json:"content"`
	Subtitle  string     `json:"subtitle,omitempty"`
	VideoURL  string     `json:"videoUrl,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

// Template is a single slide of a course. Order values across a course must
// form the contiguous sequence 0..n-1.
type Template struct {
	ID    string       `json:"id"`
	Kind  TemplateKind `json:"type"`
	Order int          `json:"order"`
	Title string       `json:"title"`
	Data  TemplateData `json:"data"`
}

// Asset is a media file referenced by the course.
type Asset struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// Navigation holds player navigation settings.
type Navigation struct {
	AllowSkip         bool `json:"allowSkip"`
	ShowProgress      bool `json:"showProgress"`
	LinearProgression bool `json:"linearProgression"`
}

// Settings holds course-wide presentation settings.
type Settings struct {
	Theme    string `json:"theme,omitempty"`
	Autoplay bool   `json:"autoplay"`
	Duration int    `json:"duration,omitempty"`
}

// Course is the canonical in-memory course model. The pipeline only ever
// operates on a snapshot of it and never writes back to storage.
type Course struct {
	CourseID    string     `json:"courseId"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Language    string     `json:"language,omitempty"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
	Templates   []Template `json:"templates"`
	Assets      []Asset    `json:"assets,omitempty"`
	Navigation  Navigation `json:"navigation"`
	Settings    Settings   `json:"settings"`
}

// SortedTemplates returns the templates ordered by their Order field without
// mutating the course.
func (c *Course) SortedTemplates() []Template {
	out := make([]Template, len(c.Templates))
	copy(out, c.Templates)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Order > out[j].Order; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

package scorm

import (
	"encoding/json"
	"fmt"

	"github.com/courseforge/courseforge/internal/course"
)

// DataBlob is the course object consumed by the runtime player. It is
// always a single object keyed by courseId/title/templates, never a bare
// template array: the player waits for this exact shape before rendering.
type DataBlob struct {
	CourseID  string            `json:"courseId"`
	Title     string            `json:"title"`
	Author    string            `json:"author,omitempty"`
	Version   string            `json:"version,omitempty"`
	Language  string            `json:"language,omitempty"`
	Templates []course.Template `json:"templates"`
}

// encodeBlob serializes the sanitized course into the player data blob.
// Struct field order is fixed, so the same course always yields the same
// bytes.
func encodeBlob(c *course.Course) ([]byte, error) {
	blob := DataBlob{
		CourseID:  c.CourseID,
		Title:     c.Title,
		Author:    c.Author,
		Version:   c.Version,
		Language:  c.Language,
		Templates: c.SortedTemplates(),
	}
	if blob.Templates == nil {
		blob.Templates = []course.Template{}
	}

	buf, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding data blob: %w", err)
	}
	return buf, nil
}

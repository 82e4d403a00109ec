// Package questionbank imports MCQ questions from spreadsheet question
// banks so authors can bulk-load quizzes instead of typing them slide by
// slide.
package questionbank

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/courseforge/courseforge/internal/course"
)

// maxOptionColumns caps how many option columns a row may carry (A..F).
const maxOptionColumns = 6

// ParseWorkbook reads an xlsx question bank from r. Expected layout, one
// question per row on the first sheet, header row skipped:
//
//	column 0:      question prompt
//	columns 1..6:  option texts (empty cells end the option list)
//	last non-empty column after options: the correct option letter (A-F)
//
// Question and option ids are derived from row/column position, so
// re-importing the same workbook yields identical ids.
func ParseWorkbook(r io.Reader) ([]course.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no question rows")
	}

	var questions []course.Question
	for i, row := range rows[1:] {
		q, err := parseRow(row, i+1)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if q == nil {
			continue // blank row
		}
		questions = append(questions, *q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("workbook has no question rows")
	}
	return questions, nil
}

func parseRow(row []string, num int) (*course.Question, error) {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return nil, nil
	}
	prompt := strings.TrimSpace(row[0])

	var texts []string
	for col := 1; col <= maxOptionColumns && col < len(row); col++ {
		text := strings.TrimSpace(row[col])
		if text == "" {
			break
		}
		texts = append(texts, text)
	}
	if len(texts) < 2 {
		return nil, fmt.Errorf("question needs at least 2 options, found %d", len(texts))
	}

	correctCol := 1 + len(texts)
	if correctCol >= len(row) || strings.TrimSpace(row[correctCol]) == "" {
		return nil, fmt.Errorf("missing correct option letter")
	}
	letter := strings.ToUpper(strings.TrimSpace(row[correctCol]))
	correct := int(letter[0] - 'A')
	if len(letter) != 1 || correct < 0 || correct >= len(texts) {
		return nil, fmt.Errorf("correct option %q does not match any option", letter)
	}

	q := &course.Question{
		ID:       fmt.Sprintf("q%d", num),
		Question: prompt,
	}
	for i, text := range texts {
		q.Options = append(q.Options, course.Option{
			ID:        fmt.Sprintf("q%d_%c", num, 'a'+i),
			Text:      text,
			IsCorrect: i == correct,
		})
	}
	return q, nil
}

// MCQTemplate wraps imported questions into a canonical mcq template ready
// to append to a course.
func MCQTemplate(id, title string, order int, questions []course.Question) course.Template {
	return course.Template{
		ID:    id,
		Kind:  course.KindMCQ,
		Order: order,
		Title: title,
		Data: course.TemplateData{
			Questions: questions,
		},
	}
}

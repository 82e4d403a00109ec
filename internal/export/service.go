package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge/internal/course"
	"github.com/courseforge/courseforge/internal/platform/cache"
	"github.com/courseforge/courseforge/internal/scorm"
)

// Result is the outcome of one export attempt. Exactly one of Package,
// Issues or Err is meaningful: Issues for validation failures (the caller
// gets the complete defect list), Err for export-time failures (ceiling
// breach or internal fault), Package for success.
type Result struct {
	JobID   string
	Package *scorm.Package
	Issues  []course.ValidationIssue
	Err     error
}

// Failed reports whether the export produced no package.
func (r *Result) Failed() bool {
	return r.Package == nil
}

// Service runs exports against stored courses. It holds no per-request
// state; concurrent exports need no coordination.
type Service struct {
	store   course.Store
	builder *scorm.Builder
	limits  course.Limits
	cache   *cache.Cache
	events  EventLogger
}

// NewService creates an export service. cache may be nil (metadata of
// recent exports is then not recorded); events may be nil.
func NewService(store course.Store, lim course.Limits, c *cache.Cache, events EventLogger) *Service {
	if events == nil {
		events = NopEventLogger{}
	}
	return &Service{
		store:   store,
		builder: scorm.NewBuilder(lim),
		limits:  lim,
		cache:   c,
		events:  events,
	}
}

// ValidateDocument runs normalization, structural validation and business
// rules on a raw document and returns every issue found. Structural issues
// gate the business stage: a document is only rule-checked once its shape
// is sound.
func (s *Service) ValidateDocument(doc map[string]any) []course.ValidationIssue {
	normalized := course.Normalize(doc)
	c, issues := course.Parse(normalized)
	if len(issues) > 0 {
		return issues
	}
	return course.ValidateRules(c, s.limits)
}

// ExportCourse fetches the stored document for courseID and exports it.
func (s *Service) ExportCourse(ctx context.Context, courseID string) *Result {
	jobID := uuid.NewString()

	stored, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		s.emit(jobID, courseID, "failed", err.Error())
		return &Result{JobID: jobID, Err: fmt.Errorf("fetching course: %w", err)}
	}
	return s.exportDocument(ctx, jobID, courseID, stored.Document)
}

// ExportDocument exports a raw document directly, without touching storage.
func (s *Service) ExportDocument(ctx context.Context, courseID string, doc map[string]any) *Result {
	return s.exportDocument(ctx, uuid.NewString(), courseID, doc)
}

func (s *Service) exportDocument(ctx context.Context, jobID, courseID string, doc map[string]any) *Result {
	s.emit(jobID, courseID, "started", "")

	pkg, err := s.builder.Build(doc)
	if err != nil {
		var exportErr *scorm.ExportError
		if errors.As(err, &exportErr) && exportErr.Reason == scorm.FailValidation {
			s.emit(jobID, courseID, "failed", fmt.Sprintf("validation: %d issue(s)", len(exportErr.Issues)))
			return &Result{JobID: jobID, Issues: exportErr.Issues}
		}
		s.emit(jobID, courseID, "failed", err.Error())
		return &Result{JobID: jobID, Err: err}
	}

	s.recordExport(ctx, courseID, pkg)
	s.emit(jobID, courseID, "completed", pkg.Identifier)

	slog.Info("course exported",
		"job_id", jobID,
		"course_id", courseID,
		"identifier", pkg.Identifier,
		"estimated_bytes", pkg.EstimatedSizeBytes,
	)
	return &Result{JobID: jobID, Package: pkg}
}

// recordExport keeps the latest export metadata per course in the cache so
// the authoring UI can show "last exported" without hitting storage.
func (s *Service) recordExport(ctx context.Context, courseID string, pkg *scorm.Package) {
	if s.cache == nil {
		return
	}

	meta := map[string]any{
		"identifier":     pkg.Identifier,
		"estimatedBytes": pkg.EstimatedSizeBytes,
		"exportedAt":     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.cache.SetJSON(ctx, "export:last:"+courseID, meta, 24*time.Hour); err != nil {
		slog.Warn("recording export metadata failed", "course_id", courseID, "error", err)
	}
}

func (s *Service) emit(jobID, courseID, stage, message string) {
	s.events.LogEvent(Event{
		JobID:    jobID,
		CourseID: courseID,
		Stage:    stage,
		Message:  message,
	})
}

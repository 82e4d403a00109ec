// Package scorm compiles a validated course into a SCORM 1.2 package: the
// imsmanifest, the player data blob and the runtime identifier contract.
// Export is all-or-nothing; no partial artifact set is ever returned.
package scorm

import (
	"fmt"
	"log/slog"

	"github.com/courseforge/courseforge/internal/course"
)

// FailureReason is the machine-readable cause attached to a failed export.
type FailureReason string

const (
	FailValidation          FailureReason = "validation"
	FailSizeExceeded        FailureReason = "size-exceeded"
	FailUnsupportedTemplate FailureReason = "unsupported-template"
	FailResourceExhausted   FailureReason = "resource-exhausted"
)

// buildState tracks the builder through its stages. Failed(reason) is
// represented by returning an *ExportError from the stage that failed.
type buildState int

const (
	stateValidating buildState = iota
	stateSizeChecking
	stateTemplateChecking
	stateRendering
	stateDone
)

func (s buildState) String() string {
	switch s {
	case stateValidating:
		return "validating"
	case stateSizeChecking:
		return "size-checking"
	case stateTemplateChecking:
		return "template-checking"
	case stateRendering:
		return "rendering"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ExportError is the single, decisive failure of an export attempt. For
// validation failures it carries the complete issue collection; for ceiling
// breaches it carries the measured value and the limit.
type ExportError struct {
	Reason     FailureReason
	Issues     []course.ValidationIssue
	Measured   int64
	Limit      int64
	TemplateID string
	Kind       course.TemplateKind
}

func (e *ExportError) Error() string {
	switch e.Reason {
	case FailValidation:
		return fmt.Sprintf("export failed: validation: %d issue(s)", len(e.Issues))
	case FailSizeExceeded:
		return fmt.Sprintf("export failed: estimated size %d bytes exceeds limit of %d bytes", e.Measured, e.Limit)
	case FailUnsupportedTemplate:
		return fmt.Sprintf("export failed: template %q of kind %q cannot be rendered for SCORM 1.2", e.TemplateID, e.Kind)
	case FailResourceExhausted:
		return "export failed: internal step budget exhausted"
	default:
		return fmt.Sprintf("export failed: %s", e.Reason)
	}
}

// Package is the complete artifact set produced by one successful export.
type Package struct {
	Identifier         string          `json:"identifier"`
	Manifest           Manifest        `json:"manifest"`
	ManifestXML        string          `json:"manifestXml"`
	DataBlob           []byte          `json:"dataBlob"`
	Contract           RuntimeContract `json:"contract"`
	EstimatedSizeBytes int64           `json:"estimatedSizeBytes"`
}

// Builder compiles raw course documents into packages. It holds no
// cross-invocation state; concurrent Build calls need no coordination.
type Builder struct {
	limits course.Limits
}

// NewBuilder creates a Builder enforcing the given policy limits.
func NewBuilder(lim course.Limits) *Builder {
	return &Builder{limits: lim}
}

// Build runs the full pipeline on a raw authoring document: normalize,
// validate structurally, validate business rules, check size and target
// support, then sanitize and render the artifact set.
func (b *Builder) Build(doc map[string]any) (*Package, error) {
	state := stateValidating

	// Validating: structural issues and business rule violations both stop
	// the export, carrying the full issue collection.
	normalized := Normalize(doc)
	c, issues := course.Parse(normalized)
	if len(issues) > 0 {
		return nil, &ExportError{Reason: FailValidation, Issues: issues}
	}
	if issues := course.ValidateRules(c, b.limits); len(issues) > 0 {
		return nil, &ExportError{Reason: FailValidation, Issues: issues}
	}
	return b.buildValidated(c, state)
}

// BuildCourse exports a course that has already passed Parse and
// ValidateRules. Rule checks are re-run as defense in depth.
func (b *Builder) BuildCourse(c *course.Course) (*Package, error) {
	if issues := course.ValidateRules(c, b.limits); len(issues) > 0 {
		return nil, &ExportError{Reason: FailValidation, Issues: issues}
	}
	return b.buildValidated(c, stateValidating)
}

func (b *Builder) buildValidated(c *course.Course, state buildState) (*Package, error) {
	if err := b.checkStepBudget(c); err != nil {
		return nil, err
	}

	// SizeChecking: reject oversized courses before any rendering work.
	state = stateSizeChecking
	est := EstimateSize(c)
	if est.TotalBytes > b.limits.MaxPackageBytes {
		slog.Warn("export rejected: estimated size over ceiling",
			"course_id", c.CourseID,
			"estimated_bytes", est.TotalBytes,
			"limit_bytes", b.limits.MaxPackageBytes,
		)
		return nil, &ExportError{
			Reason:   FailSizeExceeded,
			Measured: est.TotalBytes,
			Limit:    b.limits.MaxPackageBytes,
		}
	}

	// TemplateChecking: the generic model is a superset of what this
	// exporter renders; reject anything SCORM 1.2 output cannot express.
	state = stateTemplateChecking
	if err := checkRenderable(c); err != nil {
		return nil, err
	}

	// Rendering: sanitize, then emit every artifact. Any rendering error
	// aborts the whole export.
	state = stateRendering
	sanitized := course.Sanitize(*c)

	blob, err := encodeBlob(&sanitized)
	if err != nil {
		return nil, err
	}
	identifier := packageIdentifier(sanitized.CourseID, blob)
	manifest := buildManifest(&sanitized, identifier)
	manifestXML, err := manifest.XML()
	if err != nil {
		return nil, err
	}

	state = stateDone
	slog.Info("scorm package built",
		"course_id", sanitized.CourseID,
		"identifier", identifier,
		"templates", len(sanitized.Templates),
		"estimated_bytes", est.TotalBytes,
		"state", state.String(),
	)
	return &Package{
		Identifier:         identifier,
		Manifest:           manifest,
		ManifestXML:        manifestXML,
		DataBlob:           blob,
		Contract:           buildContract(&sanitized, b.limits),
		EstimatedSizeBytes: est.TotalBytes,
	}, nil
}

// checkStepBudget bounds the work of one run. The count ceilings already
// bound valid courses; this guards against pathological inputs that slip
// past them, failing decisively instead of grinding.
func (b *Builder) checkStepBudget(c *course.Course) error {
	steps := 0
	for i := range c.Templates {
		steps++
		for _, q := range c.Templates[i].Data.Questions {
			steps += 1 + len(q.Options)
		}
	}
	steps += len(c.Assets)
	if steps > b.limits.StepBudget {
		slog.Error("export step budget exhausted",
			"course_id", c.CourseID,
			"steps", steps,
			"budget", b.limits.StepBudget,
		)
		return &ExportError{Reason: FailResourceExhausted, Measured: int64(steps), Limit: int64(b.limits.StepBudget)}
	}
	return nil
}

// checkRenderable re-validates each template against what the SCORM 1.2
// renderer supports: a known kind and a complete, kind-appropriate payload.
func checkRenderable(c *course.Course) error {
	for i := range c.Templates {
		tpl := &c.Templates[i]
		if !tpl.Kind.Valid() {
			return &ExportError{Reason: FailUnsupportedTemplate, TemplateID: tpl.ID, Kind: tpl.Kind}
		}
		switch tpl.Kind {
		case course.KindWelcome, course.KindContentText, course.KindSummary:
			if tpl.Data.Content == "" {
				return &ExportError{Reason: FailUnsupportedTemplate, TemplateID: tpl.ID, Kind: tpl.Kind}
			}
		case course.KindContentVideo:
			if tpl.Data.VideoURL == "" && tpl.Data.Content == "" {
				return &ExportError{Reason: FailUnsupportedTemplate, TemplateID: tpl.ID, Kind: tpl.Kind}
			}
		case course.KindMCQ:
			if len(tpl.Data.Questions) == 0 {
				return &ExportError{Reason: FailUnsupportedTemplate, TemplateID: tpl.ID, Kind: tpl.Kind}
			}
		}
	}
	return nil
}

// Normalize re-exports the course normalizer so callers driving the full
// pipeline through the builder depend on one package.
func Normalize(doc map[string]any) map[string]any {
	return course.Normalize(doc)
}

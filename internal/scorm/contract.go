package scorm

import (
	"fmt"

	"github.com/courseforge/courseforge/internal/course"
)

// ObjectiveBinding maps one template (slide) to the SCORM objective the
// player writes completion against.
type ObjectiveBinding struct {
	TemplateID  string `json:"templateId"`
	ObjectiveID string `json:"objectiveId"`
}

// InteractionBinding maps one MCQ question to the SCORM interaction the
// player records the learner's answer against.
type InteractionBinding struct {
	TemplateID    string `json:"templateId"`
	QuestionID    string `json:"questionId"`
	InteractionID string `json:"interactionId"`
}

// RuntimeContract is the player-facing identifier mapping emitted with each
// package. Assignment is index-based over the validated template order, so
// re-exporting the same course yields identical ids.
//
// The SCORM 1.2 data model has no scaled objective score and no interaction
// latency; the contract deliberately carries no such fields and the player
// must not write them.
type RuntimeContract struct {
	Objectives   []ObjectiveBinding   `json:"objectives"`
	Interactions []InteractionBinding `json:"interactions"`

	// The data blob is injected asynchronously relative to player script
	// initialization; the player polls for it within this bounded wait
	// before rendering. Both values are milliseconds on-wire.
	BlobWaitTimeoutMS  int64 `json:"blobWaitTimeoutMs"`
	BlobPollIntervalMS int64 `json:"blobPollIntervalMs"`
}

// buildContract assigns objective and interaction identifiers. Objectives
// are obj_{i} by template order; interactions are interaction_{j} counted
// across all MCQ questions in template order.
func buildContract(c *course.Course, lim course.Limits) RuntimeContract {
	contract := RuntimeContract{
		Objectives:       []ObjectiveBinding{},
		Interactions:     []InteractionBinding{},
		BlobWaitTimeoutMS:  lim.PlayerWaitTimeout.Milliseconds(),
		BlobPollIntervalMS: lim.PlayerPollInterval.Milliseconds(),
	}

	interaction := 0
	for i, tpl := range c.SortedTemplates() {
		contract.Objectives = append(contract.Objectives, ObjectiveBinding{
			TemplateID:  tpl.ID,
			ObjectiveID: fmt.Sprintf("obj_%d", i),
		})
		if tpl.Kind != course.KindMCQ {
			continue
		}
		for _, q := range tpl.Data.Questions {
			contract.Interactions = append(contract.Interactions, InteractionBinding{
				TemplateID:    tpl.ID,
				QuestionID:    q.ID,
				InteractionID: fmt.Sprintf("interaction_%d", interaction),
			})
			interaction++
		}
	}
	return contract
}

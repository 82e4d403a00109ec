package course

import "fmt"

// IssueKind distinguishes shape/type defects from business rule violations.
type IssueKind string

const (
	IssueStructural   IssueKind = "structural"
	IssueBusinessRule IssueKind = "business-rule"
)

// ValidationIssue describes one defect found in a course document. Issues
// are always collected across the whole document so an editing UI gets the
// complete defect list in one round trip.
type ValidationIssue struct {
	Kind           IssueKind `json:"kind"`
	Location       string    `json:"location"`
	Message        string    `json:"message"`
	OffendingInput any       `json:"offendingInput,omitempty"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.Location, i.Message)
}

func structural(location, message string, input any) ValidationIssue {
	return ValidationIssue{Kind: IssueStructural, Location: location, Message: message, OffendingInput: input}
}

func businessRule(location, message string, input any) ValidationIssue {
	return ValidationIssue{Kind: IssueBusinessRule, Location: location, Message: message, OffendingInput: input}
}

package ticket

import (
	"fmt"
	"strings"
)

const (
	// MaxTitleLength is the longest acceptable ticket title.
	MaxTitleLength = 100

	// MinDescriptionLength is the shortest acceptable description.
	MinDescriptionLength = 200
)

// Validator applies the content-quality rules to structurally valid
// tickets. The zero value is unusable; construct one with NewValidator.
type Validator struct {
	MaxTitle       int
	MinDescription int
}

func NewValidator() Validator {
	return Validator{
		MaxTitle:       MaxTitleLength,
		MinDescription: MinDescriptionLength,
	}
}

// Issues collects the quality findings for one ticket. Index is the
// 1-based position of the ticket in its batch.
type Issues struct {
	Index    int
	Findings []string
}

// Validate reports the quality issues of a single ticket. It never
// fails; an empty result means the ticket passes.
func (v Validator) Validate(t Ticket) []string {
	var issues []string

	if missing := missingFields(t); len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if len(t.Title) > v.MaxTitle {
		issues = append(issues, fmt.Sprintf("title too long (maximum %d characters)", v.MaxTitle))
	}
	if len(t.Description) < v.MinDescription {
		issues = append(issues, fmt.Sprintf("description too short (minimum %d characters)", v.MinDescription))
	}
	if t.PRDetails.Files == nil || t.PRDetails.Changes == "" {
		issues = append(issues, "pr_details missing required sub-fields: files and changes")
	}

	return issues
}

// ValidateBatch runs Validate over every ticket and keeps only those
// with findings, preserving batch order.
func (v Validator) ValidateBatch(tickets []Ticket) []Issues {
	var all []Issues
	for i, t := range tickets {
		if findings := v.Validate(t); len(findings) > 0 {
			all = append(all, Issues{Index: i + 1, Findings: findings})
		}
	}
	return all
}

// missingFields treats zero values as absent. Dependencies may be
// empty but not nil; pr_details counts as missing only when both
// sub-fields are empty (partial pr_details is reported separately).
func missingFields(t Ticket) []string {
	var missing []string
	if t.Title == "" {
		missing = append(missing, "title")
	}
	if t.Description == "" {
		missing = append(missing, "description")
	}
	if t.Dependencies == nil {
		missing = append(missing, "dependencies")
	}
	if t.RiskAnalysis == "" {
		missing = append(missing, "risk_analysis")
	}
	if t.PRDetails.Files == nil && t.PRDetails.Changes == "" {
		missing = append(missing, "pr_details")
	}
	return missing
}

// Package ticket defines the work-ticket records produced by the
// generation engine and the checks applied to them. Structural checks
// reject malformed completion payloads at the parse boundary; quality
// checks report content-rule violations as plain data.
package ticket

// PRDetails describes the pull request expected to implement a ticket.
type PRDetails struct {
	Files   []string `json:"files" jsonschema:"description=Paths of the files to create or modify"`
	Changes string   `json:"changes" jsonschema:"description=Narrative of the expected code changes and testing approach"`
}

// Ticket is a single unit of work. Instances are immutable once
// returned by ParseBatch; a retry always produces a fresh batch.
type Ticket struct {
	Title        string    `json:"title" jsonschema:"maxLength=100,description=Short clear summary"`
	Description  string    `json:"description" jsonschema:"minLength=200,description=Detailed explanation of purpose and implementation"`
	Dependencies []string  `json:"dependencies" jsonschema:"description=Prerequisite tickets"`
	RiskAnalysis string    `json:"risk_analysis" jsonschema:"description=Potential risks and mitigation strategies"`
	PRDetails    PRDetails `json:"pr_details"`
}

// Batch is the top-level shape of one completion response.
type Batch struct {
	Tickets []Ticket `json:"tickets"`
}

// RequiredFields lists the ticket fields that must be present on the
// wire, in schema order.
var RequiredFields = []string{"title", "description", "dependencies", "risk_analysis", "pr_details"}

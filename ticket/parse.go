package ticket

import (
	"encoding/json"
	"fmt"
)

// StructureError reports a completion payload whose shape does not
// match the ticket schema. Index is the 1-based position of the
// offending ticket, or 0 when the batch envelope itself is malformed.
type StructureError struct {
	Index  int
	Field  string
	Reason string
}

func (e *StructureError) Error() string {
	if e.Index == 0 {
		if e.Field == "" {
			return fmt.Sprintf("invalid response shape: %s", e.Reason)
		}
		return fmt.Sprintf("invalid response shape: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("ticket %d: field %q %s", e.Index, e.Field, e.Reason)
}

// ParseBatch parses a completion payload and verifies its structure.
// JSON syntax errors are returned wrapped; every shape violation is
// reported as a *StructureError. After a successful parse the rest of
// the program can trust the record types without re-checking.
func ParseBatch(data []byte) (*Batch, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rawTickets, ok := envelope["tickets"]
	if !ok {
		return nil, &StructureError{Field: "tickets", Reason: "is missing"}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rawTickets, &items); err != nil {
		return nil, &StructureError{Field: "tickets", Reason: "is not a list of objects"}
	}

	batch := &Batch{Tickets: make([]Ticket, 0, len(items))}
	for i, item := range items {
		t, err := parseTicket(item)
		if err != nil {
			err.Index = i + 1
			return nil, err
		}
		batch.Tickets = append(batch.Tickets, t)
	}

	return batch, nil
}

func parseTicket(item map[string]json.RawMessage) (Ticket, *StructureError) {
	for _, field := range RequiredFields {
		if _, ok := item[field]; !ok {
			return Ticket{}, &StructureError{Field: field, Reason: "is missing"}
		}
	}

	var t Ticket
	var err *StructureError
	if t.Title, err = decodeString(item, "title"); err != nil {
		return Ticket{}, err
	}
	if t.Description, err = decodeString(item, "description"); err != nil {
		return Ticket{}, err
	}
	if t.Dependencies, err = decodeStrings(item, "dependencies"); err != nil {
		return Ticket{}, err
	}
	if t.RiskAnalysis, err = decodeString(item, "risk_analysis"); err != nil {
		return Ticket{}, err
	}

	var details map[string]json.RawMessage
	if jsonErr := json.Unmarshal(item["pr_details"], &details); jsonErr != nil {
		return Ticket{}, &StructureError{Field: "pr_details", Reason: "is not an object"}
	}
	if _, ok := details["files"]; !ok {
		return Ticket{}, &StructureError{Field: "pr_details.files", Reason: "is missing"}
	}
	if _, ok := details["changes"]; !ok {
		return Ticket{}, &StructureError{Field: "pr_details.changes", Reason: "is missing"}
	}
	if t.PRDetails.Files, err = decodeStrings(details, "files"); err != nil {
		err.Field = "pr_details." + err.Field
		return Ticket{}, err
	}
	if t.PRDetails.Changes, err = decodeString(details, "changes"); err != nil {
		err.Field = "pr_details." + err.Field
		return Ticket{}, err
	}

	return t, nil
}

func decodeString(item map[string]json.RawMessage, field string) (string, *StructureError) {
	var s string
	if err := json.Unmarshal(item[field], &s); err != nil {
		return "", &StructureError{Field: field, Reason: "is not a string"}
	}
	return s, nil
}

func decodeStrings(item map[string]json.RawMessage, field string) ([]string, *StructureError) {
	var s []string
	if err := json.Unmarshal(item[field], &s); err != nil {
		return nil, &StructureError{Field: field, Reason: "is not a list of strings"}
	}
	return s, nil
}

package prompt

import (
	"strings"
	"testing"

	"github.com/ticketsmith/ticketsmith/ticket"
)

func TestSystem_EmbedsSchema(t *testing.T) {
	system := System()

	if !strings.HasSuffix(system, ticket.Schema()) {
		t.Error("System() does not end with the ticket schema")
	}
	for _, want := range []string{"Title", "Description", "Dependencies", "Risk Analysis", "PR Details"} {
		if !strings.Contains(system, want) {
			t.Errorf("System() missing required section %q", want)
		}
	}
}

func TestUser_EmbedsRequirementsVerbatim(t *testing.T) {
	requirements := "Build a tool that converts feature requests\ninto tickets."

	user := User(requirements)
	if !strings.Contains(user, requirements) {
		t.Errorf("User() does not embed the requirement text verbatim:\n%s", user)
	}
}

func TestFeedback(t *testing.T) {
	got := Feedback("split ticket 2 into smaller tasks")
	want := "Please regenerate the tickets with these improvements: split ticket 2 into smaller tasks"
	if got != want {
		t.Errorf("Feedback() = %q, want %q", got, want)
	}
}

func TestSelfTest_RequestsJSON(t *testing.T) {
	system, user := SelfTest()
	if !strings.Contains(system, "JSON") {
		t.Errorf("SelfTest() system prompt does not request JSON: %q", system)
	}
	if user == "" {
		t.Error("SelfTest() user prompt is empty")
	}
}

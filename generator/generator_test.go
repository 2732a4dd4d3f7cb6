package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ticketsmith/ticketsmith/model"
	"github.com/ticketsmith/ticketsmith/ticket"
)

func passingTicket(title string) ticket.Ticket {
	return ticket.Ticket{
		Title:        title,
		Description:  strings.Repeat("A detailed description of the work, covering purpose, implementation and testing. ", 3),
		Dependencies: []string{},
		RiskAnalysis: "Low risk overall.",
		PRDetails: ticket.PRDetails{
			Files:   []string{"main.go"},
			Changes: "Implement the feature.",
		},
	}
}

func failingTicket(title string) ticket.Ticket {
	t := passingTicket(title)
	t.Description = "too short"
	return t
}

// scriptCompleter replays batches or errors in order and records the
// conversation it was handed on each call.
type scriptCompleter struct {
	batches  []*ticket.Batch
	errs     []error
	calls    int
	messages [][]model.Message
}

func (c *scriptCompleter) Complete(_ context.Context, messages []model.Message) (*ticket.Batch, error) {
	c.messages = append(c.messages, messages)
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	return c.batches[i], nil
}

// scriptPrompter answers Confirm and Ask from fixed scripts and keeps
// everything shown to it.
type scriptPrompter struct {
	confirms []bool
	answers  []string
	shown    []string
	confirmI int
	answerI  int
}

func (p *scriptPrompter) Show(text string) { p.shown = append(p.shown, text) }

func (p *scriptPrompter) Confirm(string) (bool, error) {
	if p.confirmI >= len(p.confirms) {
		return false, errors.New("confirm script exhausted")
	}
	answer := p.confirms[p.confirmI]
	p.confirmI++
	return answer, nil
}

func (p *scriptPrompter) Ask(string) (string, error) {
	if p.answerI >= len(p.answers) {
		return "", errors.New("answer script exhausted")
	}
	answer := p.answers[p.answerI]
	p.answerI++
	return answer, nil
}

func (p *scriptPrompter) shownText() string { return strings.Join(p.shown, "\n") }

func newTestGenerator(client Completer, prompter Prompter, opts ...Option) *Generator {
	base := []Option{
		WithPrompter(prompter),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(client, append(base, opts...)...)
}

func TestGenerate_NonInteractiveCleanFirstTry(t *testing.T) {
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{passingTicket("Fix the login bug")}},
	}}
	prompter := &scriptPrompter{}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "fix the critical login bug", false)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if len(tickets) != 1 || tickets[0].Title != "Fix the login bug" {
		t.Errorf("Generate() = %+v", tickets)
	}
	if completer.calls != 1 {
		t.Errorf("completer called %d times, want 1", completer.calls)
	}

	seed := completer.messages[0]
	if len(seed) != 2 || seed[0].Role != model.RoleSystem || seed[1].Role != model.RoleUser {
		t.Fatalf("seed conversation = %+v", seed)
	}
	if !strings.Contains(seed[1].Content, "fix the critical login bug") {
		t.Error("user message does not embed the requirement text")
	}
}

func TestGenerate_NonInteractiveRetriesOnQualityIssues(t *testing.T) {
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{failingTicket("First candidate")}},
		{Tickets: []ticket.Ticket{passingTicket("Second candidate")}},
	}}
	prompter := &scriptPrompter{}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", false)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if tickets[0].Title != "Second candidate" {
		t.Errorf("Generate() returned %q, want the second candidate", tickets[0].Title)
	}
	if completer.calls != 2 {
		t.Errorf("completer called %d times, want 2", completer.calls)
	}
	// Regeneration reuses the same conversation rather than appending
	// feedback rounds.
	if len(completer.messages[1]) != 2 {
		t.Errorf("second call got %d messages, want 2", len(completer.messages[1]))
	}
	if !strings.Contains(prompter.shownText(), "description too short") {
		t.Error("quality issues were not reported")
	}
}

func TestGenerate_NonInteractiveExhaustion(t *testing.T) {
	bad := &ticket.Batch{Tickets: []ticket.Ticket{failingTicket("Still bad")}}
	completer := &scriptCompleter{batches: []*ticket.Batch{bad, bad, bad}}
	prompter := &scriptPrompter{}
	g := newTestGenerator(completer, prompter)

	_, err := g.Generate(context.Background(), "add a feature", false)
	if err == nil {
		t.Fatal("Generate() error = nil, want quality error")
	}

	var qErr *QualityError
	if !errors.As(err, &qErr) {
		t.Fatalf("error %v is not a *QualityError", err)
	}
	if qErr.Attempts != DefaultMaxAttempts {
		t.Errorf("Attempts = %d, want %d", qErr.Attempts, DefaultMaxAttempts)
	}
	if len(qErr.Batch) != 1 || qErr.Batch[0].Title != "Still bad" {
		t.Errorf("QualityError.Batch = %+v, want the last candidate", qErr.Batch)
	}
	if len(qErr.Issues) != 1 || qErr.Issues[0].Index != 1 {
		t.Errorf("QualityError.Issues = %+v", qErr.Issues)
	}
	if completer.calls != DefaultMaxAttempts {
		t.Errorf("completer called %d times, want %d", completer.calls, DefaultMaxAttempts)
	}
}

func TestGenerate_InteractiveAcceptFirstRound(t *testing.T) {
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{passingTicket("Good enough")}},
	}}
	prompter := &scriptPrompter{confirms: []bool{true}}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", true)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if len(tickets) != 1 {
		t.Errorf("Generate() = %+v", tickets)
	}
	if completer.calls != 1 {
		t.Errorf("completer called %d times, want 1", completer.calls)
	}
}

func TestGenerate_InteractiveFeedbackRound(t *testing.T) {
	first := &ticket.Batch{Tickets: []ticket.Ticket{passingTicket("Rejected candidate")}}
	second := &ticket.Batch{Tickets: []ticket.Ticket{passingTicket("Improved candidate")}}
	completer := &scriptCompleter{batches: []*ticket.Batch{first, second}}
	prompter := &scriptPrompter{
		confirms: []bool{false, true},
		answers:  []string{"split the work into smaller tickets"},
	}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", true)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if tickets[0].Title != "Improved candidate" {
		t.Errorf("Generate() returned %q, want the improved candidate", tickets[0].Title)
	}
	if completer.calls != 2 {
		t.Fatalf("completer called %d times, want 2", completer.calls)
	}

	round2 := completer.messages[1]
	if len(round2) != 4 {
		t.Fatalf("second call got %d messages, want 4", len(round2))
	}
	if round2[2].Role != model.RoleAssistant {
		t.Errorf("message 2 role = %s, want assistant", round2[2].Role)
	}
	var echoed ticket.Batch
	if err := json.Unmarshal([]byte(round2[2].Content), &echoed); err != nil {
		t.Fatalf("assistant message is not the serialized batch: %s", err)
	}
	if echoed.Tickets[0].Title != "Rejected candidate" {
		t.Errorf("assistant message echoes %q, want the rejected candidate", echoed.Tickets[0].Title)
	}
	if round2[3].Role != model.RoleUser ||
		!strings.Contains(round2[3].Content, "split the work into smaller tickets") {
		t.Errorf("message 3 = %+v, want the feedback instruction", round2[3])
	}
}

func TestGenerate_InteractiveIgnoresQualityBudget(t *testing.T) {
	bad := &ticket.Batch{Tickets: []ticket.Ticket{failingTicket("Flawed")}}
	good := &ticket.Batch{Tickets: []ticket.Ticket{passingTicket("Accepted anyway")}}
	completer := &scriptCompleter{batches: []*ticket.Batch{bad, bad, bad, good}}
	prompter := &scriptPrompter{
		confirms: []bool{false, false, false, true},
		answers:  []string{"longer descriptions", "longer still", "one more pass"},
	}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", true)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if tickets[0].Title != "Accepted anyway" {
		t.Errorf("Generate() returned %q", tickets[0].Title)
	}
	if completer.calls != 4 {
		t.Errorf("completer called %d times, want 4 (no attempt cap in interactive mode)", completer.calls)
	}
}

func TestGenerate_InteractiveAcceptWithIssuesOutstanding(t *testing.T) {
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{failingTicket("Accepted despite issues")}},
	}}
	prompter := &scriptPrompter{confirms: []bool{true}}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", true)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if tickets[0].Title != "Accepted despite issues" {
		t.Errorf("Generate() returned %q", tickets[0].Title)
	}
	if !strings.Contains(prompter.shownText(), "Issues detected") {
		t.Error("issues were not shown before the acceptance prompt")
	}
}

func TestGenerate_EmptyBatchInteractive(t *testing.T) {
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{}},
		{Tickets: []ticket.Ticket{passingTicket("Second try")}},
	}}
	prompter := &scriptPrompter{
		confirms: []bool{false, true},
		answers:  []string{"produce at least one ticket"},
	}
	g := newTestGenerator(completer, prompter)

	tickets, err := g.Generate(context.Background(), "add a feature", true)
	if err != nil {
		t.Fatalf("Generate() error = %s", err)
	}
	if len(tickets) != 1 {
		t.Errorf("Generate() = %+v", tickets)
	}
}

func TestGenerate_ClientErrorPropagates(t *testing.T) {
	clientErr := model.Errorf(model.KindClient, "invalid api key")
	completer := &scriptCompleter{errs: []error{clientErr}, batches: []*ticket.Batch{nil}}
	prompter := &scriptPrompter{}
	g := newTestGenerator(completer, prompter)

	_, err := g.Generate(context.Background(), "add a feature", false)
	if !errors.Is(err, clientErr) {
		t.Errorf("Generate() error = %v, want the client error", err)
	}
	if completer.calls != 1 {
		t.Errorf("completer called %d times, want 1", completer.calls)
	}
}

func TestGenerate_DescriptionPreviewTruncated(t *testing.T) {
	long := passingTicket("Long description")
	long.Description = strings.Repeat("x", 500)
	completer := &scriptCompleter{batches: []*ticket.Batch{
		{Tickets: []ticket.Ticket{long}},
	}}
	prompter := &scriptPrompter{confirms: []bool{true}}
	g := newTestGenerator(completer, prompter)

	if _, err := g.Generate(context.Background(), "add a feature", true); err != nil {
		t.Fatalf("Generate() error = %s", err)
	}

	shown := prompter.shownText()
	if !strings.Contains(shown, strings.Repeat("x", 200)+"...") {
		t.Error("preview is not truncated at 200 characters")
	}
	if strings.Contains(shown, strings.Repeat("x", 201)) {
		t.Error("preview contains more than 200 description characters")
	}
}

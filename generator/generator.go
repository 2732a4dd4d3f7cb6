// Package generator drives the request/validate cycle of ticket
// generation: it owns the conversation history, loops over the
// completion client, and branches between bounded auto-retry and
// human feedback.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ticketsmith/ticketsmith/model"
	"github.com/ticketsmith/ticketsmith/prompt"
	"github.com/ticketsmith/ticketsmith/ticket"
)

// DefaultMaxAttempts bounds non-interactive regeneration when quality
// issues persist.
const DefaultMaxAttempts = 3

const previewLength = 200

// Completer is the completion client as the orchestrator sees it.
type Completer interface {
	Complete(ctx context.Context, messages []model.Message) (*ticket.Batch, error)
}

// QualityError reports that the non-interactive attempt budget was
// spent with outstanding quality issues. Batch carries the last
// candidate so callers preferring best-effort output can still read it.
type QualityError struct {
	Batch    []ticket.Ticket
	Issues   []ticket.Issues
	Attempts int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("generated tickets did not meet quality requirements after %d attempts (%d tickets with issues)",
		e.Attempts, len(e.Issues))
}

type Generator struct {
	client      Completer
	validator   ticket.Validator
	prompter    Prompter
	logger      *slog.Logger
	maxAttempts int
	maxHistory  int
}

type Option func(*Generator)

func WithPrompter(p Prompter) Option {
	return func(g *Generator) { g.prompter = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

func WithValidator(v ticket.Validator) Option {
	return func(g *Generator) { g.validator = v }
}

func WithMaxAttempts(n int) Option {
	return func(g *Generator) { g.maxAttempts = n }
}

func WithMaxHistory(n int) Option {
	return func(g *Generator) { g.maxHistory = n }
}

func New(client Completer, opts ...Option) *Generator {
	g := &Generator{
		client:      client,
		validator:   ticket.NewValidator(),
		prompter:    NewTermPrompter(os.Stdin, os.Stdout),
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		maxHistory:  DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate turns requirement text into an accepted ticket batch.
//
// Non-interactive mode requests fresh completions over the same
// conversation while quality issues persist, up to the attempt budget,
// and fails with *QualityError when the budget is spent with issues
// outstanding. Interactive mode presents each candidate batch and
// loops on the user's feedback until the user accepts. Client-level
// errors propagate immediately in both modes.
func (g *Generator) Generate(ctx context.Context, requirements string, interactive bool) ([]ticket.Ticket, error) {
	history := NewHistory(prompt.System(), prompt.User(requirements), g.maxHistory)
	attempts := 0

	for {
		attempts++
		batch, err := g.client.Complete(ctx, history.Messages())
		if err != nil {
			return nil, err
		}

		issues := g.validator.ValidateBatch(batch.Tickets)
		g.logger.DebugContext(ctx, "validated candidate batch",
			"attempt", attempts, "tickets", len(batch.Tickets), "tickets_with_issues", len(issues))
		g.present(batch.Tickets, issues)

		if !interactive {
			if len(issues) == 0 {
				return batch.Tickets, nil
			}
			if attempts < g.maxAttempts {
				g.logger.WarnContext(ctx, "tickets did not meet quality requirements, retrying",
					"attempt", attempts, "max_attempts", g.maxAttempts)
				continue
			}
			return nil, &QualityError{Batch: batch.Tickets, Issues: issues, Attempts: attempts}
		}

		satisfied, err := g.prompter.Confirm("Are you satisfied with these tickets? (y/n):")
		if err != nil {
			return nil, err
		}
		if satisfied {
			return batch.Tickets, nil
		}

		feedback, err := g.prompter.Ask("Please describe what you'd like to improve:")
		if err != nil {
			return nil, err
		}

		serialized, err := json.Marshal(batch)
		if err != nil {
			return nil, fmt.Errorf("serialize candidate batch: %w", err)
		}
		history.AddRound(string(serialized), prompt.Feedback(feedback))
	}
}

func (g *Generator) present(tickets []ticket.Ticket, issues []ticket.Issues) {
	g.prompter.Show("\nGenerated Tickets:")
	for i, t := range tickets {
		g.prompter.Show(fmt.Sprintf("\nTicket %d:\nTitle: %s\nDescription (first %d chars): %s",
			i+1, t.Title, previewLength, preview(t.Description)))
	}

	if len(issues) == 0 {
		return
	}
	var report strings.Builder
	report.WriteString("\nIssues detected:")
	for _, ti := range issues {
		report.WriteString(fmt.Sprintf("\nTicket %d issues:", ti.Index))
		for _, finding := range ti.Findings {
			report.WriteString("\n- " + finding)
		}
	}
	g.prompter.Show(report.String())
}

func preview(description string) string {
	runes := []rune(description)
	if len(runes) <= previewLength {
		return description
	}
	return string(runes[:previewLength]) + "..."
}

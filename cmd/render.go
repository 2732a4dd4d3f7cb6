package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ticketsmith/ticketsmith/ticket"
)

type OutputFormat string

const (
	OutputFormatMarkdown OutputFormat = "markdown"
	OutputFormatJSON     OutputFormat = "json"
)

func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case OutputFormatMarkdown, OutputFormatJSON:
		return OutputFormat(value), nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected markdown or json)", value)
	}
}

func renderTickets(w io.Writer, tickets []ticket.Ticket, format OutputFormat) error {
	if format == OutputFormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(tickets)
	}

	doc := ticketsMarkdown(tickets)
	fmt.Fprint(w, styleMarkdown(doc))
	return nil
}

func ticketsMarkdown(tickets []ticket.Ticket) string {
	var doc strings.Builder
	doc.WriteString("# Generated Tickets\n")
	for i, t := range tickets {
		doc.WriteString(fmt.Sprintf("\n## Ticket %d: %s\n", i+1, t.Title))
		doc.WriteString(ticketMarkdown(t))
	}
	return doc.String()
}

func ticketMarkdown(t ticket.Ticket) string {
	var section strings.Builder

	section.WriteString("\n### Description\n")
	section.WriteString(t.Description + "\n")

	section.WriteString("\n### Dependencies\n")
	if len(t.Dependencies) == 0 {
		section.WriteString("None\n")
	} else {
		for _, dep := range t.Dependencies {
			section.WriteString("- " + dep + "\n")
		}
	}

	section.WriteString("\n### Risk Analysis\n")
	section.WriteString(t.RiskAnalysis + "\n")

	section.WriteString("\n### PR Details\n")
	section.WriteString("\n#### Files to Modify\n")
	for _, file := range t.PRDetails.Files {
		section.WriteString("- " + file + "\n")
	}
	section.WriteString("\n#### Expected Changes\n")
	section.WriteString(t.PRDetails.Changes + "\n")

	section.WriteString("\n---\n")
	return section.String()
}

// styleMarkdown renders the document for the terminal, falling back to
// the plain markdown text when no renderer is available.
func styleMarkdown(doc string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return doc
	}
	rendered, err := renderer.Render(doc)
	if err != nil {
		return doc
	}
	return rendered
}

// Package prompt builds the conversation prompts for ticket
// generation. All functions are pure; the only moving part is the
// ticket schema embedded into the system prompt.
package prompt

import (
	"fmt"

	"github.com/ticketsmith/ticketsmith/ticket"
)

const systemPreamble = `You are an expert project manager and developer tasked with creating highly detailed work tickets for a CLI tool that transforms project requirements into actionable tasks. The application consists of multiple components including input parsing (for HTML, Markdown, and plain text), AI-powered ticket generation, a command-line interface supporting interactive and non-interactive modes, secure API key management, and comprehensive testing and CI/CD integration.

For each ticket, you MUST include:
1. Title: A short, clear summary (max 100 characters).
2. Description: A detailed explanation covering the purpose, technical implementation details, step-by-step instructions, and testing requirements.
3. Dependencies: A list of prerequisite tasks or tickets.
4. Risk Analysis: Detailed potential risks, their impact, likelihood, and mitigation strategies.
5. PR Details: Specific files to modify, expected code changes, and the testing approach.

Break down the overall requirements into separate, actionable tickets covering at least these areas:
- Input Parsing Module: Handling different formats (HTML, Markdown, plain text) and error handling.
- Ticket Generation Engine: Integrating with the completion API and formatting tickets.
- CLI Interface: Parsing command-line arguments, interactive prompts, and mode handling.
- API Key Management: Securing and managing API keys via CLI, environment variables, or the OS keyring.
- Testing and CI/CD Setup: Comprehensive unit, integration, and end-to-end tests along with pipeline integration.

Order the tickets so that every ticket appears after the tickets it depends on.

Respond with a single JSON object conforming to this schema:
`

// System returns the system prompt: task framing plus the required
// output schema.
func System() string {
	return systemPreamble + ticket.Schema()
}

// User embeds the cleaned requirement text into the generation
// instruction verbatim.
func User(requirements string) string {
	return fmt.Sprintf(`Please analyze the following project requirements and break them down into detailed, actionable work tickets. Ensure that you create separate tickets for each major functional area. Each ticket should include:
- A concise title.
- A detailed description covering purpose, implementation details, step-by-step instructions, and testing.
- Any dependencies on other tasks.
- A risk analysis detailing potential challenges and mitigation strategies.
- PR details listing specific files and code changes needed.

Requirements:
%s`, requirements)
}

// Feedback turns free-text user feedback into the refinement
// instruction appended during an interactive round.
func Feedback(feedback string) string {
	return fmt.Sprintf("Please regenerate the tickets with these improvements: %s", feedback)
}

// SelfTest returns the prompts used by the connectivity probe.
func SelfTest() (system, user string) {
	return "You are a helpful assistant. Please respond in JSON format.",
		"Hello. This is a connectivity test. Please provide a short response as a JSON object."
}

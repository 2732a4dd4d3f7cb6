// Package input turns raw requirement documents into cleaned plain
// text before the generation core ever sees them. HTML is reduced via
// readability extraction; Markdown is rendered to HTML first.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"
)

// MinLength is the shortest requirement text worth sending to the
// generation engine.
const MinLength = 10

var whitespace = regexp.MustCompile(`\s+`)

// Clean extracts plain text from raw content according to the file
// extension, normalizes whitespace, and rejects input that is too
// short or carries no recognizable work-item signal.
func Clean(raw string, ext string) (string, error) {
	var text string
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		extracted, err := htmlText(raw)
		if err != nil {
			return "", fmt.Errorf("parse HTML content: %w", err)
		}
		text = extracted
	case ".md", ".markdown":
		var rendered bytes.Buffer
		if err := goldmark.Convert([]byte(raw), &rendered); err != nil {
			return "", fmt.Errorf("render markdown content: %w", err)
		}
		extracted, err := htmlText(rendered.String())
		if err != nil {
			return "", fmt.Errorf("parse markdown content: %w", err)
		}
		text = extracted
	default:
		text = raw
	}

	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	if len(text) < MinLength {
		return "", fmt.Errorf("requirement text is too short (minimum %d characters)", MinLength)
	}
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "feature") && !strings.Contains(lower, "bug") {
		return "", errors.New(`requirement text does not describe a recognizable work item (expected "feature" or "bug")`)
	}

	return text, nil
}

func htmlText(html string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

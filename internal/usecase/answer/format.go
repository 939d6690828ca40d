package answer

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// buildContext renders the surviving documents as the prompt context block.
func buildContext(docs []domain.DocumentSummary) string {
	var b strings.Builder
	b.WriteString("Relevant Documents and Passages:\n")
	for _, d := range docs {
		title := d.Title
		if title == "" {
			title = domain.UntitledDocument
		}
		author := d.Author
		if author == "" {
			author = domain.UnknownAuthor
		}
		b.WriteString("Document: " + title + " (Author: " + author + ")\n")
		for _, p := range d.Passages {
			b.WriteString("Content: " + p + "\n")
		}
	}
	return b.String()
}

var (
	responsePrefix = regexp.MustCompile(`^Response:[ \t]*\n?`)
	sectionHeader  = regexp.MustCompile(`(?m)^(OVERVIEW|KEY POINTS|CONCLUSION)[ \t]*\n+`)
	extraNewlines  = regexp.MustCompile(`\n{3,}`)
)

// sanitize strips markdown emphasis and normalizes section spacing.
func sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "**AI Assistant Summary**", "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = responsePrefix.ReplaceAllString(strings.TrimSpace(text), "")
	text = sectionHeader.ReplaceAllString(text, "$1\n\n")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

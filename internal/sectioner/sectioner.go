// Package sectioner splits raw page text from construction documents into
// titled sections using header-pattern heuristics.
package sectioner

import (
	"regexp"
	"strings"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

// Header patterns in priority order. First match wins.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d+\s+[A-Z]`), // "1.1 GENERAL"
	regexp.MustCompile(`^SECTION\s+\d{2}`),  // "SECTION 01"
	regexp.MustCompile(`^Article\s+\d+`),    // "Article 1"
	regexp.MustCompile(`^\d+\.\s+[A-Z]`),    // "1. SCOPE"
}

// Split walks the page line by line and cuts a new section at every header
// line. Non-header lines accumulate into the current section's content.
// Consecutive headers with no content between them collapse into the last
// header; a trailing section is kept only if it gathered any content. A page
// without headers yields a single untitled section.
func Split(pageText string, pageNumber int) []model.Section {
	var sections []model.Section
	current := model.Section{Page: pageNumber}

	for _, line := range strings.Split(pageText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsHeader(line) {
			if current.Content != "" {
				sections = append(sections, current)
			}
			current = model.Section{Title: line, Page: pageNumber}
			continue
		}
		current.Content += line + "\n"
	}

	if current.Content != "" {
		sections = append(sections, current)
	}
	return sections
}

// IsHeader reports whether a line looks like a section header.
func IsHeader(line string) bool {
	for _, pattern := range headerPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

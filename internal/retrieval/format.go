package retrieval

import (
	"strings"

	"github.com/timberyard/meetingassist/internal/domain"
)

// SnippetLimit is the number of characters of each item kept by FormatKnowledge.
const SnippetLimit = 300

const ellipsis = "..."

// FormatKnowledge renders ranked items as "- <title or id>\n<snippet>" blocks
// separated by a blank line. Empty input yields "".
func FormatKnowledge(items []domain.ScoredItem) string {
	if len(items) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(items))
	for _, s := range items {
		blocks = append(blocks, "- "+s.Item.Label()+"\n"+Truncate(s.Item.Text, SnippetLimit))
	}
	return strings.Join(blocks, "\n\n")
}

// Truncate cuts s to limit characters and appends "..." when anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

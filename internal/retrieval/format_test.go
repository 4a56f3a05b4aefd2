package retrieval

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/timberyard/meetingassist/internal/domain"
)

func TestFormatKnowledge_Empty(t *testing.T) {
	assert.Equal(t, "", FormatKnowledge(nil))
	assert.Equal(t, "", FormatKnowledge([]domain.ScoredItem{}))
}

func TestFormatKnowledge_TruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("a", 400)
	out := FormatKnowledge([]domain.ScoredItem{
		{Item: domain.KnowledgeItem{ID: "doc-1", Title: "Guide", Text: long}},
	})

	assert.Equal(t, "- Guide\n"+strings.Repeat("a", 300)+"...", out)
}

func TestFormatKnowledge_ShortBodyUnchanged(t *testing.T) {
	short := strings.Repeat("b", 50)
	out := FormatKnowledge([]domain.ScoredItem{
		{Item: domain.KnowledgeItem{ID: "doc-2", Text: short}},
	})

	assert.Equal(t, "- doc-2\n"+short, out)
}

func TestFormatKnowledge_SeparatesItemsWithBlankLine(t *testing.T) {
	out := FormatKnowledge([]domain.ScoredItem{
		{Item: domain.KnowledgeItem{ID: "a", Title: "Alpha", Text: "one"}},
		{Item: domain.KnowledgeItem{ID: "b", Text: "two"}},
	})

	assert.Equal(t, "- Alpha\none\n\n- b\ntwo", out)
}

func TestTruncate_CountsCharactersNotBytes(t *testing.T) {
	s := strings.Repeat("é", 301)
	got := Truncate(s, 300)
	assert.Equal(t, 303, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, strings.Repeat("é", 300), Truncate(strings.Repeat("é", 300), 300))
}

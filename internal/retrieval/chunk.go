package retrieval

import "regexp"

// ChunkSize is the longest chunk ChunkText produces, in characters.
const ChunkSize = 1000

// A window of up to ChunkSize characters ending at whitespace or end of text.
// Newlines are not matched by '.', so each chunk ends at a line break at the
// latest and the break itself becomes the chunk's terminator.
var chunkPattern = regexp.MustCompile(`.{1,1000}(\s|$)`)

// ChunkText splits text into embedding-sized chunks.
func ChunkText(text string) []string {
	chunks := chunkPattern.FindAllString(text, -1)
	if chunks == nil {
		return []string{}
	}
	return chunks
}

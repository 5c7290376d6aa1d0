package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/plainfin/internal/document"
)

// DefaultMaxChars is the chunk size used when the caller passes a
// non-positive bound.
const DefaultMaxChars = 2000

// Split breaks text into word-aligned chunks of at most maxChars characters.
//
// Words are packed greedily; each word counts its length plus one separator.
// A word longer than maxChars is emitted alone rather than truncated.
// Empty or whitespace-only input yields an empty slice.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	words := strings.Fields(text)
	chunks := make([]string, 0, len(text)/maxChars+1)

	var current []string
	length := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word) + 1
		if length+n > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
		current = append(current, word)
		length += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// Chunks splits text like Split and numbers the pieces from zero.
func Chunks(text string, maxChars int) []document.Chunk {
	parts := Split(text, maxChars)
	out := make([]document.Chunk, len(parts))
	for i, p := range parts {
		out[i] = document.Chunk{Index: i, Text: p}
	}
	return out
}

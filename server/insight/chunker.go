package insight

import (
	"strings"
	"unicode"
)

const (
	// chunkSize is the maximum character count per embedding chunk.
	chunkSize = 1500
	// chunkOverlap is the character count carried over between chunks so
	// context is not lost at chunk boundaries.
	chunkOverlap = 150
)

// chunkTranscript splits a long transcript into chunks for embedding,
// preserving utterance line boundaries when possible. The split is fully
// deterministic: two ingestions of an identical transcript always produce
// the same chunks and therefore the same pooled vector.
func chunkTranscript(content string) []string {
	if len(content) <= chunkSize {
		return []string{content}
	}

	lines := strings.Split(content, "\n")

	var chunks []string
	var current strings.Builder

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(line)+1 > chunkSize {
			chunks = append(chunks, current.String())
			overlap := overlapTail(chunks[len(chunks)-1], chunkOverlap)
			current.Reset()
			if overlap != "" {
				current.WriteString(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)

		// A single overlong line is force-split at word boundaries.
		for current.Len() > chunkSize {
			text := current.String()
			breakPoint := findBreakPoint(text[:chunkSize])
			chunks = append(chunks, text[:breakPoint])
			current.Reset()
			current.WriteString(strings.TrimLeft(text[breakPoint:], " "))
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// overlapTail returns the last whole lines of a chunk, up to overlapSize
// characters, to prepend to the next chunk.
func overlapTail(chunk string, overlapSize int) string {
	if len(chunk) <= overlapSize {
		return chunk
	}
	tail := chunk[len(chunk)-overlapSize:]
	if idx := strings.Index(tail, "\n"); idx >= 0 {
		return tail[idx+1:]
	}
	// No line boundary inside the tail; drop the partial leading word.
	if idx := strings.IndexAny(tail, " \t"); idx > 0 {
		return tail[idx+1:]
	}
	return tail
}

// findBreakPoint finds a position to split text, preferring a sentence end
// and then a word boundary.
func findBreakPoint(text string) int {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '.' || text[i] == '!' || text[i] == '?' {
			if i == len(text)-1 || unicode.IsSpace(rune(text[i+1])) {
				return i + 1
			}
		}
	}
	for i := len(text) - 1; i >= len(text)/2; i-- {
		if unicode.IsSpace(rune(text[i])) {
			return i
		}
	}
	return len(text)
}

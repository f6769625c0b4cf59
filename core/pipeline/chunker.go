package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkChars is the default chunk budget in characters (runes).
const DefaultMaxChunkChars = 200

// sentenceEnd matches a run of terminal punctuation followed by whitespace or the end of text.
var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// splitSentences splits text into trimmed sentence units.
// Each unit keeps its own terminator, empty units are dropped.
func splitSentences(text string) []string {
	var units []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if unit := strings.TrimSpace(text[start:loc[1]]); unit != "" {
			units = append(units, unit)
		}
		start = loc[1]
	}
	if unit := strings.TrimSpace(text[start:]); unit != "" {
		units = append(units, unit)
	}
	return units
}

// Chunk greedily packs sentence units into chunks of at most maxChunkChars
// characters, counted in runes.
// A unit that would overflow a non-empty buffer starts a new chunk. A single
// unit longer than maxChunkChars becomes its own oversized chunk and is never
// split. Non-empty text that yields no unit is returned unmodified as one chunk.
func Chunk(text string, maxChunkChars int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	var buffer strings.Builder
	bufferRunes := 0
	for _, unit := range splitSentences(text) {
		unitRunes := utf8.RuneCountInString(unit)
		if bufferRunes > 0 && bufferRunes+unitRunes > maxChunkChars {
			chunks = append(chunks, buffer.String())
			buffer.Reset()
			bufferRunes = 0
		}
		if bufferRunes > 0 {
			buffer.WriteByte(' ')
			bufferRunes++
		}
		buffer.WriteString(unit)
		bufferRunes += unitRunes
	}
	if buffer.Len() > 0 {
		chunks = append(chunks, buffer.String())
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// SentenceChunker creates a chunker that packs sentences up to maxChunkChars.
func SentenceChunker(maxChunkChars int) ChunkFunc {
	return func(text string) ([]string, error) {
		if maxChunkChars <= 0 {
			return nil, fmt.Errorf("max chunk chars must be positive")
		}
		return Chunk(text, maxChunkChars), nil
	}
}

package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/clauselens/clauselens/internal/doc"
)

// Config controls chunking behavior.
type Config struct {
	Size      int // Target chunk size in characters.
	Overlap   int // Overlap between consecutive chunks in characters.
	MaxChunks int // Hard cap on emitted chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:      1200,
		Overlap:   200,
		MaxChunks: 80,
	}
}

// Chunk splits raw document text into overlapping, bounded segments with
// fresh unique IDs. Whitespace runs are collapsed to single spaces first.
// Each window of cfg.Size characters is snapped back to the last sentence
// terminator found in its second half, so chunks avoid mid-sentence cuts
// without unbounded scanning. Page attribution is not attempted.
func Chunk(text string, cfg Config) []doc.Chunk {
	if cfg.Size <= 0 {
		cfg.Size = 1200
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 200
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = 80
	}

	clean := []rune(strings.Join(strings.Fields(text), " "))
	if len(clean) == 0 {
		return nil
	}

	var chunks []doc.Chunk
	start := 0

	for start < len(clean) && len(chunks) < cfg.MaxChunks {
		end := start + cfg.Size
		if end < len(clean) {
			end = snapToSentence(clean, start, end, cfg.Size)
		}

		segEnd := end
		if segEnd > len(clean) {
			segEnd = len(clean)
		}
		if seg := strings.TrimSpace(string(clean[start:segEnd])); seg != "" {
			chunks = append(chunks, doc.Chunk{
				ID:   uuid.NewString(),
				Page: nil,
				Text: seg,
			})
		}

		next := end - cfg.Overlap
		if next < 0 {
			next = 0
		}
		// Overlap >= size would stall the window; always advance.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// snapToSentence moves end back to just after the last sentence terminator
// followed by a space, as long as the terminator sits in the second half of
// the window. Returns end unchanged when no such boundary exists.
func snapToSentence(clean []rune, start, end, size int) int {
	limit := start + size/2
	for j := end - 1; j > limit; j-- {
		if clean[j] == ' ' && isTerminator(clean[j-1]) {
			return j
		}
	}
	return end
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

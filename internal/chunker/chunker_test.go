package chunker

import (
	"strings"
	"testing"
)

func TestChunk_EmptyText(t *testing.T) {
	if got := Chunk("", DefaultConfig()); len(got) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(got))
	}
	if got := Chunk("   \n\t  ", DefaultConfig()); len(got) != 0 {
		t.Errorf("expected 0 chunks for whitespace-only text, got %d", len(got))
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("This agreement is made between the parties.", DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "This agreement is made between the parties." {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].ID == "" {
		t.Error("expected a non-empty chunk ID")
	}
	if chunks[0].Page != nil {
		t.Errorf("expected nil page, got %v", *chunks[0].Page)
	}
}

func TestChunk_ThreeThousandCharsYieldsThreeChunks(t *testing.T) {
	// No sentence terminators, so windows advance by exactly size-overlap.
	text := strings.Repeat("a", 3000)
	chunks := Chunk(text, Config{Size: 1200, Overlap: 200, MaxChunks: 80})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Text) != 1200 {
		t.Errorf("chunk 0: expected 1200 chars, got %d", len(chunks[0].Text))
	}
	if len(chunks[2].Text) != 1000 {
		t.Errorf("chunk 2: expected 1000 chars (tail), got %d", len(chunks[2].Text))
	}
}

func TestChunk_WhitespaceNormalization(t *testing.T) {
	chunks := Chunk("one\n\n  two\t\tthree   four", DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "one two three four" {
		t.Errorf("expected collapsed whitespace, got %q", chunks[0].Text)
	}
}

func TestChunk_SentenceSnap(t *testing.T) {
	// A terminator in the second half of the window should end the chunk.
	first := strings.Repeat("x", 80) + ". "
	text := first + strings.Repeat("y", 200)
	chunks := Chunk(text, Config{Size: 100, Overlap: 10, MaxChunks: 80})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("expected first chunk to end at sentence boundary, got %q", chunks[0].Text)
	}
	if len(chunks[0].Text) != 81 {
		t.Errorf("expected snap after terminator (81 chars), got %d", len(chunks[0].Text))
	}
}

func TestChunk_NoSnapBeforeWindowMidpoint(t *testing.T) {
	// Terminator in the first half of the window must be ignored.
	text := strings.Repeat("x", 20) + ". " + strings.Repeat("y", 300)
	chunks := Chunk(text, Config{Size: 100, Overlap: 10, MaxChunks: 80})
	if len(chunks[0].Text) != 100 {
		t.Errorf("expected full window (100 chars), got %d", len(chunks[0].Text))
	}
}

func TestChunk_NoChunkExceedsSize(t *testing.T) {
	text := strings.Repeat("The supplier shall indemnify the customer against all claims. ", 200)
	cfg := Config{Size: 300, Overlap: 50, MaxChunks: 80}
	for i, c := range Chunk(text, cfg) {
		if len([]rune(c.Text)) > cfg.Size {
			t.Errorf("chunk %d exceeds size: %d > %d", i, len([]rune(c.Text)), cfg.Size)
		}
	}
}

func TestChunk_MaxChunksCap(t *testing.T) {
	text := strings.Repeat("z", 100000)
	chunks := Chunk(text, Config{Size: 1200, Overlap: 200, MaxChunks: 80})
	if len(chunks) != 80 {
		t.Errorf("expected cap at 80 chunks, got %d", len(chunks))
	}
}

func TestChunk_OverlapGreaterThanSizeTerminates(t *testing.T) {
	text := strings.Repeat("w", 500)
	chunks := Chunk(text, Config{Size: 100, Overlap: 150, MaxChunks: 1000})
	// The window must still advance by at least one character per iteration,
	// so the loop terminates: one chunk per start offset.
	if len(chunks) != 500 {
		t.Fatalf("expected 500 chunks, got %d", len(chunks))
	}
}

func TestChunk_UniqueIDs(t *testing.T) {
	text := strings.Repeat("Every clause shall survive termination of this agreement. ", 100)
	chunks := Chunk(text, Config{Size: 300, Overlap: 50, MaxChunks: 80})
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if seen[c.ID] {
			t.Fatalf("duplicate chunk ID %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestChunk_OverlapReconstructsPrefix(t *testing.T) {
	// Without terminators, consecutive chunks share exactly Overlap characters,
	// so stripping the overlap from each successor rebuilds the normalized text.
	text := strings.Repeat("m", 2500)
	cfg := Config{Size: 1000, Overlap: 200, MaxChunks: 80}
	chunks := Chunk(text, cfg)

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for _, c := range chunks[1:] {
		rebuilt.WriteString(c.Text[cfg.Overlap:])
	}
	if rebuilt.String() != text {
		t.Errorf("reconstruction mismatch: got %d chars, want %d", rebuilt.Len(), len(text))
	}
}

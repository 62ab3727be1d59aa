package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_SmallTextSingleChunk(t *testing.T) {
	chunks := Split("Hello world.", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if chunks[0].Text != "Hello world." {
		t.Errorf("unexpected text %q", chunks[0].Text)
	}
	if chunks[0].Sep != "" {
		t.Errorf("final chunk should carry no separator, got %q", chunks[0].Sep)
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	chunks := Split("A. B. C.", 4)
	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	want := []string{"A.", "B.", "C."}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("expected %v, got %v", want, texts)
	}
	if chunks[0].Sep != " " || chunks[1].Sep != " " {
		t.Errorf("expected space separators, got %q and %q", chunks[0].Sep, chunks[1].Sep)
	}
}

func TestSplit_ChunkBound(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	limit := 80
	chunks := Split(text, limit)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Size > limit {
			t.Errorf("chunk %d exceeds limit: %d > %d", c.Index, c.Size, limit)
		}
		if c.Size != utf8.RuneCountInString(c.Text) {
			t.Errorf("chunk %d size %d does not match text length %d", c.Index, c.Size, utf8.RuneCountInString(c.Text))
		}
	}
}

func TestSplit_DenseIndices(t *testing.T) {
	text := strings.Repeat("Sentence one here. ", 30)
	chunks := Split(text, 50)
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("expected dense index %d, got %d", i, c.Index)
		}
	}
}

func TestSplit_SeparatorPreservingReconstruction(t *testing.T) {
	text := "One sentence here. Two sentence here! Three question now? Plain newline\nafter and a paragraph end.\n\nSecond paragraph continues with more words to split across chunks."
	chunks := Split(text, 25)

	var sb strings.Builder
	for i, c := range chunks {
		sb.WriteString(c.Text)
		if i < len(chunks)-1 {
			sb.WriteString(c.Sep)
		}
	}
	if sb.String() != text {
		t.Errorf("reconstruction mismatch:\nwant %q\ngot  %q", text, sb.String())
	}
}

func TestSplit_ParagraphBreakPreferred(t *testing.T) {
	// A paragraph break and a space both fall inside the margin; the
	// paragraph break must win.
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := Split(text, 70)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Sep != "\n\n" {
		t.Errorf("expected paragraph separator, got %q", chunks[0].Sep)
	}
	if chunks[0].Text != strings.Repeat("a", 60) {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
}

func TestSplit_ForcedCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 10)
	chunks := Split(text, 4)
	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	want := []string{"xxxx", "xxxx", "xx"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("expected %v, got %v", want, texts)
	}
	// Forced cuts record no separator, so joining reconstructs the word.
	if got := texts[0] + chunks[0].Sep + texts[1] + chunks[1].Sep + texts[2]; got != text {
		t.Errorf("forced-cut join mismatch: %q", got)
	}
}

func TestSplit_EmptyPiecesDropped(t *testing.T) {
	if chunks := Split("   \n\n   \n\n  ", 5); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Some sentence with several words in it. ", 40)
	a := Split(text, 64)
	b := Split(text, 64)
	if !reflect.DeepEqual(a, b) {
		t.Error("same text and limit must produce identical chunk sequences")
	}
}

package chunker

import "strings"

// Chunk is one bounded slice of the source text, ready for an individual
// translation call. Sep holds the separator that was consumed at the chunk's
// trailing boundary, so the original spacing can be restored at join time.
type Chunk struct {
	Index int
	Text  string
	Size  int
	Sep   string
}

// BoundaryMargin is how far back from a window boundary the splitter will
// search for a natural cut point before giving up and cutting mid-word.
const BoundaryMargin = 50

// Split divides text into ordered chunks of at most limit characters each,
// cutting at the highest-priority separator found within BoundaryMargin of
// each window boundary: paragraph break, sentence end, exclamation/question
// mark, bare newline, bare space. A window with no separator in range is cut
// exactly at the boundary. Pieces are trimmed and empty pieces dropped, so
// chunk indices are dense over the retained chunks. Deterministic: the same
// text and limit always produce the same sequence.
func Split(text string, limit int) []Chunk {
	if limit <= 0 {
		limit = 2000
	}

	runes := []rune(text)
	var chunks []Chunk

	appendChunk := func(piece []rune, sep string) {
		trimmed := strings.TrimSpace(string(piece))
		if trimmed == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  trimmed,
			Size:  len([]rune(trimmed)),
			Sep:   sep,
		})
	}

	pos := 0
	for len(runes)-pos > limit {
		cut, next, sep := findCut(runes, pos, limit)
		appendChunk(runes[pos:cut], sep)
		pos = next
	}
	appendChunk(runes[pos:], "")

	return chunks
}

// findCut returns the exclusive end of the next piece, the position the scan
// resumes from, and the separator consumed between the two.
func findCut(runes []rune, pos, limit int) (cut, next int, sep string) {
	hi := pos + limit - 1
	if hi > len(runes)-2 {
		hi = len(runes) - 2
	}
	lo := pos + limit - BoundaryMargin
	if lo < pos {
		lo = pos
	}

	// Paragraph break.
	for j := hi; j >= lo; j-- {
		if runes[j] == '\n' && runes[j+1] == '\n' {
			return j, j + 2, "\n\n"
		}
	}
	// Sentence-ending period followed by space or newline.
	for j := hi; j >= lo; j-- {
		if runes[j] == '.' && isSpaceOrNewline(runes[j+1]) {
			return j + 1, j + 2, string(runes[j+1])
		}
	}
	// Exclamation or question mark followed by space or newline.
	for j := hi; j >= lo; j-- {
		if (runes[j] == '!' || runes[j] == '?') && isSpaceOrNewline(runes[j+1]) {
			return j + 1, j + 2, string(runes[j+1])
		}
	}
	// Bare newline.
	for j := hi; j >= lo; j-- {
		if runes[j] == '\n' {
			return j, j + 1, "\n"
		}
	}
	// Bare space.
	for j := hi; j >= lo; j-- {
		if runes[j] == ' ' {
			return j, j + 1, " "
		}
	}

	// No separator in range: cut exactly at the window boundary.
	return pos + limit, pos + limit, ""
}

func isSpaceOrNewline(r rune) bool {
	return r == ' ' || r == '\n'
}

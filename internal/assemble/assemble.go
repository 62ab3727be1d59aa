// Package assemble rebuilds translated chunks into a single result and
// prepares document artifacts for download.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Piece is one translated chunk plus the separator that was consumed at its
// trailing boundary during splitting.
type Piece struct {
	Text string
	Sep  string
}

// Join concatenates pieces, re-inserting the separator each boundary was
// split on. A forced mid-word cut recorded no separator, so those pieces
// join directly.
func Join(pieces []Piece) string {
	var sb strings.Builder
	for i, p := range pieces {
		sb.WriteString(p.Text)
		if i < len(pieces)-1 {
			sb.WriteString(p.Sep)
		}
	}
	return sb.String()
}

// LanguageName resolves a BCP 47 code to its English display name, e.g.
// "es" -> "Spanish". Unparseable codes come back unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// DocumentBody appends the translation metadata block to a translated
// document's text.
func DocumentBody(text, originalName, langCode, jobID string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "Original file: %s\n", originalName)
	fmt.Fprintf(&sb, "Target language: %s (%s)\n", LanguageName(langCode), langCode)
	fmt.Fprintf(&sb, "Translated: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Task: %s\n", jobID)
	return sb.String()
}

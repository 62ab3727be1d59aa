// Package extract pulls translatable plain text out of uploaded documents.
// Formats are treated as opaque text containers: structure is flattened to
// paragraphs separated by blank lines.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Options tweaks extraction behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// FromReader extracts plain text from a document, dispatching on the file
// extension.
func FromReader(r io.Reader, filename string, opts Options) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return extractText(r)
	case ".md", ".markdown":
		return extractMarkdown(r)
	case ".csv":
		return extractCSV(r)
	case ".html", ".htm":
		return extractHTML(r)
	case ".pdf":
		return extractPDF(r, opts.PDFFallbackPdftotext)
	case ".docx":
		return extractDOCX(r)
	default:
		return "", fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// FromBytes is FromReader over an in-memory document.
func FromBytes(data []byte, filename string, opts Options) (string, error) {
	return FromReader(bytes.NewReader(data), filename, opts)
}

// joinParagraphs assembles non-empty paragraphs with blank-line separators.
func joinParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

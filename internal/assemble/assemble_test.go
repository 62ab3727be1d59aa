package assemble

import (
	"strings"
	"testing"
	"time"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name   string
		pieces []Piece
		want   string
	}{
		{"empty", nil, ""},
		{"single", []Piece{{Text: "hola", Sep: "\n\n"}}, "hola"},
		{
			"sentence boundaries",
			[]Piece{{Text: "Hola.", Sep: " "}, {Text: "Adiós.", Sep: ""}},
			"Hola. Adiós.",
		},
		{
			"paragraph boundary",
			[]Piece{{Text: "uno", Sep: "\n\n"}, {Text: "dos", Sep: ""}},
			"uno\n\ndos",
		},
		{
			"forced cut joins directly",
			[]Piece{{Text: "abcd", Sep: ""}, {Text: "efgh", Sep: ""}},
			"abcdefgh",
		},
		{
			"mixed separators",
			[]Piece{{Text: "a", Sep: " "}, {Text: "b", Sep: "\n"}, {Text: "c", Sep: ""}},
			"a b\nc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.pieces); got != tt.want {
				t.Errorf("Join = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"es", "Spanish"},
		{"fr", "French"},
		{"de", "German"},
		{"zh", "Chinese"},
		{"!!", "!!"}, // unparseable comes back as-is
	}
	for _, tt := range tests {
		if got := LanguageName(tt.code); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDocumentBody(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	body := DocumentBody("hola mundo", "report.txt", "es", "task-123", at)

	if !strings.HasPrefix(body, "hola mundo\n\n---\n") {
		t.Errorf("body does not start with text and divider: %q", body)
	}
	for _, want := range []string{
		"Original file: report.txt",
		"Target language: Spanish (es)",
		"Translated: 2026-03-14T09:26:53Z",
		"Task: task-123",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		original, lang, want string
	}{
		{"report.docx", "es", "report.es.docx"},
		{"notes.txt", "fr", "notes.fr.txt"},
		{"archive.tar.gz", "de", "archive.tar.de.gz"},
		{"noext", "es", "noext.es"},
		{"/tmp/path/report.pdf", "ja", "report.ja.pdf"},
		{".hidden", "es", "document.es.hidden"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.original, tt.lang); got != tt.want {
			t.Errorf("DownloadName(%q, %q) = %q, want %q", tt.original, tt.lang, got, tt.want)
		}
	}
}

func TestASCIIName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.txt", "report.txt"},
		{"café.pdf", "caf_.pdf"},
		{"my file (1).txt", "my_file__1_.txt"},
		{"résumé", "r_sum_"},
		{"...", "document"},
		{"", "document"},
	}
	for _, tt := range tests {
		if got := ASCIIName(tt.in); got != tt.want {
			t.Errorf("ASCIIName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	got := ContentDisposition("café.pdf")
	want := `attachment; filename="caf_.pdf"; filename*=UTF-8''caf%C3%A9.pdf`
	if got != want {
		t.Errorf("ContentDisposition = %q, want %q", got, want)
	}

	plain := ContentDisposition("report.es.txt")
	if plain != `attachment; filename="report.es.txt"; filename*=UTF-8''report.es.txt` {
		t.Errorf("plain disposition = %q", plain)
	}
}

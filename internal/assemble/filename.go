package assemble

import (
	"path/filepath"
	"strings"
)

// DownloadName derives the download filename for a translated document by
// inserting the language code before the extension:
// "report.docx" + "es" -> "report.es.docx".
func DownloadName(originalName, langCode string) string {
	name := filepath.Base(originalName)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem = "document"
	}
	return stem + "." + langCode + ext
}

// ASCIIName reduces a filename to a restricted ASCII-safe character set for
// the plain filename= parameter. Anything outside [A-Za-z0-9._-] becomes an
// underscore.
func ASCIIName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if strings.Trim(out, "._") == "" {
		return "document"
	}
	return out
}

// ContentDisposition builds an attachment header value carrying both the
// ASCII-safe filename and an RFC 5987 filename* form, so non-ASCII names
// survive HTTP header transport.
func ContentDisposition(name string) string {
	return `attachment; filename="` + ASCIIName(name) + `"; filename*=UTF-8''` + encodeRFC5987(name)
}

// encodeRFC5987 percent-encodes everything outside the attr-char set of
// RFC 5987 section 3.2.1.
func encodeRFC5987(s string) string {
	var sb strings.Builder
	for _, b := range []byte(s) {
		if isAttrChar(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0xf])
		}
	}
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

func isAttrChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

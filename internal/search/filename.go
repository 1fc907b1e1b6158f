package search

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// SanitizeName reduces a raw search term to a filesystem-safe slug:
// letters, digits, dash and underscore survive, spaces become underscores,
// everything else is dropped.
func SanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

// ScreenshotName builds the evidence filename. The per-run sequence keeps
// two captures of the same term within one second from colliding.
func ScreenshotName(kind, term string, at time.Time, seq int) string {
	return fmt.Sprintf("%s_%s_%s_%03d.png",
		kind, SanitizeName(term), at.Format("20060102_150405"), seq)
}

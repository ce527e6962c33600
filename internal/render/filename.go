package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Names are the human identifiers embedded in output filenames.
type Names struct {
	Celebrity string
	Show      string
}

// Filename builds "<NN> - <Celebrity> - <Show> - <format>.jpg".
func Filename(seq int, n Names, format string) string {
	return fmt.Sprintf("%02d - %s - %s - %s.jpg",
		seq, cleanPart(n.Celebrity, "Unknown"), cleanPart(n.Show, "Untitled"), cleanPart(format, "print"))
}

// cleanPart drops characters that are unsafe in filenames on common
// filesystems and collapses whitespace. Names are stored in NFC so the same
// celebrity typed with combining accents yields the same filename.
func cleanPart(s, fallback string) string {
	s = norm.NFC.String(s)
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	out := strings.Join(strings.Fields(mapped), " ")
	out = strings.Trim(out, ". ")
	if out == "" {
		return fallback
	}
	return out
}

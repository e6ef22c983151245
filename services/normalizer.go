package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// markStripper dekomponiert Unicode (NFD) und entfernt kombinierende Zeichen,
// also Akzente und Diakritika ("São" -> "Sao").
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeTitle kanonisiert einen Journal-Titel für den Ranking-Abgleich:
// Kleinschreibung, Diakritika entfernen, "&" wird zu "and", alles außer
// Buchstaben/Ziffern/Whitespace entfällt, Whitespace wird zu einzelnen
// Leerzeichen kollabiert. Idempotent und frei von Seiteneffekten.
//
// Muss identisch auf die Schlüssel der Ranking-Tabelle und auf jede Anfrage
// angewendet werden, sonst schlägt der Abgleich stumm fehl.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")

	if stripped, _, err := transform.String(markStripper, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

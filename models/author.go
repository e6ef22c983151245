package models

import "strings"

// IngestMode steuert, ob die Sammel-Übernahme beim Merge die
// Validitätsprüfung erzwingt. Lenient entspricht dem Verhalten des
// Abruf-Pfads; Strict verwirft unvollständige Publikationen.
type IngestMode int

const (
	IngestLenient IngestMode = iota
	IngestStrict
)

// FetchResult ist das Ergebnis eines einzelnen Identifier-Abrufs.
// Err enthält den rohen Fehlertext, damit ein fehlgeschlagener Abruf die
// übrigen Identifier eines Batches nicht abbricht.
type FetchResult struct {
	AuthorID     string        `json:"author_id"`
	Publications []Publication `json:"publications,omitempty"`
	Err          string        `json:"error,omitempty"`
}

// Author repräsentiert einen logischen Forschenden, ggf. mit mehreren
// zusammengeführten Scopus-IDs.
type Author struct {
	ID           string        `json:"id"` // eine ID oder komma-verkettete Liste
	Publications []Publication `json:"publications"`
	Error        string        `json:"error,omitempty"`
}

// AddPublication hängt eine Publikation an, sofern sie gültig ist.
func (a *Author) AddPublication(p Publication) bool {
	if !p.IsValid() {
		return false
	}
	a.Publications = append(a.Publications, p)
	return true
}

// MergeResults faltet die Abruf-Ergebnisse mehrerer Scopus-IDs desselben
// Autors in einen einzigen Author. Die Reihenfolge der Ergebnisse (und damit
// der Publikationen) bleibt erhalten; die ID ist die komma-verkettete Liste
// der ursprünglichen Identifier. Fehlertexte werden mit "; " verbunden.
// Teilerfolge bleiben sichtbar: Publikationen erfolgreicher IDs werden nie
// wegen fehlgeschlagener Geschwister verworfen.
func MergeResults(results []FetchResult, ids []string, mode IngestMode) Author {
	author := Author{ID: strings.Join(ids, ",")}

	var errs []string
	for _, r := range results {
		if r.Err != "" {
			errs = append(errs, r.Err)
			continue
		}
		for _, p := range r.Publications {
			if mode == IngestStrict && !p.IsValid() {
				continue
			}
			author.Publications = append(author.Publications, p)
		}
	}

	if len(errs) > 0 {
		author.Error = strings.Join(errs, "; ")
	}
	return author
}

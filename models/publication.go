package models

// Sentinel-Werte aus Ranking-Abgleich und Filiation-Klassifikation.
// Bewusst von leeren Feldern unterschieden: "nicht verfügbar" ist ein
// Ergebnis, kein fehlender Wert.
const (
	CategoryUnavailable = "No disponible" // Ranking-Datensatz nicht geladen
	CategoryNotIndexed  = "No indexada"   // Journal nicht im Ranking gefunden
	NoAffiliation       = "Sin filiación" // keine passende Filiation
)

// Publication repräsentiert eine einzelne Publikation eines Autors.
type Publication struct {
	Title        string `json:"title"`
	Year         string `json:"year"` // 4-stellig oder leer
	Source       string `json:"source"`
	DocumentType string `json:"document_type"`
	Affiliation  string `json:"affiliation"`
	DOI          string `json:"doi,omitempty"`
	Categories   string `json:"categories"` // "Name (Quartil); ..." oder Sentinel
}

// IsValid prüft, ob Titel, Jahr und Quelle gesetzt sind.
func (p *Publication) IsValid() bool {
	return p.Title != "" && p.Year != "" && p.Source != ""
}

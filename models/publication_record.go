package models

import "time"

// PublicationRecord persistiert den zuletzt abgerufenen Stand einer
// Publikation eines Forschenden, damit Statistik-Endpoints ohne erneuten
// Scopus-Abruf bedient werden können. Die Pipeline selbst arbeitet nur auf
// Publication; gespeichert wird ausschließlich an der HTTP/Cron-Grenze.
type PublicationRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ResearcherID uint   `json:"researcher_id" gorm:"index:idx_publication_records_dedup,unique;not null"`
	DedupKey     string `json:"-" gorm:"index:idx_publication_records_dedup,unique;size:700"`

	Title        string `json:"title"`
	Year         string `json:"year"`
	Source       string `json:"source"`
	DocumentType string `json:"document_type"`
	Affiliation  string `json:"affiliation"`
	DOI          string `json:"doi,omitempty"`
	Categories   string `json:"categories"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (PublicationRecord) TableName() string {
	return "publication_records"
}

// NewPublicationRecord erstellt die Persistenz-Zeile zu einer Publikation.
// Dedup-Schlüssel ist die DOI, ersatzweise Titel+Jahr.
func NewPublicationRecord(researcherID uint, p Publication) PublicationRecord {
	key := p.DOI
	if key == "" {
		key = p.Title + "|" + p.Year
	}
	return PublicationRecord{
		ResearcherID: researcherID,
		DedupKey:     key,
		Title:        p.Title,
		Year:         p.Year,
		Source:       p.Source,
		DocumentType: p.DocumentType,
		Affiliation:  p.Affiliation,
		DOI:          p.DOI,
		Categories:   p.Categories,
	}
}

// Publication wandelt die Persistenz-Zeile zurück in das Pipeline-Modell.
func (r *PublicationRecord) Publication() Publication {
	return Publication{
		Title:        r.Title,
		Year:         r.Year,
		Source:       r.Source,
		DocumentType: r.DocumentType,
		Affiliation:  r.Affiliation,
		DOI:          r.DOI,
		Categories:   r.Categories,
	}
}

package scopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"scholar-metrics/config"
	"scholar-metrics/models"
	"scholar-metrics/services"
)

// maxRecords ist das Abruflimit pro Autoren-ID. Die Search-API liefert pro
// Aufruf höchstens 200 Einträge; Pagination darüber hinaus ist bewusst nicht
// implementiert (bekannte Lücke bei Autoren mit mehr als 200 Publikationen).
const maxRecords = 200

// Fetcher implementiert das Provider-Interface für die Scopus Search API.
// Die Ranking-Tabelle wird injiziert und nur lesend genutzt, der Fetcher ist
// damit von parallelen Abrufen gefahrlos teilbar.
type Fetcher struct {
	Config   *config.Config
	Logger   *zap.Logger
	Rankings *services.RankingsTable

	client  *http.Client
	baseURL string
}

// NewFetcher erstellt einen neuen Scopus-Fetcher. Der HTTP-Client bekommt
// einen großzügigen Gesamt-Timeout (Autoren-Datensätze können groß sein) und
// einen kurzen Connect-Timeout, um nicht erreichbare Endpunkte schnell zu
// melden.
func NewFetcher(cfg *config.Config, logger *zap.Logger, rankings *services.RankingsTable) *Fetcher {
	dialer := &net.Dialer{Timeout: time.Duration(cfg.ConnectTimeoutSeconds) * time.Second}
	return &Fetcher{
		Config:   cfg,
		Logger:   logger,
		Rankings: rankings,
		baseURL:  cfg.ScopusBaseURL,
		client: &http.Client{
			Timeout:   time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
			Transport: &http.Transport{DialContext: dialer.DialContext},
		},
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "scopus"
}

// FetchByAuthor ruft bis zu 200 Publikationen einer Scopus-Autoren-ID ab und
// wandelt sie in unser Publication-Modell um; nachgelagerte Komponenten sehen
// nie die rohen API-Strukturen. Jede Nicht-200-Antwort wird als roher
// Fehlertext im Ergebnis gemeldet, nie als error geworfen.
func (f *Fetcher) FetchByAuthor(ctx context.Context, authorID string) models.FetchResult {
	log := f.Logger.With(zap.String("scopus_id", authorID))
	log.Info("Starte Scopus-Abruf für Autoren-ID.")

	params := url.Values{
		"query": {fmt.Sprintf("AU-ID(%s)", authorID)},
		"count": {fmt.Sprintf("%d", maxRecords)},
	}
	requestURL := f.baseURL + "?" + params.Encode()
	log.Debug("Rufe Scopus Search API auf", zap.String("url", requestURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return models.FetchResult{AuthorID: authorID, Err: err.Error()}
	}
	req.Header.Set("X-ELS-APIKey", f.Config.ScopusAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("Scopus-Anfrage fehlgeschlagen", zap.Error(err))
		return models.FetchResult{AuthorID: authorID, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Warn("Scopus-API hat Nicht-200-Status zurückgegeben",
			zap.Int("status", resp.StatusCode), zap.String("body", string(body)))
		return models.FetchResult{AuthorID: authorID, Err: string(body)}
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		log.Warn("Fehler beim Parsen der Scopus-JSON-Antwort", zap.Error(err))
		return models.FetchResult{AuthorID: authorID, Err: err.Error()}
	}

	publications := make([]models.Publication, 0, len(searchResponse.SearchResults.Entry))
	for i := range searchResponse.SearchResults.Entry {
		publications = append(publications, f.mapEntryToModel(&searchResponse.SearchResults.Entry[i]))
	}

	log.Info("Scopus-Abruf abgeschlossen", zap.Int("found_publications", len(publications)))
	return models.FetchResult{AuthorID: authorID, Publications: publications}
}

// mapEntryToModel konvertiert einen Scopus-Eintrag in unser
// Publication-Modell. Jahr = erste vier Zeichen des Cover-Datums; die
// Filiation wird auf den Sentinel "Sin filiación" gesetzt, wenn der
// Institutionsname nicht (case-insensitiv) darin vorkommt. Der
// Ranking-Lookup passiert synchron pro Eintrag.
func (f *Fetcher) mapEntryToModel(entry *Entry) models.Publication {
	year := ""
	if len(entry.CoverDate) >= 4 {
		year = entry.CoverDate[:4]
	}

	affiliation := ""
	if len(entry.Affiliations) > 0 {
		affiliation = entry.Affiliations[0].Name
	}
	if affiliation == "" || !strings.Contains(strings.ToLower(affiliation), strings.ToLower(f.Config.InstitutionName)) {
		affiliation = models.NoAffiliation
	}

	return models.Publication{
		Title:        entry.Title,
		Year:         year,
		Source:       entry.PublicationName,
		DocumentType: entry.SubtypeDescription,
		Affiliation:  affiliation,
		DOI:          entry.DOI,
		Categories:   f.Rankings.Lookup(entry.PublicationName, year),
	}
}

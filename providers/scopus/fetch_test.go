package scopus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"scholar-metrics/config"
	"scholar-metrics/models"
	"scholar-metrics/services"
)

const searchResponseJSON = `{
  "search-results": {
    "opensearch:totalResults": "2",
    "entry": [
      {
        "dc:title": "Deep Learning for Crop Monitoring",
        "prism:coverDate": "2023-05-01",
        "prism:publicationName": "IEEE Access",
        "subtypeDescription": "Article",
        "prism:doi": "10.1109/ACCESS.2023.12345",
        "affiliation": [
          {"affilname": "Universidad Técnica del Norte", "affiliation-city": "Ibarra", "affiliation-country": "Ecuador"}
        ]
      },
      {
        "dc:title": "A Survey Without Useful Metadata",
        "prism:coverDate": "",
        "prism:publicationName": "Unknown Venue",
        "subtypeDescription": "Review",
        "affiliation": [
          {"affilname": "Some Other University"}
        ]
      }
    ]
  }
}`

func testConfig() *config.Config {
	return &config.Config{
		ScopusAPIKey:          "test-key",
		InstitutionName:       "Universidad Técnica del Norte",
		FetchTimeoutSeconds:   5,
		ConnectTimeoutSeconds: 2,
	}
}

func testRankings(t *testing.T) *services.RankingsTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rankings.csv")
	csv := "Title;year;Categories\nIEEE Access;2023;\"Computer Science (Q1)\"\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("Testdatensatz konnte nicht geschrieben werden: %v", err)
	}
	return services.LoadRankings(path, zap.NewNop())
}

func TestFetchByAuthor(t *testing.T) {
	var gotAPIKey, gotQuery, gotCount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-ELS-APIKey")
		gotQuery = r.URL.Query().Get("query")
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponseJSON))
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), zap.NewNop(), testRankings(t))
	fetcher.baseURL = server.URL

	result := fetcher.FetchByAuthor(context.Background(), "57193125771")

	if result.Err != "" {
		t.Fatalf("unerwarteter Fehler: %q", result.Err)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("X-ELS-APIKey = %q, want %q", gotAPIKey, "test-key")
	}
	if gotQuery != "AU-ID(57193125771)" {
		t.Errorf("query = %q, want %q", gotQuery, "AU-ID(57193125771)")
	}
	if gotCount != "200" {
		t.Errorf("count = %q, want %q", gotCount, "200")
	}
	if len(result.Publications) != 2 {
		t.Fatalf("Publications = %d, want 2", len(result.Publications))
	}

	first := result.Publications[0]
	if first.Title != "Deep Learning for Crop Monitoring" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Year != "2023" {
		t.Errorf("Year = %q, want %q", first.Year, "2023")
	}
	if first.Affiliation != "Universidad Técnica del Norte" {
		t.Errorf("Affiliation = %q", first.Affiliation)
	}
	if first.Categories != "Computer Science (Q1)" {
		t.Errorf("Categories = %q, want %q", first.Categories, "Computer Science (Q1)")
	}
	if first.DOI != "10.1109/ACCESS.2023.12345" {
		t.Errorf("DOI = %q", first.DOI)
	}

	// Fremde Filiation wird auf den Sentinel gesetzt, leeres Cover-Datum
	// ergibt ein leeres Jahr.
	second := result.Publications[1]
	if second.Affiliation != models.NoAffiliation {
		t.Errorf("Affiliation = %q, want %q", second.Affiliation, models.NoAffiliation)
	}
	if second.Year != "" {
		t.Errorf("Year = %q, want leer", second.Year)
	}
	if second.Categories != models.CategoryNotIndexed {
		t.Errorf("Categories = %q, want %q", second.Categories, models.CategoryNotIndexed)
	}
}

func TestFetchByAuthorAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"service-error":{"status":{"statusText":"Invalid API Key"}}}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), zap.NewNop(), testRankings(t))
	fetcher.baseURL = server.URL

	result := fetcher.FetchByAuthor(context.Background(), "123")

	if len(result.Publications) != 0 {
		t.Errorf("Publications = %d, want 0", len(result.Publications))
	}
	// Der rohe Antwort-Body landet als Fehlertext im Ergebnis.
	if !strings.Contains(result.Err, "Invalid API Key") {
		t.Errorf("Err = %q, erwarteter Fehlertext fehlt", result.Err)
	}
}

func TestFetchByAuthorInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("kein json"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), zap.NewNop(), testRankings(t))
	fetcher.baseURL = server.URL

	result := fetcher.FetchByAuthor(context.Background(), "123")
	if result.Err == "" {
		t.Error("Parse-Fehler muss als Err gemeldet werden")
	}
}

func TestFetchByAuthorUnreachable(t *testing.T) {
	fetcher := NewFetcher(testConfig(), zap.NewNop(), testRankings(t))
	fetcher.baseURL = "http://127.0.0.1:1"

	result := fetcher.FetchByAuthor(context.Background(), "123")
	if result.Err == "" {
		t.Error("Verbindungsfehler muss als Err gemeldet werden")
	}
	if result.AuthorID != "123" {
		t.Errorf("AuthorID = %q, want %q", result.AuthorID, "123")
	}
}

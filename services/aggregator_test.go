package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"scholar-metrics/config"
	"scholar-metrics/models"
)

// fakeProvider liefert pro Autoren-ID ein vorbereitetes Ergebnis.
type fakeProvider struct {
	results map[string]models.FetchResult
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchByAuthor(ctx context.Context, authorID string) models.FetchResult {
	if r, ok := f.results[authorID]; ok {
		return r
	}
	return models.FetchResult{AuthorID: authorID, Err: "unbekannte ID"}
}

func newTestAggregator(provider *fakeProvider) *AggregatorService {
	cfg := &config.Config{FetchConcurrency: 2}
	return NewAggregatorService(cfg, nil, zap.NewNop(), provider)
}

func pub(title, year string) models.Publication {
	return models.Publication{Title: title, Year: year, Source: "IEEE Access"}
}

func TestFetchAuthorMergesPartialFailures(t *testing.T) {
	provider := &fakeProvider{results: map[string]models.FetchResult{
		"111": {AuthorID: "111", Publications: []models.Publication{pub("A", "2020"), pub("B", "2021")}},
		"222": {AuthorID: "222", Err: "APIKey ungültig"},
		"333": {AuthorID: "333", Publications: []models.Publication{pub("C", "2022")}},
	}}
	aggregator := newTestAggregator(provider)

	author := aggregator.FetchAuthor(context.Background(), []string{"111", "222", "333"}, models.IngestLenient)

	if author.ID != "111,222,333" {
		t.Errorf("ID = %q, want %q", author.ID, "111,222,333")
	}
	if len(author.Publications) != 3 {
		t.Fatalf("Publications = %d, want 3", len(author.Publications))
	}
	// Reihenfolge der IDs bleibt trotz parallelem Abruf erhalten.
	titles := []string{author.Publications[0].Title, author.Publications[1].Title, author.Publications[2].Title}
	if titles[0] != "A" || titles[1] != "B" || titles[2] != "C" {
		t.Errorf("Publikationen nicht in ID-Reihenfolge: %v", titles)
	}
	if !strings.Contains(author.Error, "APIKey ungültig") {
		t.Errorf("Error = %q, erwarteter Fehlertext fehlt", author.Error)
	}
}

func TestFetchAuthorAllFail(t *testing.T) {
	provider := &fakeProvider{results: map[string]models.FetchResult{
		"111": {AuthorID: "111", Err: "Timeout"},
		"222": {AuthorID: "222", Err: "Serverfehler"},
	}}
	aggregator := newTestAggregator(provider)

	author := aggregator.FetchAuthor(context.Background(), []string{"111", "222"}, models.IngestLenient)

	if len(author.Publications) != 0 {
		t.Errorf("Publications = %d, want 0", len(author.Publications))
	}
	if author.Error != "Timeout; Serverfehler" {
		t.Errorf("Error = %q, want %q", author.Error, "Timeout; Serverfehler")
	}
}

func TestFetchAuthorIngestModes(t *testing.T) {
	incomplete := models.Publication{Title: "Ohne Jahr", Source: "IEEE Access"}
	provider := &fakeProvider{results: map[string]models.FetchResult{
		"111": {AuthorID: "111", Publications: []models.Publication{pub("A", "2020"), incomplete}},
	}}
	aggregator := newTestAggregator(provider)

	lenient := aggregator.FetchAuthor(context.Background(), []string{"111"}, models.IngestLenient)
	if len(lenient.Publications) != 2 {
		t.Errorf("lenient: Publications = %d, want 2", len(lenient.Publications))
	}

	strict := aggregator.FetchAuthor(context.Background(), []string{"111"}, models.IngestStrict)
	if len(strict.Publications) != 1 {
		t.Errorf("strict: Publications = %d, want 1", len(strict.Publications))
	}
	if len(strict.Publications) == 1 && strict.Publications[0].Title != "A" {
		t.Errorf("strict behält die falsche Publikation: %q", strict.Publications[0].Title)
	}
}

func TestFetchAuthorManyIDs(t *testing.T) {
	// Mehr IDs als das Parallelitäts-Limit; die Reihenfolge muss trotzdem
	// stimmen.
	results := map[string]models.FetchResult{}
	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("id-%d", i)
		ids = append(ids, id)
		results[id] = models.FetchResult{
			AuthorID:     id,
			Publications: []models.Publication{pub(id, "2020")},
		}
	}
	aggregator := newTestAggregator(&fakeProvider{results: results})

	author := aggregator.FetchAuthor(context.Background(), ids, models.IngestLenient)
	if len(author.Publications) != len(ids) {
		t.Fatalf("Publications = %d, want %d", len(author.Publications), len(ids))
	}
	for i, id := range ids {
		if author.Publications[i].Title != id {
			t.Fatalf("Position %d: %q, want %q", i, author.Publications[i].Title, id)
		}
	}
}

package services

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"scholar-metrics/models"
)

// RankingEntry ist eine Zeile des Journal-Ranking-Datensatzes.
type RankingEntry struct {
	NormalizedTitle string
	Year            string
	Categories      string
}

// RankingsTable hält den Journal-Ranking-Datensatz vollständig im Speicher.
// Nach dem Laden unveränderlich und damit ohne Synchronisation von parallelen
// Abrufen nutzbar. Eine nicht geladene Tabelle degradiert: jeder Lookup
// liefert dann den Sentinel "No disponible".
type RankingsTable struct {
	entries map[string][]RankingEntry // Schlüssel: normalisierter Titel
	loaded  bool
}

// LoadRankings liest den semikolon-getrennten Datensatz (Spalten Title, year,
// Categories) ein. Öffnungs- oder Parse-Fehler brechen den Start nicht ab,
// sondern liefern die degradierte Tabelle.
func LoadRankings(path string, logger *zap.Logger) *RankingsTable {
	table := &RankingsTable{entries: map[string][]RankingEntry{}}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Ranking-Datensatz konnte nicht geöffnet werden, Lookups liefern 'No disponible'",
			zap.String("path", path), zap.Error(err))
		return table
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		logger.Warn("Ranking-Datensatz ist leer oder unlesbar", zap.String("path", path), zap.Error(err))
		return table
	}

	titleCol, yearCol, categoriesCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			titleCol = i
		case "year":
			yearCol = i
		case "categories":
			categoriesCol = i
		}
	}
	if titleCol < 0 || yearCol < 0 || categoriesCol < 0 {
		logger.Warn("Ranking-Datensatz hat nicht die erwarteten Spalten Title/year/Categories",
			zap.String("path", path), zap.Strings("header", header))
		return table
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Ranking-Datensatz konnte nicht vollständig geparst werden, Tabelle degradiert",
				zap.String("path", path), zap.Error(err))
			return &RankingsTable{entries: map[string][]RankingEntry{}}
		}
		if titleCol >= len(record) || yearCol >= len(record) || categoriesCol >= len(record) {
			continue
		}

		key := NormalizeTitle(record[titleCol])
		table.entries[key] = append(table.entries[key], RankingEntry{
			NormalizedTitle: key,
			Year:            strings.TrimSpace(record[yearCol]),
			Categories:      strings.TrimSpace(record[categoriesCol]),
		})
		rows++
	}

	table.loaded = true
	logger.Info("Ranking-Datensatz geladen", zap.String("path", path), zap.Int("rows", rows))
	return table
}

// Lookup liefert den Kategorie-String eines Journals für ein Jahr.
// Degradierte Tabelle: "No disponible". Kein Treffer: "No indexada".
// Bei mehreren Treffern zählt die erste Zeile des Datensatzes.
func (t *RankingsTable) Lookup(journal, year string) string {
	if t == nil || !t.loaded {
		return models.CategoryUnavailable
	}
	for _, entry := range t.entries[NormalizeTitle(journal)] {
		if entry.Year == year {
			return entry.Categories
		}
	}
	return models.CategoryNotIndexed
}

// Loaded meldet, ob der Datensatz erfolgreich geladen wurde.
func (t *RankingsTable) Loaded() bool {
	return t != nil && t.loaded
}

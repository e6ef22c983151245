package services

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"scholar-metrics/models"
)

// AreaCount ist ein Eintrag der Fachbereichs-Verteilung.
type AreaCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ExtractAreas zählt Fachbereichs-Labels über alle Publikationen.
// Kategorien-Strings werden an ';' getrennt, Quartil-Zusätze ("(Q2)")
// abgeschnitten; leere Felder und die Sentinel-Werte werden übersprungen.
// Das Ergebnis ist absteigend nach Häufigkeit sortiert, bei Gleichstand
// bleibt die Reihenfolge des ersten Auftretens erhalten.
func ExtractAreas(pubs []models.Publication) []AreaCount {
	counts := map[string]int{}
	var order []string

	for _, p := range pubs {
		categories := strings.TrimSpace(p.Categories)
		if categories == "" || categories == models.CategoryUnavailable || categories == models.CategoryNotIndexed {
			continue
		}
		for _, token := range strings.Split(categories, ";") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if i := strings.Index(token, "("); i >= 0 {
				token = token[:i]
			}
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	result := make([]AreaCount, 0, len(order))
	for _, name := range order {
		result = append(result, AreaCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

// SubjectAreaIndex bildet rohe Kategorie-Labels auf ihren Haupt-Fachbereich
// ab. Wie die Ranking-Tabelle einmal beim Start geladen, danach
// unveränderlich; Ladefehler degradieren zu einem leeren Index.
type SubjectAreaIndex struct {
	areas      []models.SubjectArea
	byCategory map[string]models.SubjectArea // Schlüssel: Kategorie in Kleinschreibung
}

// LoadSubjectAreas liest den semikolon-getrennten Fachbereichs-Datensatz ein
// (Spalten: Schlüssel; Name; Kategorie-Liste, wiederum semikolon-getrennt und
// deshalb in Anführungszeichen).
func LoadSubjectAreas(path string, logger *zap.Logger) *SubjectAreaIndex {
	index := &SubjectAreaIndex{byCategory: map[string]models.SubjectArea{}}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Fachbereichs-Datensatz konnte nicht geöffnet werden, Zuordnung bleibt leer",
			zap.String("path", path), zap.Error(err))
		return index
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Fachbereichs-Datensatz konnte nicht vollständig geparst werden",
				zap.String("path", path), zap.Error(err))
			return &SubjectAreaIndex{byCategory: map[string]models.SubjectArea{}}
		}
		if len(record) < 3 {
			continue
		}

		area := models.SubjectArea{
			Key:  strings.TrimSpace(record[0]),
			Name: strings.TrimSpace(record[1]),
		}
		for _, category := range strings.Split(record[2], ";") {
			category = strings.TrimSpace(category)
			if category == "" {
				continue
			}
			area.Categories = append(area.Categories, category)
			index.byCategory[strings.ToLower(category)] = area
		}
		// Der Name selbst zählt ebenfalls als Synonym.
		index.byCategory[area.HashKey()] = area
		index.areas = append(index.areas, area)
	}

	logger.Info("Fachbereichs-Datensatz geladen", zap.String("path", path), zap.Int("areas", len(index.areas)))
	return index
}

// Areas liefert alle geladenen Fachbereiche in Datensatz-Reihenfolge.
func (ix *SubjectAreaIndex) Areas() []models.SubjectArea {
	return ix.areas
}

// AreaFor liefert den Haupt-Fachbereich eines Kategorie-Labels
// (case-insensitiv), sofern bekannt.
func (ix *SubjectAreaIndex) AreaFor(category string) (models.SubjectArea, bool) {
	area, ok := ix.byCategory[strings.ToLower(strings.TrimSpace(category))]
	return area, ok
}

// GroupByPrincipal faltet eine Label-Verteilung auf Haupt-Fachbereiche
// zusammen. Unbekannte Labels bleiben unter ihrem eigenen Namen erhalten.
// Sortierung wie bei ExtractAreas: Häufigkeit absteigend, Gleichstand stabil.
func (ix *SubjectAreaIndex) GroupByPrincipal(counts []AreaCount) []AreaCount {
	grouped := map[string]int{}
	var order []string

	for _, c := range counts {
		name := c.Name
		if area, ok := ix.AreaFor(c.Name); ok {
			name = area.Name
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] += c.Count
	}

	result := make([]AreaCount, 0, len(order))
	for _, name := range order {
		result = append(result, AreaCount{Name: name, Count: grouped[name]})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

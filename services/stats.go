package services

import (
	"regexp"
	"strconv"
	"strings"

	"scholar-metrics/models"
)

var quartileToken = regexp.MustCompile(`\(Q[1-4]\)`)

// YearDistribution liefert die Publikationen-Anzahl pro Jahr als lückenlose
// Reihe von min bis max: Jahre ohne Publikation erscheinen mit 0, damit
// nachgelagerte Diagramme eine durchgehende Achse rendern können.
// Publikationen ohne parsbares Jahr werden ignoriert; ohne verwertbare Jahre
// ist das Ergebnis leer.
func YearDistribution(pubs []models.Publication) map[string]int {
	var years []int
	for _, p := range pubs {
		if p.Year == "" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(p.Year))
		if err != nil {
			continue
		}
		years = append(years, year)
	}

	distribution := map[string]int{}
	if len(years) == 0 {
		return distribution
	}

	min, max := years[0], years[0]
	for _, y := range years[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	for y := min; y <= max; y++ {
		distribution[strconv.Itoa(y)] = 0
	}
	for _, y := range years {
		distribution[strconv.Itoa(y)]++
	}
	return distribution
}

// QuartileDistribution zählt die Quartil-Token (Q1..Q4) über alle
// Kategorie-Strings; eine Publikation mit mehreren eingestuften Kategorien
// zählt je Kategorie einmal. Die Sentinel-Fälle werden als eigene Schlüssel
// mitgezählt, damit Berichte den Anteil nicht eingestufter Publikationen
// ausweisen können.
func QuartileDistribution(pubs []models.Publication) map[string]int {
	distribution := map[string]int{}
	for _, p := range pubs {
		categories := strings.TrimSpace(p.Categories)
		switch categories {
		case "":
			continue
		case models.CategoryUnavailable, models.CategoryNotIndexed:
			distribution[categories]++
			continue
		}
		for _, token := range quartileToken.FindAllString(categories, -1) {
			distribution[strings.Trim(token, "()")]++
		}
	}
	return distribution
}

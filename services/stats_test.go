package services

import (
	"reflect"
	"testing"

	"scholar-metrics/models"
)

func TestYearDistribution(t *testing.T) {
	tests := []struct {
		name string
		pubs []models.Publication
		want map[string]int
	}{
		{
			name: "Lücken werden mit 0 aufgefüllt",
			pubs: []models.Publication{
				{Year: "2019"},
				{Year: "2022"},
				{Year: "2022"},
			},
			want: map[string]int{"2019": 1, "2020": 0, "2021": 0, "2022": 2},
		},
		{
			name: "unparsebare Jahre werden ignoriert",
			pubs: []models.Publication{
				{Year: "2021"},
				{Year: ""},
				{Year: "n/a"},
			},
			want: map[string]int{"2021": 1},
		},
		{
			name: "keine Publikationen",
			pubs: nil,
			want: map[string]int{},
		},
		{
			name: "nur unparsebare Jahre",
			pubs: []models.Publication{{Year: "unbekannt"}},
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearDistribution(tt.pubs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("YearDistribution = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuartileDistribution(t *testing.T) {
	pubs := []models.Publication{
		{Categories: "Engineering (Q2); Materials Science (Q1)"},
		{Categories: "Computer Science (Q1)"},
		{Categories: models.CategoryNotIndexed},
		{Categories: models.CategoryNotIndexed},
		{Categories: models.CategoryUnavailable},
		{Categories: ""},
	}

	got := QuartileDistribution(pubs)
	want := map[string]int{
		"Q1":                       2,
		"Q2":                       1,
		models.CategoryNotIndexed:  2,
		models.CategoryUnavailable: 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QuartileDistribution = %v, want %v", got, want)
	}
}

func TestQuartileDistributionNoTokens(t *testing.T) {
	// Kategorien ohne Quartil-Zusatz tragen nichts bei.
	pubs := []models.Publication{{Categories: "Engineering; Materials Science"}}
	if got := QuartileDistribution(pubs); len(got) != 0 {
		t.Errorf("QuartileDistribution = %v, want leer", got)
	}
}

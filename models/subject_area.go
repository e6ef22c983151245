package models

import "strings"

// SubjectArea ist ein benannter Fachbereich mit optionalem Schlüssel und den
// zugehörigen Kategorie-Synonymen aus dem Referenz-Datensatz.
type SubjectArea struct {
	Key        string   `json:"key,omitempty"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Equal vergleicht Fachbereiche case-insensitiv über den Namen.
func (s SubjectArea) Equal(o SubjectArea) bool {
	return strings.EqualFold(s.Name, o.Name)
}

// HashKey liefert den Map-Schlüssel eines Fachbereichs (Name in
// Kleinschreibung), konsistent zu Equal.
func (s SubjectArea) HashKey() string {
	return strings.ToLower(s.Name)
}

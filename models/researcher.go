package models

import "time"

// Researcher repräsentiert einen Forschenden der Institution.
type Researcher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string `json:"name" gorm:"not null"`
	Department string `json:"department,omitempty" gorm:"index"`
	Position   string `json:"position,omitempty"`

	Accounts []ScopusAccount `json:"accounts,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Researcher) TableName() string {
	return "researchers"
}

// ScopusAccount verknüpft einen Forschenden mit einer Scopus-Autoren-ID.
// Ein Forschender kann mehrere IDs halten.
type ScopusAccount struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ResearcherID uint   `json:"researcher_id" gorm:"index;not null"`
	ScopusID     string `json:"scopus_id" gorm:"uniqueIndex;not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (ScopusAccount) TableName() string {
	return "scopus_accounts"
}

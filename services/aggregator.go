package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholar-metrics/config"
	"scholar-metrics/models"
	"scholar-metrics/providers"
)

// AggregatorService orchestriert Abruf, Kategorisierung und Merge pro Autor
// sowie die Snapshot-Persistenz an der HTTP/Cron-Grenze.
type AggregatorService struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Provider providers.Provider
}

// NewAggregatorService erstellt eine neue Instanz des AggregatorService.
func NewAggregatorService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provider providers.Provider) *AggregatorService {
	return &AggregatorService{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Provider: provider,
	}
}

// FetchAuthor ruft alle übergebenen Scopus-IDs parallel (begrenzt) ab und
// faltet die Ergebnisse in einen einzigen Author. Die Publikationen stehen in
// der Reihenfolge der übergebenen IDs; ein Timeout oder Fehler einer ID
// bricht die übrigen Abrufe nicht ab, sondern landet als Text im
// Error-Feld des Ergebnisses.
func (s *AggregatorService) FetchAuthor(ctx context.Context, ids []string, mode models.IngestMode) models.Author {
	results := make([]models.FetchResult, len(ids))

	limit := s.Config.FetchConcurrency
	if limit <= 0 {
		limit = 5
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, limit)

	for i, id := range ids {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = s.Provider.FetchByAuthor(ctx, id)
			if results[i].Err != "" {
				s.Logger.Warn("Abruf für Scopus-ID fehlgeschlagen",
					zap.String("scopus_id", id), zap.String("error", results[i].Err))
			}
		}(i, id)
	}

	wg.Wait()
	return models.MergeResults(results, ids, mode)
}

// RunForResearcher führt den Abruf für alle verknüpften Scopus-IDs eines
// Forschenden aus und persistiert das Ergebnis als Snapshot.
func (s *AggregatorService) RunForResearcher(ctx context.Context, researcher models.Researcher, mode models.IngestMode) (models.Author, error) {
	log := s.Logger.With(zap.Uint("researcher_id", researcher.ID), zap.String("name", researcher.Name))

	accounts := researcher.Accounts
	if len(accounts) == 0 {
		if err := s.DB.Where("researcher_id = ?", researcher.ID).Find(&accounts).Error; err != nil {
			log.Error("Fehler beim Abrufen der verknüpften Scopus-Konten", zap.Error(err))
			return models.Author{}, err
		}
	}
	if len(accounts) == 0 {
		return models.Author{}, fmt.Errorf("forschende/r %d hat keine verknüpften Scopus-IDs", researcher.ID)
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ScopusID)
	}

	log.Info("Starte Abruf für Forschende/n", zap.Strings("scopus_ids", ids))
	author := s.FetchAuthor(ctx, ids, mode)

	if err := s.storeSnapshot(researcher.ID, author.Publications); err != nil {
		log.Error("Snapshot konnte nicht gespeichert werden", zap.Error(err))
		return author, err
	}

	log.Info("Abruf für Forschende/n abgeschlossen",
		zap.Int("publications", len(author.Publications)),
		zap.Bool("partial_errors", author.Error != ""))
	return author, nil
}

// RunForAllResearchers führt den Abruf für alle Forschenden aus. Fehler
// einzelner Forschender werden geloggt und übersprungen. Gibt die Gesamtzahl
// der abgerufenen Publikationen zurück.
func (s *AggregatorService) RunForAllResearchers(ctx context.Context) (int, error) {
	var researchers []models.Researcher
	if err := s.DB.Preload("Accounts").Find(&researchers).Error; err != nil {
		s.Logger.Error("Fehler beim Abrufen der Forschenden", zap.Error(err))
		return 0, err
	}

	total := 0
	for _, researcher := range researchers {
		if len(researcher.Accounts) == 0 {
			continue
		}
		author, err := s.RunForResearcher(ctx, researcher, models.IngestLenient)
		if err != nil {
			s.Logger.Error("Fehler beim Verarbeiten der/des Forschenden",
				zap.Uint("researcher_id", researcher.ID), zap.Error(err))
			continue
		}
		total += len(author.Publications)
	}
	return total, nil
}

// LoadSnapshot liest die zuletzt gespeicherten Publikationen eines
// Forschenden aus der Datenbank.
func (s *AggregatorService) LoadSnapshot(researcherID uint) ([]models.Publication, error) {
	var records []models.PublicationRecord
	if err := s.DB.Where("researcher_id = ?", researcherID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	publications := make([]models.Publication, 0, len(records))
	for i := range records {
		publications = append(publications, records[i].Publication())
	}
	return publications, nil
}

// storeSnapshot persistiert die Publikationen eines Abrufs als Upsert über
// den Dedup-Schlüssel, damit wiederholte Abrufe keine Duplikate anlegen.
func (s *AggregatorService) storeSnapshot(researcherID uint, publications []models.Publication) error {
	for _, p := range publications {
		record := models.NewPublicationRecord(researcherID, p)
		err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "researcher_id"}, {Name: "dedup_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "year", "source", "document_type", "affiliation", "doi", "categories", "updated_at",
			}),
		}).Create(&record).Error
		if err != nil {
			return err
		}
	}
	return nil
}

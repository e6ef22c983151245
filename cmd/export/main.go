package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appconfig "scholar-metrics/config"
	"scholar-metrics/models"
	"scholar-metrics/providers/scopus"
	"scholar-metrics/services"
	"scholar-metrics/storage"
)

// ExportConfig ergänzt die reguläre Service-Konfiguration um die Parameter,
// die nur das Export-Werkzeug braucht.
type ExportConfig struct {
	KeepExports int `envconfig:"KEEP_EXPORTS" default:"4"`
}

func main() {
	log.Println("Starte Statistik-Export...")

	var exportCfg ExportConfig
	if err := envconfig.Process("", &exportCfg); err != nil {
		log.Fatalf("Fehler beim Laden der Export-Konfiguration: %v", err)
	}

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Service-Konfiguration: %v", err)
	}
	if cfg.ExportS3Bucket == "" || cfg.ExportS3URL == "" {
		log.Fatal("EXPORT_S3_BUCKET und EXPORT_S3_URL müssen gesetzt sein.")
	}

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Fehler beim Initialisieren des Loggers: %v", err)
	}
	defer logging.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Fehler beim Verbinden mit der Datenbank: %v", err)
	}

	rankings := services.LoadRankings(cfg.RankingsCSVPath, logging)
	areas := services.LoadSubjectAreas(cfg.SubjectAreasCSVPath, logging)
	aggregator := services.NewAggregatorService(cfg, db, logging, scopus.NewFetcher(cfg, logging, rankings))

	// 1. Statistiken rendern
	data, err := renderStatsCSV(context.Background(), db, aggregator, areas)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen der Statistik-Datei: %v", err)
	}

	// 2. S3-Client erstellen
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	// 3. Export nach S3 hochladen
	fileName := fmt.Sprintf("stats-%s.csv", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := storage.UploadFile(s3Client, cfg.ExportS3Bucket, fileName, data, cfg)
	if err != nil {
		log.Fatalf("Fehler beim Hochladen nach S3: %v", err)
	}
	log.Printf("Export erfolgreich hochgeladen: %s", link)

	// 4. Alte Exporte rotieren
	if err := rotateExports(s3Client, cfg.ExportS3Bucket, exportCfg.KeepExports); err != nil {
		log.Fatalf("Fehler bei der Rotation alter Exporte: %v", err)
	}

	log.Println("Statistik-Export erfolgreich abgeschlossen.")
}

// renderStatsCSV ruft für alle Forschenden die Pipeline auf und schreibt die
// Verteilungen im Long-Format (eine Zeile pro Metrik-Schlüssel).
func renderStatsCSV(ctx context.Context, db *gorm.DB, aggregator *services.AggregatorService, areas *services.SubjectAreaIndex) ([]byte, error) {
	var researchers []models.Researcher
	if err := db.Preload("Accounts").Find(&researchers).Error; err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'
	if err := writer.Write([]string{"researcher_id", "name", "metric", "key", "count"}); err != nil {
		return nil, err
	}

	for _, researcher := range researchers {
		if len(researcher.Accounts) == 0 {
			continue
		}
		author, err := aggregator.RunForResearcher(ctx, researcher, models.IngestLenient)
		if err != nil {
			log.Printf("Überspringe Forschende/n %d: %v", researcher.ID, err)
			continue
		}

		id := strconv.FormatUint(uint64(researcher.ID), 10)
		writeSorted(writer, id, researcher.Name, "year", services.YearDistribution(author.Publications))
		writeSorted(writer, id, researcher.Name, "quartile", services.QuartileDistribution(author.Publications))
		for _, area := range areas.GroupByPrincipal(services.ExtractAreas(author.Publications)) {
			writer.Write([]string{id, researcher.Name, "area", area.Name, strconv.Itoa(area.Count)})
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// writeSorted schreibt eine Verteilung mit deterministischer
// Schlüssel-Reihenfolge.
func writeSorted(writer *csv.Writer, id, name, metric string, distribution map[string]int) {
	keys := make([]string, 0, len(distribution))
	for key := range distribution {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writer.Write([]string{id, name, metric, key, strconv.Itoa(distribution[key])})
	}
}

// rotateExports behält die jüngsten keep Exporte und löscht den Rest.
func rotateExports(client *s3.Client, bucket string, keep int) error {
	output, err := client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return err
	}

	if len(output.Contents) <= keep {
		log.Printf("Höchstens %d Exporte vorhanden, keine Rotation nötig.", keep)
		return nil
	}

	sort.Slice(output.Contents, func(i, j int) bool {
		return output.Contents[i].LastModified.After(*output.Contents[j].LastModified)
	})

	for _, obj := range output.Contents[keep:] {
		log.Printf("Lösche alten Export: %s", *obj.Key)
		_, err := client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		})
		if err != nil {
			log.Printf("Fehler beim Löschen von %s: %v", *obj.Key, err)
		}
	}

	return nil
}

package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	ScopusBaseURL string `envconfig:"SCOPUS_BASE_URL" default:"https://api.elsevier.com/content/search/scopus"`
	ScopusAPIKey  string `envconfig:"SCOPUS_API_KEY" required:"true"`

	// Institutionsname für die Filiation-Klassifikation (case-insensitiver Teilstring).
	InstitutionName string `envconfig:"INSTITUTION_NAME" default:"Universidad Técnica del Norte"`

	// Referenz-Datensätze (semikolon-getrennt). Fehlen sie, degradieren die
	// betroffenen Lookups statt den Start abzubrechen.
	RankingsCSVPath     string `envconfig:"RANKINGS_CSV_PATH" default:"data/rankings.csv"`
	SubjectAreasCSVPath string `envconfig:"SUBJECT_AREAS_CSV_PATH" default:"data/subject_areas.csv"`

	FetchConcurrency      int `envconfig:"FETCH_CONCURRENCY" default:"5"`
	FetchTimeoutSeconds   int `envconfig:"FETCH_TIMEOUT_SECONDS" default:"120"`
	ConnectTimeoutSeconds int `envconfig:"CONNECT_TIMEOUT_SECONDS" default:"10"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`

	ExportS3Key    string `envconfig:"EXPORT_S3_KEY"`
	ExportS3Secret string `envconfig:"EXPORT_S3_SECRET"`
	ExportS3URL    string `envconfig:"EXPORT_S3_URL"`
	ExportS3Region string `envconfig:"EXPORT_S3_REGION"`
	ExportS3Bucket string `envconfig:"EXPORT_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"scholar-metrics/config"
	"scholar-metrics/models"
	"scholar-metrics/providers/scopus"
	"scholar-metrics/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var publicationsFetchedCounter prometheus.Counter

func init() {
	publicationsFetchedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publications_fetched_total",
			Help: "Total number of publications fetched from Scopus.",
		},
	)
	prometheus.MustRegister(publicationsFetchedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Researcher{}, &models.ScopusAccount{}, &models.PublicationRecord{})

	// Referenz-Datensätze einmal laden; danach unveränderlich und von allen
	// parallelen Abrufen gemeinsam genutzt. Ladefehler degradieren die
	// Lookups, statt den Start abzubrechen.
	rankings := services.LoadRankings(cfg.RankingsCSVPath, logging)
	areas := services.LoadSubjectAreas(cfg.SubjectAreasCSVPath, logging)

	// Setup Services
	fetcher := scopus.NewFetcher(cfg, logging, rankings)
	aggregator := services.NewAggregatorService(cfg, db, logging, fetcher)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupResearcherRoutes(router, db, logging)
	setupPublicationRoutes(router, db, aggregator, areas, logging)
	setupFetchRoutes(router, aggregator)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled refresh job...")
		count, err := aggregator.RunForAllResearchers(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
		} else {
			logging.Info("Cron job completed", zap.Int("publications_fetched", count))
			publicationsFetchedCounter.Add(float64(count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Abruf-Endpunkte warten auf Scopus; WriteTimeout muss über dem
		// Fetch-Timeout liegen.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupResearcherRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/researchers")

	rg.POST("/", func(c *gin.Context) {
		var researcher models.Researcher
		if err := c.ShouldBindJSON(&researcher); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if researcher.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		if err := db.Create(&researcher).Error; err != nil {
			log.Error("Failed to create researcher", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create researcher"})
			return
		}
		c.JSON(http.StatusCreated, researcher)
	})

	rg.GET("/", func(c *gin.Context) {
		var researchers []models.Researcher
		if err := db.Preload("Accounts").Find(&researchers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, researchers)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var researcher models.Researcher
		if err := db.Preload("Accounts").First(&researcher, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
				return
			}
			log.Error("DB error fetching researcher", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, researcher)
	})

	// Scopus-Konto-Verknüpfung
	rg.POST("/:id/accounts", func(c *gin.Context) {
		id := c.Param("id")
		var researcher models.Researcher
		if err := db.First(&researcher, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
			return
		}

		var account models.ScopusAccount
		if err := c.ShouldBindJSON(&account); err != nil || account.ScopusID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scopus_id is required"})
			return
		}
		account.ResearcherID = researcher.ID

		if err := db.Create(&account).Error; err != nil {
			log.Error("Failed to link scopus account", zap.String("scopus_id", account.ScopusID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link scopus account"})
			return
		}
		c.JSON(http.StatusCreated, account)
	})

	rg.GET("/:id/accounts", func(c *gin.Context) {
		id := c.Param("id")
		var accounts []models.ScopusAccount
		if err := db.Where("researcher_id = ?", id).Find(&accounts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, accounts)
	})

	rg.DELETE("/:id/accounts/:accountID", func(c *gin.Context) {
		result := db.Where("researcher_id = ? AND id = ?", c.Param("id"), c.Param("accountID")).
			Delete(&models.ScopusAccount{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "account unlinked"})
	})
}

// setupPublicationRoutes konfiguriert Publikations- und Statistik-Endpunkte.
func setupPublicationRoutes(router *gin.Engine, db *gorm.DB, aggregator *services.AggregatorService, areas *services.SubjectAreaIndex, log *zap.Logger) {
	rg := router.Group("/researchers")

	// GET /researchers/:id/publications?strict=1
	// Führt die Pipeline live über alle verknüpften Scopus-IDs aus. Mit
	// strict=1 verwirft die Sammel-Übernahme unvollständige Publikationen,
	// standardmäßig werden sie durchgereicht.
	rg.GET("/:id/publications", func(c *gin.Context) {
		id := c.Param("id")
		var researcher models.Researcher
		if err := db.Preload("Accounts").First(&researcher, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if len(researcher.Accounts) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "researcher has no linked scopus accounts"})
			return
		}

		mode := models.IngestLenient
		if c.Query("strict") == "1" {
			mode = models.IngestStrict
		}

		author, err := aggregator.RunForResearcher(c.Request.Context(), researcher, mode)
		if err != nil {
			log.Error("Failed to fetch publications", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch publications"})
			return
		}
		publicationsFetchedCounter.Add(float64(len(author.Publications)))

		c.JSON(http.StatusOK, author)
	})

	// GET /researchers/:id/stats
	// Bedient die Verteilungen aus dem letzten Snapshot; ohne Snapshot wird
	// einmal live abgerufen.
	rg.GET("/:id/stats", func(c *gin.Context) {
		id := c.Param("id")
		var researcher models.Researcher
		if err := db.Preload("Accounts").First(&researcher, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "researcher not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		publications, err := aggregator.LoadSnapshot(researcher.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		fetchError := ""
		if len(publications) == 0 && len(researcher.Accounts) > 0 {
			author, err := aggregator.RunForResearcher(c.Request.Context(), researcher, models.IngestLenient)
			if err != nil {
				log.Error("Failed to fetch publications for stats", zap.String("id", id), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch publications"})
				return
			}
			publicationsFetchedCounter.Add(float64(len(author.Publications)))
			publications = author.Publications
			fetchError = author.Error
		}

		labelCounts := services.ExtractAreas(publications)
		response := gin.H{
			"researcher_id":     researcher.ID,
			"publications":      len(publications),
			"year_distribution": services.YearDistribution(publications),
			"subject_areas":     labelCounts,
			"principal_areas":   areas.GroupByPrincipal(labelCounts),
			"quartiles":         services.QuartileDistribution(publications),
		}
		if fetchError != "" {
			response["error"] = fetchError
		}
		c.JSON(http.StatusOK, response)
	})
}

func setupFetchRoutes(router *gin.Engine, aggregator *services.AggregatorService) {
	rg := router.Group("/fetch")
	rg.POST("/all", func(c *gin.Context) {
		go func() {
			count, err := aggregator.RunForAllResearchers(context.Background())
			if err != nil {
				aggregator.Logger.Error("Async refresh for all researchers failed", zap.Error(err))
			} else {
				publicationsFetchedCounter.Add(float64(count))
				aggregator.Logger.Info("Async refresh for all researchers completed", zap.Int("publications_fetched", count))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Refresh for all researchers triggered."})
	})
}

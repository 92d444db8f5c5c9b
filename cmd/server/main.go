package main

import (
	"fmt"
	"log"

	"claritax/internal/batch"
	"claritax/internal/catalog"
	"claritax/internal/config"
	"claritax/internal/handler"
	"claritax/internal/insight"
	"claritax/internal/port"
	"claritax/internal/repository/postgres"
	"claritax/internal/router"
	"claritax/internal/service"
	s3storage "claritax/internal/storage/s3"
	"claritax/internal/taxengine"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	catalogRepo := postgres.NewCatalogRepo(db)
	insightRepo := postgres.NewInsightRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)

	// Initialize storage
	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize engine
	calc := taxengine.NewCalculator(taxengine.Rates{
		IBSNominal:     cfg.Tax.IBSNominal,
		CBSNominal:     cfg.Tax.CBSNominal,
		LegacyFood:     cfg.Tax.LegacyFood,
		LegacyGeneral:  cfg.Tax.LegacyGeneral,
		CashbackPct:    cfg.Tax.CashbackPct,
		ReferencePrice: taxengine.DefaultRates().ReferencePrice,
	})
	resolver := catalog.NewResolver(catalogRepo)
	analyzer := batch.NewAnalyzer(resolver, calc)

	var generator port.InsightGenerator
	if cfg.Insight.APIKey != "" {
		generator = insight.NewClaudeGenerator(&cfg.Insight)
	}
	selector := insight.NewSelector(insightRepo, generator)

	// Initialize services
	productSvc := service.NewProductService(resolver, calc, selector)
	analysisSvc := service.NewAnalysisService(analyzer, analysisRepo, storage, &cfg.S3)

	// Initialize handlers
	productH := handler.NewProductHandler(productSvc)
	analysisH := handler.NewAnalysisHandler(analysisSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, productH, analysisH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

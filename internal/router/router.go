package router

import (
	"github.com/gin-gonic/gin"

	"claritax/internal/config"
	"claritax/internal/handler"
	"claritax/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	productH *handler.ProductHandler,
	analysisH *handler.AnalysisHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Product resolution
	products := v1.Group("/products")
	products.GET("/search", productH.Search)
	products.GET("/barcode/:code", productH.GetByBarcode)
	products.GET("/:id", productH.GetByID)
	products.POST("/lookup", productH.Lookup)

	// Bulk document analysis
	analyses := v1.Group("/analyses")
	analyses.POST("", analysisH.Analyze)
	analyses.GET("/:id", analysisH.Get)
	analyses.GET("/:id/export", analysisH.ExportCSV)

	return r
}

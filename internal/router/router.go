package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stemsi/courses-backend/internal/config"
	"github.com/stemsi/courses-backend/internal/handler"
	"github.com/stemsi/courses-backend/internal/middleware"
	"github.com/stemsi/courses-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Course  *handler.CourseHandler
	Catalog *handler.CatalogHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// A nil registry disables the /metrics endpoint.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	if reg != nil {
		router.Use(middleware.NewMetrics(reg).Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	router.Use(middleware.Brotli(cfg.CompressionMinBytes))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Writes are rate limited per client IP when configured.
	writeGuard := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitPerMinute > 0 {
		writeGuard = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware()
	}

	// ─── 1. Persistent courses (numeric id) ────────────────────────────
	courses := router.Group("/api/courses")
	{
		courses.GET("", handlers.Course.ListCourses)
		courses.GET("/:id", handlers.Course.GetCourse)
		courses.POST("", writeGuard, handlers.Course.CreateCourse)
		courses.PUT("/:id", writeGuard, handlers.Course.UpdateCourse)
		courses.PATCH("/:id", writeGuard, handlers.Course.UpdateCourse)
		courses.DELETE("/:id", writeGuard, handlers.Course.DeleteCourse)
	}

	// ─── 2. Catalog courses (caller-chosen id) ─────────────────────────
	catalog := router.Group("/api/v1/courses")
	{
		catalog.GET("", handlers.Catalog.ListCourses)
		catalog.GET("/:courseId", handlers.Catalog.GetCourse)
		catalog.POST("", writeGuard, handlers.Catalog.CreateCourse)
		catalog.PUT("/:courseId", writeGuard, handlers.Catalog.ReplaceCourse)
		catalog.PATCH("/:courseId", writeGuard, handlers.Catalog.PatchCourse)
		catalog.DELETE("/:courseId", writeGuard, handlers.Catalog.DeleteCourse)
	}

	return router
}

// Package api wires together all HTTP routes for the CigarDB backend.
//
// Route grouping philosophy:
//   - /health, /ready, and /version are unauthenticated so load balancers and
//     orchestrators can probe the service without credentials.
//   - Every catalog route requires an api_key and passes through the burst
//     throttle, quota accounting, and audit logging.
//   - /moderate routes additionally require the moderator tier.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cigardb/cigardb/internal/audit"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/db/repositories"
	"github.com/cigardb/cigardb/internal/jobs"
	"github.com/cigardb/cigardb/internal/middleware"
	"github.com/cigardb/cigardb/internal/moderation"
	"github.com/cigardb/cigardb/internal/safego"
	"github.com/cigardb/cigardb/internal/vocab"
)

// Version is the service version reported by /version
const Version = "1.0.0"

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) is
// responsible for calling Shutdown() when the process receives a termination
// signal.
type BackgroundServices struct {
	vocabRefresher *jobs.VocabRefresher
	localThrottle  *middleware.LocalThrottle
	auditShipper   audit.Shipper
	logger         *slog.Logger
}

// Shutdown stops all background goroutines and closes shippers. It should be
// called after the HTTP server has been shut down so that in-flight requests
// are drained first.
func (bg *BackgroundServices) Shutdown() {
	bg.logger.Info("stopping background services")
	if bg.vocabRefresher != nil {
		bg.vocabRefresher.Stop()
	}
	if bg.localThrottle != nil {
		bg.localThrottle.Stop()
	}
	if bg.auditShipper != nil {
		if err := bg.auditShipper.Close(); err != nil {
			bg.logger.Error("failed to close audit shipper", "error", err)
		}
	}
	bg.logger.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router. rdb may be nil when Redis
// is not configured; the vocabulary cache and the throttle then run without it.
func NewRouter(cfg *config.Config, db *sql.DB, rdb *redis.Client, logger *slog.Logger) (*gin.Engine, *BackgroundServices, error) {
	router := gin.New()

	keyRepo := repositories.NewAccessKeyRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	cigarRepo := repositories.NewCigarRepository(db)
	requestRepo := repositories.NewPendingRequestRepository(db)
	domainRepo := repositories.NewAttributeDomainRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	vocabStore := vocab.NewStore(domainRepo, rdb, cfg.Vocabulary.CacheTTL, logger)
	svc := moderation.NewService(brandRepo, cigarRepo, requestRepo, vocabStore, logger)

	shipper, err := newAuditShipper(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// The vocabulary refresher keeps the Redis cache warm; without Redis the
	// store reads the database directly and the loop has nothing to do.
	var refresher *jobs.VocabRefresher
	if rdb != nil {
		refresher = jobs.NewVocabRefresher(vocabStore, cfg.Vocabulary.RefreshInterval, logger)
		safego.Go(func() {
			refresher.Start(context.Background())
		})
	}

	var localThrottle *middleware.LocalThrottle
	if rdb == nil && cfg.Security.Throttle.Enabled {
		localThrottle = middleware.NewLocalThrottle(
			cfg.Security.Throttle.RequestsPerMinute,
			cfg.Security.Throttle.Burst,
		)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, rdb))
	router.GET("/version", versionHandler())

	brandHandlers := NewBrandHandlers(brandRepo, svc, cfg)
	cigarHandlers := NewCigarHandlers(cigarRepo, svc, cfg)
	modHandlers := NewModerationHandlers(svc)
	domainHandlers := NewDomainHandlers(vocabStore)

	authed := router.Group("")
	authed.Use(middleware.Throttle(cfg.Security.Throttle, rdb, localThrottle, logger))
	authed.Use(middleware.AuthMiddleware(keyRepo, cfg))
	authed.Use(middleware.AuditMiddlewareWithShipper(auditRepo, shipper, &cfg.Audit, logger))
	{
		authed.GET("/brands", brandHandlers.List)
		authed.GET("/brands/:id", brandHandlers.Get)
		authed.POST("/brands", brandHandlers.Create)
		authed.PUT("/brands/:id", brandHandlers.Update)
		authed.DELETE("/brands/:id", brandHandlers.Delete)

		authed.GET("/cigars", cigarHandlers.List)
		authed.GET("/cigars/:id", cigarHandlers.Get)
		authed.POST("/cigars", cigarHandlers.Create)
		authed.PUT("/cigars/:id", cigarHandlers.Update)
		authed.DELETE("/cigars/:id", cigarHandlers.Delete)

		authed.GET("/cigarDomainValues", domainHandlers.List)

		mod := authed.Group("/moderate")
		mod.Use(middleware.RequireModerator())
		{
			mod.GET("/brandsCreateRequests", modHandlers.ListBrandCreates)
			mod.PUT("/brandsCreateRequests/:id", modHandlers.ApproveCreate(models.EntityBrand))
			mod.DELETE("/brandsCreateRequests/:id", modHandlers.DenyCreate(models.EntityBrand))

			mod.GET("/cigarsCreateRequests", modHandlers.ListCigarCreates)
			mod.PUT("/cigarsCreateRequests/:id", modHandlers.ApproveCreate(models.EntityCigar))
			mod.DELETE("/cigarsCreateRequests/:id", modHandlers.DenyCreate(models.EntityCigar))

			mod.GET("/brandsUpdateRequests", modHandlers.ListRequests(models.EntityBrand, models.KindUpdate))
			mod.PUT("/brandsUpdateRequests/:id", modHandlers.ApproveRequest)
			mod.DELETE("/brandsUpdateRequests/:id", modHandlers.DenyRequest)

			mod.GET("/brandsDeleteRequests", modHandlers.ListRequests(models.EntityBrand, models.KindDelete))
			mod.PUT("/brandsDeleteRequests/:id", modHandlers.ApproveRequest)
			mod.DELETE("/brandsDeleteRequests/:id", modHandlers.DenyRequest)

			mod.GET("/cigarsUpdateRequests", modHandlers.ListRequests(models.EntityCigar, models.KindUpdate))
			mod.PUT("/cigarsUpdateRequests/:id", modHandlers.ApproveRequest)
			mod.DELETE("/cigarsUpdateRequests/:id", modHandlers.DenyRequest)

			mod.GET("/cigarsDeleteRequests", modHandlers.ListRequests(models.EntityCigar, models.KindDelete))
			mod.PUT("/cigarsDeleteRequests/:id", modHandlers.ApproveRequest)
			mod.DELETE("/cigarsDeleteRequests/:id", modHandlers.DenyRequest)
		}
	}

	bg := &BackgroundServices{
		vocabRefresher: refresher,
		localThrottle:  localThrottle,
		auditShipper:   shipper,
		logger:         logger,
	}

	return router, bg, nil
}

// newAuditShipper builds the external audit destinations from config.
// Returns nil when auditing is disabled or no shipper is configured.
func newAuditShipper(cfg *config.Config, logger *slog.Logger) (audit.Shipper, error) {
	if !cfg.Audit.Enabled || len(cfg.Audit.Shippers) == 0 {
		return nil, nil
	}

	configs := make([]audit.ShipperConfig, 0, len(cfg.Audit.Shippers))
	for _, sc := range cfg.Audit.Shippers {
		out := audit.ShipperConfig{
			Enabled: sc.Enabled,
			Type:    sc.Type,
		}
		if sc.File != nil {
			out.File = &audit.FileConfig{Path: sc.File.Path}
		}
		if sc.Webhook != nil {
			out.Webhook = &audit.WebhookConfig{
				URL:     sc.Webhook.URL,
				Headers: sc.Webhook.Headers,
				Timeout: time.Duration(sc.Webhook.TimeoutSecs) * time.Second,
			}
		}
		configs = append(configs, out)
	}

	return audit.NewMultiShipper(configs, logger)
}

// healthCheckHandler reports liveness, including database connectivity
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler reports whether the service is ready to accept traffic.
// Unlike the liveness probe, this also checks Redis when configured, so a
// readiness gate fails while the throttle backend is unreachable.
func readinessHandler(db *sql.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				checks["redis"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "redis not ready",
				})
				return
			}
			checks["redis"] = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware emits one structured log record per request
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.Any("request_id", requestID),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles cross-origin requests against the configured
// origin allow-list
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Package main is the entry point for the CigarDB server binary. It
// dispatches four subcommands — serve, migrate, seed, and version — via a
// simple switch on os.Args so the binary's full CLI surface is readable in
// one place without requiring a cobra dependency. The serve command runs
// auto-migration on startup so freshly deployed containers never need a
// separate migration step.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cigardb/cigardb/internal/api"
	"github.com/cigardb/cigardb/internal/auth"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/db/repositories"
	"github.com/cigardb/cigardb/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: %s migrate <up|down>", os.Args[0])
		}
		return runMigrations(cfg, os.Args[2])
	case "seed":
		return seed(cfg)
	case "version":
		fmt.Printf("CigarDB v%s\n", api.Version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, migrate, seed, version", command)
	}
}

func serve(cfg *config.Config) error {
	// Initialise structured logger as early as possible so all subsequent log
	// output uses the configured format (json / text) and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)
	logger := slog.Default()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	logger.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	// Begin exporting DB pool statistics to Prometheus.
	telemetry.StartDBStatsCollector(database.DB)

	// Run migrations automatically on startup.
	if err := db.RunMigrations(database.DB, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if version, dirty, err := db.GetMigrationVersion(database.DB); err != nil {
		logger.Warn("failed to read migration version", "error", err)
	} else {
		logger.Info("database schema ready", "version", version, "dirty", dirty)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("redis not configured, using in-process vocabulary reads and throttle")
	}

	// Serve Prometheus metrics on a dedicated port so the scrape path is not
	// reachable through the public API ingress.
	if cfg.Telemetry.Metrics.Enabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.Metrics.PrometheusPort)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("starting Prometheus metrics server", "addr", metricsAddr)
			srv := &http.Server{
				Addr:         metricsAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	router, bgServices, err := api.NewRouter(cfg, database.DB, rdb, logger)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.Server.GetAddress(), "base_url", cfg.Server.BaseURL)

		var err error
		if cfg.Security.TLS.Enabled {
			logger.Info("TLS enabled", "cert", cfg.Security.TLS.CertFile)
			err = server.ListenAndServeTLS(cfg.Security.TLS.CertFile, cfg.Security.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop background jobs after in-flight requests have drained.
	bgServices.Shutdown()

	logger.Info("server stopped gracefully")
	return nil
}

func runMigrations(cfg *config.Config, direction string) error {
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	log.Printf("Running migrations: %s", direction)

	if err := db.RunMigrations(database.DB, direction); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := db.GetMigrationVersion(database.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Printf("Migration completed successfully. Current version: %d (dirty: %v)", version, dirty)
	return nil
}

// starterVocabularies are the value sets installed by the seed command. They
// cover the common trade vocabulary; moderators extend them in production.
var starterVocabularies = map[string][]string{
	models.VocabVitola:   {"Corona", "Robusto", "Toro", "Churchill", "Torpedo", "Gordo", "Lancero", "Petit Corona"},
	models.VocabColor:    {"Claro", "Colorado Claro", "Colorado", "Colorado Maduro", "Maduro", "Oscuro"},
	models.VocabCountry:  {"Cuba", "Dominican Republic", "Nicaragua", "Honduras", "Mexico", "United States", "Ecuador", "Cameroon"},
	models.VocabStrength: {"Mild", "Mild-Medium", "Medium", "Medium-Full", "Full"},
	models.VocabWrappers: {"Connecticut", "Connecticut Broadleaf", "Habano", "Corojo", "Criollo", "Sumatra", "Cameroon", "San Andres"},
	models.VocabBinders:  {"Connecticut Broadleaf", "Habano", "Corojo", "Criollo", "Sumatra", "San Andres"},
	models.VocabFillers:  {"Dominican", "Nicaraguan", "Honduran", "Cuban", "Mexican", "Brazilian"},
}

// seed bootstraps a fresh database with the controlled vocabularies, an admin
// user, and one access key per tier. The generated keys are printed once;
// only the keys themselves are stored.
func seed(cfg *config.Config) error {
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var existing int
	if err := database.GetContext(ctx, &existing, `SELECT COUNT(*) FROM users`); err != nil {
		return fmt.Errorf("failed to inspect users table: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("database already contains %d user(s); refusing to seed", existing)
	}

	domainRepo := repositories.NewAttributeDomainRepository(database.DB)
	for _, name := range models.VocabularyNames {
		domain := &models.AttributeDomain{Name: name, ValSet: starterVocabularies[name]}
		if err := domainRepo.UpsertDomain(ctx, domain); err != nil {
			return fmt.Errorf("failed to seed vocabulary %s: %w", name, err)
		}
	}
	log.Printf("Seeded %d vocabularies", len(models.VocabularyNames))

	adminUser, err := seedAdminUser(ctx, database)
	if err != nil {
		return err
	}

	keyRepo := repositories.NewAccessKeyRepository(database.DB)
	tiers := []struct {
		name  string
		level models.AccessLevel
	}{
		{"seeded developer key", models.LevelDeveloper},
		{"seeded premium key", models.LevelPremium},
		{"seeded moderator key", models.LevelModerator},
	}

	for _, tier := range tiers {
		apiKey, err := auth.GenerateAPIKey(cfg.API.KeyPrefix)
		if err != nil {
			return fmt.Errorf("failed to generate API key: %w", err)
		}

		key := &models.AccessKey{
			APIKey:      apiKey,
			UserID:      &adminUser.ID,
			Name:        tier.name,
			AccessLevel: tier.level,
		}
		if err := keyRepo.CreateAccessKey(ctx, key); err != nil {
			return fmt.Errorf("failed to create %s: %w", tier.name, err)
		}

		log.Printf("%-22s %s", tier.name+":", apiKey)
	}

	log.Println("Seed completed. Store the keys above; they are not shown again.")
	return nil
}

func seedAdminUser(ctx context.Context, database *sqlx.DB) (*models.User, error) {
	password := os.Getenv("CDB_SEED_PASSWORD")
	if password == "" {
		// The password is only ever used to log into the admin account; a
		// random throwaway forces the operator to set a real one.
		generated, err := auth.GenerateAPIKey("pw")
		if err != nil {
			return nil, fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = generated
		log.Printf("CDB_SEED_PASSWORD not set; generated admin password: %s", password)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &models.User{
		Username:     "admin",
		Email:        "admin@localhost",
		PasswordHash: hash,
	}

	userRepo := repositories.NewUserRepository(database.DB)
	if err := userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Created admin user %s (%s)", user.Username, user.ID)
	return user, nil
}

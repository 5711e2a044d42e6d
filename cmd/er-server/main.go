package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/acil/er-api/internal/config"
	"github.com/acil/er-api/internal/domain/appointment"
	"github.com/acil/er-api/internal/domain/doctornote"
	"github.com/acil/er-api/internal/domain/medical"
	"github.com/acil/er-api/internal/domain/patient"
	"github.com/acil/er-api/internal/domain/triage"
	"github.com/acil/er-api/internal/domain/user"
	"github.com/acil/er-api/internal/platform/auth"
	"github.com/acil/er-api/internal/platform/db"
	"github.com/acil/er-api/internal/platform/inference"
	"github.com/acil/er-api/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "er-server",
		Short: "Emergency room patient flow API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default clinical users if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			userSvc := user.NewService(user.NewRepoPG(pool), []byte(cfg.JWTSecret), cfg.TokenTTL())
			if err := userSvc.Seed(ctx); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Seed complete.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Reference dataset
	dataset, err := medical.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load medical dataset")
	}
	logger.Info().Int("records", len(dataset.All())).Msg("loaded medical dataset")

	// Inference collaborator. Without an API key triage still works, records
	// are just saved without urgency suggestions.
	var suggester inference.Suggester = inference.Disabled{}
	if cfg.AnthropicAPIKey != "" {
		suggester = inference.NewAnthropicSuggester(cfg.AnthropicAPIKey, cfg.InferenceModel)
		logger.Info().Str("model", cfg.InferenceModel).Msg("inference collaborator enabled")
	} else {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set; triage urgency suggestions are disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Staff routes require a token; in development every request passes as an
	// admin so the API can be exercised without logging in.
	var staff echo.MiddlewareFunc
	if cfg.IsDev() && cfg.JWTSecret == "" {
		staff = auth.DevAuthMiddleware()
		logger.Warn().Msg("development auth bypass active")
	} else {
		staff = auth.JWTMiddleware([]byte(cfg.JWTSecret))
	}

	// -- Repositories and services --
	patientRepo := patient.NewRepoPG(pool)
	appointmentRepo := appointment.NewRepoPG(pool)
	triageRepo := triage.NewRepoPG(pool)
	noteRepo := doctornote.NewRepoPG(pool)
	userRepo := user.NewRepoPG(pool)

	patientSvc := patient.NewService(patientRepo)
	appointmentSvc := appointment.NewService(appointmentRepo, patientRepo)
	triageSvc := triage.NewService(triageRepo, appointmentRepo, suggester, cfg.InferenceTimeout())
	noteSvc := doctornote.NewService(noteRepo, appointmentRepo)
	userSvc := user.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL())

	// -- Routes --
	api := e.Group("/api")

	user.NewHandler(userSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api, staff)
	appointment.NewHandler(appointmentSvc, patientRepo, triageRepo, noteRepo).RegisterRoutes(api, staff)
	triage.NewHandler(triageSvc).RegisterRoutes(api, staff, auth.RequireRole(user.RoleNurse))
	doctornote.NewHandler(noteSvc).RegisterRoutes(api, staff, auth.RequireRole(user.RoleDoctor))
	medical.NewHandler(dataset).RegisterRoutes(api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medsys/medsys/internal/config"
	"github.com/medsys/medsys/internal/domain/access"
	"github.com/medsys/medsys/internal/domain/admission"
	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/domain/inventory"
	"github.com/medsys/medsys/internal/domain/messaging"
	"github.com/medsys/medsys/internal/domain/patient"
	"github.com/medsys/medsys/internal/domain/prescription"
	"github.com/medsys/medsys/internal/platform/auth"
	"github.com/medsys/medsys/internal/platform/db"
	"github.com/medsys/medsys/internal/platform/middleware"
)

// PatientDirectoryAdapter exposes the patient service to the identity
// package, avoiding a circular import between the two.
type PatientDirectoryAdapter struct {
	svc *patient.Service
}

func (a *PatientDirectoryAdapter) ProfileIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := a.svc.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (a *PatientDirectoryAdapter) CreateProfile(ctx context.Context, profile *identity.PatientProfile) (uuid.UUID, error) {
	p := &patient.Patient{
		UserID:            profile.UserID,
		FirstName:         profile.FirstName,
		LastName:          profile.LastName,
		DateOfBirth:       profile.DateOfBirth,
		Gender:            profile.Gender,
		BloodGroup:        profile.BloodGroup,
		Phone:             optional(profile.Phone),
		Email:             optional(profile.Email),
		Address:           optional(profile.Address),
		EmergencyContact:  optional(profile.EmergencyContact),
		EmergencyPhone:    optional(profile.EmergencyPhone),
		InsuranceProvider: optional(profile.InsuranceProvider),
		InsuranceID:       optional(profile.InsuranceID),
	}
	if err := a.svc.Create(ctx, p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// HistoryRecorderAdapter lets the admission intake write medical history
// through the patient service.
type HistoryRecorderAdapter struct {
	svc *patient.Service
}

func (a *HistoryRecorderAdapter) RecordHistory(ctx context.Context, patientID uuid.UUID, e admission.HistoryEntry) error {
	return a.svc.AddHistory(ctx, &patient.MedicalHistory{
		PatientID:     patientID,
		ConditionName: e.ConditionName,
		DiagnosisDate: e.DiagnosisDate,
		Status:        e.Status,
		Notes:         e.Notes,
	})
}

// MedicineCatalogAdapter feeds the inventory catalog into the prescription
// authoring form.
type MedicineCatalogAdapter struct {
	svc *inventory.Service
}

func (a *MedicineCatalogAdapter) ListChoices(ctx context.Context) ([]prescription.MedicineChoice, error) {
	medicines, err := a.svc.ListChoices(ctx)
	if err != nil {
		return nil, err
	}
	choices := make([]prescription.MedicineChoice, 0, len(medicines))
	for _, m := range medicines {
		choices = append(choices, prescription.MedicineChoice{ID: m.ID, Name: m.Name})
	}
	return choices, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "medsys-server",
		Short: "Hospital management API server",
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

			count, err := db.NewMigrator(pool, dir).Up(ctx)
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

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
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
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

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

			app := buildApp(pool, cfg)
			admin, err := app.identitySvc.CreateAdmin(ctx, username, password)
			if err != nil {
				return fmt.Errorf("creating admin: %w", err)
			}

			fmt.Printf("Administrator %s created (%s).\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Administrator username")
	cmd.Flags().String("password", "", "Administrator password")
	return cmd
}

// app bundles every wired service and handler so the commands and the HTTP
// server share one construction path.
type app struct {
	identitySvc *identity.Service

	identityHandler     *identity.Handler
	patientHandler      *patient.Handler
	admissionHandler    *admission.Handler
	prescriptionHandler *prescription.Handler
	messagingHandler    *messaging.Handler
	inventoryHandler    *inventory.Handler
}

func buildApp(pool *pgxpool.Pool, cfg *config.Config) *app {
	tx := db.NewTxRunner(pool)
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), "medsys",
		time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	accessRepo := access.NewRepo(pool)
	scoper := access.NewScoper(accessRepo)

	patientRepo := patient.NewRepo(pool)
	patientSvc := patient.NewService(patientRepo, scoper)
	patients := &PatientDirectoryAdapter{svc: patientSvc}

	userRepo := identity.NewUserRepo(pool)
	staffRepo := identity.NewStaffRepo(pool)
	identitySvc := identity.NewService(userRepo, staffRepo, patients, tokens, tx)

	histories := &HistoryRecorderAdapter{svc: patientSvc}
	admissionRepo := admission.NewRepo(pool)
	admissionSvc := admission.NewService(admissionRepo, accessRepo, histories, tx,
		cfg.RoomFirst, cfg.RoomLast)

	inventoryRepo := inventory.NewRepo(pool)
	inventorySvc := inventory.NewService(inventoryRepo, tx)

	prescriptionRepo := prescription.NewRepo(pool)
	prescriptionSvc := prescription.NewService(prescriptionRepo, scoper, accessRepo,
		&MedicineCatalogAdapter{svc: inventorySvc})

	messagingRepo := messaging.NewRepo(pool)
	messagingSvc := messaging.NewService(messagingRepo, scoper, patients)

	return &app{
		identitySvc:         identitySvc,
		identityHandler:     identity.NewHandler(identitySvc),
		patientHandler:      patient.NewHandler(patientSvc),
		admissionHandler:    admission.NewHandler(admissionSvc, scoper),
		prescriptionHandler: prescription.NewHandler(prescriptionSvc, scoper),
		messagingHandler:    messaging.NewHandler(messagingSvc),
		inventoryHandler:    inventory.NewHandler(inventorySvc),
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutS) * time.Second))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), "medsys",
		time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		Issuer:  tokens,
		Skipper: auth.AuthSkipper,
	}))

	application := buildApp(pool, cfg)
	application.identityHandler.RegisterRoutes(e)
	application.patientHandler.RegisterRoutes(e)
	application.admissionHandler.RegisterRoutes(e)
	application.prescriptionHandler.RegisterRoutes(e)
	application.messagingHandler.RegisterRoutes(e)
	application.inventoryHandler.RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/healthz/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

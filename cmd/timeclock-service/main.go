package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/timbra/timbra-backend/internal/auth/handler"
	"github.com/timbra/timbra-backend/internal/auth/jwt"
	authrepository "github.com/timbra/timbra-backend/internal/auth/repository"
	authservice "github.com/timbra/timbra-backend/internal/auth/service"
	"github.com/timbra/timbra-backend/internal/tracking/events"
	"github.com/timbra/timbra-backend/internal/tracking/handler"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/config"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
	"github.com/timbra/timbra-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("timeclock-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("timeclock-service", cfg.Server.Environment)
	log.Info().Msg("starting Timeclock Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewTimeclockEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	intervalRepo := repository.NewIntervalRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	reportRepo := repository.NewReportRepository(db)
	accountRepo := authrepository.NewAccountRepository(db)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	trackingService := service.NewTrackingService(intervalRepo, employeeRepo, publisher, log)
	reportService := service.NewReportService(reportRepo, intervalRepo, employeeRepo, log)
	employeeService := service.NewEmployeeService(employeeRepo, publisher, log)
	authService := authservice.NewAuthService(accountRepo, jwtManager, log)

	// Initialize handlers
	punchHandler := handler.NewPunchHandler(trackingService, log)
	intervalHandler := handler.NewIntervalHandler(trackingService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	authHandler := authhandler.NewAuthHandler(authService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "timeclock-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Kiosk endpoints: the wall terminal is unauthenticated
		r.Post("/punches", punchHandler.Punch)
		r.Get("/status", punchHandler.Status)

		// Login
		r.Post("/auth/login", authHandler.Login)

		// Dashboard endpoints: any authenticated account
		r.Group(func(r chi.Router) {
			r.Use(authhandler.RequireAuth(jwtManager))

			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/totals", reportHandler.Totals)
				r.Get("/employees/{id}", reportHandler.EmployeeDetail)
				r.Get("/monthly", reportHandler.Monthly)
				r.Get("/weekdays", reportHandler.Weekdays)
				r.Get("/comparison", reportHandler.Comparison)
			})

			r.Get("/employees", employeeHandler.List)
			r.Get("/employees/{id}", employeeHandler.Get)

			// Admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(authhandler.RequireAdmin)

				r.Post("/employees", employeeHandler.Create)
				r.Put("/employees/{id}", employeeHandler.Update)
				r.Delete("/employees/{id}", employeeHandler.Delete)

				r.Put("/intervals/{id}", intervalHandler.Update)
				r.Delete("/intervals/{id}", intervalHandler.Delete)

				r.Get("/accounts", authHandler.ListAccounts)
				r.Post("/accounts", authHandler.CreateAccount)
				r.Post("/accounts/reset-passwords", authHandler.ResetPasswords)
				r.Delete("/accounts/{id}", authHandler.DeleteAccount)
			})
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

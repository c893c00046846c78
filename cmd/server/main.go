package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/gigpay/backend/internal/database"
	"github.com/gigpay/backend/internal/handlers"
	"github.com/gigpay/backend/internal/logger"
	"github.com/gigpay/backend/internal/middleware"
	"github.com/gigpay/backend/internal/services"
	"github.com/gigpay/backend/internal/store"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("log.mode", "LOG_MODE")

	log, err := logger.New(viper.GetString("log.mode"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db := database.InitDatabase(log)
	defer db.Close()

	if err := database.SyncSchema(db); err != nil {
		log.Fatal("failed to sync schema", "error", err)
	}
	log.Info("database schema synced")

	redisClient := database.InitRedis(log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ledgerStore := store.NewPostgresStore(db)

	ledgerService := services.NewLedgerService(ledgerStore, log)
	contractService := services.NewContractService(ledgerStore)
	jobService := services.NewJobService(ledgerStore)
	reportService := services.NewReportService(db, redisClient, log)

	balanceHandler := handlers.NewBalanceHandler(ledgerService)
	jobHandler := handlers.NewJobHandler(jobService, ledgerService)
	contractHandler := handlers.NewContractHandler(contractService)
	reportHandler := handlers.NewReportHandler(reportService)
	profileResolver := middleware.NewProfileResolver(ledgerStore)

	// Setup router
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "profile_id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes, all behind profile resolution
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(profileResolver.Middleware)

		r.Get("/contracts", contractHandler.List)
		r.Get("/contracts/{id}", contractHandler.GetByID)

		r.Get("/jobs/unpaid", jobHandler.ListUnpaid)
		r.Post("/jobs/{jobID}/pay", jobHandler.Pay)

		r.Post("/balances/deposit/{userID}", balanceHandler.Deposit)

		r.Get("/admin/best-profession", reportHandler.BestProfession)
		r.Get("/admin/best-clients", reportHandler.BestClients)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

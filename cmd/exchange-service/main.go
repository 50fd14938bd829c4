package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/app/background"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/config"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/delivery/httpapi"
	publisher "github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/kafka"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/metrics"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/migrate"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/myfin"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/repository"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if path := os.Getenv("EXCHANGE_MIGRATIONS_PATH"); path != "" {
		if err := migrate.RunMigrations(db, path); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers, cfg.KafkaService.Topic)
	defer pub.Close()

	// Init repos
	orgRepo := repository.NewDefaultOrganizationRepository(db)
	officeRepo := repository.NewDefaultOfficeRepository(db)
	rateRepo := repository.NewDefaultRateRepository(db)
	scheduleRepo := repository.NewDefaultScheduleRepository(db)
	sessionRepo := repository.NewDefaultSearchSessionRepository(db)

	// Init provider client
	client := myfin.NewClient(
		cfg.MyFinAPI.BaseURL,
		myfin.WithHTTPClient(&http.Client{Timeout: cfg.MyFinAPI.Timeout}),
		myfin.WithRetries(cfg.MyFinAPI.Retries),
	)

	syncMetrics := metrics.NewSyncMetrics()

	// Init usecases
	syncUsecase := usecase.NewDefaultSyncUsecase(client, orgRepo, officeRepo, rateRepo, scheduleRepo, syncMetrics, pub)
	rateUsecase := usecase.NewDefaultRateUsecase(orgRepo, officeRepo, rateRepo)
	officeUsecase := usecase.NewDefaultOfficeUsecase(orgRepo, officeRepo, rateRepo, scheduleRepo, rateUsecase)
	sessionUsecase := usecase.NewDefaultSessionUsecase(sessionRepo, cfg.SyncConfig.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks := background.NewBackgroundTasks(syncUsecase, rateRepo, sessionRepo, cfg.SyncConfig)
	tasks.StartAll(ctx)

	// Query API plus metrics endpoint
	mux := http.NewServeMux()
	handler := httpapi.NewExchangeHandler(rateUsecase, officeUsecase, sessionUsecase)
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: mux,
	}

	go func() {
		log.Printf("http server started on %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v\n", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v\n", err)
	}
}

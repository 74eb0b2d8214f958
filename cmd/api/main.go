package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgnotify/internal/config"
	"orgnotify/internal/handler"
	"orgnotify/internal/middleware"
	"orgnotify/internal/observability"
	"orgnotify/internal/provider"
	"orgnotify/internal/repository"
	"orgnotify/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Repositories
	messageRepo := repository.NewMessageRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	providerCfgRepo := repository.NewProviderConfigRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Gateway client and services
	gateway := provider.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.CountryCode, nil)
	personalizer := service.NewPersonalizeService(directoryRepo)
	dispatchSvc := service.NewDispatchService(
		messageRepo, recipientRepo, providerCfgRepo,
		personalizer, gateway,
		cfg.Dispatch.BatchSize, cfg.Dispatch.BatchPause,
	)
	reconcileSvc := service.NewReconcileService(messageRepo, recipientRepo, gateway)
	settingsSvc := service.NewSettingsService(providerCfgRepo, settingsRepo, gateway)
	triggerSvc := service.NewTriggerService(
		dispatchSvc, messageRepo, settingsRepo, providerCfgRepo,
		directoryRepo, contributionRepo, eventRepo,
	)
	healthSvc := service.NewHealthService(db, cfg.GetRabbitMQURL(), "1.0.0")

	// Metrics
	registry := prometheus.NewRegistry()
	observability.Register(registry)

	// Handlers
	messageHandler := handler.NewMessageHandler(dispatchSvc, messageRepo)
	webhookHandler := handler.NewWebhookHandler(reconcileSvc)
	providerHandler := handler.NewProviderHandler(settingsSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	contributionHandler := handler.NewContributionHandler(contributionRepo, triggerSvc)
	healthHandler := handler.NewHealthHandler(healthSvc)

	// Router
	router := mux.NewRouter()
	router.Use(middleware.Recovery)

	router.HandleFunc("/messages/send", messageHandler.Send).Methods("POST")
	router.HandleFunc("/messages/{id}", messageHandler.GetByID).Methods("GET")
	router.HandleFunc("/webhooks/delivery", webhookHandler.HandleDeliveryStatus).Methods("POST")
	router.HandleFunc("/provider/balance", providerHandler.GetBalance).Methods("GET")
	router.HandleFunc("/provider/test", providerHandler.TestConnection).Methods("POST")
	router.HandleFunc("/provider/configs/{id}/activate", providerHandler.Activate).Methods("PUT")
	router.HandleFunc("/settings/notifications", settingsHandler.Get).Methods("GET")
	router.HandleFunc("/settings/notifications", settingsHandler.Update).Methods("PUT")
	router.HandleFunc("/contributions", contributionHandler.Create).Methods("POST")
	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")

	// Start server
	port := ":" + cfg.Server.Port
	log.Printf("API server starting on port %s", port)
	log.Printf("Environment: %s", cfg.Env)

	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

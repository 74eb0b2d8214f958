package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"orgnotify/internal/config"
	"orgnotify/internal/provider"
	"orgnotify/internal/queue"
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

	// Connect to RabbitMQ
	conn, err := queue.NewConnection(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	log.Println("Connected to RabbitMQ")

	// Repositories
	messageRepo := repository.NewMessageRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	providerCfgRepo := repository.NewProviderConfigRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Services
	gateway := provider.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.CountryCode, nil)
	personalizer := service.NewPersonalizeService(directoryRepo)
	dispatchSvc := service.NewDispatchService(
		messageRepo, recipientRepo, providerCfgRepo,
		personalizer, gateway,
		cfg.Dispatch.BatchSize, cfg.Dispatch.BatchPause,
	)
	triggerSvc := service.NewTriggerService(
		dispatchSvc, messageRepo, settingsRepo, providerCfgRepo,
		directoryRepo, contributionRepo, eventRepo,
	)

	// Consume sweep jobs
	consumer, err := queue.NewConsumer(conn, cfg.RabbitMQ.Queue, func(job *queue.SweepJob) error {
		ctx := context.Background()

		var sent int
		var err error
		switch job.Kind {
		case queue.SweepKindBirthday:
			sent, err = triggerSvc.RunBirthdaySweep(ctx, job.TenantID)
		case queue.SweepKindEventReminder:
			sent, err = triggerSvc.RunEventReminderSweep(ctx, job.TenantID)
		default:
			return fmt.Errorf("unknown sweep kind: %s", job.Kind)
		}
		if err != nil {
			return err
		}

		log.Printf("Sweep %s for tenant %s sent %d messages", job.Kind, job.TenantID, sent)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}

	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	log.Printf("Worker started, consuming from queue %s", cfg.RabbitMQ.Queue)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down worker...")
	consumer.Stop()
	log.Println("Worker stopped")
}

package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"orgnotify/internal/config"
	"orgnotify/internal/queue"
	"orgnotify/internal/repository"
)

// The sweeper is a thin scheduler: on every tick it enqueues one sweep job
// per active tenant and kind, and the worker does the heavy lifting.
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

	publisher, err := queue.NewPublisher(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}
	defer publisher.Close()

	providerCfgRepo := repository.NewProviderConfigRepository(db)

	c := cron.New()
	_, err = c.AddFunc(cfg.Sweep.Schedule, func() {
		enqueueSweeps(providerCfgRepo, publisher)
	})
	if err != nil {
		log.Fatalf("Invalid sweep schedule %q: %v", cfg.Sweep.Schedule, err)
	}

	c.Start()
	log.Printf("Sweeper started with schedule %q", cfg.Sweep.Schedule)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down sweeper...")
	<-c.Stop().Done()
	log.Println("Sweeper stopped")
}

// enqueueSweeps publishes one job per active tenant and sweep kind. Tenants
// without an active provider config are skipped, the worker could not send
// for them anyway.
func enqueueSweeps(providerCfgRepo repository.ProviderConfigRepository, publisher *queue.Publisher) {
	tenantIDs, err := providerCfgRepo.ListActiveTenantIDs(context.Background())
	if err != nil {
		log.Printf("Failed to list active tenants: %v", err)
		return
	}

	kinds := []queue.SweepKind{queue.SweepKindBirthday, queue.SweepKindEventReminder}
	enqueued := 0
	for _, tenantID := range tenantIDs {
		for _, kind := range kinds {
			if err := publisher.PublishSweep(tenantID, kind); err != nil {
				log.Printf("Failed to enqueue %s sweep for tenant %s: %v", kind, tenantID, err)
				continue
			}
			enqueued++
		}
	}

	log.Printf("Enqueued %d sweep jobs across %d tenants", enqueued, len(tenantIDs))
}

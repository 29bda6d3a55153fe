package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/rizwana27/psa/internal/analytics"
	"github.com/rizwana27/psa/internal/config"
	"github.com/rizwana27/psa/rules"
	"github.com/rizwana27/psa/services"
	"github.com/rizwana27/psa/workers"
)

func main() {
	log.Println("Starting workers...")

	// Load Config
	configPath := os.Getenv("psa_CONFIG_PATH")

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database connection
	if config.App.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable (or config) is required")
	}

	pg, err := sql.Open("postgres", config.App.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	// Test database connection
	if err := pg.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Set timezone to UTC for consistent time handling
	if _, err := pg.Exec("SET TIME ZONE 'UTC'"); err != nil {
		log.Printf("Failed to set timezone to UTC: %v", err)
	} else {
		log.Println("  Set database timezone to UTC")
	}

	log.Println("  Connected to database successfully")

	var rdb *redis.Client
	if config.App.RedisURL != "" {
		opt, err := redis.ParseURL(config.App.RedisURL)
		if err != nil {
			log.Printf("⚠️  Invalid REDIS_URL, caching disabled: %v", err)
		} else {
			rdb = redis.NewClient(opt)
		}
	}

	window := analytics.Window{
		WorkingDays: config.App.Analytics.WorkingDays,
		HoursPerDay: config.App.Analytics.HoursPerDay,
	}
	if err := window.Validate(); err != nil {
		log.Printf("Warning: invalid analytics window in config, using defaults: %v", err)
		window = analytics.DefaultWindow
	}
	cacheTTL := time.Duration(config.App.Analytics.CacheTTLSec) * time.Second

	// Initialize services
	pushService, _ := services.NewPushService(pg)
	projectService := services.NewProjectService(pg)
	invoiceService := services.NewInvoiceService(pg)
	analyticsService := services.NewAnalyticsService(pg, rdb, window, cacheTTL)

	deliveryService := services.NewDeliveryService(pg)
	if err := deliveryService.CreateQueueIfNotExists(); err != nil {
		log.Printf("⚠️  Warning: Failed to create delivery queue: %v", err)
	}

	notificationStore := services.NewPostgresNotificationStore(pg)
	var dedup rules.Deduper
	if config.App.Notifications.DedupWindowMin > 0 {
		dedup = rules.NewWindowDeduper(time.Duration(config.App.Notifications.DedupWindowMin) * time.Minute)
	}
	notifier := rules.NewNotifier(notificationStore, pushService, dedup, rules.DefaultRules())

	// Initialize workers
	evaluationWorker := workers.NewEvaluationWorker(projectService, invoiceService, analyticsService, notifier, deliveryService)
	deliveryWorker := workers.NewDeliveryWorker(pg, pushService)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		evaluationWorker.StartEvaluationWorker(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		deliveryWorker.StartDeliveryWorker(ctx)
	}()

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Println("Workers started successfully. Press Ctrl+C to stop.")
	<-c

	log.Println("Shutting down workers...")
	cancel()
	wg.Wait()
}

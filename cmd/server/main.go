package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/categories"
	"github.com/AnshRaj112/devicehub-backend/internal/config"
	"github.com/AnshRaj112/devicehub-backend/internal/credentials"
	"github.com/AnshRaj112/devicehub-backend/internal/database"
	"github.com/AnshRaj112/devicehub-backend/internal/events"
	"github.com/AnshRaj112/devicehub-backend/internal/handlers"
	"github.com/AnshRaj112/devicehub-backend/internal/registry"
	"github.com/AnshRaj112/devicehub-backend/internal/routes"
	"github.com/AnshRaj112/devicehub-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Shutdown signal received: %s", sig)
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	hub := events.NewHub(64)
	sinks := connectSinks(ctx, cfg, hub)
	defer database.DisconnectRedis()
	defer database.Disconnect()
	defer database.DisconnectPostgres()

	// The dispatcher outlives ctx so events from requests still in flight at
	// shutdown are delivered.
	dispatcher := events.NewDispatcher(events.Multi(sinks...), cfg.EventQueueSize)
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		dispatcher.Run(dispatchCtx)
	}()

	tokens := credentials.New()
	svc := services.NewIngestionService(registry.New(nil), tokens, categories.New(nil), dispatcher)

	r := routes.NewRouter(handlers.New(svc, hub), auth.NewAuthenticator(tokens), routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminToken:     cfg.AdminToken,
		TrustProxy:     cfg.TrustProxy,
		Production:     cfg.IsProduction(),
	})
	if cfg.IsProduction() {
		log.Println("✅ Production security headers enabled")
	}
	if cfg.AdminToken == "" {
		log.Println("⚠️  WARNING: ADMIN_TOKEN not set. GET /api/devices is open to anyone.")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Device telemetry backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopServer(srv, stopDispatch, dispatchDone)
	if n := dispatcher.Dropped(); n > 0 {
		log.Printf("⚠️  %d events dropped because the event queue was full", n)
	}
	log.Println("✅ Server stopped")
	return nil
}

// stopServer drains HTTP requests first, then stops the dispatcher and waits for it
// to flush what those requests published.
func stopServer(srv *http.Server, stopDispatch context.CancelFunc, dispatchDone <-chan struct{}) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP shutdown: %v", err)
	}

	stopDispatch()
	<-dispatchDone
}

// connectSinks opens every configured datastore and returns the event sinks backed
// by them. A datastore that is not configured or not reachable is skipped; the
// in-memory stores keep serving requests either way.
func connectSinks(ctx context.Context, cfg *config.Config, hub *events.Hub) []events.Publisher {
	var sinks []events.Publisher

	// Redis relays events between instances; without it the hub is fed directly
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Printf("⚠️  WARNING: Redis unavailable, live feed limited to this instance: %v", err)
		}
	}
	if database.RedisClient != nil {
		sinks = append(sinks, events.NewRedisPublisher(database.RedisClient))
		go events.RunRedisSubscriber(ctx, database.RedisClient, hub)
		log.Println("✅ Live feed relayed through Redis")
	} else {
		sinks = append(sinks, hub)
	}

	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Printf("⚠️  WARNING: MongoDB unavailable, telemetry archive disabled: %v", err)
		}
	}
	if database.DB != nil {
		archive := events.NewMongoArchive(database.DB)
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := archive.EnsureIndexes(idxCtx); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure telemetry archive indexes: %v", err)
		} else {
			log.Println("✅ Telemetry archive indexes ensured")
		}
		cancel()
		sinks = append(sinks, archive)
	}

	if cfg.PostgresURI != "" {
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Printf("⚠️  WARNING: PostgreSQL unavailable, event journal disabled: %v", err)
		}
	}
	if database.PostgresDB != nil {
		sinks = append(sinks, events.NewPostgresJournal(database.PostgresDB))
		log.Println("✅ Event journal enabled")
	}

	return sinks
}

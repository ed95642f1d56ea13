package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josearcagni/cmcwebapp/internal/config"
	"github.com/josearcagni/cmcwebapp/internal/handlers"
	"github.com/josearcagni/cmcwebapp/internal/identity"
	"github.com/josearcagni/cmcwebapp/internal/notify"
	"github.com/josearcagni/cmcwebapp/internal/registry"
	"github.com/josearcagni/cmcwebapp/internal/rules"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Open the pump registry (creates the workbook on first run)
	reg, err := registry.Open(cfg.RegistryPath, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to open pump registry: %v", err)
	}
	log.Printf("Pump registry: %s (cache TTL %s)", reg.Path(), cfg.CacheTTL)

	// 3. Load the provisioned user directory
	directory, err := identity.LoadDirectory(cfg.UsersPath)
	if err != nil {
		log.Fatalf("Failed to load user directory: %v", err)
	}

	// 4. Build the alert dispatcher. Missing credentials disable dispatch
	// without blocking startup.
	dispatcher := notify.NewDispatcher(notify.Config{
		Host:         cfg.Mail.Host,
		TLSPort:      cfg.Mail.TLSPort,
		StartTLSPort: cfg.Mail.StartTLSPort,
		Username:     cfg.Mail.Username,
		Password:     cfg.Mail.Password,
		Timeout:      cfg.Mail.Timeout,
	})
	if !dispatcher.Enabled() {
		log.Println("⚠️  Mail credentials not configured, alert dispatch disabled")
	}

	// 5. Set up HTTP router
	router := handlers.NewRouter(cfg, reg, rules.NewEngine(), dispatcher, directory)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

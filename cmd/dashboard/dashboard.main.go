package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Webzensify/uber-web/internal/config"
	"github.com/Webzensify/uber-web/internal/server"
)

func main() {
	// Load env vars
	if err := godotenv.Load(); err != nil {
		log.Println("Dashboard: No .env file found, relying on system env vars")
	}

	// Load config
	cfg := config.Load()

	// Init server
	srv := server.NewServer(cfg)

	// Run server
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Fleet dashboard starting on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("Shutting down dashboard...")
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Dashboard shutdown failed: %v", err)
		}
	case err := <-errCh:
		log.Fatal(err)
	}
}

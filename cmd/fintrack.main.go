package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack-service/internal/config"
	"fintrack-service/internal/server"
)

func main() {
	cfg := config.Load()

	srv := server.NewServer(cfg)
	defer srv.Close()

	// run server in goroutine
	go func() {
		log.Printf("fintrack REST server listening on %s", cfg.HTTPAddr)
		if err := srv.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.HTTP.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
}

// Command archived runs the archive service: it fans queries out to
// upstream JSON-RPC endpoints for live tip tracking, and answers /query
// against a cold Parquet folder index plus an in-memory tail.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archived/internal/api"
	"archived/internal/columnar"
	"archived/internal/config"
	"archived/internal/queryhandler"
	"archived/internal/rpcclient"
)

// BuildCommit is set at build time via -ldflags.
var BuildCommit = "dev"

func main() {
	configPath := os.Getenv("ARCHIVED_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	log.Println("Initializing archive service...")
	log.Printf("Build: %s", BuildCommit)
	log.Printf("Config: %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rpc, err := rpcclient.NewClient(cfg.Endpoints)
	if err != nil {
		log.Fatalf("Failed to construct RPC client: %v", err)
	}
	defer rpc.Close()

	inMem := columnar.NewInMemDataProvider()

	if cfg.ParquetPath == "" {
		log.Println("ARCHIVED_PARQUET_PATH not set, cold folder queries will see no data")
	}
	handler := queryhandler.New(cfg.ParquetPath, inMem, cfg.Query, nil)

	server := api.NewServer(handler, rpc, cfg.HTTPServer)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()
	log.Printf("Listening on %s", cfg.HTTPServer.Addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

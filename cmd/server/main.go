package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clauselens/clauselens/internal/api"
	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/docstore"
	"github.com/clauselens/clauselens/internal/embed"
	"github.com/clauselens/clauselens/internal/index"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/pipeline"
	"github.com/clauselens/clauselens/internal/rag"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// An absent API key selects degraded mode: zero-vector embeddings and
	// fixed chat/report responses, so the service stays demoable offline.
	var llmClient *llm.Client
	enabled := !cfg.Degraded()
	if enabled {
		llmClient = llm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	} else {
		log.Warn("no OPENAI_API_KEY set, running in degraded mode")
	}

	docs, err := docstore.NewStore(cfg.DataDir)
	if err != nil {
		log.Error("open document store", "error", err)
		os.Exit(1)
	}

	var backend embed.Backend
	if llmClient != nil {
		backend = llmClient
	}
	gateway := embed.NewGateway(backend, enabled)
	indexes := index.NewStore()
	cache := index.NewQueryCache(gateway)

	var completer rag.Completer
	if llmClient != nil {
		completer = llmClient
	}
	ragOrch := rag.NewOrchestrator(indexes, cache, completer, enabled, log)
	ragOrch.SetTopK(cfg.TopK)

	ingest := pipeline.NewOrchestrator(cfg, gateway, indexes, docs, log)
	ingest.Start(ctx)

	srv := api.NewServer(ingest, ragOrch, indexes, docs, llmClient, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		ingest.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		docs.Close()
	}()

	log.Info("starting clauselens", "port", cfg.Port, "degraded", !enabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

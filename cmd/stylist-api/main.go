package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madhukiran/stylist-agent/internal/adapters/llm"
	"github.com/madhukiran/stylist-agent/internal/adapters/storage/file"
	mongostore "github.com/madhukiran/stylist-agent/internal/adapters/storage/mongo"
	"github.com/madhukiran/stylist-agent/internal/app/chat"
	"github.com/madhukiran/stylist-agent/internal/config"
	"github.com/madhukiran/stylist-agent/internal/domain"
	"github.com/madhukiran/stylist-agent/internal/observability"

	httpadapter "github.com/madhukiran/stylist-agent/internal/adapters/http"
)

func main() {
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// LLM: mock or Gemini
	var generator domain.Generator
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		generator = llm.NewMockClient()
	} else {
		log.Info("using Gemini client", "model", cfg.ModelName, "stream", cfg.StreamReplies)
		generator, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName, llm.GenerationParams{
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}, cfg.StreamReplies)
		if err != nil {
			log.Error("failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
	}

	// Storage: probe MongoDB once; fall back to per-user files when the
	// store is unreachable so conversations survive within this process.
	var store domain.HistoryStore
	mongoStore, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.Warn("mongodb unreachable, falling back to file storage",
			"dir", cfg.FallbackDir,
			"error", err)

		fileStore, ferr := file.NewStore(cfg.FallbackDir)
		if ferr != nil {
			log.Error("failed to initialize fallback storage", "error", ferr)
			os.Exit(1)
		}
		store = fileStore
	} else {
		log.Info("connected to mongodb", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		store = mongoStore
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoStore.Close(shutdownCtx); err != nil {
				log.Error("failed to disconnect mongodb", "error", err)
			}
		}()
	}

	window := chat.RecentWindow(cfg.HistoryWindow)
	svc := chat.NewService(store, generator, window, cfg.MaxImageBytes)

	handler := httpadapter.NewServer(svc, httpadapter.Options{
		MaxImageBytes:  cfg.MaxImageBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,

		// Model latency dominates; the write timeout has to cover the
		// whole generation call.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	}

	go func() {
		log.Info("stylist API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

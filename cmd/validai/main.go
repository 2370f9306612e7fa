package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments use environment variables
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			os.Stderr.WriteString("warning: failed to load .env: " + err.Error() + "\n")
		}
	}

	cfg := LoadConfig()

	if err := InitLogger(cfg.LogPath, cfg.LogLevel); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer Logger().Close()

	if err := cfg.Validate(); err != nil {
		Logger().Error("configuration invalid: %v", err)
		os.Exit(1)
	}

	biasTable, err := LoadBiasTable(cfg.BiasTablePath)
	if err != nil {
		Logger().Error("failed to load bias table: %v", err)
		os.Exit(1)
	}

	verdicts, err := NewVerdictGenerator(cfg)
	if err != nil {
		Logger().Error("failed to initialize verdict generator: %v", err)
		os.Exit(1)
	}

	cache := NewContentCache(cfg.CacheTTL, cfg.CacheMaxEntries)
	extractor := NewExtractor(cfg, cache)
	searcher := NewSearcher(cfg)
	hub := NewEventHub()
	pipeline := NewPipeline(extractor, searcher, verdicts, NewBiasClassifier(biasTable), hub, cfg.MaxEvidence)
	trending := NewTrendingService(cfg.TrendingFeeds)

	scheduler := startScheduler(trending, cache)
	defer scheduler.Stop()

	server := NewServer(pipeline, trending, cache, hub, cfg)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		Logger().Info("ValidaÍ listening on %s (browser strategy: %v, search: %v)",
			cfg.ListenAddr, cfg.BrowserEnabled, cfg.SearchAPIKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger().Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	Logger().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		Logger().Error("shutdown error: %v", err)
	}
}

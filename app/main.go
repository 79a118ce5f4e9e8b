package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/api"
	"github.com/aakashyadav27/tech-trend-agent/app/cfg"
	"github.com/aakashyadav27/tech-trend-agent/app/curated"
	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
	"github.com/aakashyadav27/tech-trend-agent/app/sources"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting Tech Trend Agent", "version", appCfg.Version, "port", appCfg.Port)

	// Shared outbound HTTP client with per-host rate limiting
	fetchClient := feed.NewClient(
		time.Duration(appCfg.FetchTimeout)*time.Second, appCfg.UserAgent)

	fresh := freshness.New(time.Duration(appCfg.SkewTolerance) * time.Minute)

	curatedLookup := curated.NewClient(fetchClient,
		appCfg.CuratedSourcesURL, appCfg.CuratedSourcesFile)

	sourceList := []curation.Source{
		sources.NewCuratedFeeds(curatedLookup, fetchClient, fresh),
		sources.NewHackerNews(fetchClient),
		sources.NewReddit(fetchClient, fresh),
		sources.NewGitHub(fetchClient, appCfg.GitHubToken),
		sources.NewYouTube(fetchClient, appCfg.YouTubeAPIKey),
		sources.NewNewsAPI(fetchClient, appCfg.NewsAPIKey),
	}
	for _, source := range sourceList {
		slog.Info("Source registered", "source", source.Name())
	}

	reranker := curation.NewReranker(
		curation.Policy(appCfg.StalenessPolicy), fresh)

	// Each source gets a slice of the overall request budget so one hung
	// upstream cannot starve the rest
	perSourceTimeout := time.Duration(appCfg.RequestTimeout) * time.Second * 2 / 3
	aggregator := curation.NewAggregator(sourceList, reranker, perSourceTimeout)

	handler := api.NewHandler(aggregator, reranker, appCfg.RequestTimeout)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(appCfg.RequestTimeout+15) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}

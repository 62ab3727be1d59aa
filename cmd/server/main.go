package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doctrans/doctrans/internal/api"
	"github.com/doctrans/doctrans/internal/authgate"
	"github.com/doctrans/doctrans/internal/config"
	"github.com/doctrans/doctrans/internal/docstore"
	"github.com/doctrans/doctrans/internal/engine"
	"github.com/doctrans/doctrans/internal/extract"
	"github.com/doctrans/doctrans/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Upstream clients.
	stats := engine.NewCallStats(time.Hour)
	client := engine.NewClient(engine.ClientConfig{
		BaseURL: cfg.EngineURL,
		APIKey:  cfg.EngineAPIKey,
		Timeout: cfg.RequestTimeout,
		RPS:     cfg.EngineRPS,
		Burst:   cfg.EngineBurst,
		Stats:   stats,
	})

	var gate authgate.Gate = authgate.StaticGate{Decision: authgate.Allowed}
	var gateClient *authgate.Client
	if cfg.AuthURL != "" {
		gateClient = authgate.NewClient(cfg.AuthURL, cfg.AuthAPIKey)
		gate = gateClient
	}

	// Pipeline.
	sched := &pipeline.Scheduler{
		Units: &pipeline.UnitTranslator{
			Engine: client,
			Policy: pipeline.RetryPolicy{
				MaxAttempts: cfg.MaxAttempts,
				BackoffBase: cfg.BackoffBase,
				BackoffMax:  cfg.BackoffMax,
			},
			Stats: stats,
			Log:   log,
		},
		Concurrency: cfg.Concurrency,
		Log:         log,
	}

	docs := docstore.New()
	store := pipeline.NewMemoryStore(cfg.JobTTL)
	worker := &pipeline.Worker{
		Sched: sched,
		Docs:  docs,
		Extract: func(data []byte, filename string) (string, error) {
			return extract.FromBytes(data, filename, extract.Options{
				PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			})
		},
		ChunkLimit: cfg.ChunkLimit,
		Log:        log,
	}

	queue := pipeline.NewQueue(store, worker, log, cfg.SweepInterval, cfg.QueueCapacity)
	queue.SweepArtifacts(func(now time.Time) int {
		return docs.SweepExpired(now, cfg.JobTTL)
	})
	queue.Start(ctx)

	texts := pipeline.NewTextService(sched, cfg.ChunkLimit, cfg.MaxTextChars, log)

	// HTTP server.
	srv := api.NewServer(texts, queue, store, docs, gate, stats, log, cfg)

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

		queue.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		if gateClient != nil {
			gateClient.Close()
		}
	}()

	log.Info("starting doctrans", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/plainfin/internal/api"
	"github.com/dgallion1/plainfin/internal/config"
	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/parser"
	"github.com/dgallion1/plainfin/internal/pipeline"
	"github.com/dgallion1/plainfin/internal/report"
	"github.com/dgallion1/plainfin/internal/session"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn("could not load .env", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := llm.NewClient(llm.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.LLMTimeout,
	})
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)

	var store session.Store
	switch cfg.SessionBackend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "", cfg.SessionTTL)
	default:
		mem := session.NewMemoryStore(cfg.SessionTTL)
		g.Go(func() error { return mem.Run(gctx, 5*time.Minute) })
		store = mem
	}

	page := report.LetterPage()
	page.MaxLineChars = cfg.ReportWrapChars

	p := pipeline.New(client, store, log, pipeline.Options{
		ChunkSize:              cfg.ChunkSize,
		MaxSections:            cfg.MaxSections,
		ContinueOnSectionError: cfg.ContinueOnSectionError,
		Parser:                 parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		Page:                   page,
	})

	srv := api.NewServer(p, client, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // summaries make several sequential model calls
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		log.Info("starting plainfin",
			"port", cfg.Port,
			"model", client.Model(),
			"session_backend", cfg.SessionBackend,
			"max_sections", cfg.MaxSections,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

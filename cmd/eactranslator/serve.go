package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qtrinova/eactranslator/internal/dispatch"
	"github.com/qtrinova/eactranslator/internal/health"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/transport"
	grpctransport "github.com/qtrinova/eactranslator/internal/transport/grpc"
	httptransport "github.com/qtrinova/eactranslator/internal/transport/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the translation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, logCloser, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	slog.Info("eactranslator starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// A nil *voice.Adapter or *tts.Speaker stored in an interface would not
	// compare equal to nil, so only assign enabled adapters.
	var (
		transcriber dispatch.Transcriber
		synthesizer dispatch.Synthesizer
		speech      httptransport.Speech
	)
	if a.voice != nil {
		transcriber = a.voice
	}
	if a.speaker != nil {
		synthesizer = a.speaker
		speech = a.speaker
	}

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:   cfg.Transports.HTTP.Port,
			Speech: speech,
		}))
	}

	if len(transports) == 0 {
		return errors.New("no transports enabled, enable at least one in config")
	}

	dispatcher := dispatch.New(a.translator, transcriber, synthesizer)

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, a.cache.Loaded)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	if cfg.Models.Preload {
		slog.Info("preloading models", "models", route.Models())
		if err := a.cache.Preload(ctx, route.Models()...); err != nil {
			// Models load lazily on first use, so keep serving.
			slog.Error("model preload failed", "error", err)
		}
	}

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("eactranslator ready",
		"transports", len(transports),
		"speech_input", a.voice != nil,
		"speech_output", dispatcher.SpeechOutput(),
		"journal", a.journal.Path(),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("eactranslator stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fllarpy/room-analytics/config"
	"github.com/fllarpy/room-analytics/exporter"
	"github.com/fllarpy/room-analytics/infrastructure/storage"
	"github.com/fllarpy/room-analytics/internal/adapters/amqpintake"
	"github.com/fllarpy/room-analytics/internal/application/collector"
	"github.com/fllarpy/room-analytics/internal/application/intake"
	"github.com/fllarpy/room-analytics/internal/ports/http_router"
	"github.com/fllarpy/room-analytics/telemetry"
)

const version = "1.0.0"

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.ListenAddr, err)
	}

	if err := run(ctx, cfg, ln); err != nil {
		log.Fatalf("room-analytics: %v", err)
	}
}

// run serves on ln until ctx is done, then shuts down gracefully.
func run(ctx context.Context, cfg config.Config, ln net.Listener) error {
	metrics := telemetry.NewMetrics()

	if cfg.Tracing.Enabled {
		provider, err := telemetry.NewProvider(cfg.ServiceName, version, exporter.NewSpanExporter(metrics))
		if err != nil {
			return fmt.Errorf("create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down tracer provider: %v", err)
			}
		}()
	}

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	svc := intake.NewService(store, intake.WithRecorder(metrics), intake.WithDebug(cfg.Debug()))

	stopCollector := collector.Start(store, cfg.Collector.Interval, metrics)
	defer stopCollector()

	consumerDone := make(chan struct{})
	if cfg.AMQP.Enabled {
		go func() {
			defer close(consumerDone)
			if err := amqpintake.NewConsumer(cfg.AMQP, svc).Run(ctx); err != nil {
				log.Printf("AMQP consumer stopped: %v", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	srv := &http.Server{
		Handler: http_router.New(http_router.Deps{
			Intake:      svc,
			Store:       store,
			Metrics:     metrics.Handler(),
			MetricsPath: cfg.Metrics.Path,
			Tracing:     cfg.Tracing.Enabled,
			AccessLog:   cfg.Debug(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("room-analytics %s listening on %s (store: %s)", version, ln.Addr(), cfg.Store.Backend)
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	<-consumerDone
	return nil
}

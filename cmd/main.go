package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/voyage/internal/catalog"
	"github.com/UnknownOlympus/voyage/internal/config"
	"github.com/UnknownOlympus/voyage/internal/console"
	"github.com/UnknownOlympus/voyage/internal/coordinator"
	"github.com/UnknownOlympus/voyage/internal/geocoding"
	"github.com/UnknownOlympus/voyage/internal/geolocation"
	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/order"
	"github.com/UnknownOlympus/voyage/internal/repository"
	"github.com/UnknownOlympus/voyage/internal/routing"
	"github.com/UnknownOlympus/voyage/internal/service"
	"github.com/UnknownOlympus/voyage/internal/viewport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// pinger is implemented by dependencies checked on /healthz.
type pinger interface {
	Ping(ctx context.Context) error
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, stop)
	stop()
	if err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}

// run wires the application and blocks until the console session ends.
// Deferred closers have run by the time it returns.
func run(ctx context.Context, stop context.CancelFunc) error {
	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:         geocoding.ProviderType(cfg.Geocoder.Type),
		APIKey:       cfg.Geocoder.APIKey,
		BaseURL:      cfg.Geocoder.BaseURL,
		RateLimit:    cfg.Geocoder.RateLimit,
		CountryCodes: cfg.Geocoder.CountryCodes,
		Language:     cfg.Geocoder.Language,
		Timeout:      cfg.RequestTimeout,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Type)

	router, err := routing.NewRouter(routing.RouterConfig{
		Type:      routing.RouterType(cfg.Router.Type),
		APIKey:    cfg.Router.APIKey,
		BaseURL:   cfg.Router.BaseURL,
		Profile:   cfg.Router.Profile,
		Language:  cfg.Geocoder.Language,
		RateLimit: cfg.Router.RateLimit,
		Timeout:   cfg.RequestTimeout,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	logger.InfoContext(ctx, "Router initialized", "type", cfg.Router.Type)

	plans, err := catalog.Load(cfg.PlansFile)
	if err != nil {
		return fmt.Errorf("failed to load pricing catalog: %w", err)
	}

	locator, err := geolocation.New(cfg.Geolocation, cfg.RequestTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to configure geolocation: %w", err)
	}

	senderConfig := newSenderConfig(cfg, logger)

	// The outbox channel keeps orders in Postgres; it is also pinged on /healthz.
	var (
		outbox *repository.Repository
		health pinger
	)
	if senderConfig.Type == order.SenderTypeOutbox {
		outbox, err = setupOutbox(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to set up order outbox: %w", err)
		}
		senderConfig.Outbox = outbox
		health = outbox
	}

	sender, err := order.NewSender(senderConfig)
	if err != nil {
		return fmt.Errorf("failed to create order sender: %w", err)
	}
	if closer, ok := sender.(io.Closer); ok {
		defer closer.Close()
	}

	surface := console.NewSurface(os.Stdout, cfg.Map.Width, cfg.Map.Height)
	fitter := viewport.NewFitter(surface, cfg.Map.Padding, viewport.Viewport{
		Center: models.GeoPoint{Longitude: cfg.Map.CenterLon, Latitude: cfg.Map.CenterLat},
		Zoom:   cfg.Map.Zoom,
	})

	engine := coordinator.NewEngine(coordinator.Deps{
		Lookup:      geocoding.NewClient(geoProvider, cfg.Geocoder.Type, appMetrics, logger),
		Router:      routing.NewClient(router, cfg.Router.Type, appMetrics, logger),
		Locator:     locator,
		Submitter:   order.NewAdapter(sender, cfg.Notifier.Type, appMetrics, logger),
		Catalog:     plans,
		Surface:     surface,
		Fitter:      fitter,
		Metrics:     appMetrics,
		PhoneRegion: cfg.PhoneRegion,
		Logger:      logger,
	})

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Type help for commands, Ctrl+D to stop.")

	group, gctx := errgroup.WithContext(ctx)

	// Start the monitoring server alongside the session; it stops with the group context.
	group.Go(func() error {
		return startMonitoringServer(gctx, logger, reg, health, cfg.Port)
	})

	if outbox != nil && cfg.Relay.Type != "" {
		relayConfig := senderConfig
		relayConfig.Type = order.SenderType(cfg.Relay.Type)
		downstream, errRelay := order.NewSender(relayConfig)
		if errRelay != nil {
			return fmt.Errorf("failed to create relay sender: %w", errRelay)
		}
		if closer, ok := downstream.(io.Closer); ok {
			defer closer.Close()
		}

		relay := service.NewRelayService(
			logger, outbox, downstream, cfg.Relay.Type, appMetrics, cfg.Relay.Workers, cfg.Relay.Interval,
		)
		group.Go(func() error {
			relay.Run(gctx)
			return nil
		})
	}

	group.Go(func() error {
		defer stop()

		engine.Start(gctx)
		session := console.NewSession(engine, plans.Plans(), os.Stdout, time.Local)
		err := session.Run(gctx, os.Stdin)
		engine.Wait()

		return err
	})

	if err = group.Wait(); err != nil {
		return err
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

// newSenderConfig maps the notifier configuration onto the order sender factory.
func newSenderConfig(cfg *config.Config, logger *slog.Logger) order.SenderConfig {
	return order.SenderConfig{
		Type:       order.SenderType(cfg.Notifier.Type),
		WebhookURL: cfg.Notifier.WebhookURL,
		SMTP: order.SMTPConfig{
			Host:      cfg.Notifier.SMTP.Host,
			Port:      cfg.Notifier.SMTP.Port,
			Username:  cfg.Notifier.SMTP.Username,
			Password:  cfg.Notifier.SMTP.Password,
			FromEmail: cfg.Notifier.SMTP.From,
			FromName:  cfg.Notifier.SMTP.FromName,
			To:        cfg.Notifier.SMTP.To,
		},
		KafkaBrokers: cfg.Notifier.KafkaBrokers,
		KafkaTopic:   cfg.Notifier.KafkaTopic,
		Timeout:      cfg.RequestTimeout,
		Logger:       logger,
	}
}

// setupOutbox connects to the database and creates the outbox table.
func setupOutbox(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Repository, error) {
	// Initialize the database connection.
	dtb, err := repository.NewDatabase(ctx,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port until ctx is canceled.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - health: An optional dependency pinged on /healthz.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	health pinger,
	port int,
) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if health != nil {
			if err := health.Ping(req.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(readTimeout)*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Monitoring server shutdown failed", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
		return err
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to stderr, stdout belongs to the console session.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

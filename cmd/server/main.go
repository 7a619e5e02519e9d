package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nextword/app/internal/config"
	appdb "nextword/app/internal/db"
	"nextword/app/internal/events"
	apphttp "nextword/app/internal/http"
	"nextword/app/internal/llm"
	applog "nextword/app/internal/log"
	"nextword/app/internal/suggest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	suggestions, err := suggest.NewService(client, logger)
	if err != nil {
		return eris.Wrap(err, "creating suggestion service")
	}

	logSink, err := events.NewLogSink(logger)
	if err != nil {
		return eris.Wrap(err, "creating event log sink")
	}
	sinks := []events.Sink{logSink}

	var archiveDB *gorm.DB
	if cfg.EventsDBPath != "" {
		archiveDB, err = appdb.Open(appdb.Options{Path: cfg.EventsDBPath, Logger: logger})
		if err != nil {
			return eris.Wrap(err, "opening event archive database")
		}
		defer func() {
			if closeErr := appdb.Close(archiveDB); closeErr != nil {
				logger.WithError(closeErr).Error("closing event archive database")
			}
		}()

		if err := events.Migrate(ctx, archiveDB, logger); err != nil {
			return eris.Wrap(err, "running event archive migrations")
		}

		archive, err := events.NewArchiveSink(archiveDB, logger)
		if err != nil {
			return eris.Wrap(err, "creating event archive sink")
		}
		sinks = append(sinks, archive)
	}

	recorder, err := events.NewRecorder(logger, sinks...)
	if err != nil {
		return eris.Wrap(err, "creating event recorder")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		Suggestions: suggestions,
		Events:      recorder,
		Archive:     archiveDB,
		Logger:      logger,
		SentryHub:   sentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}
	defer transport.Close()

	httpServer := &stdhttp.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler:           transport.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"addr":    httpServer.Addr,
		"model":   client.Model(),
		"archive": cfg.EventsDBPath != "",
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/pixelview/pkg/cli"
	"github.com/Fepozopo/pixelview/pkg/config"
	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/server"
	"github.com/Fepozopo/pixelview/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if len(os.Args) >= 2 && os.Args[1] == "serve" {
		runServer(cfg)
		return
	}

	// interactive mode logs human-readable lines to stderr so they don't
	// tangle with the prompt on stdout
	log := newLogger(cfg, zerolog.ConsoleWriter{Out: os.Stderr})
	cli.RunCLI(cfg, log)
}

func runServer(cfg *config.Config) {
	log := newLogger(cfg, os.Stdout)

	sess := session.NewWithFetcher(log,
		imageref.NewFetcher(cfg.FetchTimeout).WithAttempts(cfg.FetchRetries))
	srv := server.New(sess, log, cfg)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress()).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

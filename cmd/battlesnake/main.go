// Command battlesnake serves the decision policy over the Battlesnake API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/snekpilot/battlesnake"
	"github.com/brensch/snekpilot/config"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/policy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", config.EnvOr("LISTEN", ":8080"), "HTTP listen address")
	configPath := fs.String("config", config.EnvOr("SNEKPILOT_CONFIG", ""), "HCL tuning file (optional)")
	logFormat := fs.String("log-format", config.EnvOr("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", config.EnvOr("LOG_LEVEL", "info"), "Log level")
	color := fs.String("color", config.EnvOr("SNAKE_COLOR", battlesnake.DefaultInfo().Color), "Snake colour")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}

	logger, err := logging.New(os.Stderr, *logFormat, *logLevel)
	if err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	info := battlesnake.DefaultInfo()
	info.Color = *color
	server := battlesnake.NewServer(policy.New(cfg), info, logger)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("battlesnake server listening", "addr", *listen, "depth", cfg.Depth, "config", *configPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Command selfplay plays many episodes with the decision policy in parallel
// and writes every decision to Parquet batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpilot/config"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/sim"
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

	outDir := fs.String("out-dir", config.EnvOr("OUT_DIR", "data/selfplay"), "Output directory for parquet batches")
	workers := fs.Int("workers", config.EnvIntOr("WORKERS", runtime.NumCPU()), "Number of self-play workers")
	gamesPerFlush := fs.Int("games-per-flush", config.EnvIntOr("GAMES_PER_FLUSH", 50), "Episodes to buffer per parquet flush")
	maxGames := fs.Int("max-games", config.EnvIntOr("MAX_GAMES", 1000), "Episodes to play")
	size := fs.Int("size", config.EnvIntOr("BOARD_SIZE", 11), "Board side length")
	maxTurns := fs.Int("max-turns", config.EnvIntOr("MAX_TURNS", 2000), "Turn limit per episode (0 = none)")
	starveAfter := fs.Int("starve-after", config.EnvIntOr("STARVE_AFTER", 0), "Kill the snake after this many turns without food (0 = never)")
	seed := fs.Int64("seed", 0, "Base seed (0 = time based)")
	record := fs.Bool("record", config.EnvBoolOr("RECORD", true), "Write turn rows to parquet")
	noTUI := fs.Bool("no-tui", config.EnvBoolOr("NO_TUI", false), "Log progress instead of drawing the terminal UI")
	configPath := fs.String("config", config.EnvOr("SNEKPILOT_CONFIG", ""), "HCL tuning file (optional)")
	logFormat := fs.String("log-format", config.EnvOr("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", config.EnvOr("LOG_LEVEL", "info"), "Log level")
	logFile := fs.String("log-file", config.EnvOr("LOG_FILE", ""), "Log file; with the TUI and no file, logs are dropped")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}
	if *maxGames <= 0 {
		return fmt.Errorf("-max-games must be positive")
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	} else if !*noTUI {
		logOut = io.Discard
	}
	logger, err := logging.New(logOut, *logFormat, *logLevel)
	if err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	updates := make(chan tea.Msg, *workers)
	writeReqs := make(chan episodeWriteRequest, (*workers)*4)
	writerDone := make(chan []string, 1)
	go func() {
		writerDone <- parquetWriterLoop(*outDir, *gamesPerFlush, writeReqs, logger)
	}()

	opts := sim.Options{
		Size:        int32(*size),
		MaxTurns:    *maxTurns,
		StarveAfter: *starveAfter,
		Seed:        *seed,
		Source:      "selfplay",
		Record:      *record,
		Policy:      policy.New(cfg),
		Logger:      logger,
	}
	onDone := func(o sim.Outcome) {
		if o.Result.Completed && len(o.Rows) > 0 {
			writeReqs <- episodeWriteRequest{rows: o.Rows}
		}
		select {
		case updates <- episodeUpdate{Result: o.Result, Rows: len(o.Rows)}:
		case <-ctx.Done():
		}
	}

	logger.Info("starting self-play", "workers", *workers, "games", *maxGames, "size", *size, "out_dir", *outDir, "record", *record)
	runFinished := make(chan sim.Summary, 1)
	go func() {
		sum := sim.RunMany(ctx, *maxGames, *workers, opts, onDone)
		close(writeReqs)
		runFinished <- sum
		select {
		case updates <- runDone{Summary: sum}:
		case <-ctx.Done():
		}
	}()

	if *noTUI {
		logProgress(ctx, updates, logger)
	} else {
		if _, err := tea.NewProgram(initialModel(*maxGames, updates)).Run(); err != nil {
			logger.Error("tui failed", "err", err)
		}
	}
	cancel()

	sum := <-runFinished
	files := <-writerDone
	fmt.Printf("episodes=%d completed=%d wins=%d mean_score=%.2f max_score=%d mean_turns=%.1f files=%d duration=%s\n",
		sum.Episodes, sum.Completed, sum.Wins, sum.MeanScore(), sum.MaxScore, sum.MeanTurns(), len(files), sum.Duration.Round(time.Millisecond))
	return nil
}

func logProgress(ctx context.Context, updates <-chan tea.Msg, logger *slog.Logger) {
	games := 0
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-updates:
			switch msg := msg.(type) {
			case episodeUpdate:
				games++
				logger.Info("episode finished",
					"n", games,
					"episode", msg.Result.EpisodeID,
					"score", msg.Result.Score,
					"turns", msg.Result.Turns,
					"death", msg.Result.Death,
					"won", msg.Result.Won,
				)
			case runDone:
				return
			}
		}
	}
}

// Command autoplay watches the decision policy play the single-snake game in
// the terminal, restarting after every episode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpilot/config"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/store"
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

	size := fs.Int("size", config.EnvIntOr("BOARD_SIZE", 15), "Board side length")
	interval := fs.Duration("interval", config.EnvDurationOr("TICK", 80*time.Millisecond), "Time between ticks")
	starveAfter := fs.Int("starve-after", config.EnvIntOr("STARVE_AFTER", 0), "Kill the snake after this many turns without food (0 = never)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Food placement seed")
	configPath := fs.String("config", config.EnvOr("SNEKPILOT_CONFIG", ""), "HCL tuning file (optional)")
	recordDir := fs.String("record", config.EnvOr("RECORD_DIR", ""), "Write played turns as parquet into this directory")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}
	if *size < 2 {
		return fmt.Errorf("-size must be at least 2")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	var writer *store.BatchWriter
	if *recordDir != "" {
		writer, err = store.NewBatchWriter(*recordDir)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := newModel(int32(*size), *interval, *starveAfter, *seed, policy.New(cfg), writer)
	final, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if writer != nil {
		if fm, ok := final.(model); ok {
			fm.finishEpisode()
		}
		path, err := writer.Finalize()
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Printf("recorded %d rows from %d episodes to %s\n", writer.Rows(), writer.Episodes(), path)
		}
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// Command replay downloads recorded Battlesnake games and reports how often
// the decision policy agrees with the moves a given snake actually played.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brensch/snekpilot/config"
	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/replay"
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

	games := fs.String("games", "", "Comma-separated game ids")
	leaderboard := fs.String("leaderboard", "", "Leaderboard URL to discover game ids from")
	maxPlayers := fs.Int("max-players", config.EnvIntOr("MAX_PLAYERS", 10), "Players to crawl from the leaderboard")
	maxGames := fs.Int("max-games", config.EnvIntOr("MAX_GAMES", 20), "Games to compare (0 = all)")
	snake := fs.String("snake", "", "Snake name or id to compare against")
	delay := fs.Duration("delay", config.EnvDurationOr("DELAY", replay.NewDiscoverer().Delay), "Delay between HTTP requests")
	configPath := fs.String("config", config.EnvOr("SNEKPILOT_CONFIG", ""), "HCL tuning file (optional)")
	logFormat := fs.String("log-format", config.EnvOr("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", config.EnvOr("LOG_LEVEL", "info"), "Log level")
	verbose := fs.Bool("v", config.EnvBoolOr("VERBOSE", false), "Print every disagreement")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}
	if *snake == "" {
		return fmt.Errorf("-snake is required")
	}

	logger, err := logging.New(os.Stderr, *logFormat, *logLevel)
	if err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	pol := policy.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ids []string
	for _, id := range strings.Split(*games, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if *leaderboard != "" {
		d := replay.NewDiscoverer()
		d.Delay = *delay
		d.MaxPlayers = *maxPlayers
		d.Log = logger
		found, err := d.Discover(ctx, *leaderboard)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		ids = append(ids, found...)
	}
	if *maxGames > 0 && len(ids) > *maxGames {
		ids = ids[:*maxGames]
	}
	if len(ids) == 0 {
		return fmt.Errorf("no games: pass -games or -leaderboard")
	}

	dl := replay.NewDownloader(replay.DefaultConfig(), logger)
	var turns, agreed, compared int
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g, err := dl.Download(ctx, id)
		if err != nil {
			logger.Warn("download failed", "game", id, "err", err)
			continue
		}
		rep, err := replay.Compare(g, *snake, pol)
		if err != nil {
			logger.Debug("skipping game", "game", id, "err", err)
			continue
		}
		compared++
		turns += rep.Turns
		agreed += rep.Agreed
		logger.Info("game compared",
			"game", id,
			"turns", rep.Turns,
			"agreed", rep.Agreed,
			"agreement", fmt.Sprintf("%.1f%%", 100*rep.Agreement()),
			"no_decisions", rep.NoDecisions,
		)
		if *verbose {
			for _, d := range rep.Disagreements {
				fmt.Printf("%s turn %d: played %s, policy %s (%s)\n", id, d.Turn, d.Played, d.Chosen, d.Reason)
			}
		}
	}

	pct := 0.0
	if turns > 0 {
		pct = 100 * float64(agreed) / float64(turns)
	}
	fmt.Printf("games=%d turns=%d agreed=%d agreement=%.1f%%\n", compared, turns, agreed, pct)
	return nil
}

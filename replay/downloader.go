// Package replay downloads recorded Battlesnake games from the public
// engine, finds game ids on leaderboard pages, and replays recorded turns
// through the decision policy to measure how often it agrees with the moves
// that were actually played.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekpilot/battlesnake"
	"github.com/brensch/snekpilot/logging"
)

// ErrNoFrames is returned when a stream closes before any frame arrived.
var ErrNoFrames = errors.New("no frames received")

// Config holds downloader configuration.
type Config struct {
	// EngineURL is a format string taking the game id.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Event is one message of the engine's event stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo from the "game_info" event.
type GameInfo struct {
	Game    GameDetails `json:"game"`
	Ruleset RulesetInfo `json:"ruleset"`
}

type GameDetails struct {
	ID      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Timeout int    `json:"timeout"`
}

type RulesetInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Frame from "frame" events. Coordinates are in the Battlesnake frame.
type Frame struct {
	Turn    int                 `json:"turn"`
	Snakes  []Snake             `json:"snakes"`
	Food    []battlesnake.Coord `json:"food"`
	Hazards []battlesnake.Coord `json:"hazards"`
}

type Snake struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Health int                 `json:"health"`
	Body   []battlesnake.Coord `json:"body"`
	Author string              `json:"author,omitempty"`
	Death  *Death              `json:"death,omitempty"`
}

func (s Snake) Alive() bool { return s.Death == nil && len(s.Body) > 0 }

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// Game is a downloaded game.
type Game struct {
	ID     string
	Info   GameInfo
	Width  int
	Height int
	Frames []Frame
}

// Downloader fetches games over the engine's WebSocket event stream.
type Downloader struct {
	cfg    Config
	dialer websocket.Dialer
	log    *slog.Logger
}

func NewDownloader(cfg Config, logger *slog.Logger) *Downloader {
	if cfg.EngineURL == "" {
		cfg.EngineURL = DefaultConfig().EngineURL
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultConfig().ReadTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Downloader{
		cfg:    cfg,
		dialer: websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout},
		log:    logger,
	}
}

// Download connects to the game's event stream and reads frames until the
// engine closes it or sends game_end. A stream that breaks after some
// frames arrived returns what was read.
func (d *Downloader) Download(ctx context.Context, gameID string) (*Game, error) {
	url := fmt.Sprintf(d.cfg.EngineURL, gameID)
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", gameID, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	g := &Game{ID: gameID}
read:
	for {
		_ = conn.SetReadDeadline(time.Now().Add(d.cfg.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || len(g.Frames) > 0 {
				break
			}
			return nil, fmt.Errorf("read %s: %w", gameID, err)
		}

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil {
			d.log.Warn("skipping unparsable event", "game", gameID, "err", err)
			continue
		}
		switch ev.Type {
		case "game_info":
			if err := json.Unmarshal(ev.Data, &g.Info); err != nil {
				d.log.Warn("bad game_info", "game", gameID, "err", err)
			}
		case "frame":
			var f Frame
			if err := json.Unmarshal(ev.Data, &f); err != nil {
				d.log.Warn("bad frame", "game", gameID, "err", err)
				continue
			}
			g.Frames = append(g.Frames, f)
		case "game_end":
			break read
		}
	}

	if len(g.Frames) == 0 {
		return nil, fmt.Errorf("%s: %w", gameID, ErrNoFrames)
	}
	g.Width, g.Height = g.Info.Game.Width, g.Info.Game.Height
	if g.Width <= 0 || g.Height <= 0 {
		g.Width, g.Height = inferSize(g.Frames)
	}
	d.log.Debug("downloaded game", "game", gameID, "frames", len(g.Frames), "width", g.Width, "height", g.Height)
	return g, nil
}

// inferSize falls back to the smallest standard board that holds every
// coordinate seen.
func inferSize(frames []Frame) (int, int) {
	maxX, maxY := 0, 0
	see := func(c battlesnake.Coord) {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	for _, f := range frames {
		for _, c := range f.Food {
			see(c)
		}
		for _, s := range f.Snakes {
			for _, c := range s.Body {
				see(c)
			}
		}
	}
	for _, n := range []int{7, 11, 19, 25} {
		if maxX < n && maxY < n {
			return n, n
		}
	}
	return maxX + 1, maxY + 1
}

package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brensch/snekpilot/logging"
)

var (
	gameIDRe = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	// Matches /leaderboard/{arena}/{username}/stats.
	playerRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
)

// Player is a leaderboard entry with a link to its game history.
type Player struct {
	Name     string
	StatsURL string
}

// ParsePlayers extracts player stats links from a leaderboard page.
// Relative links are resolved against base.
func ParsePlayers(r io.Reader, base string) ([]Player, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse leaderboard: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	var players []Player
	seen := make(map[string]bool)
	doc.Find("a[href*='/leaderboard/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := playerRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[m[1]] = true
		players = append(players, Player{Name: m[1], StatsURL: baseURL.ResolveReference(ref).String()})
	})
	return players, nil
}

// ParseGameIDs extracts game ids from a page of game links, in page order.
func ParseGameIDs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse games: %w", err)
	}
	var ids []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/game/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if m := gameIDRe.FindStringSubmatch(href); len(m) >= 2 && !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	})
	return ids, nil
}

// Discoverer crawls a leaderboard and its players' stats pages.
type Discoverer struct {
	Client *http.Client
	// Delay is slept between stats page requests.
	Delay time.Duration
	// MaxPlayers caps the players checked per leaderboard; 0 means all.
	MaxPlayers int
	Log        *slog.Logger
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{
		Client:     &http.Client{Timeout: 30 * time.Second},
		Delay:      500 * time.Millisecond,
		MaxPlayers: 50,
		Log:        logging.Discard(),
	}
}

// Discover returns the unique game ids linked from the stats pages of the
// players on leaderboardURL. Failing stats pages are logged and skipped.
func (d *Discoverer) Discover(ctx context.Context, leaderboardURL string) ([]string, error) {
	body, err := d.get(ctx, leaderboardURL)
	if err != nil {
		return nil, err
	}
	players, err := ParsePlayers(body, leaderboardURL)
	body.Close()
	if err != nil {
		return nil, err
	}
	if d.MaxPlayers > 0 && len(players) > d.MaxPlayers {
		players = players[:d.MaxPlayers]
	}
	d.Log.Info("leaderboard scraped", "url", leaderboardURL, "players", len(players))

	var ids []string
	seen := make(map[string]bool)
	for i, p := range players {
		if i > 0 && d.Delay > 0 {
			select {
			case <-ctx.Done():
				return ids, ctx.Err()
			case <-time.After(d.Delay):
			}
		}
		page, err := d.get(ctx, p.StatsURL)
		if err != nil {
			d.Log.Warn("stats page failed", "player", p.Name, "err", err)
			continue
		}
		found, err := ParseGameIDs(page)
		page.Close()
		if err != nil {
			d.Log.Warn("stats page unparsable", "player", p.Name, "err", err)
			continue
		}
		for _, id := range found {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (d *Discoverer) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "snekpilot-replay/1.0")
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

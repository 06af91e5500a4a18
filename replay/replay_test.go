package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekpilot/battlesnake"
	"github.com/brensch/snekpilot/policy"
)

func c(x, y int) battlesnake.Coord { return battlesnake.Coord{X: x, Y: y} }

func event(t *testing.T, typ string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(Event{Type: typ, Data: raw})
	require.NoError(t, err)
	return msg
}

// engine serves one scripted event stream per connection on
// /games/{id}/events.
func engine(t *testing.T, messages [][]byte) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/games/") || !strings.HasSuffix(r.URL.Path, "/events") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, m); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/%s/events"
}

func sampleFrames() []Frame {
	return []Frame{
		{Turn: 0, Food: []battlesnake.Coord{c(5, 8)}, Snakes: []Snake{
			{ID: "s1", Name: "pilot", Health: 100, Body: []battlesnake.Coord{c(5, 5), c(5, 4), c(5, 3)}},
		}},
		{Turn: 1, Food: []battlesnake.Coord{c(5, 8)}, Snakes: []Snake{
			{ID: "s1", Name: "pilot", Health: 99, Body: []battlesnake.Coord{c(5, 6), c(5, 5), c(5, 4)}},
		}},
		{Turn: 2, Food: []battlesnake.Coord{c(5, 8)}, Snakes: []Snake{
			{ID: "s1", Name: "pilot", Health: 98, Body: []battlesnake.Coord{c(6, 6), c(5, 6), c(5, 5)}},
		}},
	}
}

func TestDownload(t *testing.T) {
	info := GameInfo{Game: GameDetails{ID: "abc", Width: 11, Height: 11}, Ruleset: RulesetInfo{Name: "standard"}}
	msgs := [][]byte{event(t, "game_info", info), []byte("not json")}
	for _, f := range sampleFrames() {
		msgs = append(msgs, event(t, "frame", f))
	}
	msgs = append(msgs, event(t, "game_end", struct{}{}))
	url := engine(t, msgs)

	d := NewDownloader(Config{EngineURL: url, ConnectTimeout: time.Second, ReadTimeout: time.Second}, nil)
	g, err := d.Download(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "standard", g.Info.Ruleset.Name)
	require.Equal(t, 11, g.Width)
	require.Len(t, g.Frames, 3)
	require.Equal(t, c(6, 6), g.Frames[2].Snakes[0].Body[0])
}

func TestDownload_InfersSize(t *testing.T) {
	var msgs [][]byte
	for _, f := range sampleFrames() {
		msgs = append(msgs, event(t, "frame", f))
	}
	url := engine(t, msgs)

	g, err := NewDownloader(Config{EngineURL: url, ReadTimeout: time.Second}, nil).Download(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, 11, g.Width)
	require.Equal(t, 11, g.Height)
}

func TestDownload_NoFrames(t *testing.T) {
	url := engine(t, nil)
	_, err := NewDownloader(Config{EngineURL: url, ReadTimeout: time.Second}, nil).Download(context.Background(), "x")
	require.True(t, errors.Is(err, ErrNoFrames), "err = %v", err)
}

func TestDownload_DialFails(t *testing.T) {
	url := engine(t, nil)
	url = strings.Replace(url, "/games/", "/nope/", 1)
	_, err := NewDownloader(Config{EngineURL: url, ConnectTimeout: time.Second}, nil).
		Download(context.Background(), "x")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoFrames))
}

const leaderboardHTML = `<html><body><table>
<tr><td><a href="/leaderboard/standard/alice/stats">alice</a></td></tr>
<tr><td><a href="/leaderboard/standard/bob/stats">bob</a></td></tr>
<tr><td><a href="/leaderboard/standard/alice/stats">alice again</a></td></tr>
<tr><td><a href="/leaderboard/standard">standard</a></td></tr>
</table></body></html>`

func statsHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<li><a href="https://play.battlesnake.com/game/%s">%s</a></li>`, id, id)
	}
	b.WriteString(`<li><a href="/profile/alice">profile</a></li></ul></body></html>`)
	return b.String()
}

func TestParsePlayers(t *testing.T) {
	players, err := ParsePlayers(strings.NewReader(leaderboardHTML), "https://play.battlesnake.com/leaderboard/standard")
	require.NoError(t, err)
	require.Equal(t, []Player{
		{Name: "alice", StatsURL: "https://play.battlesnake.com/leaderboard/standard/alice/stats"},
		{Name: "bob", StatsURL: "https://play.battlesnake.com/leaderboard/standard/bob/stats"},
	}, players)
}

func TestParseGameIDs(t *testing.T) {
	ids, err := ParseGameIDs(strings.NewReader(statsHTML("aa-11", "bb-22", "aa-11")))
	require.NoError(t, err)
	require.Equal(t, []string{"aa-11", "bb-22"}, ids)
}

func TestDiscoverer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/leaderboard/standard", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, leaderboardHTML)
	})
	mux.HandleFunc("/leaderboard/standard/alice/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsHTML("a1", "c3"))
	})
	mux.HandleFunc("/leaderboard/standard/bob/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsHTML("b2", "a1"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	d := NewDiscoverer()
	d.Delay = 0
	ids, err := d.Discover(context.Background(), srv.URL+"/leaderboard/standard")
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "c3", "b2"}, ids)

	d.MaxPlayers = 1
	ids, err = d.Discover(context.Background(), srv.URL+"/leaderboard/standard")
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "c3"}, ids)

	_, err = d.Discover(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	g := &Game{ID: "g", Width: 11, Height: 11, Frames: sampleFrames()}
	rep, err := Compare(g, "pilot", policy.New(policy.DefaultConfig()))
	require.NoError(t, err)

	require.Equal(t, 2, rep.Turns)
	require.Equal(t, 1, rep.Agreed)
	require.Zero(t, rep.NoDecisions)
	require.Equal(t, []Disagreement{{Turn: 1, Played: "right", Chosen: "up", Reason: policy.ReasonPath}}, rep.Disagreements)
	require.InDelta(t, 0.5, rep.Agreement(), 1e-9)
}

func TestCompare_SkipsDeadAndUnknown(t *testing.T) {
	frames := sampleFrames()
	frames[1].Snakes[0].Death = &Death{Cause: "wall-collision", Turn: 1}
	g := &Game{ID: "g", Width: 11, Height: 11, Frames: frames}

	rep, err := Compare(g, "s1", policy.New(policy.DefaultConfig()))
	require.NoError(t, err)
	require.Equal(t, 1, rep.Turns)

	_, err = Compare(g, "nobody", policy.New(policy.DefaultConfig()))
	require.Error(t, err)
}

// Package sim plays whole episodes of the single-snake game with the
// decision policy at the wheel and records every turn.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/rules"
	"github.com/brensch/snekpilot/store"
)

// Options configures one episode.
type Options struct {
	Size int32

	// MaxTurns stops the episode once reached; 0 means no limit.
	MaxTurns int

	// StarveAfter kills the snake after this many turns without food;
	// 0 disables starvation.
	StarveAfter int

	// Seed drives food placement. 0 picks a time-based seed.
	Seed int64

	EpisodeID string
	Source    string

	// Record keeps a store.TurnRow per turn in the outcome.
	Record bool

	Policy *policy.Policy
	Logger *slog.Logger

	// OnStep is called after every tick; it may be nil.
	OnStep func(s *rules.State, d policy.Decision)
}

// Result summarises an episode.
type Result struct {
	EpisodeID string
	Seed      int64
	Turns     int32
	Score     int
	Length    int
	Won       bool
	Death     string
	// Completed is false when the context ended the episode early.
	Completed   bool
	NoDecisions int
	Overrides   int
	Duration    time.Duration
}

type Outcome struct {
	Result Result
	Rows   []store.TurnRow
}

// Play runs one episode until the snake dies, wins, hits MaxTurns, or ctx is
// done. A "no decision" from the policy keeps the current heading, and the
// game loop ends the episode on the resulting collision.
func Play(ctx context.Context, opts Options) Outcome {
	start := time.Now()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pol := opts.Policy
	if pol == nil {
		pol = policy.New(policy.DefaultConfig())
	}
	id := opts.EpisodeID
	if id == "" {
		id = fmt.Sprintf("episode_%d", seed)
	}
	source := opts.Source
	if source == "" {
		source = "sim"
	}

	state := rules.NewState(opts.Size, rng)
	res := Result{EpisodeID: id, Seed: seed, Completed: true}
	var rows []store.TurnRow
	if opts.Record {
		rows = make([]store.TurnRow, 0, 256)
	}

	for !rules.IsOver(state) {
		if ctx != nil {
			select {
			case <-ctx.Done():
				res.Completed = false
				return finish(res, state, rows, start)
			default:
			}
		}
		if opts.MaxTurns > 0 && int(state.Turn) >= opts.MaxTurns {
			break
		}

		d := pol.Decide(policy.Input{
			Grid:    state.Grid,
			Body:    state.Body,
			Food:    state.Food,
			Current: state.Direction,
		})
		if !d.OK {
			res.NoDecisions++
		}
		if d.Overridden {
			res.Overrides++
		}

		next := rules.Step(state, d.Direction, rng)
		rules.Starve(next, opts.StarveAfter)

		if opts.Record {
			row := TurnRowFor(id, state, d)
			row.Ate = next.Score > state.Score
			row.Source = source
			rows = append(rows, row)
		}
		if opts.OnStep != nil {
			opts.OnStep(next, d)
		}
		state = next
	}

	out := finish(res, state, rows, start)
	if opts.Logger != nil {
		opts.Logger.Debug("episode finished",
			"episode", out.Result.EpisodeID,
			"turns", out.Result.Turns,
			"score", out.Result.Score,
			"death", out.Result.Death,
			"won", out.Result.Won,
		)
	}
	return out
}

func finish(res Result, state *rules.State, rows []store.TurnRow, start time.Time) Outcome {
	res.Turns = state.Turn
	res.Score = state.Score
	res.Length = len(state.Body)
	res.Won = state.Won
	res.Death = state.Death
	res.Duration = time.Since(start)
	return Outcome{Result: res, Rows: rows}
}

// TurnRowFor converts the state a decision was taken in, plus the decision,
// into a storable row.
func TurnRowFor(episodeID string, s *rules.State, d policy.Decision) store.TurnRow {
	row := store.TurnRow{
		EpisodeID:  episodeID,
		Turn:       s.Turn,
		Size:       s.Grid.Size,
		BodyX:      make([]int32, len(s.Body)),
		BodyY:      make([]int32, len(s.Body)),
		Move:       -1,
		Reason:     d.Reason,
		PathLen:    int32(len(d.Path)),
		OnPath:     d.OnPath,
		Overridden: d.Overridden,
		Distance:   -1,
	}
	for i, p := range s.Body {
		row.BodyX[i] = p.X
		row.BodyY[i] = p.Y
	}
	if s.Food != nil {
		row.HasFood = true
		row.FoodX = s.Food.X
		row.FoodY = s.Food.Y
	}
	if d.OK {
		row.Move = int32(d.Direction.Ordinal())
		row.Score = d.Chosen.Score
		row.Reachable = int32(d.Chosen.Reachable)
		row.Distance = int32(d.Chosen.Distance)
	}
	if len(d.Evaluations) > 0 {
		row.Evaluations = make([]store.MoveScore, len(d.Evaluations))
		for i, ev := range d.Evaluations {
			row.Evaluations[i] = store.MoveScore{
				Move:      int32(ev.Direction.Ordinal()),
				Score:     ev.Score,
				Reachable: int32(ev.Reachable),
				Valid:     ev.Valid,
			}
		}
	}
	return row
}

// BodyFromRow rebuilds the head-first body stored in a row.
func BodyFromRow(row store.TurnRow) []game.Point {
	n := len(row.BodyX)
	if len(row.BodyY) < n {
		n = len(row.BodyY)
	}
	body := make([]game.Point, n)
	for i := 0; i < n; i++ {
		body[i] = game.Point{X: row.BodyX[i], Y: row.BodyY[i]}
	}
	return body
}

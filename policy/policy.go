// Package policy turns a live snake body and a food cell into the next
// direction: valid moves, one A* run, a lookahead score per move, and a
// safety override that prefers open space over a shrinking pocket.
package policy

import (
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/lookahead"
	"github.com/brensch/snekpilot/pathfind"
)

// Config tunes the decision. Weights are forwarded to the lookahead.
type Config struct {
	// Depth is the number of plies the lookahead simulates per move.
	Depth int
	// PathBonus is added to a move whose new head is the first A* step.
	PathBonus float64
	// SafetyMargin is added to the body length to get the reachable-space
	// threshold under which the override kicks in.
	SafetyMargin int
	// OverrideMargin is how many more reachable cells another move must
	// have before the override switches to it.
	OverrideMargin int
	Weights        lookahead.Weights
}

func DefaultConfig() Config {
	return Config{
		Depth:          3,
		PathBonus:      40,
		SafetyMargin:   2,
		OverrideMargin: 3,
		Weights:        lookahead.DefaultWeights(),
	}
}

// Input is everything the policy needs for one tick.
type Input struct {
	Grid game.Grid
	// Body is head first.
	Body []game.Point
	// Food is nil when there is no food on the board.
	Food *game.Point
	// Current is the heading to keep when no decision can be made.
	Current game.Direction
	// Static cells are impassable for this tick (other snakes, hazards).
	Static []game.Point
}

// Decision is the policy's answer. When OK is false, Direction is the
// caller's current direction and should simply be kept.
type Decision struct {
	Direction   game.Direction
	OK          bool
	Reason      string
	Path        []game.Point
	Evaluations []lookahead.Evaluation
	Chosen      lookahead.Evaluation
	OnPath      bool
	Overridden  bool
}

// Reasons reported in Decision.Reason.
const (
	ReasonNoSnake     = "no snake"
	ReasonNoFood      = "no food"
	ReasonBadInput    = "invalid input"
	ReasonNoMoves     = "no valid moves"
	ReasonPath        = "path"
	ReasonLookahead   = "lookahead"
	ReasonSafety      = "safety override"
	ReasonUnreachable = "food unreachable"
)

type Policy struct {
	cfg  Config
	eval *lookahead.Evaluator
}

func New(cfg Config) *Policy {
	return &Policy{cfg: cfg, eval: lookahead.New(cfg.Weights)}
}

func (p *Policy) Config() Config { return p.cfg }

// Decide picks the next direction. It never panics on degenerate input;
// those cases come back with OK=false and the current direction.
func (p *Policy) Decide(in Input) Decision {
	out := Decision{Direction: in.Current}

	if len(in.Body) == 0 {
		out.Reason = ReasonNoSnake
		return out
	}
	if in.Food == nil {
		out.Reason = ReasonNoFood
		return out
	}
	snap, err := game.FromBody(in.Grid, in.Body)
	if err != nil || !in.Grid.InBounds(*in.Food) || snap.Occupied(*in.Food) || snap.Head() == *in.Food {
		out.Reason = ReasonBadInput
		return out
	}
	if len(in.Static) > 0 {
		snap = snap.WithStatic(in.Static)
	}

	moves := snap.ValidMoves()
	if len(moves) == 0 {
		out.Reason = ReasonNoMoves
		return out
	}

	out.Path = pathfind.Find(snap, *in.Food)
	var firstStep *game.Point
	if len(out.Path) > 0 {
		firstStep = &out.Path[0]
	}

	out.Evaluations = make([]lookahead.Evaluation, 0, len(moves))
	best := -1
	for _, d := range moves {
		ev := p.eval.Evaluate(snap, d, in.Food, p.cfg.Depth)
		if firstStep != nil && snap.Head().Add(d) == *firstStep {
			ev.Score += p.cfg.PathBonus
		}
		out.Evaluations = append(out.Evaluations, ev)
		// Strict comparison keeps the earliest move in enumeration order.
		if best < 0 || ev.Score > out.Evaluations[best].Score {
			best = len(out.Evaluations) - 1
		}
	}

	chosen := best
	threshold := snap.Len() + p.cfg.SafetyMargin
	if out.Evaluations[chosen].Reachable < threshold {
		if safer := p.safest(out.Evaluations, chosen); safer >= 0 {
			chosen = safer
			out.Overridden = true
		}
	}

	out.Chosen = out.Evaluations[chosen]
	out.Direction = out.Chosen.Direction
	out.OK = true
	out.OnPath = firstStep != nil && snap.Head().Add(out.Direction) == *firstStep

	switch {
	case out.Overridden:
		out.Reason = ReasonSafety
	case firstStep == nil:
		out.Reason = ReasonUnreachable
	case out.OnPath:
		out.Reason = ReasonPath
	default:
		out.Reason = ReasonLookahead
	}
	return out
}

// safest returns the index of the move with the most reachable space if it
// beats the chosen move by at least OverrideMargin cells, or -1.
func (p *Policy) safest(evs []lookahead.Evaluation, chosen int) int {
	idx := -1
	for i, ev := range evs {
		if i == chosen || !ev.Valid {
			continue
		}
		if idx < 0 || ev.Reachable > evs[idx].Reachable ||
			(ev.Reachable == evs[idx].Reachable && ev.Score > evs[idx].Score) {
			idx = i
		}
	}
	if idx < 0 || evs[idx].Reachable < evs[chosen].Reachable+p.cfg.OverrideMargin {
		return -1
	}
	return idx
}

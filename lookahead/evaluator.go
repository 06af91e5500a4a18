// Package lookahead scores candidate moves by simulating a few plies ahead.
//
// The search is single-agent and bounded by depth: every ply branches into
// at most four simulated snapshots, and each leaf is scored by distance to
// food. Intermediate plies are dominated by the reachable-space term so that
// survivability beats greed.
package lookahead

import (
	"fmt"

	"github.com/brensch/snekpilot/game"
)

// Aggregate selects how child evaluations are folded into their parent.
type Aggregate int

const (
	// AggregateMax follows the best future (optimistic).
	AggregateMax Aggregate = iota
	// AggregateMean averages all futures (risk-averse).
	AggregateMean
)

func (a Aggregate) String() string {
	switch a {
	case AggregateMax:
		return "max"
	case AggregateMean:
		return "mean"
	}
	return fmt.Sprintf("aggregate(%d)", int(a))
}

// ParseAggregate accepts "max" or "mean".
func ParseAggregate(s string) (Aggregate, error) {
	switch s {
	case "max":
		return AggregateMax, nil
	case "mean":
		return AggregateMean, nil
	}
	return 0, fmt.Errorf("unknown aggregate %q", s)
}

// Weights is the scoring scheme. Penalties are positive magnitudes that are
// subtracted from the score.
type Weights struct {
	DistanceWeight  float64 // leaf: score = -DistanceWeight * distance
	FoodWeight      float64 // per unit of distance closed this ply
	EatBonus        float64 // added when this ply eats the food
	SpaceWeight     float64 // per reachable cell after the move
	WallEdgePenalty float64 // head on the boundary
	WallNearPenalty float64 // head one cell from the boundary
	DeadEndPenalty  float64 // no valid move after this ply
	InvalidScore    float64 // score of a move that collides
	Discount        float64 // weight of the aggregated future, in (0,1]
	Aggregate       Aggregate
}

// DefaultWeights is the canonical tuning.
func DefaultWeights() Weights {
	return Weights{
		DistanceWeight:  2,
		FoodWeight:      3,
		EatBonus:        50,
		SpaceWeight:     8,
		WallEdgePenalty: 20,
		WallNearPenalty: 5,
		DeadEndPenalty:  500,
		InvalidScore:    -1000,
		Discount:        0.6,
		Aggregate:       AggregateMax,
	}
}

// Evaluation is the outcome of scoring one move.
type Evaluation struct {
	Direction game.Direction
	Score     float64
	// Reachable is the flood-fill count from the head after the move,
	// or 0 when the move is invalid.
	Reachable int
	// Distance is the Manhattan distance from the new head to the food,
	// or -1 when there is no food target or the move is invalid.
	Distance int
	Valid    bool
	Ate      bool
}

type Evaluator struct {
	Weights Weights
}

func New(w Weights) *Evaluator {
	return &Evaluator{Weights: w}
}

// Evaluate scores moving in direction d from s, looking depth plies ahead.
// A nil food means there is no target; only space and walls matter.
//
// At depth 0 no move is simulated: the current head is scored against the
// food and Reachable is the flood fill from s.
func (e *Evaluator) Evaluate(s game.Snapshot, d game.Direction, food *game.Point, depth int) Evaluation {
	if depth <= 0 {
		return e.leaf(s, d, food)
	}
	return e.ply(s, d, food, depth)
}

func (e *Evaluator) leaf(s game.Snapshot, d game.Direction, food *game.Point) Evaluation {
	ev := Evaluation{Direction: d, Reachable: s.ReachableCount(), Distance: -1, Valid: true}
	if food != nil {
		ev.Distance = game.Manhattan(s.Head(), *food)
		ev.Score = -e.Weights.DistanceWeight * float64(ev.Distance)
	}
	return ev
}

func (e *Evaluator) ply(s game.Snapshot, d game.Direction, food *game.Point, depth int) Evaluation {
	w := e.Weights
	newHead := s.Head().Add(d)
	ate := food != nil && newHead == *food

	next, ok := s.SimulateMove(d, ate)
	if !ok {
		return Evaluation{Direction: d, Score: w.InvalidScore, Distance: -1}
	}

	ev := Evaluation{Direction: d, Valid: true, Ate: ate, Distance: -1}

	if food != nil {
		before := game.Manhattan(s.Head(), *food)
		ev.Distance = game.Manhattan(newHead, *food)
		ev.Score += w.FoodWeight * float64(before-ev.Distance)
		if ate {
			ev.Score += w.EatBonus
		}
	}

	ev.Reachable = next.ReachableCount()
	ev.Score += w.SpaceWeight * float64(ev.Reachable)

	switch s.Grid().WallDistance(newHead) {
	case 0:
		ev.Score -= w.WallEdgePenalty
	case 1:
		ev.Score -= w.WallNearPenalty
	}

	moves := next.ValidMoves()
	if len(moves) == 0 {
		ev.Score -= w.DeadEndPenalty
		return ev
	}

	// The food is consumed on this ply; deeper plies have no target.
	childFood := food
	if ate {
		childFood = nil
	}

	var future float64
	if depth == 1 {
		// Every depth-0 child scores the same leaf: the state after this move.
		future = e.leaf(next, d, childFood).Score
	} else {
		future = e.aggregate(next, moves, childFood, depth-1)
	}
	ev.Score += w.Discount * future
	return ev
}

func (e *Evaluator) aggregate(s game.Snapshot, moves []game.Direction, food *game.Point, depth int) float64 {
	switch e.Weights.Aggregate {
	case AggregateMean:
		var sum float64
		for _, m := range moves {
			sum += e.ply(s, m, food, depth).Score
		}
		return sum / float64(len(moves))
	default:
		best := 0.0
		for i, m := range moves {
			score := e.ply(s, m, food, depth).Score
			if i == 0 || score > best {
				best = score
			}
		}
		return best
	}
}

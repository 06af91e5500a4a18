// Package rules is the headless single-snake game loop the decision policy
// plays against: tick stepping, growth, collision detection, food placement.
//
// The collision rule matches game.Snapshot.SimulateMove: the new head is
// checked against the pre-move body minus the head, so the tail cell that
// is about to be vacated still kills.
package rules

import (
	"math/rand"

	"github.com/brensch/snekpilot/game"
)

// Death causes.
const (
	DeathNone    = ""
	DeathWall    = "wall"
	DeathSelf    = "self"
	DeathStarved = "starved"
)

// State is one tick of a single-snake game.
type State struct {
	Grid      game.Grid
	Body      []game.Point
	Food      *game.Point
	Direction game.Direction
	Turn      int32
	Score     int
	// SinceFood counts ticks since the last meal.
	SinceFood int
	Alive     bool
	// Won is set when the snake fills the board and no food can be placed.
	Won   bool
	Death string
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Body = make([]game.Point, len(s.Body))
	copy(out.Body, s.Body)
	if s.Food != nil {
		f := *s.Food
		out.Food = &f
	}
	return &out
}

func (s *State) Head() game.Point { return s.Body[0] }

// NewState places a length-1 snake in the centre heading right and puts
// one food on a free cell. A nil rng gives a deterministic board.
func NewState(size int32, rng *rand.Rand) *State {
	grid := game.NewGrid(size)
	s := &State{
		Grid:      grid,
		Body:      []game.Point{{X: size / 2, Y: size / 2}},
		Direction: game.Right,
		Alive:     true,
	}
	s.Food = PlaceFood(s, rng)
	return s
}

// Step advances the game by one tick in direction d. A zero or invalid d
// keeps the current heading. The input state is not modified.
func Step(s *State, d game.Direction, rng *rand.Rand) *State {
	next := s.Clone()
	if IsOver(s) {
		return next
	}
	if d.Valid() {
		next.Direction = d
	}
	next.Turn++

	head := s.Head().Add(next.Direction)
	if !s.Grid.InBounds(head) {
		next.Alive = false
		next.Death = DeathWall
		return next
	}
	for _, p := range s.Body[1:] {
		if p == head {
			next.Alive = false
			next.Death = DeathSelf
			return next
		}
	}

	ate := s.Food != nil && *s.Food == head
	n := len(s.Body)
	if !ate {
		n--
	}
	body := make([]game.Point, 0, n+1)
	body = append(body, head)
	body = append(body, s.Body[:n]...)
	next.Body = body

	if !ate {
		next.SinceFood++
		return next
	}

	next.Score++
	next.SinceFood = 0
	next.Food = PlaceFood(next, rng)
	if next.Food == nil {
		next.Won = true
	}
	return next
}

// Starve ends the game if the snake has gone limit ticks without eating.
// A non-positive limit disables starvation.
func Starve(s *State, limit int) bool {
	if limit <= 0 || IsOver(s) || s.SinceFood < limit {
		return false
	}
	s.Alive = false
	s.Death = DeathStarved
	return true
}

// IsOver reports whether the game has ended, by death or by filling the board.
func IsOver(s *State) bool {
	return !s.Alive || s.Won
}

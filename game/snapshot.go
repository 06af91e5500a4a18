package game

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBody     = errors.New("snake body is empty")
	ErrOutOfBounds   = errors.New("cell out of bounds")
	ErrDuplicateCell = errors.New("body occupies a cell twice")
	ErrInvalidGrid   = errors.New("grid size must be positive")
)

// Snapshot is an immutable view of one hypothetical snake configuration.
//
// body[0] is the head. The obstacle set is body[1:]; the head never blocks
// itself. A snapshot may also carry a static obstacle set (other snakes,
// hazards) which is shared read-only between a snapshot and everything
// simulated from it.
type Snapshot struct {
	grid     Grid
	body     []Point
	occupied []bool
	static   []bool
}

// FromBody builds a snapshot from a head-first body.
func FromBody(grid Grid, body []Point) (Snapshot, error) {
	if grid.Size <= 0 {
		return Snapshot{}, ErrInvalidGrid
	}
	if len(body) == 0 {
		return Snapshot{}, ErrEmptyBody
	}
	seen := make([]bool, grid.Area())
	for i, p := range body {
		if !grid.InBounds(p) {
			return Snapshot{}, fmt.Errorf("body[%d] %v: %w", i, p, ErrOutOfBounds)
		}
		idx := grid.Index(p)
		if seen[idx] {
			return Snapshot{}, fmt.Errorf("body[%d] %v: %w", i, p, ErrDuplicateCell)
		}
		seen[idx] = true
	}

	cp := make([]Point, len(body))
	copy(cp, body)
	return Snapshot{grid: grid, body: cp, occupied: obstaclesOf(grid, cp)}, nil
}

// WithStatic returns a copy of s that additionally treats the given cells as
// impassable. Out-of-bounds cells and cells of the snake itself are ignored.
func (s Snapshot) WithStatic(cells []Point) Snapshot {
	static := make([]bool, s.grid.Area())
	for _, p := range cells {
		if s.grid.InBounds(p) {
			static[s.grid.Index(p)] = true
		}
	}
	for _, p := range s.body {
		static[s.grid.Index(p)] = false
	}
	s.static = static
	return s
}

func obstaclesOf(grid Grid, body []Point) []bool {
	occ := make([]bool, grid.Area())
	for _, p := range body[1:] {
		occ[grid.Index(p)] = true
	}
	return occ
}

func (s Snapshot) Grid() Grid  { return s.grid }
func (s Snapshot) Head() Point { return s.body[0] }
func (s Snapshot) Len() int    { return len(s.body) }

// Tail returns the last body segment.
func (s Snapshot) Tail() Point { return s.body[len(s.body)-1] }

// Body returns a copy of the body, head first.
func (s Snapshot) Body() []Point {
	out := make([]Point, len(s.body))
	copy(out, s.body)
	return out
}

// Blocked reports whether p is out of bounds, part of the obstacle set, or a
// static obstacle.
func (s Snapshot) Blocked(p Point) bool {
	if !s.grid.InBounds(p) {
		return true
	}
	idx := s.grid.Index(p)
	if s.occupied[idx] {
		return true
	}
	return s.static != nil && s.static[idx]
}

// Occupied reports whether p is one of the body's obstacle cells.
func (s Snapshot) Occupied(p Point) bool {
	return s.grid.InBounds(p) && s.occupied[s.grid.Index(p)]
}

// CanMove reports whether SimulateMove(d, ...) would succeed.
func (s Snapshot) CanMove(d Direction) bool {
	return !s.Blocked(s.Head().Add(d))
}

// SimulateMove returns the snapshot after the head steps in direction d.
// The collision check uses the pre-move obstacle set, so the current tail
// cell is still blocking. The tail is dropped unless ateFood.
func (s Snapshot) SimulateMove(d Direction, ateFood bool) (Snapshot, bool) {
	head := s.Head().Add(d)
	if s.Blocked(head) {
		return Snapshot{}, false
	}

	n := len(s.body)
	if !ateFood {
		n--
	}
	body := make([]Point, 0, n+1)
	body = append(body, head)
	body = append(body, s.body[:n]...)

	return Snapshot{
		grid:     s.grid,
		body:     body,
		occupied: obstaclesOf(s.grid, body),
		static:   s.static,
	}, true
}

// ValidMoves returns every direction the head can take, in enumeration order.
func (s Snapshot) ValidMoves() []Direction {
	out := make([]Direction, 0, 4)
	for _, d := range Directions {
		if s.CanMove(d) {
			out = append(out, d)
		}
	}
	return out
}

// ReachableCount flood-fills from the head and returns the number of cells
// visited, head included.
func (s Snapshot) ReachableCount() int {
	return Reachable(s.grid, s.Head(), s.Blocked)
}

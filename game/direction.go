package game

import "fmt"

// Direction is a unit step on the grid. Exactly one of X, Y is non-zero.
type Direction struct {
	X int32
	Y int32
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Directions is the fixed enumeration order used for every tie-break.
var Directions = [4]Direction{Up, Down, Left, Right}

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// IsZero reports whether d is the zero vector (no direction).
func (d Direction) IsZero() bool {
	return d.X == 0 && d.Y == 0
}

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	return d.Ordinal() >= 0
}

// Ordinal is the index of d in Directions, or -1.
func (d Direction) Ordinal() int {
	for i, c := range Directions {
		if c == d {
			return i
		}
	}
	return -1
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("dir(%d,%d)", d.X, d.Y)
}

// ParseDirection maps "up", "down", "left" and "right" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Direction{}, fmt.Errorf("unknown direction %q", s)
}

// Between returns the direction that moves from a to an adjacent cell b.
func Between(a, b Point) (Direction, bool) {
	d := Direction{X: b.X - a.X, Y: b.Y - a.Y}
	return d, d.Valid()
}

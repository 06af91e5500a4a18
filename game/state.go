// Package game defines the grid geometry and the occupancy snapshot the
// decision engine searches over.
//
// Coordinates follow screen conventions: (0,0) is the top-left cell and Up
// decreases Y. Snapshots are immutable values.
package game

import "fmt"

// Point is a grid cell.
type Point struct {
	X int32
	Y int32
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p translated by d.
func (p Point) Add(d Direction) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Manhattan returns the 4-connected distance between a and b.
func Manhattan(a, b Point) int {
	return abs32(a.X-b.X) + abs32(a.Y-b.Y)
}

func abs32(v int32) int {
	if v < 0 {
		return int(-v)
	}
	return int(v)
}

// Grid is a square, bounded board of Size x Size cells.
type Grid struct {
	Size int32
}

// NewGrid returns a grid with the given side length.
func NewGrid(size int32) Grid {
	return Grid{Size: size}
}

// Area is the number of cells on the grid.
func (g Grid) Area() int {
	return int(g.Size) * int(g.Size)
}

func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

// Index encodes p as a dense cell index. p must be in bounds.
func (g Grid) Index(p Point) int {
	return int(p.Y)*int(g.Size) + int(p.X)
}

// Point decodes a cell index produced by Index.
func (g Grid) Point(idx int) Point {
	return Point{X: int32(idx % int(g.Size)), Y: int32(idx / int(g.Size))}
}

// Neighbors returns the in-bounds neighbours of p in enumeration order
// (up, down, left, right).
func (g Grid) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range Directions {
		n := p.Add(d)
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// WallDistance is the number of cells between p and the nearest edge;
// 0 means p lies on the boundary.
func (g Grid) WallDistance(p Point) int {
	d := p.X
	if p.Y < d {
		d = p.Y
	}
	if g.Size-1-p.X < d {
		d = g.Size - 1 - p.X
	}
	if g.Size-1-p.Y < d {
		d = g.Size - 1 - p.Y
	}
	return int(d)
}

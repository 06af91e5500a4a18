// Package pathfind implements A* shortest-path search on the grid.
package pathfind

import (
	"container/heap"

	"github.com/brensch/snekpilot/game"
)

// node is one A* search node. It is owned by a single search run.
type node struct {
	p      game.Point
	g      int
	h      int
	f      int
	seq    int
	parent *node
	index  int // position in the open heap, -1 once closed
}

// openSet orders nodes by f, then h, then insertion sequence, which keeps
// tie-breaking deterministic for a given neighbour enumeration order.
type openSet []*node

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*o = old[:len(old)-1]
	return n
}

// Find returns the shortest path from the snapshot's head to goal, avoiding
// the snapshot's obstacles. The path starts with the first step after the
// head and ends at goal. It is empty when goal is unreachable, blocked or
// equal to the head.
func Find(s game.Snapshot, goal game.Point) []game.Point {
	return FindFrom(s.Grid(), s.Head(), goal, s.Blocked)
}

// FindFrom runs A* from start to goal on grid; cells for which blocked
// returns true are impassable. The start cell is never tested.
func FindFrom(grid game.Grid, start, goal game.Point, blocked func(game.Point) bool) []game.Point {
	if start == goal || !grid.InBounds(start) || !grid.InBounds(goal) || blocked(goal) {
		return nil
	}

	nodes := make([]*node, grid.Area())
	closed := make([]bool, grid.Area())
	open := &openSet{}
	seq := 0

	h0 := game.Manhattan(start, goal)
	first := &node{p: start, g: 0, h: h0, f: h0, seq: seq}
	nodes[grid.Index(start)] = first
	heap.Push(open, first)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.p == goal {
			return reconstruct(cur)
		}
		closed[grid.Index(cur.p)] = true

		for _, d := range game.Directions {
			np := cur.p.Add(d)
			if !grid.InBounds(np) || blocked(np) {
				continue
			}
			idx := grid.Index(np)
			if closed[idx] {
				continue
			}

			g := cur.g + 1
			existing := nodes[idx]
			if existing == nil {
				seq++
				h := game.Manhattan(np, goal)
				n := &node{p: np, g: g, h: h, f: g + h, seq: seq, parent: cur}
				nodes[idx] = n
				heap.Push(open, n)
				continue
			}
			if g < existing.g {
				existing.g = g
				existing.f = g + existing.h
				existing.parent = cur
				heap.Fix(open, existing.index)
			}
		}
	}
	return nil
}

func reconstruct(end *node) []game.Point {
	steps := 0
	for n := end; n.parent != nil; n = n.parent {
		steps++
	}
	path := make([]game.Point, steps)
	for n := end; n.parent != nil; n = n.parent {
		steps--
		path[steps] = n.p
	}
	return path
}

package pathfind

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brensch/snekpilot/game"
)

// bfsDistance is the brute-force reference: unweighted BFS distance from
// start to goal, or -1.
func bfsDistance(grid game.Grid, start, goal game.Point, blocked func(game.Point) bool) int {
	dist := make([]int, grid.Area())
	for i := range dist {
		dist[i] = -1
	}
	dist[grid.Index(start)] = 0
	queue := []game.Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == goal {
			return dist[grid.Index(p)]
		}
		for _, n := range grid.Neighbors(p) {
			if blocked(n) || dist[grid.Index(n)] >= 0 {
				continue
			}
			dist[grid.Index(n)] = dist[grid.Index(p)] + 1
			queue = append(queue, n)
		}
	}
	return -1
}

func checkPath(t *testing.T, grid game.Grid, start, goal game.Point, blocked func(game.Point) bool, path []game.Point) {
	t.Helper()
	prev := start
	for i, p := range path {
		if !grid.InBounds(p) {
			t.Fatalf("path[%d]=%v out of bounds", i, p)
		}
		if blocked(p) {
			t.Fatalf("path[%d]=%v is blocked", i, p)
		}
		if game.Manhattan(prev, p) != 1 {
			t.Fatalf("path[%d]=%v not adjacent to %v", i, p, prev)
		}
		prev = p
	}
	if len(path) > 0 && path[len(path)-1] != goal {
		t.Fatalf("path ends at %v want %v", path[len(path)-1], goal)
	}
}

func TestFind_OpenGridIsManhattan(t *testing.T) {
	grid := game.NewGrid(6)
	free := func(game.Point) bool { return false }
	for i := 0; i < grid.Area(); i++ {
		for j := 0; j < grid.Area(); j++ {
			start, goal := grid.Point(i), grid.Point(j)
			path := FindFrom(grid, start, goal, free)
			want := game.Manhattan(start, goal)
			if len(path) != want {
				t.Fatalf("%v->%v len=%d want=%d", start, goal, len(path), want)
			}
			checkPath(t, grid, start, goal, free, path)
		}
	}
}

func TestFind_MatchesBFSWithObstacles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		size := int32(4 + rng.Intn(5))
		grid := game.NewGrid(size)
		walls := make([]bool, grid.Area())
		for i := range walls {
			walls[i] = rng.Intn(100) < 30
		}
		blocked := func(p game.Point) bool { return walls[grid.Index(p)] }

		start := grid.Point(rng.Intn(grid.Area()))
		goal := grid.Point(rng.Intn(grid.Area()))
		walls[grid.Index(start)] = false

		path := FindFrom(grid, start, goal, blocked)
		want := bfsDistance(grid, start, goal, blocked)
		switch {
		case start == goal:
			if len(path) != 0 {
				t.Fatalf("trial %d: start==goal returned %v", trial, path)
			}
		case want < 0:
			if len(path) != 0 {
				t.Fatalf("trial %d: unreachable goal returned %v", trial, path)
			}
		default:
			if len(path) != want {
				t.Fatalf("trial %d: %v->%v len=%d bfs=%d", trial, start, goal, len(path), want)
			}
			checkPath(t, grid, start, goal, blocked, path)
		}
	}
}

func TestFind_AroundSnakeBody(t *testing.T) {
	// Body forms a wall between head and food:
	//
	//   . . . . .
	//   . s s s .
	//   . H F . .
	s, err := game.FromBody(game.NewGrid(5), []game.Point{
		{X: 1, Y: 2}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := Find(s, game.Point{X: 2, Y: 2})
	if diff := cmp.Diff([]game.Point{{X: 2, Y: 2}}, path); diff != "" {
		t.Fatalf("adjacent food (-want +got):\n%s", diff)
	}

	path = Find(s, game.Point{X: 2, Y: 0})
	checkPath(t, s.Grid(), s.Head(), game.Point{X: 2, Y: 0}, s.Blocked, path)
	if len(path) != 5 {
		t.Fatalf("detour len=%d want=5 path=%v", len(path), path)
	}
}

func TestFind_Unreachable(t *testing.T) {
	grid := game.NewGrid(5)
	// Column x=2 fully blocked.
	blocked := func(p game.Point) bool { return p.X == 2 }
	if path := FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 4, Y: 4}, blocked); len(path) != 0 {
		t.Fatalf("expected no path, got %v", path)
	}
	// Goal itself blocked.
	if path := FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 2, Y: 0}, blocked); len(path) != 0 {
		t.Fatalf("expected no path into blocked goal, got %v", path)
	}
	// Goal out of bounds.
	if path := FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 9, Y: 0}, blocked); len(path) != 0 {
		t.Fatalf("expected no path out of bounds, got %v", path)
	}
}

func TestFind_Deterministic(t *testing.T) {
	grid := game.NewGrid(8)
	free := func(game.Point) bool { return false }
	a := FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 7, Y: 7}, free)
	for i := 0; i < 10; i++ {
		b := FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 7, Y: 7}, free)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func BenchmarkFind(b *testing.B) {
	grid := game.NewGrid(20)
	blocked := func(p game.Point) bool { return p.X == 10 && p.Y != 19 }
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FindFrom(grid, game.Point{X: 0, Y: 0}, game.Point{X: 19, Y: 0}, blocked)
	}
}

package lookahead

import (
	"math"
	"testing"

	"github.com/brensch/snekpilot/game"
)

func snapshot(t *testing.T, size int32, body ...game.Point) game.Snapshot {
	t.Helper()
	s, err := game.FromBody(game.NewGrid(size), body)
	if err != nil {
		t.Fatalf("FromBody: %v", err)
	}
	return s
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluate_LeafScoresDistance(t *testing.T) {
	e := New(DefaultWeights())
	s := snapshot(t, 5, game.Point{X: 2, Y: 2})
	food := game.Point{X: 4, Y: 4}

	ev := e.Evaluate(s, game.Up, &food, 0)
	if !approx(ev.Score, -8) {
		t.Fatalf("score=%v want=-8", ev.Score)
	}
	if ev.Reachable != 25 || ev.Distance != 4 {
		t.Fatalf("reachable=%d distance=%d", ev.Reachable, ev.Distance)
	}
}

func TestEvaluate_OnePly(t *testing.T) {
	e := New(DefaultWeights())
	s := snapshot(t, 5, game.Point{X: 2, Y: 2})
	food := game.Point{X: 4, Y: 4}

	// Right: +3 (closer) +200 (25 cells) -5 (near wall) + 0.6*(-2*3).
	right := e.Evaluate(s, game.Right, &food, 1)
	if !approx(right.Score, 194.4) {
		t.Fatalf("right score=%v want=194.4", right.Score)
	}
	// Up: -3 (farther) +200 -5 + 0.6*(-2*5).
	up := e.Evaluate(s, game.Up, &food, 1)
	if !approx(up.Score, 186) {
		t.Fatalf("up score=%v want=186", up.Score)
	}
	if right.Distance != 3 || up.Distance != 5 {
		t.Fatalf("distances right=%d up=%d", right.Distance, up.Distance)
	}
}

func TestEvaluate_InvalidMove(t *testing.T) {
	w := DefaultWeights()
	e := New(w)
	s := snapshot(t, 10, game.Point{X: 5, Y: 5}, game.Point{X: 4, Y: 5}, game.Point{X: 3, Y: 5})
	food := game.Point{X: 0, Y: 5}

	ev := e.Evaluate(s, game.Left, &food, 3)
	if ev.Valid || ev.Score != w.InvalidScore || ev.Reachable != 0 {
		t.Fatalf("neck move evaluation=%+v", ev)
	}

	edge := snapshot(t, 5, game.Point{X: 0, Y: 0})
	ev = e.Evaluate(edge, game.Up, &food, 3)
	if ev.Valid || ev.Score != w.InvalidScore {
		t.Fatalf("wall move evaluation=%+v", ev)
	}
}

func TestEvaluate_DeadEndLosesToOpenSpace(t *testing.T) {
	// 3x3 board:
	//   # . #
	//   . H .
	//   # s .
	s := snapshot(t, 3, game.Point{X: 1, Y: 1}, game.Point{X: 1, Y: 2}).
		WithStatic([]game.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}})
	e := New(DefaultWeights())

	up := e.Evaluate(s, game.Up, nil, 3)
	left := e.Evaluate(s, game.Left, nil, 3)
	right := e.Evaluate(s, game.Right, nil, 3)

	if !up.Valid || up.Reachable != 1 {
		t.Fatalf("up=%+v", up)
	}
	if right.Score <= up.Score || right.Score <= left.Score {
		t.Fatalf("expected right to win: up=%v left=%v right=%v", up.Score, left.Score, right.Score)
	}
	if up.Score > -400 {
		t.Fatalf("dead end not penalised: %v", up.Score)
	}
}

func TestEvaluate_EatingDropsTarget(t *testing.T) {
	e := New(DefaultWeights())
	s := snapshot(t, 7, game.Point{X: 3, Y: 3}, game.Point{X: 3, Y: 4})
	food := game.Point{X: 3, Y: 2}

	ev := e.Evaluate(s, game.Up, &food, 2)
	if !ev.Ate || ev.Distance != 0 {
		t.Fatalf("expected eat, got %+v", ev)
	}
	other := e.Evaluate(s, game.Left, &food, 2)
	if ev.Score <= other.Score {
		t.Fatalf("eating (%v) should beat moving away (%v)", ev.Score, other.Score)
	}
}

func TestEvaluate_MeanIsNoGreaterThanMax(t *testing.T) {
	s := snapshot(t, 6,
		game.Point{X: 1, Y: 1}, game.Point{X: 2, Y: 1}, game.Point{X: 3, Y: 1}, game.Point{X: 3, Y: 2})
	food := game.Point{X: 5, Y: 5}

	wMax := DefaultWeights()
	wMean := DefaultWeights()
	wMean.Aggregate = AggregateMean

	for _, d := range s.ValidMoves() {
		hi := New(wMax).Evaluate(s, d, &food, 3)
		lo := New(wMean).Evaluate(s, d, &food, 3)
		if lo.Score > hi.Score+1e-9 {
			t.Fatalf("%s: mean %v > max %v", d, lo.Score, hi.Score)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := New(DefaultWeights())
	s := snapshot(t, 8, game.Point{X: 4, Y: 4}, game.Point{X: 4, Y: 5}, game.Point{X: 4, Y: 6})
	food := game.Point{X: 1, Y: 1}
	before := s.Body()

	first := e.Evaluate(s, game.Left, &food, 4)
	for i := 0; i < 5; i++ {
		if got := e.Evaluate(s, game.Left, &food, 4); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
	after := s.Body()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("snapshot mutated at %d", i)
		}
	}
}

func TestParseAggregate(t *testing.T) {
	for _, a := range []Aggregate{AggregateMax, AggregateMean} {
		got, err := ParseAggregate(a.String())
		if err != nil || got != a {
			t.Fatalf("ParseAggregate(%q)=%v,%v", a.String(), got, err)
		}
	}
	if _, err := ParseAggregate("median"); err == nil {
		t.Fatalf("expected error")
	}
}

func BenchmarkEvaluate(b *testing.B) {
	s, _ := game.FromBody(game.NewGrid(20), []game.Point{{X: 10, Y: 10}, {X: 10, Y: 11}, {X: 10, Y: 12}, {X: 10, Y: 13}})
	food := game.Point{X: 2, Y: 3}
	e := New(DefaultWeights())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, d := range game.Directions {
			e.Evaluate(s, d, &food, 4)
		}
	}
}

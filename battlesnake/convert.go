package battlesnake

import (
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/policy"
)

// ToInput converts a board and the snake to steer into a policy input.
//
// Battlesnake's y axis grows upward while the policy's Up is y-1, so rows
// are flipped; the direction names then line up one to one. Non-square
// boards are padded to the larger side and the padding is static. Every
// other snake's body is a static obstacle for the tick. The target is the
// food nearest the head by Manhattan distance, first listed on ties.
func ToInput(b Board, you Battlesnake) policy.Input {
	size := b.Width
	if b.Height > size {
		size = b.Height
	}
	in := policy.Input{Grid: game.NewGrid(int32(size))}
	flip := func(c Coord) game.Point {
		return game.Point{X: int32(c.X), Y: int32(b.Height - 1 - c.Y)}
	}

	in.Body = bodyOf(you.Body, flip)
	if len(in.Body) > 1 {
		if d, ok := game.Between(in.Body[1], in.Body[0]); ok {
			in.Current = d
		}
	}

	if len(in.Body) > 0 {
		head := in.Body[0]
		best := -1
		for _, f := range b.Food {
			p := flip(f)
			if dist := game.Manhattan(head, p); best < 0 || dist < best {
				best = dist
				food := p
				in.Food = &food
			}
		}
	}

	for _, s := range b.Snakes {
		if s.ID == you.ID {
			continue
		}
		for _, c := range s.Body {
			in.Static = append(in.Static, flip(c))
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= b.Width || y >= b.Height {
				in.Static = append(in.Static, game.Point{X: int32(x), Y: int32(y)})
			}
		}
	}
	return in
}

// bodyOf flips a body and drops stacked segments, which the API reports at
// the start of a game and right after eating.
func bodyOf(coords []Coord, flip func(Coord) game.Point) []game.Point {
	body := make([]game.Point, 0, len(coords))
	seen := make(map[game.Point]bool, len(coords))
	for _, c := range coords {
		p := flip(c)
		if seen[p] {
			continue
		}
		seen[p] = true
		body = append(body, p)
	}
	return body
}

// Fallback is the move to answer when the policy has no decision: the
// current heading if it is still open, else the first valid move, else up.
func Fallback(in policy.Input) game.Direction {
	snap, err := game.FromBody(in.Grid, in.Body)
	if err != nil {
		if in.Current.Valid() {
			return in.Current
		}
		return game.Up
	}
	if len(in.Static) > 0 {
		snap = snap.WithStatic(in.Static)
	}
	if in.Current.Valid() && snap.CanMove(in.Current) {
		return in.Current
	}
	if moves := snap.ValidMoves(); len(moves) > 0 {
		return moves[0]
	}
	return game.Up
}

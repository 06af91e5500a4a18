package replay

import (
	"fmt"

	"github.com/brensch/snekpilot/battlesnake"
	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/policy"
)

// Disagreement is a turn where the policy would have moved differently.
type Disagreement struct {
	Turn   int
	Played string
	Chosen string
	Reason string
}

// Report summarises how a policy's choices line up with a recorded snake.
type Report struct {
	GameID string
	Snake  string
	// Turns counts the turns compared: the snake was alive and its next
	// head position was recorded one step away.
	Turns         int
	Agreed        int
	NoDecisions   int
	Disagreements []Disagreement
}

// Agreement is the fraction of compared turns where the moves matched.
func (r Report) Agreement() float64 {
	if r.Turns == 0 {
		return 0
	}
	return float64(r.Agreed) / float64(r.Turns)
}

// Compare replays every recorded turn of the named snake (matched by name
// or id) through p. Each frame is converted the same way the live server
// converts a /move request; when the policy has no decision its fallback
// move is compared instead.
func Compare(g *Game, snakeName string, p *policy.Policy) (Report, error) {
	rep := Report{GameID: g.ID, Snake: snakeName}
	found := false

	for i := 0; i+1 < len(g.Frames); i++ {
		cur, next := g.Frames[i], g.Frames[i+1]
		you, ok := findSnake(cur, snakeName)
		if !ok {
			continue
		}
		found = true
		if !you.Alive() {
			continue
		}
		after, ok := findSnake(next, snakeName)
		if !ok || len(after.Body) == 0 {
			continue
		}
		played, ok := game.Between(flip(g.Height, you.Body[0]), flip(g.Height, after.Body[0]))
		if !ok {
			continue
		}

		board, me := boardOf(g, cur, you)
		in := battlesnake.ToInput(board, me)
		d := p.Decide(in)
		chosen := d.Direction
		if !d.OK {
			chosen = battlesnake.Fallback(in)
			rep.NoDecisions++
		}

		rep.Turns++
		if chosen == played {
			rep.Agreed++
			continue
		}
		rep.Disagreements = append(rep.Disagreements, Disagreement{
			Turn:   cur.Turn,
			Played: played.String(),
			Chosen: chosen.String(),
			Reason: d.Reason,
		})
	}

	if !found {
		return rep, fmt.Errorf("snake %q not in game %s", snakeName, g.ID)
	}
	return rep, nil
}

func findSnake(f Frame, name string) (Snake, bool) {
	for _, s := range f.Snakes {
		if s.Name == name || s.ID == name {
			return s, true
		}
	}
	return Snake{}, false
}

func flip(height int, c battlesnake.Coord) game.Point {
	return game.Point{X: int32(c.X), Y: int32(height - 1 - c.Y)}
}

// boardOf builds the API board for a recorded frame. Dead snakes are left
// off the board like the live API does.
func boardOf(g *Game, f Frame, you Snake) (battlesnake.Board, battlesnake.Battlesnake) {
	b := battlesnake.Board{
		Width:   g.Width,
		Height:  g.Height,
		Food:    f.Food,
		Hazards: f.Hazards,
	}
	var me battlesnake.Battlesnake
	for _, s := range f.Snakes {
		if !s.Alive() {
			continue
		}
		bs := battlesnake.Battlesnake{
			ID:     s.ID,
			Name:   s.Name,
			Health: s.Health,
			Body:   s.Body,
			Head:   s.Body[0],
			Length: len(s.Body),
		}
		if s.ID == you.ID {
			me = bs
		}
		b.Snakes = append(b.Snakes, bs)
	}
	return b, me
}

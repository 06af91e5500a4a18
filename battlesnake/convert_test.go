package battlesnake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brensch/snekpilot/game"
)

func coords(xy ...int) []Coord {
	out := make([]Coord, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, Coord{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestToInput_FlipsAndPicksNearestFood(t *testing.T) {
	you := Battlesnake{ID: "me", Body: coords(2, 2, 2, 1, 2, 0)}
	b := Board{Width: 5, Height: 5, Food: coords(0, 0, 2, 4), Snakes: []Battlesnake{you}}

	in := ToInput(b, you)
	require.Equal(t, int32(5), in.Grid.Size)
	require.Equal(t, []game.Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 2, Y: 4}}, in.Body)
	require.Equal(t, game.Up, in.Current)
	require.NotNil(t, in.Food)
	require.Equal(t, game.Point{X: 2, Y: 0}, *in.Food)
	require.Empty(t, in.Static)
}

func TestToInput_FoodTieKeepsFirstListed(t *testing.T) {
	you := Battlesnake{ID: "me", Body: coords(2, 2)}
	b := Board{Width: 5, Height: 5, Food: coords(2, 4, 2, 0)}

	in := ToInput(b, you)
	require.Equal(t, game.Point{X: 2, Y: 0}, *in.Food)
}

func TestToInput_StackedBody(t *testing.T) {
	you := Battlesnake{ID: "me", Body: coords(1, 1, 1, 1, 1, 1)}
	in := ToInput(Board{Width: 11, Height: 11}, you)
	require.Len(t, in.Body, 1)
	require.True(t, in.Current.IsZero())
	require.Nil(t, in.Food)
}

func TestToInput_OtherSnakesAndPadding(t *testing.T) {
	you := Battlesnake{ID: "me", Body: coords(0, 0, 1, 0)}
	other := Battlesnake{ID: "them", Body: coords(3, 3, 3, 2)}
	b := Board{Width: 7, Height: 5, Snakes: []Battlesnake{you, other}}

	in := ToInput(b, you)
	require.Equal(t, int32(7), in.Grid.Size)
	require.Equal(t, game.Left, in.Current)
	require.Contains(t, in.Static, game.Point{X: 3, Y: 1})
	require.Contains(t, in.Static, game.Point{X: 3, Y: 2})
	require.Contains(t, in.Static, game.Point{X: 0, Y: 5})
	require.Contains(t, in.Static, game.Point{X: 6, Y: 6})
	require.NotContains(t, in.Static, game.Point{X: 0, Y: 4})
	require.Len(t, in.Static, 2+2*7)
}

func TestFallback(t *testing.T) {
	// Heading up along the top edge: up is a wall, down is the neck.
	you := Battlesnake{ID: "me", Body: coords(5, 10, 5, 9)}
	in := ToInput(Board{Width: 11, Height: 11}, you)
	require.Equal(t, game.Up, in.Current)
	require.Equal(t, game.Left, Fallback(in))

	open := ToInput(Board{Width: 11, Height: 11}, Battlesnake{ID: "me", Body: coords(5, 5, 5, 4)})
	require.Equal(t, game.Up, Fallback(open))

	require.Equal(t, game.Up, Fallback(ToInput(Board{Width: 11, Height: 11}, Battlesnake{ID: "me"})))
}

package sim

import (
	"fmt"
	"strings"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/store"
)

// FormatTurn renders a recorded turn as an ASCII board followed by the
// decision and the per-move scores. Rows are printed top to bottom, so
// "up" points at the first line. O is the head, o the body, F the food.
func FormatTurn(row store.TurnRow) string {
	size := int(row.Size)
	grid := make([][]byte, size)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", size))
	}
	inBounds := func(x, y int32) bool {
		return x >= 0 && y >= 0 && int(x) < size && int(y) < size
	}
	if row.HasFood && inBounds(row.FoodX, row.FoodY) {
		grid[row.FoodY][row.FoodX] = 'F'
	}
	for i, p := range BodyFromRow(row) {
		if !inBounds(p.X, p.Y) {
			continue
		}
		if i == 0 {
			grid[p.Y][p.X] = 'O'
		} else {
			grid[p.Y][p.X] = 'o'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s turn %d ===\n", row.EpisodeID, row.Turn)
	for y := range grid {
		for x := range grid[y] {
			sb.WriteByte(grid[y][x])
			if x < size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "move=%s reason=%q score=%.2f reachable=%d path=%d", moveName(row.Move), row.Reason, row.Score, row.Reachable, row.PathLen)
	if row.Overridden {
		sb.WriteString(" overridden")
	}
	if row.Ate {
		sb.WriteString(" ate")
	}
	sb.WriteByte('\n')
	for _, ev := range row.Evaluations {
		if !ev.Valid {
			fmt.Fprintf(&sb, "  %-5s invalid\n", moveName(ev.Move))
			continue
		}
		fmt.Fprintf(&sb, "  %-5s %9.2f  reach %d\n", moveName(ev.Move), ev.Score, ev.Reachable)
	}
	return sb.String()
}

func moveName(ordinal int32) string {
	if ordinal < 0 || int(ordinal) >= len(game.Directions) {
		return "none"
	}
	return game.Directions[ordinal].String()
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brensch/snekpilot/logging"
	"github.com/brensch/snekpilot/sim"
	"github.com/brensch/snekpilot/store"
)

func TestParquetWriterLoop(t *testing.T) {
	dir := t.TempDir()
	in := make(chan episodeWriteRequest, 8)
	for i := 0; i < 5; i++ {
		in <- episodeWriteRequest{rows: []store.TurnRow{{EpisodeID: "e", Turn: int32(i)}}}
	}
	in <- episodeWriteRequest{}
	close(in)

	files := parquetWriterLoop(dir, 2, in, logging.Discard())
	require.Len(t, files, 3)

	total := 0
	for _, f := range files {
		rows, err := store.ReadTurns(f)
		require.NoError(t, err)
		total += len(rows)
	}
	require.Equal(t, 5, total)
}

func TestModel_Records(t *testing.T) {
	m := initialModel(3, nil)
	next, _ := m.Update(episodeUpdate{Result: sim.Result{EpisodeID: "a", Score: 4, Turns: 30, Death: "self"}, Rows: 30})
	next, _ = next.Update(episodeUpdate{Result: sim.Result{EpisodeID: "b", Score: 9, Turns: 80, Won: true}, Rows: 80})
	got := next.(model)

	require.Equal(t, 2, got.gamesPlayed)
	require.Equal(t, 110, got.totalRows)
	require.Equal(t, 9, got.bestScore)
	require.Equal(t, 1, got.wins)
	require.Equal(t, 1, got.deaths["self"])

	view := got.View()
	require.True(t, strings.Contains(view, "2 / 3"), view)
	require.True(t, strings.Contains(view, "b: won in 80 turns"), view)
}

package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/rules"
	"github.com/brensch/snekpilot/store"
)

func tickN(t *testing.T, m model, n int) model {
	t.Helper()
	var tm tea.Model = m
	for i := 0; i < n; i++ {
		tm, _ = tm.Update(tickMsg(time.Now()))
	}
	return tm.(model)
}

func TestModel_PlaysAndRecords(t *testing.T) {
	dir := t.TempDir()
	w, err := store.NewBatchWriter(dir)
	require.NoError(t, err)

	m := newModel(6, time.Millisecond, 0, 1, policy.New(policy.DefaultConfig()), w)
	m = tickN(t, m, 20)
	require.True(t, m.state.Turn > 0)
	require.NotEmpty(t, m.last.Reason)

	m.finishEpisode()
	path, err := w.Finalize()
	require.NoError(t, err)
	rows, err := store.ReadTurns(path)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	require.Equal(t, "autoplay", rows[0].Source)
}

func TestModel_RestartsAfterGameOver(t *testing.T) {
	m := newModel(5, time.Millisecond, 0, 1, policy.New(policy.DefaultConfig()), nil)
	m.state.Alive = false
	m.state.Death = rules.DeathWall
	m.state.Turn = 7

	m = tickN(t, m, 1)
	require.Equal(t, 2, m.episode)
	require.Equal(t, 1, m.finished)
	require.Equal(t, rules.DeathWall, m.lastDeath)
	require.Equal(t, int32(0), m.state.Turn)
}

func TestModel_Keys(t *testing.T) {
	m := newModel(5, 80*time.Millisecond, 0, 1, policy.New(policy.DefaultConfig()), nil)

	tm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = tm.(model)
	require.True(t, m.paused)
	before := m.state.Turn
	m = tickN(t, m, 3)
	require.Equal(t, before, m.state.Turn)

	tm, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	require.Equal(t, 40*time.Millisecond, tm.(model).interval)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestRenderBoard(t *testing.T) {
	food := game.Point{X: 0, Y: 0}
	s := &rules.State{
		Grid: game.NewGrid(3),
		Body: []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}},
		Food: &food,
	}
	out := renderBoard(s)
	require.Equal(t, 3, strings.Count(out, "\n")+1)
	require.Contains(t, out, "●")
	require.Contains(t, out, "■")
	require.Contains(t, out, "□")
}

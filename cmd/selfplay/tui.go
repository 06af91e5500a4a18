package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekpilot/sim"
)

type episodeUpdate struct {
	Result sim.Result
	Rows   int
}

// runDone is sent once RunMany returns.
type runDone struct{ Summary sim.Summary }

type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
)

type model struct {
	target      int
	gamesPlayed int
	totalRows   int
	totalTurns  int64
	totalScore  int
	bestScore   int
	wins        int
	deaths      map[string]int
	startTime   time.Time
	recentGames []string
	updates     <-chan tea.Msg
	done        bool
}

func initialModel(target int, updates <-chan tea.Msg) model {
	return model{
		target:    target,
		deaths:    map[string]int{},
		startTime: time.Now(),
		updates:   updates,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case episodeUpdate:
		m.record(msg)
		return m, waitForUpdate(m.updates)
	case runDone:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) record(u episodeUpdate) {
	r := u.Result
	m.gamesPlayed++
	m.totalRows += u.Rows
	m.totalTurns += int64(r.Turns)
	m.totalScore += r.Score
	if r.Score > m.bestScore {
		m.bestScore = r.Score
	}
	if r.Won {
		m.wins++
	}
	if r.Death != "" {
		m.deaths[r.Death]++
	}
	line := fmt.Sprintf("%s: score %d, turns %d, death %q", r.EpisodeID, r.Score, r.Turns, r.Death)
	if r.Won {
		line = fmt.Sprintf("%s: won in %d turns", r.EpisodeID, r.Turns)
	}
	m.recentGames = append([]string{line}, m.recentGames...)
	if len(m.recentGames) > 10 {
		m.recentGames = m.recentGames[:10]
	}
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec, turnsPerSec := 0.0, 0.0
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
		turnsPerSec = float64(m.totalTurns) / duration.Seconds()
	}
	mean := 0.0
	if m.gamesPlayed > 0 {
		mean = float64(m.totalScore) / float64(m.gamesPlayed)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("snekpilot self-play") + "\n\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Games", fmt.Sprintf("%d / %d", m.gamesPlayed, m.target))
	row("Rows", fmt.Sprintf("%d", m.totalRows))
	row("Mean score", fmt.Sprintf("%.2f", mean))
	row("Best score", fmt.Sprintf("%d", m.bestScore))
	row("Wins", fmt.Sprintf("%d", m.wins))
	row("Duration", duration.Round(time.Second).String())
	row("Games/sec", fmt.Sprintf("%.2f", gamesPerSec))
	row("Turns/sec", fmt.Sprintf("%.2f", turnsPerSec))

	causes := make([]string, 0, len(m.deaths))
	for c := range m.deaths {
		causes = append(causes, c)
	}
	sort.Strings(causes)
	for _, c := range causes {
		row("Died ("+c+")", fmt.Sprintf("%d", m.deaths[c]))
	}

	b.WriteString("\nRecent games:\n")
	for _, g := range m.recentGames {
		b.WriteString(g + "\n")
	}
	b.WriteString("\nPress q to quit.\n")
	return b.String()
}

package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekpilot/game"
	"github.com/brensch/snekpilot/policy"
	"github.com/brensch/snekpilot/rules"
	"github.com/brensch/snekpilot/sim"
	"github.com/brensch/snekpilot/store"
)

var (
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	foodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	boardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statStyle  = lipgloss.NewStyle().PaddingLeft(2)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type tickMsg time.Time

const (
	minInterval = 10 * time.Millisecond
	maxInterval = 2 * time.Second
)

type model struct {
	size        int32
	starveAfter int
	interval    time.Duration
	paused      bool

	rng    *rand.Rand
	policy *policy.Policy
	state  *rules.State
	last   policy.Decision

	episode     int
	episodeID   string
	rows        []store.TurnRow
	writer      *store.BatchWriter
	writeErr    error
	bestScore   int
	totalScore  int
	finished    int
	noDecisions int
	overrides   int
	lastDeath   string
}

func newModel(size int32, interval time.Duration, starveAfter int, seed int64, p *policy.Policy, w *store.BatchWriter) model {
	m := model{
		size:        size,
		starveAfter: starveAfter,
		interval:    interval,
		rng:         rand.New(rand.NewSource(seed)),
		policy:      p,
		writer:      w,
	}
	m.restart()
	return m
}

func (m *model) restart() {
	m.episode++
	m.episodeID = fmt.Sprintf("autoplay_%d_%d", time.Now().Unix(), m.episode)
	m.state = rules.NewState(m.size, m.rng)
	m.last = policy.Decision{}
	m.rows = m.rows[:0]
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space", "p":
			m.paused = !m.paused
		case "+", "=":
			if m.interval/2 >= minInterval {
				m.interval /= 2
			}
		case "-", "_":
			if m.interval*2 <= maxInterval {
				m.interval *= 2
			}
		case "r":
			m.finishEpisode()
			m.restart()
		}
		return m, nil
	case tickMsg:
		if !m.paused {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance plays one tick, or restarts once the previous episode is over.
func (m *model) advance() {
	if rules.IsOver(m.state) {
		m.finishEpisode()
		m.restart()
		return
	}
	d := m.policy.Decide(policy.Input{
		Grid:    m.state.Grid,
		Body:    m.state.Body,
		Food:    m.state.Food,
		Current: m.state.Direction,
	})
	if !d.OK {
		m.noDecisions++
	}
	if d.Overridden {
		m.overrides++
	}
	next := rules.Step(m.state, d.Direction, m.rng)
	rules.Starve(next, m.starveAfter)
	if m.writer != nil {
		row := sim.TurnRowFor(m.episodeID, m.state, d)
		row.Ate = next.Score > m.state.Score
		row.Source = "autoplay"
		m.rows = append(m.rows, row)
	}
	m.last = d
	m.state = next
}

func (m *model) finishEpisode() {
	if m.state.Turn == 0 {
		return
	}
	m.finished++
	m.totalScore += m.state.Score
	if m.state.Score > m.bestScore {
		m.bestScore = m.state.Score
	}
	m.lastDeath = m.state.Death
	if m.state.Won {
		m.lastDeath = "won"
	}
	if m.writer != nil && len(m.rows) > 0 {
		if err := m.writer.WriteEpisode(m.rows); err != nil {
			m.writeErr = err
		}
	}
}

func (m model) View() string {
	board := boardStyle.Render(renderBoard(m.state))

	mean := 0.0
	if m.finished > 0 {
		mean = float64(m.totalScore) / float64(m.finished)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Episode    %d\n", m.episode)
	fmt.Fprintf(&b, "Turn       %d\n", m.state.Turn)
	fmt.Fprintf(&b, "Score      %d\n", m.state.Score)
	fmt.Fprintf(&b, "Best       %d\n", m.bestScore)
	fmt.Fprintf(&b, "Mean       %.2f\n", mean)
	fmt.Fprintf(&b, "Last end   %s\n", orDash(m.lastDeath))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Move       %s\n", moveLabel(m.last))
	fmt.Fprintf(&b, "Reason     %s\n", orDash(m.last.Reason))
	fmt.Fprintf(&b, "Path       %d\n", len(m.last.Path))
	fmt.Fprintf(&b, "Overrides  %d\n", m.overrides)
	fmt.Fprintf(&b, "No move    %d\n", m.noDecisions)
	if m.writer != nil {
		fmt.Fprintf(&b, "Recorded   %d rows\n", m.writer.Rows()+len(m.rows))
	}
	if m.writeErr != nil {
		fmt.Fprintf(&b, "Write err  %v\n", m.writeErr)
	}
	b.WriteString("\n")
	status := fmt.Sprintf("tick %s", m.interval)
	if m.paused {
		status = "paused"
	}
	b.WriteString(dimStyle.Render(status + "\nspace pause  +/- speed  r restart  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, board, statStyle.Render(b.String())) + "\n"
}

func renderBoard(s *rules.State) string {
	cells := make([]string, s.Grid.Area())
	for i := range cells {
		cells[i] = emptyStyle.Render("·")
	}
	if s.Food != nil {
		cells[s.Grid.Index(*s.Food)] = foodStyle.Render("●")
	}
	for i, p := range s.Body {
		if !s.Grid.InBounds(p) {
			continue
		}
		if i == 0 {
			cells[s.Grid.Index(p)] = headStyle.Render("■")
		} else {
			cells[s.Grid.Index(p)] = bodyStyle.Render("□")
		}
	}

	var b strings.Builder
	size := int(s.Grid.Size)
	for y := 0; y < size; y++ {
		b.WriteString(strings.Join(cells[y*size:(y+1)*size], " "))
		if y < size-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func moveLabel(d policy.Decision) string {
	if d.Direction == (game.Direction{}) {
		return "-"
	}
	if !d.OK {
		return d.Direction.String() + " (kept)"
	}
	return d.Direction.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

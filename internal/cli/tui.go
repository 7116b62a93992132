package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/score"
)

// Player styles
var (
	playerCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playerNormalStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	playerDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	playerBarStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	progressWidth = 40
	recentNotes   = 8
)

// transport is the part of playback.Player the model drives.
type transport interface {
	Play()
	Pause()
	Stop()
	State() playback.State
}

// stepMsg reports the step the player just reached; -1 means it stopped.
type stepMsg int

// toneMsg reports a started tone.
type toneMsg struct{ note string }

// =============================================================================
// PlayerModel - Interactive playback
// =============================================================================

// playerModel is the bubbletea model of the play command. Transport calls
// run as commands so step hooks can send messages back to the program.
type playerModel struct {
	title  string
	doc    *score.Document
	perf   *playback.Performance
	player transport

	step   int
	notes  []string
	height int
}

func newPlayerModel(title string, doc *score.Document, perf *playback.Performance, player transport) playerModel {
	return playerModel{
		title:  title,
		doc:    doc,
		perf:   perf,
		player: player,
		step:   -1,
		height: 8,
	}
}

// Init starts playback right away.
func (m playerModel) Init() tea.Cmd {
	return m.toggle()
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			return m, m.toggle()
		case "s":
			p := m.player
			return m, func() tea.Msg {
				p.Stop()
				return nil
			}
		}
	case stepMsg:
		m.step = int(msg)
		if m.step < 0 {
			m.notes = nil
		}
	case toneMsg:
		m.notes = append(m.notes, msg.note)
		if len(m.notes) > recentNotes {
			m.notes = m.notes[len(m.notes)-recentNotes:]
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 3)
	}
	return m, nil
}

func (m playerModel) toggle() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		if p.State() == playback.Playing {
			p.Pause()
		} else {
			p.Play()
		}
		return nil
	}
}

func (m playerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(playerDimStyle.Render("space play/pause  s stop  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.progressBar())
	b.WriteString("\n\n")

	if len(m.perf.Steps) > 0 {
		b.WriteString(m.stepTable())
		b.WriteString("\n")
	}
	if len(m.notes) > 0 {
		b.WriteString(playerDimStyle.Render("  ♪ "))
		b.WriteString(playerNormalStyle.Render(strings.Join(m.notes, " ")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m playerModel) statusLine() string {
	state := m.player.State()
	icon := "■"
	switch state {
	case playback.Playing:
		icon = "▶"
	case playback.Paused:
		icon = "⏸"
	}
	parts := []string{playerCurrentStyle.Render(icon + " " + state.String())}
	if st, ok := m.current(); ok {
		parts = append(parts,
			fmt.Sprintf("measure %d", m.measureNumber(st)),
			fmt.Sprintf("pass %d", st.Pass))
	}
	parts = append(parts, formatClock(m.elapsed())+" / "+formatClock(m.perf.Length))
	return "  " + strings.Join(parts, playerDimStyle.Render(" · "))
}

func (m playerModel) progressBar() string {
	filled := 0
	if m.perf.Length > 0 {
		filled = int(m.elapsed() / m.perf.Length * progressWidth)
	}
	filled = min(max(filled, 0), progressWidth)
	return "  " + playerBarStyle.Render(strings.Repeat("━", filled)) +
		playerDimStyle.Render(strings.Repeat("─", progressWidth-filled))
}

// stepTable lists the current step and the ones after it.
func (m playerModel) stepTable() string {
	first := max(m.step, 0)
	end := min(first+m.height, len(m.perf.Steps))

	rows := [][]string{}
	for i := first; i < end; i++ {
		st := m.perf.Steps[i]
		cursor := "  "
		if i == m.step {
			cursor = "▸ "
		}
		var names []string
		for _, e := range m.perf.StepEvents(i) {
			names = append(names, e.Note.String())
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(m.measureNumber(st)),
			fmt.Sprint(st.Pass),
			fmt.Sprintf("%.2f×", st.Speed),
			fmt.Sprintf("%.0f%%", st.Volume*100),
			strings.Join(names, " "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Measure", "Pass", "Speed", "Volume", "Notes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case first+row == m.step:
				return playerCurrentStyle
			case col == 2 || col == 3 || col == 4:
				return playerDimStyle
			}
			return playerNormalStyle
		})
	return t.Render()
}

func (m playerModel) current() (playback.Step, bool) {
	if m.step < 0 || m.step >= len(m.perf.Steps) {
		return playback.Step{}, false
	}
	return m.perf.Steps[m.step], true
}

func (m playerModel) elapsed() float64 {
	st, ok := m.current()
	if !ok {
		return 0
	}
	return st.Start
}

func (m playerModel) measureNumber(st playback.Step) int {
	if ms := m.doc.Measure(st.Measure); ms != nil {
		return ms.Index + 1
	}
	return 0
}

package tui

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nefconv/internal/processor"
)

const logLines = 6

// Model renders one conversion run from its event stream. Abort requests
// are handed to the abort hook; the model never touches worker state.
type Model struct {
	abort     func()
	started   time.Time
	width     int
	total     int
	completed int
	status    string
	log       []string
	preview   previewInfo
	aborting  bool
	finished  bool
	quitting  bool
}

type previewInfo struct {
	name   string
	width  int
	height int
	size   int
}

// EventMsg wraps an event from the run.
type EventMsg struct {
	Event processor.Event
}

// DoneMsg tells the model the run has returned and the program may exit.
type DoneMsg struct{}

// NewModel returns a model whose abort keys call abort.
func NewModel(abort func()) Model {
	return Model{abort: abort, started: time.Now(), status: "Starting conversion..."}
}

// Forward returns an event handler that feeds events into p.
func Forward(p *tea.Program) func(processor.Event) {
	return func(e processor.Event) {
		p.Send(EventMsg{Event: e})
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m.applyEvent(msg.Event), nil
	case tea.KeyMsg:
		switch msg.String() {
		case "a", "esc", "ctrl+c":
			if !m.aborting && !m.finished {
				m.aborting = true
				if m.abort != nil {
					m.abort()
				}
			}
		}
		return m, nil
	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) applyEvent(e processor.Event) Model {
	switch e := e.(type) {
	case processor.Status:
		m.status = e.Message
		m.log = appendLog(m.log, e.Message)
		if e.Message == processor.MsgComplete {
			m.finished = true
		}
	case processor.Progress:
		if e.Completed >= m.completed {
			m.completed = e.Completed
		}
		m.total = e.Total
		if e.Total > 0 {
			m.status = e.String()
		}
	case processor.Preview:
		info := previewInfo{name: e.Name, size: len(e.Image)}
		if cfg, err := jpeg.DecodeConfig(bytes.NewReader(e.Image)); err == nil {
			info.width, info.height = cfg.Width, cfg.Height
		}
		m.preview = info
	default:
		panic(fmt.Sprintf("tui: unhandled event %T", e))
	}
	return m
}

func appendLog(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > logLines {
		lines = lines[len(lines)-logLines:]
	}
	return lines
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.completed) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("NEF → JPG Converter"),
		labelStyle.Render(m.status),
		barStyle.Render(renderBar(barWidth, ratio)) + dimStyle.Render(fmt.Sprintf("  %d/%d", m.completed, m.total)),
		m.previewLine(),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
	}
	if len(m.log) > 0 {
		lines = append(lines, "")
		for _, entry := range m.log {
			lines = append(lines, logStyle(entry).Render(entry))
		}
	}
	lines = append(lines, "", m.helpLine())

	return strings.Join(lines, "\n")
}

func (m Model) previewLine() string {
	if m.preview.name == "" {
		return dimStyle.Render("Preview: none yet")
	}
	dims := "?x?"
	if m.preview.width > 0 {
		dims = fmt.Sprintf("%dx%d", m.preview.width, m.preview.height)
	}
	return labelStyle.Render("Preview: ") + accentStyle.Render(m.preview.name) +
		dimStyle.Render(fmt.Sprintf("  %s, %d KB", dims, (m.preview.size+1023)/1024))
}

func (m Model) helpLine() string {
	switch {
	case m.finished:
		return dimStyle.Render("done")
	case m.aborting:
		return warnStyle.Render("Aborting...")
	default:
		return dimStyle.Render("a/esc: abort")
	}
}

func logStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "Error"):
		return errorStyle
	case line == processor.MsgAborted:
		return warnStyle
	case line == processor.MsgComplete:
		return successStyle
	default:
		return dimStyle
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

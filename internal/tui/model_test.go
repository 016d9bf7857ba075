package tui

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nefconv/internal/processor"
)

func feed(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelTracksProgress(t *testing.T) {
	m := feed(t, NewModel(nil),
		EventMsg{processor.Status{Message: "Found 4 NEF files. Using 2 threads."}},
		EventMsg{processor.Progress{Completed: 1, Total: 4}},
		EventMsg{processor.Progress{Completed: 2, Total: 4}},
	)

	if m.completed != 2 || m.total != 4 {
		t.Fatalf("got %d/%d, want 2/4", m.completed, m.total)
	}
	if m.status != "2/4 converted..." {
		t.Fatalf("status = %q", m.status)
	}
	if !strings.Contains(m.View(), "2/4 converted...") {
		t.Fatalf("view missing progress text:\n%s", m.View())
	}
}

func TestModelRecordsPreview(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 20)), nil); err != nil {
		t.Fatal(err)
	}

	m := feed(t, NewModel(nil), EventMsg{processor.Preview{Name: "DSC_0001.NEF", Image: buf.Bytes()}})

	if m.preview.name != "DSC_0001.NEF" || m.preview.width != 30 || m.preview.height != 20 {
		t.Fatalf("unexpected preview info %+v", m.preview)
	}
	if !strings.Contains(m.View(), "30x20") {
		t.Fatalf("view missing preview dimensions:\n%s", m.View())
	}
}

func TestModelAbortCallsHookOnce(t *testing.T) {
	calls := 0
	m := NewModel(func() { calls++ })

	m = feed(t, m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")},
		tea.KeyMsg{Type: tea.KeyEsc},
		tea.KeyMsg{Type: tea.KeyCtrlC},
	)

	if calls != 1 {
		t.Fatalf("abort hook called %d times, want 1", calls)
	}
	if !strings.Contains(m.View(), "Aborting...") {
		t.Fatalf("view should show aborting state:\n%s", m.View())
	}
}

func TestModelIgnoresAbortAfterCompletion(t *testing.T) {
	calls := 0
	m := feed(t, NewModel(func() { calls++ }),
		EventMsg{processor.Status{Message: processor.MsgComplete}},
		tea.KeyMsg{Type: tea.KeyEsc},
	)
	if calls != 0 {
		t.Fatal("abort after completion should be ignored")
	}
	if !m.finished {
		t.Fatal("model should be finished")
	}
}

func TestModelKeepsRecentLog(t *testing.T) {
	m := NewModel(nil)
	for i := 0; i < logLines+3; i++ {
		m = feed(t, m, EventMsg{processor.Status{Message: "Error processing x.nef: decode failed"}})
	}
	if len(m.log) != logLines {
		t.Fatalf("log holds %d lines, want %d", len(m.log), logLines)
	}
}

func TestModelQuitsOnDone(t *testing.T) {
	next, cmd := NewModel(nil).Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Fatal("view should be empty after quitting")
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(10, 0.5); got != "[=====     ]" {
		t.Fatalf("got %q", got)
	}
	if got := renderBar(4, 2); got != "[====]" {
		t.Fatalf("got %q", got)
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(processor.Summary{Total: 5, Converted: 3, Failed: 1, Skipped: 1, Aborted: true, Elapsed: 1500 * time.Millisecond})
	out := RenderSummary(rows)
	for _, want := range []string{"Files found", "Converted", "aborted", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"squeeze/internal/processor"
)

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.00 KiB",
		1536:            "1.50 KiB",
		5 * 1024 * 1024: "5.00 MiB",
		-2048:           "-2.00 KiB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSummaryContainsRows(t *testing.T) {
	out := RenderSummary([]SummaryRow{
		{Label: "Files", Value: "3"},
		{Label: "Errors", Value: "1", Warn: true},
	})
	for _, want := range []string{"Files", "Errors", "3", "1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestModelAccumulatesUpdates(t *testing.T) {
	updates := make(chan processor.ProgressUpdate)
	var m tea.Model = NewModel(updates, nil)

	m, _ = m.Update(updateMsg{TotalDelta: 2})
	m, _ = m.Update(updateMsg{ProcessedDelta: 1, ReplacedDelta: 1, BytesSavedDelta: 2048})
	m, _ = m.Update(updateMsg{ProcessedDelta: 1, ErrorDelta: 1})

	got := m.(Model)
	if got.total != 2 || got.processed != 2 || got.replaced != 1 || got.errors != 1 || got.bytesSaved != 2048 {
		t.Fatalf("unexpected model state: %+v", got)
	}
	if !strings.Contains(got.View(), "Files: 2/2") {
		t.Fatalf("view missing progress line:\n%s", got.View())
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil || m.View() != "" {
		t.Fatal("done should quit and clear the view")
	}
}

func TestCtrlCCancelsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m tea.Model = NewModel(make(chan processor.ProgressUpdate), cancel)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || m.View() != "" {
		t.Fatal("ctrl+c should quit and clear the view")
	}
	if ctx.Err() == nil {
		t.Fatal("ctrl+c should cancel the run")
	}
}

func TestOtherKeysAreIgnored(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m tea.Model = NewModel(make(chan processor.ProgressUpdate), cancel)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd != nil {
		t.Fatal("q should not quit")
	}
	if ctx.Err() != nil {
		t.Fatal("q should not cancel the run")
	}
}

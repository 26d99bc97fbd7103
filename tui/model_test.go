package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/gridboard/board"
	"github.com/ByLCY/gridboard/grid"
	"github.com/ByLCY/gridboard/layout"
)

var (
	mainRef  = layout.AreaRef{Type: layout.AreaWrapper, ID: "main"}
	mediaRef = layout.AreaRef{Type: layout.AreaCategory, ID: "media"}
)

func item(id string, x, y, w, h int) layout.Item {
	return layout.Item{ID: id, Kind: layout.KindApp, Name: id, Shape: layout.Shapes{
		layout.BreakpointLG: {Location: layout.Location{X: x, Y: y}, Size: layout.Size{Width: w, Height: h}},
	}}
}

func newDashboard(t *testing.T) *board.Dashboard {
	t.Helper()
	b := &layout.Board{
		Name:     "Home",
		Settings: layout.Settings{WrapperColumns: 6, Breakpoint: layout.BreakpointLG},
		Areas: []*layout.Area{
			{Ref: mainRef, Apps: []layout.Item{item("A", 0, 0, 2, 2), item("B", 2, 0, 2, 2)}},
			{Ref: mediaRef, Title: "Media"},
		},
	}
	d := board.New(b, board.Config{EditMode: true})
	for _, ref := range b.Refs() {
		area, _ := b.Area(ref)
		if !d.Mount(ref, grid.NewRoot(ref.Selector(), 1200, b.RootHeight(area))) {
			t.Fatalf("mount %s failed", ref)
		}
	}
	return d
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("unexpected model type %T", next)
		}
	}
	return m
}

func shapeOf(t *testing.T, d *board.Dashboard, id string) layout.Shape {
	t.Helper()
	it, ok := d.Board().Item(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return it.ShapeFor(layout.BreakpointLG)
}

func TestCycleAndMove(t *testing.T) {
	d := newDashboard(t)
	m := New(d, nil)
	if m.Selected() != "A" {
		t.Fatalf("expected A selected first, got %q", m.Selected())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight})
	if m.Selected() != "B" {
		t.Fatalf("expected B selected, got %q", m.Selected())
	}
	if got := shapeOf(t, d, "B").Location; got != (layout.Location{X: 3, Y: 0}) {
		t.Fatalf("expected B moved to (3,0), got %+v", got)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Selected() != "A" {
		t.Fatalf("expected shift+tab back to A, got %q", m.Selected())
	}
}

func TestResizeKeys(t *testing.T) {
	d := newDashboard(t)
	m := New(d, nil)

	m = send(t, m, keys("J"))
	if got := shapeOf(t, d, "A").Size; got != (layout.Size{Width: 2, Height: 3}) {
		t.Fatalf("expected A to grow to 2x3, got %+v", got)
	}
	send(t, m, keys("H"))
	if got := shapeOf(t, d, "A").Size; got != (layout.Size{Width: 1, Height: 3}) {
		t.Fatalf("expected A to shrink to 1x3, got %+v", got)
	}
}

func TestTransferToNextArea(t *testing.T) {
	d := newDashboard(t)
	m := New(d, nil)

	m = send(t, m, keys("]"))
	owner, ok := d.Board().Owner("A")
	if !ok || owner != mediaRef {
		t.Fatalf("expected A owned by media, got %v (%v)", owner, ok)
	}
	if m.Selected() != "A" {
		t.Fatalf("selection should follow the transferred item, got %q", m.Selected())
	}
	if !strings.Contains(m.View(), "Media") {
		t.Fatalf("view should list the media area")
	}
}

func TestReadOnlyRejectsMoves(t *testing.T) {
	d := newDashboard(t)
	m := New(d, nil)

	m = send(t, m, keys("e"))
	if d.Config().EditMode {
		t.Fatalf("expected edit mode off")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	status, isErr := m.Status()
	if !isErr || !strings.Contains(status, grid.ErrStatic.Error()) {
		t.Fatalf("expected static grid error, got %q (err=%v)", status, isErr)
	}
	if got := shapeOf(t, d, "A").Location; got != (layout.Location{}) {
		t.Fatalf("A should not move in read-only mode, got %+v", got)
	}
}

func TestExportKey(t *testing.T) {
	d := newDashboard(t)
	var got *layout.Snapshot
	m := New(d, func(s *layout.Snapshot) (string, error) {
		got = s
		return "board.pdf", nil
	})
	m = send(t, m, keys("r"))
	if got == nil || got.Board != "Home" {
		t.Fatalf("export should receive the current snapshot, got %+v", got)
	}
	if status, isErr := m.Status(); isErr || status != "已写出 board.pdf" {
		t.Fatalf("unexpected status %q", status)
	}

	m = New(d, func(*layout.Snapshot) (string, error) { return "", errors.New("disk full") })
	m = send(t, m, keys("r"))
	if status, isErr := m.Status(); !isErr || status != "disk full" {
		t.Fatalf("expected export error in status, got %q", status)
	}
}

func TestQuit(t *testing.T) {
	m := New(newDashboard(t), nil)
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestAddAndRemoveApp(t *testing.T) {
	d := newDashboard(t)
	m := New(d, nil)

	m = send(t, m, keys("n"))
	id := m.Selected()
	if id == "A" || id == "B" {
		t.Fatalf("expected the new app to be selected, got %q", id)
	}
	owner, ok := d.Board().Owner(id)
	if !ok || owner != mainRef {
		t.Fatalf("expected new app in main, got %v (%v)", owner, ok)
	}
	if got := shapeOf(t, d, id); got.Location.Y != 2 || got.Size != (layout.Size{Width: 1, Height: 1}) {
		t.Fatalf("expected 1x1 below existing members, got %+v", got)
	}
	if _, ok := d.Registry().Lookup(id); !ok {
		t.Fatalf("render should mount a handle for the new app")
	}

	m = send(t, m, keys("x"))
	if _, ok := d.Board().Item(id); ok {
		t.Fatalf("expected %s removed", id)
	}
	if m.Selected() != "A" {
		t.Fatalf("selection should fall back to the first member, got %q", m.Selected())
	}
}

// Package tui 是看板的终端编辑界面：用键盘选择、拖动、缩放成员并在区域之间转移。
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ByLCY/gridboard/board"
	"github.com/ByLCY/gridboard/layout"
)

// ExportFunc 把当前快照写出为文件，返回写出的路径。
type ExportFunc func(snap *layout.Snapshot) (string, error)

// Model 是 bubbletea 模型。每次改动后都会调用 Dashboard.Render 触发重建。
type Model struct {
	dash   *board.Dashboard
	export ExportFunc

	snap     *layout.Snapshot
	order    []selection
	selected string

	status    string
	statusErr bool
	width     int
	height    int
}

type selection struct {
	id   string
	area layout.AreaRef
}

// New 创建模型。export 为 nil 时 r 键不可用。
func New(d *board.Dashboard, export ExportFunc) Model {
	m := Model{dash: d, export: export}
	m.refresh()
	if len(m.order) > 0 {
		m.selected = m.order[0].id
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.cycle(1)
		return m, nil
	case "shift+tab":
		m.cycle(-1)
		return m, nil
	case "left", "right", "up", "down":
		dx, dy := direction(key)
		m.apply(func(sh layout.Shape) error {
			return m.dash.Move(m.selected, max(sh.Location.X+dx, 0), max(sh.Location.Y+dy, 0))
		})
	case "shift+left", "shift+right", "shift+up", "shift+down", "H", "J", "K", "L":
		dw, dh := direction(key)
		m.apply(func(sh layout.Shape) error {
			return m.dash.Resize(m.selected, max(sh.Size.Width+dw, 1), max(sh.Size.Height+dh, 1))
		})
	case "[", "]":
		step := 1
		if key == "[" {
			step = -1
		}
		m.transfer(step)
	case "n":
		m.addApp()
	case "x", "delete":
		if m.dash.RemoveItem(m.selected) {
			m.setStatus("已移除 "+m.selected, false)
		}
	case "e":
		edit := !m.dash.Config().EditMode
		m.dash.SetEditMode(edit)
		m.setStatus(fmt.Sprintf("编辑模式: %t", edit), false)
	case "r":
		m.exportSnapshot()
	default:
		return m, nil
	}
	m.dash.Render()
	m.refresh()
	return m, nil
}

func direction(key string) (int, int) {
	switch key {
	case "left", "shift+left", "H":
		return -1, 0
	case "right", "shift+right", "L":
		return 1, 0
	case "up", "shift+up", "K":
		return 0, -1
	default:
		return 0, 1
	}
}

// apply 以选中成员当前的形状调用 fn，错误写入状态栏。
func (m *Model) apply(fn func(layout.Shape) error) {
	sh, ok := m.currentShape()
	if !ok {
		m.setStatus("未选中成员", true)
		return
	}
	if err := fn(sh); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("", false)
}

// transfer 把选中成员移到相邻区域的底部。
func (m *Model) transfer(step int) {
	cur, ok := m.current()
	if !ok || m.snap == nil || len(m.snap.Areas) < 2 {
		return
	}
	idx := -1
	for i, a := range m.snap.Areas {
		if a.Ref == cur.area {
			idx = i
		}
	}
	if idx < 0 {
		return
	}
	n := len(m.snap.Areas)
	dst := m.snap.Areas[((idx+step)%n+n)%n]
	bottom := 0
	for _, mem := range dst.Members {
		bottom = max(bottom, mem.Shape.Location.Y+mem.Shape.Size.Height)
	}
	if err := m.dash.Transfer(cur.id, dst.Ref, 0, bottom); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%s → %s", cur.id, dst.Ref), false)
}

// addApp 在选中成员所在区域（没有成员时为第一个区域）的底部加入一个 1x1 应用。
func (m *Model) addApp() {
	if m.snap == nil || len(m.snap.Areas) == 0 {
		return
	}
	area := m.snap.Areas[0]
	if cur, ok := m.current(); ok {
		for _, a := range m.snap.Areas {
			if a.Ref == cur.area {
				area = a
			}
		}
	}
	bottom := 0
	for _, mem := range area.Members {
		bottom = max(bottom, mem.Shape.Location.Y+mem.Shape.Size.Height)
	}
	shape := layout.Shape{Location: layout.Location{Y: bottom}, Size: layout.Size{Width: 1, Height: 1}}
	it := layout.Item{
		ID:    uuid.NewString(),
		Kind:  layout.KindApp,
		Name:  "New app",
		Shape: layout.Shapes{},
	}
	for _, bp := range layout.Breakpoints {
		it.Shape[bp] = shape
	}
	if err := m.dash.AddItem(area.Ref, it); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.selected = it.ID
	m.setStatus("已添加 "+it.ID, false)
}

func (m *Model) exportSnapshot() {
	if m.export == nil {
		m.setStatus("未配置输出", true)
		return
	}
	path, err := m.export(m.dash.Snapshot())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("已写出 "+path, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// refresh 重新读取快照并保持选中项。
func (m *Model) refresh() {
	m.snap = m.dash.Snapshot()
	m.order = nil
	for _, a := range m.snap.Areas {
		for _, mem := range a.Members {
			m.order = append(m.order, selection{id: mem.ID, area: a.Ref})
		}
	}
	if _, ok := m.current(); !ok && len(m.order) > 0 {
		m.selected = m.order[0].id
	}
}

func (m *Model) cycle(step int) {
	n := len(m.order)
	if n == 0 {
		return
	}
	i := 0
	for j, s := range m.order {
		if s.id == m.selected {
			i = j
		}
	}
	m.selected = m.order[((i+step)%n+n)%n].id
}

func (m Model) current() (selection, bool) {
	for _, s := range m.order {
		if s.id == m.selected {
			return s, true
		}
	}
	return selection{}, false
}

func (m Model) currentShape() (layout.Shape, bool) {
	cur, ok := m.current()
	if !ok {
		return layout.Shape{}, false
	}
	for _, a := range m.snap.Areas {
		if a.Ref != cur.area {
			continue
		}
		for _, mem := range a.Members {
			if mem.ID == cur.id {
				return mem.Shape, true
			}
		}
	}
	return layout.Shape{}, false
}

// Selected 返回当前选中的成员 ID。
func (m Model) Selected() string { return m.selected }

// Status 返回状态栏文本及其是否为错误。
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

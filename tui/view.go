package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/gridboard/layout"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	areaStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	staticStyle   = areaStyle.BorderForeground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39"))
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
)

const footerHelp = "tab 选择 · ←↑↓→ 移动 · shift+方向/HJKL 缩放 · [ ] 换区域 · n 新增 · x 删除 · e 编辑 · r 输出 · q 退出"

func (m Model) View() string {
	if m.snap == nil {
		return ""
	}
	var b strings.Builder
	mode := "只读"
	if m.snap.EditMode {
		mode = "编辑"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  [%s · %s]", m.snap.Board, m.snap.Breakpoint, mode)))
	b.WriteString("\n")

	boxes := make([]string, 0, len(m.snap.Areas))
	for _, a := range m.snap.Areas {
		boxes = append(boxes, m.areaView(a))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, boxes...))
	b.WriteString("\n")

	if m.status != "" {
		st := statusStyle
		if m.statusErr {
			st = errorStyle
		}
		b.WriteString(st.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render(footerHelp))
	return b.String()
}

// areaView 把区域画成字符网格：每个单元格两个字符，成员以其标签首字母填充。
func (m Model) areaView(a layout.AreaSnapshot) string {
	title := a.Title
	if title == "" {
		title = a.Ref.String()
	}
	rows := max(a.Rows, a.MinRow, 1)
	cols := max(a.Columns, 1)
	cells := make([][]string, rows)
	for y := range cells {
		cells[y] = make([]string, cols)
		for x := range cells[y] {
			cells[y][x] = emptyStyle.Render("··")
		}
	}
	for _, mem := range a.Members {
		glyph := cellGlyph(mem.Label)
		style := lipgloss.NewStyle()
		if mem.ID == m.selected {
			style = selectedStyle
		}
		s := mem.Shape
		for y := s.Location.Y; y < s.Location.Y+s.Size.Height && y < rows; y++ {
			for x := s.Location.X; x < s.Location.X+s.Size.Width && x < cols; x++ {
				cells[y][x] = style.Render(glyph)
			}
		}
	}

	lines := []string{titleStyle.Render(title)}
	for _, row := range cells {
		lines = append(lines, strings.Join(row, ""))
	}
	box := areaStyle
	if a.Static {
		box = staticStyle
	}
	return box.Render(strings.Join(lines, "\n"))
}

func cellGlyph(label string) string {
	for _, r := range label {
		if r == '/' {
			continue
		}
		return strings.ToUpper(string(r)) + " "
	}
	return "# "
}

// Package board 把网格引擎与声明式看板模型组合起来：
// 每个区域一个网格表面，成员由注册表提供句柄，用户交互经同步器翻译为领域放置结果。
package board

import (
	"log/slog"

	"github.com/ByLCY/gridboard/grid"
	"github.com/ByLCY/gridboard/layout"
)

// Params 是初始化单个区域网格表面所需的输入。
type Params struct {
	Area           layout.AreaRef
	Root           *grid.Root
	WrapperColumns int
	EditMode       bool
	Breakpoint     layout.Breakpoint
	Logger         *slog.Logger
}

// Surface 是绑定在某个区域根节点上的网格表面句柄，供协调器与同步器共享。
type Surface struct {
	Ref        layout.AreaRef
	Columns    int
	MinRow     int
	EditMode   bool
	Breakpoint layout.Breakpoint

	grid     *grid.Grid
	root     *grid.Root
	log      *slog.Logger
	revision uint64
}

// Initialize 为区域创建网格表面。根节点尚未挂载时返回 false，调用方在下一次渲染时重试。
func Initialize(p Params) (*Surface, bool) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("area", p.Area.String())
	if !p.Root.Attached() {
		log.Debug("root not attached, skip init")
		return nil, false
	}

	columns := layout.ColumnCount(p.Area.Type, p.WrapperColumns)
	minRow := layout.MinRow(p.Area.Type, p.Root.Height)
	g, err := grid.Init(grid.Options{
		Column:                 columns,
		CellHeight:             layout.CellHeight,
		Margin:                 layout.CellMargin,
		Float:                  true,
		AlwaysShowResizeHandle: grid.HandleMobile,
		AcceptWidgets:          true,
		DisableOneColumnMode:   true,
		StaticGrid:             !p.EditMode,
		MinRow:                 minRow,
		Animate:                false,
		Logger:                 log,
	}, p.Root)
	if err != nil {
		log.Debug("grid init skipped", "err", err)
		return nil, false
	}
	// 复用已绑定实例时列数不会被重新应用，这里显式设置一次。
	g.Column(columns)

	bp := p.Breakpoint
	if bp == "" {
		bp = layout.BreakpointLG
	}
	return &Surface{
		Ref:        p.Area,
		Columns:    columns,
		MinRow:     minRow,
		EditMode:   p.EditMode,
		Breakpoint: bp,
		grid:       g,
		root:       p.Root,
		log:        log,
	}, true
}

// Grid 返回底层网格实例。
func (s *Surface) Grid() *grid.Grid { return s.grid }

// Root 返回绑定的根节点。
func (s *Surface) Root() *grid.Root { return s.root }

// Alive reports whether the surface still owns a live grid.
func (s *Surface) Alive() bool {
	return s != nil && s.grid != nil && !s.grid.Destroyed()
}

// Matches 判断在给定参数下能否沿用当前表面；列数、区域标识、编辑模式或根节点变化都需要重建。
func (s *Surface) Matches(p Params) bool {
	if !s.Alive() {
		return false
	}
	return s.Ref == p.Area &&
		s.root == p.Root &&
		s.EditMode == p.EditMode &&
		s.Columns == layout.ColumnCount(p.Area.Type, p.WrapperColumns)
}

// Destroy 销毁网格但保留成员句柄。
func (s *Surface) Destroy() {
	if !s.Alive() {
		return
	}
	s.grid.Destroy(false)
	s.log.Debug("surface destroyed")
}

// Translate 将原生节点翻译为带版本号的领域放置结果。
func (s *Surface) Translate(n grid.Node) layout.Placement {
	s.revision++
	return layout.Placement{
		ItemID:     n.ID,
		Area:       s.Ref,
		Breakpoint: s.Breakpoint,
		Shape: layout.Shape{
			Location: layout.Location{X: n.X, Y: n.Y},
			Size:     layout.Size{Width: n.W, Height: n.H},
		},
		Revision: s.revision,
	}
}

// Revision 返回最近一次翻译的版本号。
func (s *Surface) Revision() uint64 { return s.revision }

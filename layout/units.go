package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines grid geometry constants and the area sizing rules.

// 网格几何常量（像素）。
const (
	CellHeight     = 64 // 单元格固定高度
	CellMargin     = 10 // 相邻成员之间的固定间距
	SidebarColumns = 2
	DefaultMinRow  = 1
)

// PxToMm 按 96dpi 将像素换算为毫米，供渲染器使用。
const (
	PxToMm = 25.4 / 96.0
	MmToPx = 1.0 / PxToMm
)

// 断点阈值（视口宽度，像素）。
const (
	LargeViewport  = 1400
	MediumViewport = 800
)

// ValidWrapperColumns 报告 n 是否为允许的 wrapper 列数（3/6/12）。
func ValidWrapperColumns(n int) bool {
	switch n {
	case 3, 6, 12:
		return true
	default:
		return false
	}
}

// ColumnCount 是区域类型的纯函数：sidebar 固定 2 列，其余沿用 wrapper 列数。
func ColumnCount(areaType AreaType, wrapperColumns int) int {
	if areaType == AreaSidebar {
		return SidebarColumns
	}
	return wrapperColumns
}

// MinRow 计算最少行数。非 sidebar 恒为 1；sidebar 为根节点像素高度除以单元格高度向下取整。
func MinRow(areaType AreaType, rootHeightPx int) int {
	if areaType != AreaSidebar {
		return DefaultMinRow
	}
	if rootHeightPx <= 0 {
		return 0
	}
	return int(math.Floor(float64(rootHeightPx) / CellHeight))
}

// BreakpointFor 根据视口宽度选择响应式断点。
func BreakpointFor(viewportWidthPx int) Breakpoint {
	switch {
	case viewportWidthPx >= LargeViewport:
		return BreakpointLG
	case viewportWidthPx >= MediumViewport:
		return BreakpointMD
	default:
		return BreakpointSM
	}
}

// WrapperColumnsFor returns the wrapper column count used at a breakpoint.
func WrapperColumnsFor(bp Breakpoint) int {
	switch bp {
	case BreakpointLG:
		return 12
	case BreakpointMD:
		return 6
	default:
		return 3
	}
}

// ParsePixels 解析 "640" 或 "640px" 形式的像素值，失败时返回 false。
func ParsePixels(value string) (int, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	v = strings.TrimSuffix(v, "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int(math.Floor(f)), true
}

package layout

import "testing"

// TestSidebarColumnCount 验证 sidebar 的列数与 wrapper 列数无关，恒为 2。
func TestSidebarColumnCount(t *testing.T) {
	for _, cols := range []int{3, 6, 12} {
		if got := ColumnCount(AreaSidebar, cols); got != 2 {
			t.Fatalf("sidebar 列数期望 2，wrapper=%d 时实际 %d", cols, got)
		}
		if got := ColumnCount(AreaWrapper, cols); got != cols {
			t.Fatalf("wrapper 列数期望 %d，实际 %d", cols, got)
		}
		if got := ColumnCount(AreaCategory, cols); got != cols {
			t.Fatalf("category 列数期望 %d，实际 %d", cols, got)
		}
	}
}

// TestMinRow 覆盖 sidebar 的最少行数（向下取整）与其他区域的固定值。
func TestMinRow(t *testing.T) {
	cases := []struct {
		area   AreaType
		height int
		want   int
	}{
		{AreaSidebar, 640, 10},
		{AreaSidebar, 700, 10},
		{AreaSidebar, 63, 0},
		{AreaSidebar, 0, 0},
		{AreaWrapper, 700, 1},
		{AreaCategory, 0, 1},
	}
	for _, c := range cases {
		if got := MinRow(c.area, c.height); got != c.want {
			t.Fatalf("MinRow(%s, %d) 期望 %d，实际 %d", c.area, c.height, c.want, got)
		}
	}
}

func TestBreakpointFor(t *testing.T) {
	cases := map[int]Breakpoint{1920: BreakpointLG, 1400: BreakpointLG, 1399: BreakpointMD, 800: BreakpointMD, 390: BreakpointSM}
	for width, want := range cases {
		if got := BreakpointFor(width); got != want {
			t.Fatalf("BreakpointFor(%d) = %s, want %s", width, got, want)
		}
	}
	if WrapperColumnsFor(BreakpointLG) != 12 || WrapperColumnsFor(BreakpointMD) != 6 || WrapperColumnsFor(BreakpointSM) != 3 {
		t.Fatalf("断点与 wrapper 列数映射错误")
	}
}

func TestParsePixels(t *testing.T) {
	if v, ok := ParsePixels("640px"); !ok || v != 640 {
		t.Fatalf("640px 解析失败: %d %v", v, ok)
	}
	if v, ok := ParsePixels(" 700.9 "); !ok || v != 700 {
		t.Fatalf("700.9 解析失败: %d %v", v, ok)
	}
	if _, ok := ParsePixels("abc"); ok {
		t.Fatalf("非法像素值不应解析成功")
	}
}

func TestValidWrapperColumns(t *testing.T) {
	for _, n := range []int{3, 6, 12} {
		if !ValidWrapperColumns(n) {
			t.Fatalf("%d 应为合法列数", n)
		}
	}
	for _, n := range []int{0, 2, 4, 24} {
		if ValidWrapperColumns(n) {
			t.Fatalf("%d 不应为合法列数", n)
		}
	}
}

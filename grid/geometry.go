package grid

// Rect 是以像素为单位的矩形。
type Rect struct {
	X, Y, W, H float64
}

// CellWidth 返回给定根节点宽度下单列的像素宽度。
func (g *Grid) CellWidth(rootWidthPx int) float64 {
	if g.opts.Column <= 0 {
		return 0
	}
	return float64(rootWidthPx) / float64(g.opts.Column)
}

// PixelRect 把节点的网格坐标换算为内容区像素矩形，四周各让出半个间距。
func (g *Grid) PixelRect(n Node, rootWidthPx int) Rect {
	cw := g.CellWidth(rootWidthPx)
	ch := float64(g.opts.CellHeight)
	half := float64(g.opts.Margin) / 2
	return Rect{
		X: float64(n.X)*cw + half,
		Y: float64(n.Y)*ch + half,
		W: float64(n.W)*cw - 2*half,
		H: float64(n.H)*ch - 2*half,
	}
}

// PixelHeight 返回网格在当前行数下的像素高度。
func (g *Grid) PixelHeight() int {
	return g.Rows() * g.opts.CellHeight
}

package grid

import "fmt"

// 以下方法对应用户的拖拽与缩放指针操作，坐标与尺寸均为网格单元。

// Move 把节点拖到 (x, y)。被挤占的节点下移，change 批次以被拖动的节点开头。
func (g *Grid) Move(id string, x, y int) error {
	n, err := g.interactive(id)
	if err != nil {
		return err
	}
	if n.el.NoMove {
		return nil
	}
	before := g.positions()
	n.X, n.Y = x, y
	g.layout(n)
	g.commit(before, n)
	return nil
}

// Resize 把节点缩放到 w x h。
func (g *Grid) Resize(id string, w, h int) error {
	n, err := g.interactive(id)
	if err != nil {
		return err
	}
	if n.el.NoResize {
		return nil
	}
	before := g.positions()
	n.W, n.H = w, h
	g.layout(n)
	g.commit(before, n)
	return nil
}

// Transfer 把节点从当前网格拖入 dst 的 (x, y)。源网格派发 removed，目标网格派发 added，
// 目标网格中因此被挤占的节点随后以 change 派发。
func (g *Grid) Transfer(id string, dst *Grid, x, y int) error {
	if dst == nil {
		return fmt.Errorf("grid: 目标网格为空")
	}
	if dst == g {
		return g.Move(id, x, y)
	}
	n, err := g.interactive(id)
	if err != nil {
		return err
	}
	if dst.destroyed {
		return ErrDestroyed
	}
	if dst.opts.StaticGrid {
		return ErrStatic
	}
	if !dst.opts.AcceptWidgets {
		return ErrNotAccepting
	}
	if n.el.NoMove {
		return nil
	}

	srcBefore := g.positions()
	g.detach(id)
	g.removed = append(g.removed, n)
	g.layout(nil)
	g.commit(srcBefore, nil)

	dstBefore := dst.positions()
	moved := &Node{ID: n.ID, X: x, Y: y, W: n.W, H: n.H, el: n.el}
	n.el.grid = dst
	n.el.removed = false
	dst.nodes = append(dst.nodes, moved)
	dst.added = append(dst.added, moved)
	dst.layout(moved)
	dst.commit(dstBefore, nil)
	return nil
}

func (g *Grid) interactive(id string) (*Node, error) {
	if g.destroyed {
		return nil, ErrDestroyed
	}
	if g.opts.StaticGrid {
		return nil, ErrStatic
	}
	if g.batch {
		return nil, fmt.Errorf("grid: 批量更新期间不接受交互")
	}
	n := g.find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return n, nil
}

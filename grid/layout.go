package grid

import "sort"

// normalize 把节点收进列范围：宽高至少为 1，宽度不超过列数，坐标非负。
func (g *Grid) normalize(n *Node) {
	col := g.opts.Column
	if n.W < 1 {
		n.W = 1
	}
	if n.H < 1 {
		n.H = 1
	}
	if n.W > col {
		n.W = col
	}
	if n.X < 0 {
		n.X = 0
	}
	if n.X+n.W > col {
		n.X = col - n.W
	}
	if n.Y < 0 {
		n.Y = 0
	}
}

// layout 执行一次完整的布局：收进列范围、解决重叠，非 float 模式下再向上压紧。
// pinned 是用户正在操作的节点，它保持目标位置，其余节点为它让位。
func (g *Grid) layout(pinned *Node) {
	for _, n := range g.nodes {
		g.normalize(n)
	}

	order := make([]*Node, 0, len(g.nodes))
	rest := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n == pinned {
			continue
		}
		rest = append(rest, n)
	}
	sortByPosition(rest)
	if pinned != nil {
		order = append(order, pinned)
	}
	order = append(order, rest...)

	placed := make([]*Node, 0, len(order))
	for _, n := range order {
		for {
			c := firstCollision(n.rect(), placed)
			if c == nil {
				break
			}
			n.Y = c.Y + c.H
		}
		placed = append(placed, n)
	}

	if !g.opts.Float {
		g.compact()
	}
}

// compact 按自上而下的顺序把每个节点尽量上移。
func (g *Grid) compact() {
	order := make([]*Node, len(g.nodes))
	copy(order, g.nodes)
	sortByPosition(order)
	placed := make([]*Node, 0, len(order))
	for _, n := range order {
		for n.Y > 0 {
			up := n.rect()
			up.y--
			if firstCollision(up, placed) != nil {
				break
			}
			n.Y--
		}
		placed = append(placed, n)
	}
}

func sortByPosition(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Y != nodes[j].Y {
			return nodes[i].Y < nodes[j].Y
		}
		return nodes[i].X < nodes[j].X
	})
}

func firstCollision(r rect, others []*Node) *Node {
	for _, o := range others {
		if overlaps(r, o.rect()) {
			return o
		}
	}
	return nil
}

func overlaps(a, b rect) bool {
	return a.x < b.x+b.w && b.x < a.x+a.w && a.y < b.y+b.h && b.y < a.y+a.h
}

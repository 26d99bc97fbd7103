// Package grid 实现单线程的拖拽/缩放网格引擎：成员挂载、批量更新、碰撞处理与交互事件。
//
// 引擎只认识原生节点（Node）与挂载句柄（Element），不感知看板的领域模型；
// 所有方法都应在同一个 goroutine 中调用。
package grid

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrRootDetached = errors.New("grid: 根节点尚未挂载")
	ErrDestroyed    = errors.New("grid: 网格已销毁")
	ErrStatic       = errors.New("grid: 静态网格不接受交互")
	ErrNotAccepting = errors.New("grid: 目标网格不接受拖入")
	ErrUnknownNode  = errors.New("grid: 节点不存在")
)

// Event 是网格对外派发的事件种类。
type Event string

const (
	EventChange  Event = "change"
	EventAdded   Event = "added"
	EventRemoved Event = "removed"
)

// Handler 接收一批受影响的节点；第一个节点总是用户直接操作的那个。
type Handler func(event Event, nodes []Node)

// HandleMode 控制缩放手柄何时常显。
type HandleMode string

const (
	HandleAuto   HandleMode = ""
	HandleMobile HandleMode = "mobile"
	HandleAlways HandleMode = "always"
)

// Options 配置网格几何与交互方式。
type Options struct {
	Column                 int
	CellHeight             int
	Margin                 int
	Float                  bool
	AlwaysShowResizeHandle HandleMode
	AcceptWidgets          bool
	DisableOneColumnMode   bool
	StaticGrid             bool
	MinRow                 int
	Animate                bool
	Logger                 *slog.Logger
}

const defaultColumn = 12

// ShowResizeHandle 报告在给定输入设备上是否常显缩放手柄。
func (o Options) ShowResizeHandle(touch bool) bool {
	switch o.AlwaysShowResizeHandle {
	case HandleAlways:
		return true
	case HandleMobile:
		return touch
	default:
		return false
	}
}

func (o Options) withDefaults() Options {
	if o.Column <= 0 {
		o.Column = defaultColumn
	}
	if o.MinRow < 0 {
		o.MinRow = 0
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Root 模拟区域的 DOM 根节点：只有挂载后才能绑定网格。
type Root struct {
	Selector string
	Width    int // px
	Height   int // px，即 offsetHeight

	attached bool
	grid     *Grid
}

// NewRoot 创建一个已挂载的根节点。
func NewRoot(selector string, width, height int) *Root {
	return &Root{Selector: selector, Width: width, Height: height, attached: true}
}

// Attached reports whether the root is mounted. A nil root is never attached.
func (r *Root) Attached() bool { return r != nil && r.attached }

// Detach 卸载根节点；已绑定的网格随之销毁，成员句柄保留。
func (r *Root) Detach() {
	if r == nil {
		return
	}
	if r.grid != nil {
		r.grid.Destroy(false)
	}
	r.attached = false
}

// Attach 重新挂载根节点，之后 Init 会在其上创建新网格。
func (r *Root) Attach() {
	if r != nil {
		r.attached = true
	}
}

// Grid 返回当前绑定在根节点上的网格。
func (r *Root) Grid() *Grid {
	if r == nil {
		return nil
	}
	return r.grid
}

// Element 是成员的挂载句柄，携带 gs-x/gs-y/gs-w/gs-h 几何属性。
// 网格在 MakeWidget 时读取这些属性，并在每次用户变更后写回。
type Element struct {
	ID       string
	X, Y     int
	W, H     int
	NoMove   bool
	NoResize bool

	removed bool
	grid    *Grid
}

// NewElement 创建一个挂载句柄。
func NewElement(id string, x, y, w, h int) *Element {
	return &Element{ID: id, X: x, Y: y, W: w, H: h}
}

// Grid 返回句柄当前所属的网格，未加入任何网格时为 nil。
func (e *Element) Grid() *Grid { return e.grid }

// Removed 报告句柄对应的 DOM 节点是否已被删除。
func (e *Element) Removed() bool { return e.removed }

// Node 是引擎内部对已放置成员的表示。
type Node struct {
	ID string
	X  int
	Y  int
	W  int
	H  int

	el *Element
}

// Element 返回节点对应的挂载句柄。
func (n Node) Element() *Element { return n.el }

type rect struct{ x, y, w, h int }

func (n *Node) rect() rect { return rect{n.X, n.Y, n.W, n.H} }

// Grid 是绑定在单个根节点上的网格实例。
type Grid struct {
	opts     Options
	root     *Root
	nodes    []*Node
	handlers map[Event][]Handler
	log      *slog.Logger

	batch     bool
	before    map[string]rect
	added     []*Node
	removed   []*Node
	destroyed bool
}

// Init 在根节点上初始化网格。若根节点已绑定网格则直接返回该实例，且不会重新应用 opts，
// 调用方需要在之后显式设置列数等易失配置。
func Init(opts Options, root *Root) (*Grid, error) {
	if !root.Attached() {
		return nil, ErrRootDetached
	}
	if root.grid != nil {
		return root.grid, nil
	}
	opts = opts.withDefaults()
	g := &Grid{
		opts:     opts,
		root:     root,
		handlers: map[Event][]Handler{},
		log:      opts.Logger.With("selector", root.Selector),
	}
	root.grid = g
	g.log.Debug("grid initialized", "column", opts.Column, "minRow", opts.MinRow, "static", opts.StaticGrid)
	return g, nil
}

// Options 返回当前生效的配置。
func (g *Grid) Options() Options { return g.opts }

// Root 返回绑定的根节点，销毁后为 nil。
func (g *Grid) Root() *Root { return g.root }

// Destroyed reports whether Destroy has been called.
func (g *Grid) Destroyed() bool { return g.destroyed }

// ColumnCount 返回当前列数。
func (g *Grid) ColumnCount() int { return g.opts.Column }

// Column 设置列数并把现有成员收进新的列范围内。
func (g *Grid) Column(n int) {
	if n <= 0 || g.destroyed || n == g.opts.Column {
		return
	}
	g.opts.Column = n
	before := g.positions()
	g.layout(nil)
	g.commit(before, nil)
}

// SetStatic 切换只读模式。
func (g *Grid) SetStatic(static bool) { g.opts.StaticGrid = static }

// Static reports whether the grid refuses user interaction.
func (g *Grid) Static() bool { return g.opts.StaticGrid }

// On 注册事件处理函数；同一事件可注册多个。
func (g *Grid) On(event Event, h Handler) {
	if h == nil || g.destroyed {
		return
	}
	g.handlers[event] = append(g.handlers[event], h)
}

// Off 移除事件的全部处理函数。
func (g *Grid) Off(event Event) { delete(g.handlers, event) }

// Nodes 按挂载顺序返回成员快照。
func (g *Grid) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	return out
}

// Node 按 ID 返回成员快照。
func (g *Grid) Node(id string) (Node, bool) {
	if n := g.find(id); n != nil {
		return *n, true
	}
	return Node{}, false
}

// Rows 返回当前行数：最少行数与成员最低边缘中的较大者。
func (g *Grid) Rows() int {
	rows := g.opts.MinRow
	for _, n := range g.nodes {
		if b := n.Y + n.H; b > rows {
			rows = b
		}
	}
	return rows
}

// MakeWidget 读取句柄几何属性并将其加入网格。句柄若属于其他网格会先被静默摘除。
func (g *Grid) MakeWidget(el *Element) (Node, error) {
	if g.destroyed {
		return Node{}, ErrDestroyed
	}
	if el == nil {
		return Node{}, fmt.Errorf("grid: 挂载句柄为空")
	}
	if el.grid == g {
		if n := g.find(el.ID); n != nil {
			return *n, nil
		}
	}
	if el.grid != nil && el.grid != g {
		el.grid.detach(el.ID)
	}
	before := g.positions()
	n := &Node{ID: el.ID, X: el.X, Y: el.Y, W: el.W, H: el.H, el: el}
	g.normalize(n)
	el.removed = false
	el.grid = g
	g.nodes = append(g.nodes, n)
	g.added = append(g.added, n)
	if !g.batch {
		g.layout(nil)
		g.commit(before, nil)
	}
	return *n, nil
}

// RemoveWidget 从网格移除句柄；removeDOM 为 false 时保留底层 DOM 节点。
func (g *Grid) RemoveWidget(el *Element, removeDOM bool) {
	if g.destroyed || el == nil || el.grid != g {
		return
	}
	n := g.detach(el.ID)
	if n == nil {
		return
	}
	if removeDOM {
		el.removed = true
	}
	g.removed = append(g.removed, n)
	if !g.batch {
		before := g.positions()
		g.layout(nil)
		g.commit(before, nil)
	}
}

// RemoveAll 移除全部成员；removeDOM 为 false 时保留底层 DOM 节点。
func (g *Grid) RemoveAll(removeDOM bool) {
	if g.destroyed {
		return
	}
	for _, n := range g.nodes {
		n.el.grid = nil
		if removeDOM {
			n.el.removed = true
		}
		g.removed = append(g.removed, n)
	}
	g.nodes = nil
	if !g.batch {
		g.commit(nil, nil)
	}
}

// BatchUpdate 打开或关闭批量更新作用域。作用域内不进行布局计算也不派发事件；
// 关闭时只做一次布局，并丢弃作用域内先移除后重新加入的成员的增删记录。
func (g *Grid) BatchUpdate(on bool) {
	if g.destroyed {
		return
	}
	if on {
		if !g.batch {
			g.batch = true
			g.before = g.positions()
		}
		return
	}
	if !g.batch {
		return
	}
	g.batch = false
	before := g.before
	g.before = nil
	g.layout(nil)
	g.commit(before, nil)
}

// Destroy 解除与根节点的绑定并清空处理函数。
func (g *Grid) Destroy(removeDOM bool) {
	if g.destroyed {
		return
	}
	for _, n := range g.nodes {
		n.el.grid = nil
		if removeDOM {
			n.el.removed = true
		}
	}
	g.nodes = nil
	g.added, g.removed = nil, nil
	g.handlers = map[Event][]Handler{}
	if g.root != nil && g.root.grid == g {
		g.root.grid = nil
	}
	g.root = nil
	g.destroyed = true
	g.log.Debug("grid destroyed")
}

func (g *Grid) find(id string) *Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// detach 摘除节点但不记录事件。
func (g *Grid) detach(id string) *Node {
	for i, n := range g.nodes {
		if n.ID == id {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			n.el.grid = nil
			return n
		}
	}
	return nil
}

func (g *Grid) positions() map[string]rect {
	out := make(map[string]rect, len(g.nodes))
	for _, n := range g.nodes {
		out[n.ID] = n.rect()
	}
	return out
}

// commit 写回句柄属性并派发 removed/added/change 事件。
// lead 若非空，会作为 change 批次的第一个节点。
func (g *Grid) commit(before map[string]rect, lead *Node) {
	for _, n := range g.nodes {
		n.el.X, n.el.Y, n.el.W, n.el.H = n.X, n.Y, n.W, n.H
	}

	added, removed := cancelPairs(g.added, g.removed)
	g.added, g.removed = nil, nil

	var changed []*Node
	if lead != nil {
		if prev, ok := before[lead.ID]; !ok || prev != lead.rect() {
			changed = append(changed, lead)
		}
	}
	for _, n := range g.nodes {
		if n == lead {
			continue
		}
		if prev, ok := before[n.ID]; ok && prev != n.rect() {
			changed = append(changed, n)
		}
	}

	g.emit(EventRemoved, removed)
	g.emit(EventAdded, added)
	g.emit(EventChange, changed)
}

// cancelPairs 去掉同一批次中先移除后重新加入的节点。
func cancelPairs(added, removed []*Node) ([]*Node, []*Node) {
	if len(added) == 0 || len(removed) == 0 {
		return added, removed
	}
	readded := map[string]bool{}
	for _, n := range added {
		readded[n.ID] = true
	}
	gone := map[string]bool{}
	var keptRemoved []*Node
	for _, n := range removed {
		if readded[n.ID] {
			gone[n.ID] = true
			continue
		}
		keptRemoved = append(keptRemoved, n)
	}
	var keptAdded []*Node
	for _, n := range added {
		if gone[n.ID] {
			continue
		}
		keptAdded = append(keptAdded, n)
	}
	return keptAdded, keptRemoved
}

func (g *Grid) emit(event Event, nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	handlers := g.handlers[event]
	if len(handlers) == 0 {
		return
	}
	batch := make([]Node, len(nodes))
	for i, n := range nodes {
		batch[i] = *n
	}
	for _, h := range handlers {
		h(event, batch)
	}
}

package board

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ByLCY/gridboard/grid"
	"github.com/ByLCY/gridboard/layout"
)

// ErrNotMounted 表示区域还没有可用的网格表面。
var ErrNotMounted = errors.New("board: 区域尚未挂载")

// Config 是一次渲染会话的配置。
type Config struct {
	WrapperColumns int
	EditMode       bool
	Breakpoint     layout.Breakpoint
	Logger         *slog.Logger
}

// Dashboard 持有看板模型、句柄注册表与按区域索引的网格表面。
// 所有方法都应在同一个 goroutine 中调用。
type Dashboard struct {
	board    *layout.Board
	reg      *Registry
	coord    *Coordinator
	surfaces map[layout.AreaRef]*Surface
	roots    map[layout.AreaRef]*grid.Root
	cfg      Config
	log      *slog.Logger

	rendering bool
}

// New 创建看板。Config 中未设置的列数与断点取自看板 settings。
func New(b *layout.Board, cfg Config) *Dashboard {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Breakpoint == "" {
		cfg.Breakpoint = b.Settings.Breakpoint
	}
	if cfg.Breakpoint == "" {
		cfg.Breakpoint = layout.BreakpointLG
	}
	if !layout.ValidWrapperColumns(cfg.WrapperColumns) {
		cfg.WrapperColumns = b.Settings.WrapperColumns
	}
	if !layout.ValidWrapperColumns(cfg.WrapperColumns) {
		cfg.WrapperColumns = layout.WrapperColumnsFor(cfg.Breakpoint)
	}
	log := cfg.Logger.With("board", b.Name)
	return &Dashboard{
		board:    b,
		reg:      NewRegistry(),
		coord:    NewCoordinator(b, log),
		surfaces: map[layout.AreaRef]*Surface{},
		roots:    map[layout.AreaRef]*grid.Root{},
		cfg:      cfg,
		log:      log,
	}
}

func (d *Dashboard) Board() *layout.Board { return d.board }
func (d *Dashboard) Registry() *Registry { return d.reg }
func (d *Dashboard) Coordinator() *Coordinator { return d.coord }
func (d *Dashboard) Config() Config { return d.cfg }
func (d *Dashboard) Root(ref layout.AreaRef) *grid.Root { return d.roots[ref] }

// Surface 返回区域当前的网格表面。
func (d *Dashboard) Surface(ref layout.AreaRef) (*Surface, bool) {
	s, ok := d.surfaces[ref]
	if !ok || !s.Alive() {
		return nil, false
	}
	return s, true
}

// Mount 记录区域根节点，初始化（或沿用）网格表面并立即重建成员。
// 根节点尚未挂载时返回 false；根节点 Attach 之后的下一次 Render 会补挂。
func (d *Dashboard) Mount(ref layout.AreaRef, root *grid.Root) bool {
	area, ok := d.board.Area(ref)
	if !ok {
		d.log.Warn("mount for unknown area", "area", ref.String())
		return false
	}
	d.roots[ref] = root
	d.syncHandles()
	s, ok := d.ensureSurface(ref)
	if !ok {
		return false
	}
	d.reconcile(s, area)
	return true
}

// Unmount 销毁区域的网格表面，成员句柄保留在注册表中。
func (d *Dashboard) Unmount(ref layout.AreaRef) {
	if s, ok := d.surfaces[ref]; ok {
		s.Destroy()
	}
	delete(d.surfaces, ref)
	delete(d.roots, ref)
}

// SetEditMode 切换编辑模式并重建所有已挂载表面。
func (d *Dashboard) SetEditMode(edit bool) {
	if d.cfg.EditMode == edit {
		return
	}
	d.cfg.EditMode = edit
	d.log.Debug("edit mode changed", "edit", edit)
	d.reinitAll()
}

// SetWrapperColumns 修改 wrapper 列数（3/6/12）；列数发生变化的表面会被重建。
func (d *Dashboard) SetWrapperColumns(n int) error {
	if !layout.ValidWrapperColumns(n) {
		return fmt.Errorf("wrapper 列数只能是 3、6 或 12，实际 %d", n)
	}
	if d.cfg.WrapperColumns == n {
		return nil
	}
	d.cfg.WrapperColumns = n
	d.reinitAll()
	return nil
}

// SetBreakpoint 切换断点，wrapper 列数随之变化；成员按新断点的形状重新放置。
func (d *Dashboard) SetBreakpoint(bp layout.Breakpoint) {
	if d.cfg.Breakpoint == bp {
		return
	}
	d.cfg.Breakpoint = bp
	d.cfg.WrapperColumns = layout.WrapperColumnsFor(bp)
	for _, s := range d.surfaces {
		if s.Alive() {
			s.Breakpoint = bp
		}
	}
	d.reinitAll()
}

// reinitAll 重建参数已不匹配的表面；其余表面只在已登记时重建成员。
func (d *Dashboard) reinitAll() {
	for _, ref := range d.board.Refs() {
		if _, mounted := d.roots[ref]; !mounted {
			continue
		}
		area, _ := d.board.Area(ref)
		s, ok := d.ensureSurface(ref)
		if !ok {
			continue
		}
		d.refreshHandles(s, area)
		d.reconcile(s, area)
	}
}

func (d *Dashboard) params(ref layout.AreaRef) Params {
	return Params{
		Area:           ref,
		Root:           d.roots[ref],
		WrapperColumns: d.cfg.WrapperColumns,
		EditMode:       d.cfg.EditMode,
		Breakpoint:     d.cfg.Breakpoint,
		Logger:         d.log,
	}
}

// ensureSurface 在参数不变时沿用表面，否则销毁后重新初始化并绑定同步器。
func (d *Dashboard) ensureSurface(ref layout.AreaRef) (*Surface, bool) {
	p := d.params(ref)
	if s, ok := d.surfaces[ref]; ok {
		if s.Matches(p) {
			return s, true
		}
		s.Destroy()
		delete(d.surfaces, ref)
	}
	s, ok := Initialize(p)
	if !ok {
		return nil, false
	}
	Bind(s, d.coord.Events())
	d.surfaces[ref] = s
	return s, true
}

// reconcile 期间协调器保持 Hold，重建产生的放置（包括回退形状）不写回模型。
func (d *Dashboard) reconcile(s *Surface, area *layout.Area) ReconcileResult {
	release := d.coord.Hold()
	defer release()
	return Reconcile(s, d.reg, area.Apps, area.Widgets)
}

// AddItem 把成员加入区域，下一次 Render 时挂载句柄并重建。
func (d *Dashboard) AddItem(ref layout.AreaRef, item layout.Item) error {
	if err := d.board.AddItem(ref, item); err != nil {
		return err
	}
	d.coord.Schedule(ref)
	return nil
}

// RemoveItem 从模型中移除成员，下一次 Render 时卸载其句柄。
func (d *Dashboard) RemoveItem(id string) bool {
	_, ref, ok := d.board.RemoveItem(id)
	if ok {
		d.coord.Schedule(ref)
	}
	return ok
}

// Move 模拟用户在所属区域内拖动成员。
func (d *Dashboard) Move(id string, x, y int) error {
	s, err := d.ownerSurface(id)
	if err != nil {
		return err
	}
	if err := s.grid.Move(id, x, y); err != nil {
		return err
	}
	d.persist(s)
	return nil
}

// Resize 模拟用户缩放成员。
func (d *Dashboard) Resize(id string, w, h int) error {
	s, err := d.ownerSurface(id)
	if err != nil {
		return err
	}
	if err := s.grid.Resize(id, w, h); err != nil {
		return err
	}
	d.persist(s)
	return nil
}

// Transfer 模拟把成员拖入另一个区域的 (x, y) 处。
func (d *Dashboard) Transfer(id string, to layout.AreaRef, x, y int) error {
	src, err := d.ownerSurface(id)
	if err != nil {
		return err
	}
	dst, ok := d.Surface(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotMounted, to)
	}
	if err := src.grid.Transfer(id, dst.grid, x, y); err != nil {
		return err
	}
	d.persist(src)
	d.persist(dst)
	return nil
}

// persist 把表面上所有成员的当前位置写回模型，包括同步器没有转发的被推开成员。
// 与当前生效形状相同的成员不写入。
func (d *Dashboard) persist(s *Surface) {
	for _, n := range s.grid.Nodes() {
		owner, ok := d.board.Owner(n.ID)
		if !ok || owner != s.Ref {
			continue
		}
		it, _ := d.board.Item(n.ID)
		p := s.Translate(n)
		if it.ShapeFor(p.Breakpoint) == p.Shape {
			continue
		}
		d.board.SetShape(n.ID, p.Breakpoint, p.Shape)
	}
}

func (d *Dashboard) ownerSurface(id string) (*Surface, error) {
	ref, ok := d.board.Owner(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", grid.ErrUnknownNode, id)
	}
	s, ok := d.Surface(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotMounted, ref)
	}
	return s, nil
}

// Render 是“下一次渲染”：同步句柄、补挂尚未初始化的区域，并重建所有已登记的区域。
// 返回本次重建的区域。不能在事件回调中调用。
func (d *Dashboard) Render() []layout.AreaRef {
	if d.rendering {
		d.log.Warn("re-entrant render ignored")
		return nil
	}
	d.rendering = true
	defer func() { d.rendering = false }()

	d.syncHandles()
	for _, ref := range d.board.Refs() {
		if _, mounted := d.roots[ref]; !mounted {
			continue
		}
		if _, ok := d.Surface(ref); ok {
			continue
		}
		if _, ok := d.ensureSurface(ref); ok {
			d.coord.Schedule(ref)
		}
	}

	var done []layout.AreaRef
	for _, ref := range d.coord.Drain() {
		s, ok := d.Surface(ref)
		if !ok {
			continue
		}
		area, ok := d.board.Area(ref)
		if !ok {
			continue
		}
		d.refreshHandles(s, area)
		res := d.reconcile(s, area)
		d.log.Debug("area reconciled", "area", ref.String(), "mounted", len(res.Mounted), "skipped", len(res.Skipped))
		done = append(done, ref)
	}
	return done
}

// syncHandles 为新成员挂载句柄并注销已删除成员的句柄。
func (d *Dashboard) syncHandles() {
	live := map[string]struct{}{}
	for _, it := range d.board.Items() {
		live[it.ID] = struct{}{}
		if _, ok := d.reg.Lookup(it.ID); ok {
			continue
		}
		sh := it.ShapeFor(d.cfg.Breakpoint)
		d.reg.Register(it.ID, grid.NewElement(it.ID, sh.Location.X, sh.Location.Y, sh.Size.Width, sh.Size.Height))
	}
	for _, id := range d.reg.IDs() {
		if _, ok := live[id]; ok {
			continue
		}
		if el, ok := d.reg.Lookup(id); ok && el.Grid() != nil {
			el.Grid().RemoveWidget(el, true)
		}
		d.reg.Unregister(id)
	}
}

// refreshHandles 把模型中的形状写回句柄，重建时网格据此读取几何属性。
func (d *Dashboard) refreshHandles(s *Surface, area *layout.Area) {
	for _, it := range area.Items() {
		el, ok := d.reg.Lookup(it.ID)
		if !ok {
			continue
		}
		sh := it.ShapeFor(s.Breakpoint)
		el.X, el.Y, el.W, el.H = sh.Location.X, sh.Location.Y, sh.Size.Width, sh.Size.Height
	}
}

// Snapshot 汇总所有已挂载表面的成员与位置。
func (d *Dashboard) Snapshot() *layout.Snapshot {
	snap := &layout.Snapshot{
		Board:      d.board.Name,
		Breakpoint: d.cfg.Breakpoint,
		EditMode:   d.cfg.EditMode,
	}
	for _, ref := range d.board.Refs() {
		s, ok := d.Surface(ref)
		if !ok {
			continue
		}
		area, _ := d.board.Area(ref)
		as := layout.AreaSnapshot{
			Ref:     ref,
			Title:   area.Title,
			Columns: s.grid.ColumnCount(),
			MinRow:  s.MinRow,
			Rows:    s.grid.Rows(),
			Static:  s.grid.Static(),
			Members: []layout.Member{},
		}
		for _, n := range s.grid.Nodes() {
			m := layout.Member{
				ID: n.ID,
				Shape: layout.Shape{
					Location: layout.Location{X: n.X, Y: n.Y},
					Size:     layout.Size{Width: n.W, Height: n.H},
				},
			}
			if it, ok := d.board.Item(n.ID); ok {
				m.Kind, m.Label = it.Kind, it.Label()
			}
			as.Members = append(as.Members, m)
		}
		snap.Areas = append(snap.Areas, as)
	}
	return snap
}

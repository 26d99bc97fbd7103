package board

import (
	"log/slog"

	"github.com/ByLCY/gridboard/layout"
)

// Model 是协调器写入的外部领域状态。*layout.Board 实现了该接口。
type Model interface {
	Owner(id string) (layout.AreaRef, bool)
	SetShape(id string, bp layout.Breakpoint, shape layout.Shape) bool
	MoveItem(id string, to layout.AreaRef) error
}

// Coordinator 消费同步器的放置结果：只写领域模型并登记待重建的区域，
// 从不在事件回调中同步重建。
type Coordinator struct {
	model   Model
	log     *slog.Logger
	pending []layout.AreaRef
	held    int
}

func NewCoordinator(model Model, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{model: model, log: log}
}

// Events 返回接到同步器上的回调。
func (c *Coordinator) Events() Events {
	return Events{OnChange: c.HandleChange, OnAdd: c.HandleAdd}
}

// Hold 让协调器在 release 调用之前忽略同步器事件，可以嵌套。
func (c *Coordinator) Hold() (release func()) {
	c.held++
	return func() { c.held-- }
}

// Held reports whether placements are currently being ignored.
func (c *Coordinator) Held() bool { return c.held > 0 }

// HandleChange 记录同一区域内的拖动或缩放结果。表面已经反映了变化，无需重建。
func (c *Coordinator) HandleChange(p layout.Placement) {
	if c.Held() {
		c.log.Debug("change ignored while held", "item", p.ItemID, "area", p.Area.String())
		return
	}
	owner, ok := c.model.Owner(p.ItemID)
	if !ok {
		c.log.Debug("change for unknown item", "item", p.ItemID)
		return
	}
	if owner != p.Area {
		c.HandleAdd(p)
		return
	}
	c.model.SetShape(p.ItemID, p.Breakpoint, p.Shape)
}

// HandleAdd 处理成员被放入某个表面：跨区域时改挂所属区域，并登记源与目标区域待重建。
func (c *Coordinator) HandleAdd(p layout.Placement) {
	if c.Held() {
		c.log.Debug("add ignored while held", "item", p.ItemID, "area", p.Area.String())
		return
	}
	owner, ok := c.model.Owner(p.ItemID)
	if !ok {
		c.log.Debug("added node has no model item", "item", p.ItemID, "area", p.Area.String())
		return
	}
	if owner == p.Area {
		if c.model.SetShape(p.ItemID, p.Breakpoint, p.Shape) {
			c.Schedule(p.Area)
		}
		return
	}
	if err := c.model.MoveItem(p.ItemID, p.Area); err != nil {
		c.log.Warn("cross-area move rejected", "item", p.ItemID, "from", owner.String(), "to", p.Area.String(), "err", err)
		c.Schedule(owner, p.Area)
		return
	}
	c.model.SetShape(p.ItemID, p.Breakpoint, p.Shape)
	c.log.Debug("item moved", "item", p.ItemID, "from", owner.String(), "to", p.Area.String(), "rev", p.Revision)
	c.Schedule(owner, p.Area)
}

// Schedule 登记需要在下一次渲染时重建的区域，重复登记会被合并。
func (c *Coordinator) Schedule(refs ...layout.AreaRef) {
	for _, ref := range refs {
		if !c.isPending(ref) {
			c.pending = append(c.pending, ref)
		}
	}
}

func (c *Coordinator) isPending(ref layout.AreaRef) bool {
	for _, r := range c.pending {
		if r == ref {
			return true
		}
	}
	return false
}

// Pending 按登记顺序返回待重建区域。
func (c *Coordinator) Pending() []layout.AreaRef {
	out := make([]layout.AreaRef, len(c.pending))
	copy(out, c.pending)
	return out
}

// Drain 取出并清空待重建区域。
func (c *Coordinator) Drain() []layout.AreaRef {
	out := c.pending
	c.pending = nil
	return out
}

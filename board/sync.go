package board

import (
	"github.com/ByLCY/gridboard/grid"
	"github.com/ByLCY/gridboard/layout"
)

// Events 是同步器向外派发的两类领域通知。
type Events struct {
	OnChange func(layout.Placement)
	OnAdd    func(layout.Placement)
}

// Synchronizer 订阅表面的 change/added 事件，并把每批的第一个节点翻译为放置结果。
type Synchronizer struct {
	surface *Surface
	events  Events
}

// Bind 在表面上注册同步器。重复绑定会替换之前的处理函数。
func Bind(s *Surface, events Events) *Synchronizer {
	sy := &Synchronizer{surface: s, events: events}
	if !s.Alive() {
		return sy
	}
	g := s.grid
	g.Off(grid.EventChange)
	g.Off(grid.EventAdded)
	g.On(grid.EventChange, sy.Handle)
	g.On(grid.EventAdded, sy.Handle)
	return sy
}

// Handle 处理一批原生节点。空批次不触发回调；多余节点被丢弃。
func (sy *Synchronizer) Handle(event grid.Event, nodes []grid.Node) {
	if len(nodes) == 0 {
		return
	}
	var cb func(layout.Placement)
	switch event {
	case grid.EventChange:
		cb = sy.events.OnChange
	case grid.EventAdded:
		cb = sy.events.OnAdd
	}
	if cb == nil {
		return
	}
	if len(nodes) > 1 {
		sy.surface.log.Debug("discarding extra nodes", "event", string(event), "lead", nodes[0].ID, "discarded", len(nodes)-1)
	}
	cb(sy.surface.Translate(nodes[0]))
}

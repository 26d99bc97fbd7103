package board

import "github.com/ByLCY/gridboard/layout"

// ReconcileResult 记录一次重建中挂载与跳过的成员。
type ReconcileResult struct {
	Mounted []string
	Skipped []string
}

// Reconcile 让表面成员与声明式列表一致：在批量作用域内清空成员（保留 DOM），
// 依次重新加入应用与小组件，关闭作用域时只做一次布局。
// 尚未注册句柄的成员会被跳过，待下一次重建时再出现。
func Reconcile(s *Surface, reg *Registry, apps, widgets []layout.Item) ReconcileResult {
	var res ReconcileResult
	if !s.Alive() || reg == nil {
		return res
	}
	g := s.grid
	g.BatchUpdate(true)
	g.RemoveAll(false)
	for _, list := range [][]layout.Item{apps, widgets} {
		for _, it := range list {
			el, ok := reg.Lookup(it.ID)
			if !ok {
				res.Skipped = append(res.Skipped, it.ID)
				continue
			}
			if _, err := g.MakeWidget(el); err != nil {
				s.log.Debug("make widget failed", "item", it.ID, "err", err)
				res.Skipped = append(res.Skipped, it.ID)
				continue
			}
			res.Mounted = append(res.Mounted, it.ID)
		}
	}
	g.BatchUpdate(false)

	if len(res.Skipped) > 0 {
		s.log.Debug("reconcile skipped unregistered items", "skipped", res.Skipped)
	}
	return res
}

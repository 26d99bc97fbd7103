package board

import (
	"sort"
	"sync"

	"github.com/ByLCY/gridboard/grid"
)

// Registry 维护成员 ID 到已挂载句柄的映射。
// 渲染层负责写入，协调与控制层只读；不对形状做任何校验。
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*grid.Element
}

func NewRegistry() *Registry {
	return &Registry{handles: map[string]*grid.Element{}}
}

// Register 记录句柄；同一 ID 再次注册会覆盖旧句柄。
func (r *Registry) Register(id string, el *grid.Element) {
	if id == "" || el == nil {
		return
	}
	r.mu.Lock()
	r.handles[id] = el
	r.mu.Unlock()
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
}

// Lookup 查找句柄，未知 ID 返回 false 而不是错误。
func (r *Registry) Lookup(id string) (*grid.Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	el, ok := r.handles[id]
	return el, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// IDs 返回排序后的已注册 ID。
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

package layout

import (
	"fmt"
	"sort"
)

// 该文件定义仪表盘的声明式模型与快照，供构建、放置同步、渲染与调试 JSON 共用。

// AreaType 标识区域种类。
type AreaType string

const (
	AreaWrapper  AreaType = "wrapper"
	AreaCategory AreaType = "category"
	AreaSidebar  AreaType = "sidebar"
)

// Valid reports whether t is one of the known area types.
func (t AreaType) Valid() bool {
	switch t {
	case AreaWrapper, AreaCategory, AreaSidebar:
		return true
	default:
		return false
	}
}

// AreaRef 以 (类型, ID) 唯一标识一个区域。
type AreaRef struct {
	Type AreaType `json:"type"`
	ID   string   `json:"id"`
}

func (r AreaRef) String() string { return string(r.Type) + "/" + r.ID }

// Selector 返回区域根节点的选择器，与渲染层约定一致。
func (r AreaRef) Selector() string {
	return fmt.Sprintf(".grid-stack-%s[data-%s='%s']", r.Type, r.Type, r.ID)
}

// Breakpoint 是响应式断点。
type Breakpoint string

const (
	BreakpointLG Breakpoint = "lg"
	BreakpointMD Breakpoint = "md"
	BreakpointSM Breakpoint = "sm"
)

// Breakpoints 按优先级列出全部断点。
var Breakpoints = []Breakpoint{BreakpointLG, BreakpointMD, BreakpointSM}

// Location 与 Size 均以网格单元为单位。
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Shape 是成员在某个断点下的位置与尺寸。
type Shape struct {
	Location Location `json:"location"`
	Size     Size     `json:"size"`
}

// DefaultShape 是未声明形状时使用的 1x1 原点形状。
func DefaultShape() Shape {
	return Shape{Size: Size{Width: 1, Height: 1}}
}

// Shapes 按断点保存形状。
type Shapes map[Breakpoint]Shape

// ItemKind 区分应用与小组件。
type ItemKind string

const (
	KindApp    ItemKind = "app"
	KindWidget ItemKind = "widget"
)

// Item 是可放置成员（应用或小组件）。
type Item struct {
	ID    string            `json:"id"`
	Kind  ItemKind          `json:"kind"`
	Name  string            `json:"name,omitempty"`
	URL   string            `json:"url,omitempty"`
	Icon  string            `json:"icon,omitempty"`
	Type  string            `json:"type,omitempty"` // 小组件类型
	Props map[string]string `json:"props,omitempty"`
	Shape Shapes            `json:"shape"`

	NewTab      bool `json:"newTab,omitempty"`      // 在新标签页打开
	StatusCheck bool `json:"statusCheck,omitempty"` // 启用状态检查
}

// ShapeFor 返回断点对应的形状；缺失时依次回退到 lg/md/sm，最后是默认形状。
func (it Item) ShapeFor(bp Breakpoint) Shape {
	if s, ok := it.Shape[bp]; ok {
		return s
	}
	for _, b := range Breakpoints {
		if s, ok := it.Shape[b]; ok {
			return s
		}
	}
	return DefaultShape()
}

// Label 返回用于展示的名称。
func (it Item) Label() string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}

// Area 是一个声明式区域，保存其应用与小组件列表。
type Area struct {
	Ref      AreaRef `json:"ref"`
	Title    string  `json:"title,omitempty"`
	Position int     `json:"position"`
	Height   int     `json:"height,omitempty"` // sidebar 根节点高度提示（px）
	Apps     []Item  `json:"apps"`
	Widgets  []Item  `json:"widgets"`
}

// Items 依次返回应用与小组件。
func (a *Area) Items() []Item {
	out := make([]Item, 0, len(a.Apps)+len(a.Widgets))
	out = append(out, a.Apps...)
	return append(out, a.Widgets...)
}

// Settings 保存整块看板的配置。
type Settings struct {
	WrapperColumns int        `json:"wrapperColumns"`
	SidebarHeight  int        `json:"sidebarHeight,omitempty"` // 区域未声明 height 时使用（px）
	Breakpoint     Breakpoint `json:"breakpoint"`
}

// RootHeight 返回区域根节点的像素高度提示。
func (b *Board) RootHeight(a *Area) int {
	if a == nil {
		return 0
	}
	if a.Height > 0 {
		return a.Height
	}
	if a.Ref.Type == AreaSidebar {
		return b.Settings.SidebarHeight
	}
	return 0
}

// Board 是完整的声明式看板模型，由外部持有者负责持久化。
type Board struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Settings Settings `json:"settings"`
	Areas    []*Area  `json:"areas"`
}

// Area 查找区域。
func (b *Board) Area(ref AreaRef) (*Area, bool) {
	for _, a := range b.Areas {
		if a.Ref == ref {
			return a, true
		}
	}
	return nil, false
}

// Refs 返回全部区域标识，按 Position 排序（wrapper 在前，sidebar 在后）。
func (b *Board) Refs() []AreaRef {
	areas := make([]*Area, len(b.Areas))
	copy(areas, b.Areas)
	sort.SliceStable(areas, func(i, j int) bool {
		ri, rj := areaRank(areas[i].Ref.Type), areaRank(areas[j].Ref.Type)
		if ri != rj {
			return ri < rj
		}
		return areas[i].Position < areas[j].Position
	})
	refs := make([]AreaRef, 0, len(areas))
	for _, a := range areas {
		refs = append(refs, a.Ref)
	}
	return refs
}

func areaRank(t AreaType) int {
	switch t {
	case AreaWrapper:
		return 0
	case AreaCategory:
		return 1
	default:
		return 2
	}
}

// Items 返回看板中全部成员。
func (b *Board) Items() []Item {
	var out []Item
	for _, a := range b.Areas {
		out = append(out, a.Items()...)
	}
	return out
}

// Owner 返回成员当前所属区域。
func (b *Board) Owner(id string) (AreaRef, bool) {
	_, a, ok := b.find(id)
	if !ok {
		return AreaRef{}, false
	}
	return a.Ref, true
}

// Item 按 ID 查找成员。
func (b *Board) Item(id string) (Item, bool) {
	it, _, ok := b.find(id)
	if !ok {
		return Item{}, false
	}
	return *it, true
}

func (b *Board) find(id string) (*Item, *Area, bool) {
	for _, a := range b.Areas {
		for i := range a.Apps {
			if a.Apps[i].ID == id {
				return &a.Apps[i], a, true
			}
		}
		for i := range a.Widgets {
			if a.Widgets[i].ID == id {
				return &a.Widgets[i], a, true
			}
		}
	}
	return nil, nil, false
}

// SetShape 更新成员在某断点下的形状，返回值表示模型是否发生变化。
func (b *Board) SetShape(id string, bp Breakpoint, shape Shape) bool {
	it, _, ok := b.find(id)
	if !ok {
		return false
	}
	if cur, ok := it.Shape[bp]; ok && cur == shape {
		return false
	}
	if it.Shape == nil {
		it.Shape = Shapes{}
	}
	it.Shape[bp] = shape
	return true
}

// AddItem 将成员追加到区域对应的列表中。
func (b *Board) AddItem(ref AreaRef, item Item) error {
	a, ok := b.Area(ref)
	if !ok {
		return fmt.Errorf("区域 %s 不存在", ref)
	}
	if _, _, dup := b.find(item.ID); dup {
		return fmt.Errorf("成员 %s 已存在", item.ID)
	}
	switch item.Kind {
	case KindWidget:
		a.Widgets = append(a.Widgets, item)
	default:
		item.Kind = KindApp
		a.Apps = append(a.Apps, item)
	}
	return nil
}

// RemoveItem 从所属区域的列表中移除成员，返回原所属区域。
func (b *Board) RemoveItem(id string) (Item, AreaRef, bool) {
	for _, a := range b.Areas {
		for i := range a.Apps {
			if a.Apps[i].ID == id {
				it := a.Apps[i]
				a.Apps = append(a.Apps[:i:i], a.Apps[i+1:]...)
				return it, a.Ref, true
			}
		}
		for i := range a.Widgets {
			if a.Widgets[i].ID == id {
				it := a.Widgets[i]
				a.Widgets = append(a.Widgets[:i:i], a.Widgets[i+1:]...)
				return it, a.Ref, true
			}
		}
	}
	return Item{}, AreaRef{}, false
}

// MoveItem 将成员改挂到目标区域：从源列表移除并追加到目标列表（保持应用/小组件种类）。
func (b *Board) MoveItem(id string, to AreaRef) error {
	if _, ok := b.Area(to); !ok {
		return fmt.Errorf("目标区域 %s 不存在", to)
	}
	it, from, ok := b.RemoveItem(id)
	if !ok {
		return fmt.Errorf("成员 %s 不存在", id)
	}
	if err := b.AddItem(to, it); err != nil {
		// 回滚到源区域
		_ = b.AddItem(from, it)
		return err
	}
	return nil
}

// Placement 是原生节点在同步边界翻译后的领域放置结果。
// Revision 在每个网格表面上单调递增。
type Placement struct {
	ItemID     string     `json:"itemId"`
	Area       AreaRef    `json:"area"`
	Breakpoint Breakpoint `json:"breakpoint"`
	Shape      Shape      `json:"shape"`
	Revision   uint64     `json:"revision"`
}

// Snapshot 记录所有已挂载网格表面的成员与位置，供渲染与调试使用。
type Snapshot struct {
	Board      string         `json:"board"`
	Breakpoint Breakpoint     `json:"breakpoint"`
	EditMode   bool           `json:"editMode"`
	Areas      []AreaSnapshot `json:"areas"`
}

// AreaSnapshot 是单个网格表面的投影。
type AreaSnapshot struct {
	Ref     AreaRef  `json:"ref"`
	Title   string   `json:"title,omitempty"`
	Columns int      `json:"columns"`
	MinRow  int      `json:"minRow"`
	Rows    int      `json:"rows"`
	Static  bool     `json:"static"`
	Members []Member `json:"members"`
}

// Member 是网格表面中的一个已挂载成员。
type Member struct {
	ID    string   `json:"id"`
	Kind  ItemKind `json:"kind"`
	Label string   `json:"label"`
	Shape Shape    `json:"shape"`
}

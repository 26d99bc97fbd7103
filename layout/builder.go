package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ByLCY/gridboard/binding"
	"github.com/ByLCY/gridboard/dsl"
)

var (
	settingsKeys = []string{"columns", "breakpoint", "viewport", "sidebarHeight"}
	areaKeys     = []string{"title", "position", "height"}
	appKeys      = []string{"name", "url", "icon", "newTab", "statusCheck", "lg", "md", "sm"}
	widgetKeys   = []string{"type", "name", "icon", "props", "lg", "md", "sm"}
	shapeKeys    = []string{"x", "y", "w", "h", "width", "height"}
)

// Build 根据 DSL AST 生成声明式看板模型。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Board, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	log := opts.logger().With("board", doc.Name)

	settings, err := buildSettings(doc, opts)
	if err != nil {
		return nil, err
	}
	b := &Board{Name: doc.Name, Version: doc.Version, Settings: settings}

	ctx := &buildContext{data: data, strict: opts.Strict, seen: map[string]AreaRef{}}
	counts := map[AreaType]int{}
	for _, sec := range doc.Sections {
		if sec.Area == nil {
			continue
		}
		area, err := ctx.buildArea(sec.Area, counts[AreaType(sec.Area.Kind)])
		if err != nil {
			return nil, err
		}
		if _, dup := b.Area(area.Ref); dup {
			return nil, fmt.Errorf("区域 %s 重复声明 (%s)", area.Ref, sec.Area.Pos)
		}
		counts[area.Ref.Type]++
		b.Areas = append(b.Areas, area)
	}
	for _, path := range ctx.missing {
		log.Warn("placeholder unresolved", "path", path)
	}
	log.Debug("board built", "areas", len(b.Areas), "items", len(b.Items()), "columns", settings.WrapperColumns, "breakpoint", settings.Breakpoint)
	return b, nil
}

func buildSettings(doc *dsl.Document, opts BuildOptions) (Settings, error) {
	var s Settings
	for _, sec := range doc.Sections {
		if sec.Settings == nil || sec.Settings.Block == nil {
			continue
		}
		for _, st := range sec.Settings.Block.Statements {
			if st.Item != nil {
				return s, fmt.Errorf("settings 中不允许声明 %s %s", st.Item.Kind, st.Item.ID)
			}
			as := st.Assignment
			raw := as.Value.Raw()
			switch as.Key {
			case "columns":
				n, err := strconv.Atoi(raw)
				if err != nil || !ValidWrapperColumns(n) {
					return s, fmt.Errorf("settings.columns 只能是 3、6 或 12，实际 %q (%s)", raw, as.Pos)
				}
				s.WrapperColumns = n
			case "breakpoint":
				bp, err := parseBreakpoint(raw)
				if err != nil {
					return s, fmt.Errorf("settings.breakpoint: %w (%s)", err, as.Pos)
				}
				s.Breakpoint = bp
			case "viewport":
				px, ok := ParsePixels(raw)
				if !ok {
					return s, fmt.Errorf("settings.viewport 不是合法像素值: %q (%s)", raw, as.Pos)
				}
				if s.Breakpoint == "" {
					s.Breakpoint = BreakpointFor(px)
				}
			case "sidebarHeight":
				px, ok := ParsePixels(raw)
				if !ok {
					return s, fmt.Errorf("settings.sidebarHeight 不是合法像素值: %q (%s)", raw, as.Pos)
				}
				s.SidebarHeight = px
			default:
				return s, unknownKey("settings", as.Key, settingsKeys)
			}
		}
	}
	if opts.Breakpoint != "" {
		s.Breakpoint = opts.Breakpoint
	}
	if s.Breakpoint == "" {
		s.Breakpoint = BreakpointLG
	}
	if opts.WrapperColumns != 0 {
		if !ValidWrapperColumns(opts.WrapperColumns) {
			return s, fmt.Errorf("wrapper 列数只能是 3、6 或 12，实际 %d", opts.WrapperColumns)
		}
		s.WrapperColumns = opts.WrapperColumns
	}
	if s.WrapperColumns == 0 {
		s.WrapperColumns = WrapperColumnsFor(s.Breakpoint)
	}
	if s.SidebarHeight == 0 {
		s.SidebarHeight = opts.SidebarHeight
	}
	return s, nil
}

type buildContext struct {
	data    any
	strict  bool
	seen    map[string]AreaRef
	missing []string
}

func (c *buildContext) buildArea(sec *dsl.AreaSection, index int) (*Area, error) {
	ref := AreaRef{Type: AreaType(sec.Kind), ID: string(sec.ID)}
	if !ref.Type.Valid() {
		return nil, fmt.Errorf("未知区域类型 %q", sec.Kind)
	}
	area := &Area{Ref: ref, Position: index, Apps: []Item{}, Widgets: []Item{}}
	if sec.Block == nil {
		return area, nil
	}
	for _, st := range sec.Block.Statements {
		if st.Item != nil {
			item, err := c.buildItem(st.Item, ref)
			if err != nil {
				return nil, err
			}
			if prev, dup := c.seen[item.ID]; dup {
				return nil, fmt.Errorf("成员 %s 重复声明（已在 %s 中） (%s)", item.ID, prev, st.Item.Pos)
			}
			c.seen[item.ID] = ref
			if item.Kind == KindWidget {
				area.Widgets = append(area.Widgets, item)
			} else {
				area.Apps = append(area.Apps, item)
			}
			continue
		}
		as := st.Assignment
		raw := as.Value.Raw()
		switch as.Key {
		case "title":
			title, err := c.interpolate(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.title: %w", ref, err)
			}
			area.Title = title
		case "position":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.position 必须是整数，实际 %q (%s)", ref, raw, as.Pos)
			}
			area.Position = n
		case "height":
			px, ok := ParsePixels(raw)
			if !ok {
				return nil, fmt.Errorf("%s.height 不是合法像素值: %q (%s)", ref, raw, as.Pos)
			}
			area.Height = px
		default:
			return nil, unknownKey(ref.String(), as.Key, areaKeys)
		}
	}
	return area, nil
}

func (c *buildContext) buildItem(decl *dsl.ItemDecl, ref AreaRef) (Item, error) {
	item := Item{ID: string(decl.ID), Kind: ItemKind(decl.Kind), Shape: Shapes{}}
	if item.ID == "" {
		return item, fmt.Errorf("%s 中的 %s 缺少 ID (%s)", ref, decl.Kind, decl.Pos)
	}
	allowed := appKeys
	if item.Kind == KindWidget {
		allowed = widgetKeys
	}
	where := fmt.Sprintf("%s %s", decl.Kind, item.ID)
	if decl.Block == nil {
		item.Shape = nil
		return item, nil
	}
	for _, st := range decl.Block.Statements {
		if st.Item != nil {
			return item, fmt.Errorf("%s 中不允许嵌套 %s %s", where, st.Item.Kind, st.Item.ID)
		}
		as := st.Assignment
		if !contains(allowed, as.Key) {
			return item, unknownKey(where, as.Key, allowed)
		}
		var err error
		switch as.Key {
		case "name":
			item.Name, err = c.interpolate(as.Value.Raw())
		case "url":
			item.URL, err = c.interpolate(as.Value.Raw())
		case "icon":
			item.Icon = as.Value.Raw()
		case "type":
			item.Type = as.Value.Raw()
		case "newTab":
			item.NewTab, err = strconv.ParseBool(as.Value.Raw())
		case "statusCheck":
			item.StatusCheck, err = strconv.ParseBool(as.Value.Raw())
		case "props":
			item.Props, err = c.buildProps(as.Value)
		default:
			bp := Breakpoint(as.Key)
			var shape Shape
			shape, err = parseShape(as.Value, ColumnCount(ref.Type, WrapperColumnsFor(bp)))
			if err == nil {
				item.Shape[bp] = shape
			}
		}
		if err != nil {
			return item, fmt.Errorf("%s.%s: %w (%s)", where, as.Key, err, as.Pos)
		}
	}
	if item.Kind == KindWidget && item.Type == "" {
		return item, fmt.Errorf("%s 缺少 type (%s)", where, decl.Pos)
	}
	if len(item.Shape) == 0 {
		item.Shape = nil
	}
	return item, nil
}

func (c *buildContext) buildProps(v *dsl.Value) (map[string]string, error) {
	if v == nil || v.Object == nil {
		return nil, fmt.Errorf("props 必须是 { key: value } 形式")
	}
	props := make(map[string]string, len(v.Object.Entries))
	for _, e := range v.Object.Entries {
		if e.Value.Array != nil || e.Value.Object != nil {
			return nil, fmt.Errorf("props.%s 只能是标量", e.Key)
		}
		val, err := c.interpolate(e.Value.Raw())
		if err != nil {
			return nil, err
		}
		props[e.Key] = val
	}
	return props, nil
}

func (c *buildContext) interpolate(text string) (string, error) {
	out, missing := binding.Expand(text, c.data)
	if len(missing) > 0 {
		if c.strict {
			return "", fmt.Errorf("无法解析占位符 %s", strings.Join(missing, ", "))
		}
		c.missing = append(c.missing, missing...)
	}
	return out, nil
}

// parseShape 接受 [x, y, w, h] 或 { x y w h } 两种写法。
func parseShape(v *dsl.Value, columns int) (Shape, error) {
	var x, y, w, h int
	switch {
	case v == nil:
		return Shape{}, fmt.Errorf("缺少形状")
	case v.Array != nil:
		if len(v.Array.Values) != 4 {
			return Shape{}, fmt.Errorf("形状数组需要 4 个元素 [x, y, w, h]，实际 %d", len(v.Array.Values))
		}
		nums := make([]int, 4)
		for i, el := range v.Array.Values {
			n, err := strconv.Atoi(el.Raw())
			if err != nil {
				return Shape{}, fmt.Errorf("形状第 %d 个元素不是整数: %q", i+1, el.Raw())
			}
			nums[i] = n
		}
		x, y, w, h = nums[0], nums[1], nums[2], nums[3]
	case v.Object != nil:
		w, h = 1, 1
		for _, e := range v.Object.Entries {
			n, err := strconv.Atoi(e.Value.Raw())
			if err != nil {
				return Shape{}, fmt.Errorf("形状字段 %s 不是整数: %q", e.Key, e.Value.Raw())
			}
			switch e.Key {
			case "x":
				x = n
			case "y":
				y = n
			case "w", "width":
				w = n
			case "h", "height":
				h = n
			default:
				return Shape{}, unknownKey("shape", e.Key, shapeKeys)
			}
		}
	default:
		return Shape{}, fmt.Errorf("形状必须是数组或对象，实际 %q", v.Raw())
	}
	if w < 1 || h < 1 {
		return Shape{}, fmt.Errorf("宽高必须至少为 1，实际 %dx%d", w, h)
	}
	if x < 0 || y < 0 {
		return Shape{}, fmt.Errorf("坐标不能为负，实际 (%d, %d)", x, y)
	}
	if x+w > columns {
		return Shape{}, fmt.Errorf("x+w=%d 超出 %d 列", x+w, columns)
	}
	return Shape{Location: Location{X: x, Y: y}, Size: Size{Width: w, Height: h}}, nil
}

func parseBreakpoint(raw string) (Breakpoint, error) {
	for _, bp := range Breakpoints {
		if string(bp) == raw {
			return bp, nil
		}
	}
	names := make([]string, len(Breakpoints))
	for i, bp := range Breakpoints {
		names[i] = string(bp)
	}
	return "", unknownKey("breakpoint", raw, names)
}

// unknownKey 生成带“是否想输入”提示的错误。
func unknownKey(where, key string, candidates []string) error {
	if s := suggest(key, candidates); s != "" {
		return fmt.Errorf("%s: 未知属性 %q，是否想输入 %q？", where, key, s)
	}
	return fmt.Errorf("%s: 未知属性 %q（可用: %s）", where, key, strings.Join(candidates, ", "))
}

func suggest(key string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(strings.ToLower(key), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

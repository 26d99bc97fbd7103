package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/gridboard/fonts"
	"github.com/ByLCY/gridboard/layout"
	"github.com/ByLCY/gridboard/renderer"
)

// Format 是输出格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// ParseFormat 根据名称或文件扩展名选择输出格式。
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	switch Format(s) {
	case FormatPDF, "":
		return FormatPDF, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("不支持的输出格式 %q", s)
}

// 页面几何（像素），最终按 96dpi 换算为毫米。
const (
	pagePadding     = 24
	titleBand       = 32
	areaGap         = 24
	defaultPageW    = 1920
	defaultSidebarW = 480

	borderWidth = 0.3 // mm
	titleSizePt = 14
	labelSizePt = 10
)

// Options configures the canvas renderer.
type Options struct {
	Format Format
	// PageWidthPx 是 wrapper/category 区域的内容宽度，0 表示 1920。
	PageWidthPx int
	// SidebarWidthPx 是 sidebar 区域的内容宽度，0 表示 480。
	SidebarWidthPx int
	// Fonts 覆盖内置字体，键为 "title" 或 "label"。
	Fonts map[string]Resource
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Renderer draws board snapshots via github.com/tdewolff/canvas.
type Renderer struct {
	opts      Options
	fontBlobs map[string][]byte

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a PDF renderer with default geometry.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected fonts and geometry.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.PageWidthPx <= 0 {
		opts.PageWidthPx = defaultPageW
	}
	if opts.SidebarWidthPx <= 0 {
		opts.SidebarWidthPx = defaultSidebarW
	}
	r := &Renderer{
		opts:      opts,
		fontBlobs: map[string][]byte{},
		families:  map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时回退到内置字体
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// box 是以像素为单位的矩形及其标签。
type box struct {
	X, Y, W, H float64
	Label      string
	Kind       layout.ItemKind
}

type areaFrame struct {
	Title   string
	Frame   box // 整个区域（含标题栏）
	Grid    box // 网格内容区
	Static  bool
	Members []box
}

type pagePlan struct {
	Width, Height float64 // 像素
	Areas         []areaFrame
}

// plan 把快照中的区域自上而下排列，成员位置按网格单元换算为像素。
func (r *Renderer) plan(snap *layout.Snapshot) pagePlan {
	p := pagePlan{Width: float64(r.opts.PageWidthPx + 2*pagePadding)}
	cursor := float64(pagePadding)
	for _, a := range snap.Areas {
		width := float64(r.opts.PageWidthPx)
		if a.Ref.Type == layout.AreaSidebar {
			width = float64(r.opts.SidebarWidthPx)
		}
		rows := max(a.Rows, a.MinRow, 1)
		gridH := float64(rows * layout.CellHeight)

		title := a.Title
		if title == "" {
			title = a.Ref.String()
		}
		f := areaFrame{
			Title:  title,
			Static: a.Static,
			Frame:  box{X: pagePadding, Y: cursor, W: width, H: titleBand + gridH},
			Grid:   box{X: pagePadding, Y: cursor + titleBand, W: width, H: gridH},
		}
		cols := max(a.Columns, 1)
		cw := width / float64(cols)
		half := float64(layout.CellMargin) / 2
		for _, m := range a.Members {
			s := m.Shape
			f.Members = append(f.Members, box{
				X:     f.Grid.X + float64(s.Location.X)*cw + half,
				Y:     f.Grid.Y + float64(s.Location.Y*layout.CellHeight) + half,
				W:     float64(s.Size.Width)*cw - 2*half,
				H:     float64(s.Size.Height*layout.CellHeight) - 2*half,
				Label: m.Label,
				Kind:  m.Kind,
			})
		}
		p.Areas = append(p.Areas, f)
		cursor += f.Frame.H + areaGap
	}
	p.Height = cursor - areaGap + pagePadding
	return p
}

// Render renders the snapshot into a PDF or SVG byte slice.
func (r *Renderer) Render(snap *layout.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("看板快照为空")
	}
	if len(snap.Areas) == 0 {
		return nil, fmt.Errorf("缺少可渲染的区域")
	}
	p := r.plan(snap)
	w, h := mm(p.Width), mm(p.Height)

	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与网格保持左上角为原点
	if err := r.drawPage(ctx, p); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.opts.Format {
	case FormatSVG:
		writer := svg.New(&buf, w, h, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	default:
		writer := pdf.New(&buf, w, h, nil)
		writer.SetInfo(snap.Board, "gridboard", string(snap.Breakpoint), "", "gridboard")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, p pagePlan) error {
	titleFace, err := r.face("title", fonts.Bold, titleSizePt, canvas.Hex("#1f2937"))
	if err != nil {
		return err
	}
	labelFace, err := r.face("label", fonts.Regular, labelSizePt, canvas.Hex("#111827"))
	if err != nil {
		return err
	}
	for _, a := range p.Areas {
		// 区域边框：只读区域用实线灰色，可编辑区域用蓝色。
		stroke := canvas.Hex("#9ca3af")
		if !a.Static {
			stroke = canvas.Hex("#2563eb")
		}
		drawRect(ctx, a.Frame, canvas.Hex("#f9fafb"), stroke)
		drawRect(ctx, a.Grid, color.RGBA{0, 0, 0, 0}, canvas.Hex("#e5e7eb"))
		drawLabel(ctx, titleFace, a.Title, mm(a.Frame.X+8), mm(a.Frame.Y+6), mm(a.Frame.W-16))

		for _, m := range a.Members {
			fill := canvas.Hex("#dbeafe")
			if m.Kind == layout.KindWidget {
				fill = canvas.Hex("#dcfce7")
			}
			drawRect(ctx, m, fill, canvas.Hex("#374151"))
			drawLabel(ctx, labelFace, m.Label, mm(m.X+6), mm(m.Y+6), mm(m.W-12))
		}
	}
	return nil
}

func drawRect(ctx *canvas.Context, b box, fill, stroke color.Color) {
	if b.W <= 0 || b.H <= 0 {
		return
	}
	ctx.SetFillColor(fill)
	ctx.SetStrokeColor(stroke)
	ctx.SetStrokeWidth(borderWidth)
	ctx.DrawPath(mm(b.X), mm(b.Y), canvas.Rectangle(mm(b.W), mm(b.H)))
}

// drawLabel 在 (x, top) 处绘制单行文本，超宽时截断并加省略号。
func drawLabel(ctx *canvas.Context, face *canvas.FontFace, text string, x, top, width float64) {
	text = fitLabel(text, width, face.TextWidth)
	if text == "" {
		return
	}
	line := canvas.NewTextLine(face, text, canvas.Left)
	// 基线位置：行顶部加上字体上升部
	ctx.DrawText(x, top+face.Metrics().Ascent, line)
}

// fitLabel 截断 text 使其宽度不超过 limit（mm）。
func fitLabel(text string, limit float64, width func(string) float64) string {
	if limit <= 0 {
		return ""
	}
	if width(text) <= limit {
		return text
	}
	const ellipsis = "…"
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		s := string(runes[:n]) + ellipsis
		if width(s) <= limit {
			return s
		}
	}
	return ""
}

func (r *Renderer) face(role, builtin string, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	family, err := r.family(role, builtin)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, col, canvas.FontRegular, canvas.FontNormal), nil
}

// family 优先使用注入的字体，加载失败时回退到内置字体。
func (r *Renderer) family(role, builtin string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.families[role]; ok {
		return f, nil
	}
	if blob, ok := r.fontBlobs[role]; ok {
		f := canvas.NewFontFamily(role)
		if err := f.LoadFont(blob, 0, canvas.FontRegular); err == nil {
			r.families[role] = f
			return f, nil
		}
	}
	data, err := fonts.Load(builtin)
	if err != nil {
		return nil, err
	}
	f := canvas.NewFontFamily("gridboard-" + role)
	if err := f.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", builtin, err)
	}
	r.families[role] = f
	return f, nil
}

// mm 将像素换算为毫米。
func mm(px float64) float64 { return px * layout.PxToMm }

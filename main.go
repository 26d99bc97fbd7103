package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/gridboard/board"
	"github.com/ByLCY/gridboard/config"
	"github.com/ByLCY/gridboard/docker"
	"github.com/ByLCY/gridboard/dsl"
	"github.com/ByLCY/gridboard/grid"
	"github.com/ByLCY/gridboard/internal/ctxlog"
	"github.com/ByLCY/gridboard/layout"
	"github.com/ByLCY/gridboard/renderer"
	canvasrenderer "github.com/ByLCY/gridboard/renderer/canvas"
	"github.com/ByLCY/gridboard/tui"
)

// options 是命令行与配置文件合并后的运行参数。
type options struct {
	input      string
	output     string
	debug      string
	boardOut   string
	data       any
	columns    int
	breakpoint layout.Breakpoint
	edit       bool
	viewport   int
	sidebarH   int
	strict     bool
	interact   bool

	containers   string
	selectIDs    string
	action       string
	addContainer bool
	docker       config.DockerConfig
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}

	input := flag.String("in", "examples/home.board", "看板 DSL 文件路径")
	output := flag.String("out", cfg.Render.Out, "输出路径（.pdf 或 .svg）")
	debug := flag.String("debug", cfg.Render.Debug, "看板快照调试 JSON 输出路径")
	boardOut := flag.String("board-out", "", "声明式模型 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	columns := flag.Int("columns", cfg.Board.Columns, "wrapper 列数（3/6/12），0 表示沿用文档")
	bp := flag.String("breakpoint", "", "覆盖断点（lg/md/sm）")
	edit := flag.Bool("edit", cfg.Board.Edit, "以编辑模式挂载")
	viewport := flag.Int("viewport", cfg.Board.ViewportWidth, "视口宽度（px）")
	sidebarH := flag.Int("sidebar-height", cfg.Board.SidebarHeight, "sidebar 根节点默认高度（px）")
	strict := flag.Bool("strict", false, "无法解析的 ${path} 占位符视为错误")
	interact := flag.Bool("tui", false, "打开终端编辑界面")
	containers := flag.String("containers", "", "容器列表 JSON 文件")
	selectIDs := flag.String("select", "", "选中的容器 ID，逗号分隔，默认全部")
	action := flag.String("docker-action", "", "对选中容器执行的操作（restart/stop/start/remove）")
	addContainer := flag.Bool("add-container", false, "把唯一选中的容器加入看板")
	level := flag.String("log-level", cfg.Log.Level, "日志级别（debug/info/warn/error）")
	flag.Parse()

	logger := newLogger(*level)
	slog.SetDefault(logger)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	opts := options{
		input:        *input,
		output:       *output,
		debug:        *debug,
		boardOut:     *boardOut,
		columns:      *columns,
		breakpoint:   layout.Breakpoint(*bp),
		edit:         *edit,
		viewport:     *viewport,
		sidebarH:     *sidebarH,
		strict:       *strict,
		interact:     *interact,
		containers:   *containers,
		selectIDs:    *selectIDs,
		action:       *action,
		addContainer: *addContainer,
		docker:       cfg.Docker,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(ctx, opts); err != nil {
		log.Fatalf("生成看板失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", opts.output)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// run 串联解析、构建、挂载与渲染。
func run(ctx context.Context, opts options) error {
	logger := ctxlog.FromContext(ctx)

	file, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", opts.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	b, err := layout.Build(doc, opts.data, layout.BuildOptions{
		WrapperColumns: opts.columns,
		Breakpoint:     opts.breakpoint,
		SidebarHeight:  opts.sidebarH,
		Strict:         opts.strict,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("构建看板失败: %w", err)
	}

	dash := board.New(b, board.Config{
		WrapperColumns: b.Settings.WrapperColumns,
		EditMode:       opts.edit,
		Breakpoint:     b.Settings.Breakpoint,
		Logger:         logger,
	})
	for _, ref := range b.Refs() {
		area, _ := b.Area(ref)
		root := grid.NewRoot(ref.Selector(), opts.viewport, b.RootHeight(area))
		if !dash.Mount(ref, root) {
			logger.Warn("area not mounted", "area", ref.String())
		}
	}

	if opts.containers != "" {
		if err := runContainers(ctx, opts, dash); err != nil {
			return err
		}
	}

	format, err := canvasrenderer.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Format:      format,
		PageWidthPx: opts.viewport,
	})
	export := func(snap *layout.Snapshot) (string, error) {
		return opts.output, writeOutput(r, snap, opts.output)
	}

	if opts.interact {
		if _, err := tea.NewProgram(tui.New(dash, export), tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("终端界面异常退出: %w", err)
		}
	}

	snap := dash.Snapshot()
	if opts.debug != "" {
		if err := writeJSON(opts.debug, func(path string) error { return layout.WriteDebugJSON(snap, path) }); err != nil {
			return err
		}
	}
	if opts.boardOut != "" {
		if err := writeJSON(opts.boardOut, func(path string) error { return layout.WriteBoardJSON(b, path) }); err != nil {
			return err
		}
	}
	_, err = export(snap)
	return err
}

// runContainers 读取容器列表，按需执行批量操作或把容器加入看板。
func runContainers(ctx context.Context, opts options, dash *board.Dashboard) error {
	logger := ctxlog.FromContext(ctx)
	all, err := loadContainers(opts.containers)
	if err != nil {
		return err
	}
	selected := selectContainers(all, opts.selectIDs)

	bar := &docker.ActionBar{
		Client:   docker.NewClient(opts.docker.BaseURL, opts.docker.Timeout),
		Notifier: docker.LogNotifier{Logger: logger},
		Reload: func(context.Context) error {
			list, err := loadContainers(opts.containers)
			if err != nil {
				return err
			}
			logger.Debug("containers reloaded", "count", len(list))
			return nil
		},
	}

	if opts.action != "" {
		action, err := docker.ParseAction(opts.action)
		if err != nil {
			return err
		}
		if !bar.Enabled(selected) {
			return fmt.Errorf("没有选中任何容器")
		}
		if err := bar.Run(ctx, action, selected); err != nil {
			logger.Warn("container action failed", "action", string(action), "err", err)
		}
	}

	if opts.addContainer {
		item, ref, err := bar.AddToDashboard(selected)
		if err != nil {
			return err
		}
		if err := dash.AddItem(ref, item); err != nil {
			return fmt.Errorf("加入看板失败: %w", err)
		}
		dash.Render()
		logger.Info("container added to dashboard", "item", item.ID, "area", ref.String())
	}
	return nil
}

func loadContainers(path string) ([]docker.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取容器列表失败: %w", err)
	}
	var list []docker.Container
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("解析容器列表失败: %w", err)
	}
	return list, nil
}

func selectContainers(all []docker.Container, ids string) []docker.Container {
	if strings.TrimSpace(ids) == "" {
		return all
	}
	want := map[string]bool{}
	for _, id := range strings.Split(ids, ",") {
		want[strings.TrimSpace(id)] = true
	}
	var out []docker.Container
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func writeOutput(r renderer.Renderer, snap *layout.Snapshot, path string) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	data, err := r.Render(snap)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeJSON(path string, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := write(path); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}

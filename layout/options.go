package layout

import "log/slog"

// BuildOptions 配置构建阶段的覆盖项与日志。
type BuildOptions struct {
	// WrapperColumns 覆盖 settings 中的 columns，0 表示沿用文档或断点默认值。
	WrapperColumns int
	// Breakpoint 覆盖 settings 中的 breakpoint。
	Breakpoint Breakpoint
	// SidebarHeight 是 sidebar 未声明 height 时的根节点高度（px）。
	SidebarHeight int
	// Strict 为 true 时，无法解析的 ${path} 占位符视为错误。
	Strict bool
	Logger *slog.Logger
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

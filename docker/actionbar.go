package docker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/gridboard/internal/ctxlog"
	"github.com/ByLCY/gridboard/layout"
)

const (
	notifyAutoClose = 2 * time.Second
	refreshDelay    = 750 * time.Millisecond
	defaultAppIcon  = "/imgs/logo/logo.png"
)

// ActionBar 对选中的容器批量执行操作。每个容器的结果都会更新对应的通知，
// 无论成功与否随后都会调用 Reload。
type ActionBar struct {
	Client    Doer
	Notifier  Notifier
	Translate Translator
	// Reload 重新拉取容器列表；并发调用会被串行化。
	Reload func(ctx context.Context) error
	Logger *slog.Logger
	// RefreshDelay 覆盖刷新前的等待时间，0 表示默认 750ms。
	RefreshDelay time.Duration

	reloadMu sync.Mutex
}

// log 优先使用 Logger，否则取 ctx 中携带的 logger。
func (b *ActionBar) log(ctx context.Context) *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return ctxlog.FromContext(ctx)
}

func (b *ActionBar) t(key string) string {
	if b.Translate != nil {
		return b.Translate(key)
	}
	return DefaultTranslator(key)
}

// Enabled 报告生命周期操作按钮是否可用：至少选中一个容器。
func (b *ActionBar) Enabled(selected []Container) bool { return len(selected) > 0 }

// CanAddToDashboard 报告“添加到看板”是否可用：恰好选中一个容器。
func (b *ActionBar) CanAddToDashboard(selected []Container) bool { return len(selected) == 1 }

// Run 并发地对所有选中容器执行 action，返回所有失败合并后的错误。
// errgroup 只用于扇出：不派生可取消的 ctx，单个失败不会中断其他容器的请求。
func (b *ActionBar) Run(ctx context.Context, action Action, selected []Container) error {
	if !b.Enabled(selected) {
		return nil
	}
	if b.Client == nil {
		return fmt.Errorf("docker: 未配置客户端")
	}
	errs := make([]error, len(selected))
	var g errgroup.Group
	for i, c := range selected {
		g.Go(func() error {
			if err := b.send(ctx, action, c); err != nil {
				errs[i] = fmt.Errorf("%s %s: %w", action, c.DisplayName(), err)
			}
			return errs[i]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func (b *ActionBar) send(ctx context.Context, action Action, c Container) error {
	name := c.DisplayName()
	b.notify(true, Notification{
		ID:    c.ID,
		Level: LevelLoading,
		Title: fmt.Sprintf("%s %s", b.t(actionKey(action, "start")), name),
	})

	err := b.Client.Do(ctx, c.ID, action)
	b.log(ctx).Debug("container action", "id", c.ID, "action", string(action), "err", err)
	if err != nil {
		reason := err.Error()
		var ae *ActionError
		if errors.As(err, &ae) {
			reason = ae.Reason
		}
		b.notify(false, Notification{
			ID:        c.ID,
			Level:     LevelError,
			Title:     b.t("errors.unknownError.title"),
			Message:   reason,
			AutoClose: notifyAutoClose,
			Closable:  true,
		})
	} else {
		b.notify(false, Notification{
			ID:        c.ID,
			Level:     LevelSuccess,
			Title:     name,
			Message:   fmt.Sprintf("%s %s", b.t(actionKey(action, "end")), name),
			AutoClose: notifyAutoClose,
			Closable:  true,
		})
	}
	b.reload(ctx)
	return err
}

func (b *ActionBar) notify(show bool, n Notification) {
	if b.Notifier == nil {
		return
	}
	if show {
		b.Notifier.Show(n)
		return
	}
	b.Notifier.Update(n)
}

func (b *ActionBar) reload(ctx context.Context) {
	if b.Reload == nil {
		return
	}
	b.reloadMu.Lock()
	defer b.reloadMu.Unlock()
	if err := b.Reload(ctx); err != nil {
		b.log(ctx).Warn("reload failed", "err", err)
	}
}

// Refresh 等待片刻后重新拉取容器列表；ctx 取消时提前返回。
func (b *ActionBar) Refresh(ctx context.Context) error {
	delay := b.RefreshDelay
	if delay <= 0 {
		delay = refreshDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	if b.Reload == nil {
		return nil
	}
	b.reloadMu.Lock()
	defer b.reloadMu.Unlock()
	return b.Reload(ctx)
}

// NewApp 为单个容器生成看板应用：放在右侧 sidebar，所有断点都是原点处的 1x1。
func NewApp(c Container) (layout.Item, layout.AreaRef, error) {
	if len(c.Names) == 0 {
		return layout.Item{}, layout.AreaRef{}, fmt.Errorf("容器 %s 没有名称", c.ID)
	}
	if len(c.Ports) == 0 {
		return layout.Item{}, layout.AreaRef{}, fmt.Errorf("容器 %s 没有端口映射", c.DisplayName())
	}
	shape := layout.Shape{Size: layout.Size{Width: 1, Height: 1}}
	item := layout.Item{
		ID:          uuid.NewString(),
		Kind:        layout.KindApp,
		Name:        c.Names[0],
		URL:         fmt.Sprintf("http://localhost:%d", c.Ports[0].PublicPort),
		Icon:        defaultAppIcon,
		NewTab:      true,
		StatusCheck: false,
		Shape: layout.Shapes{
			layout.BreakpointLG: shape,
			layout.BreakpointMD: shape,
			layout.BreakpointSM: shape,
		},
	}
	return item, layout.AreaRef{Type: layout.AreaSidebar, ID: "right"}, nil
}

// AddToDashboard 在恰好选中一个容器时生成应用。
func (b *ActionBar) AddToDashboard(selected []Container) (layout.Item, layout.AreaRef, error) {
	if !b.CanAddToDashboard(selected) {
		return layout.Item{}, layout.AreaRef{}, fmt.Errorf("需要恰好选中一个容器，当前 %d 个", len(selected))
	}
	return NewApp(selected[0])
}

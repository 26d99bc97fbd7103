package docker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Level 是通知的状态。
type Level string

const (
	LevelLoading Level = "loading"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification 是一条可更新的通知；ID 相同的通知会被原地更新。
type Notification struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	AutoClose time.Duration // 0 表示不自动关闭
	Closable  bool
}

// Notifier 是外部的通知系统。
type Notifier interface {
	Show(n Notification)
	Update(n Notification)
}

// LogNotifier 把通知写成结构化日志。
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l LogNotifier) Show(n Notification)   { l.write("show", n) }
func (l LogNotifier) Update(n Notification) { l.write("update", n) }

func (l LogNotifier) write(op string, n Notification) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelError
	}
	l.logger().Log(context.Background(), level, n.Title, "op", op, "id", n.ID, "state", string(n.Level), "message", n.Message)
}

// Translator 返回界面文案；未知键原样返回。
type Translator func(key string) string

var defaultMessages = map[string]string{
	"actions.restart.start": "Restarting",
	"actions.restart.end":   "Restarted",
	"actions.stop.start":    "Stopping",
	"actions.stop.end":      "Stopped",
	"actions.start.start":   "Starting",
	"actions.start.end":     "Started",
	"actions.remove.start":  "Removing",
	"actions.remove.end":    "Removed",

	"errors.unknownError.title": "Unknown error",
}

// DefaultTranslator 使用内置英文文案。
func DefaultTranslator(key string) string {
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}

func actionKey(a Action, phase string) string {
	return fmt.Sprintf("actions.%s.%s", a, phase)
}

// Package docker 是容器操作栏：通过 HTTP 对选中的容器执行生命周期操作，
// 并把结果以通知的形式报告出去。
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Action 是容器生命周期操作。
type Action string

const (
	ActionRestart Action = "restart"
	ActionStop    Action = "stop"
	ActionStart   Action = "start"
	ActionRemove  Action = "remove"
)

// Actions 按操作栏中的顺序列出全部操作。
var Actions = []Action{ActionRestart, ActionStop, ActionStart, ActionRemove}

// ParseAction 解析操作名。
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("未知容器操作 %q", s)
}

// Port 是容器端口映射。
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort int    `json:"PrivatePort"`
	PublicPort  int    `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// Container 是容器列表中的一项，字段名与 Docker API 保持一致。
type Container struct {
	ID    string   `json:"Id"`
	Names []string `json:"Names"`
	Image string   `json:"Image"`
	State string   `json:"State"`
	Ports []Port   `json:"Ports"`
}

// DisplayName 返回去掉前导 '/' 的第一个名称。
func (c Container) DisplayName() string {
	if len(c.Names) == 0 {
		return c.ID
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// ActionError 携带服务端返回的失败原因。
type ActionError struct {
	Status int
	Reason string
}

func (e *ActionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("docker: 请求失败 (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("docker: %s (HTTP %d)", e.Reason, e.Status)
}

// Doer 执行单个容器操作。
type Doer interface {
	Do(ctx context.Context, id string, action Action) error
}

// Client 调用 GET {base}/api/docker/container/{id}?action={action}。
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient 创建客户端；timeout 为 0 时不设置超时。
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Do 执行操作。非 2xx 响应返回 *ActionError，Reason 取自响应体的 reason 字段。
func (c *Client) Do(ctx context.Context, id string, action Action) error {
	endpoint := fmt.Sprintf("%s/api/docker/container/%s?action=%s", c.BaseURL, url.PathEscape(id), url.QueryEscape(string(action)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Reason == "" {
		payload.Reason = strings.TrimSpace(string(body))
	}
	return &ActionError{Status: resp.StatusCode, Reason: payload.Reason}
}

package docker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/gridboard/layout"
)

type recordingNotifier struct {
	mu    sync.Mutex
	shown []Notification
	upd   []Notification
}

func (r *recordingNotifier) Show(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
}

func (r *recordingNotifier) Update(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upd = append(r.upd, n)
}

// newServer 模拟容器操作接口：id 为 bad 时返回 500 和 reason。
func newServer(t *testing.T, calls *[]string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/docker/container/")
		mu.Lock()
		*calls = append(*calls, r.Method+" "+id+" "+r.URL.Query().Get("action"))
		mu.Unlock()
		if id == "bad" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"reason":"container is not running"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDo(t *testing.T) {
	var calls []string
	srv := newServer(t, &calls)
	c := NewClient(srv.URL+"/", time.Second)

	require.NoError(t, c.Do(context.Background(), "abc", ActionRestart))
	err := c.Do(context.Background(), "bad", ActionStop)
	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Equal(t, "container is not running", ae.Reason)
	assert.Equal(t, []string{"GET abc restart", "GET bad stop"}, calls)
}

func TestClientPlainTextReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	err := NewClient(srv.URL, 0).Do(context.Background(), "x", ActionStart)
	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "boom", ae.Reason)
	assert.Contains(t, ae.Error(), "HTTP 502")
}

func TestActionBarRun(t *testing.T) {
	var calls []string
	srv := newServer(t, &calls)
	notes := &recordingNotifier{}
	var reloads atomic.Int32
	bar := &ActionBar{
		Client:   NewClient(srv.URL, time.Second),
		Notifier: notes,
		Reload: func(context.Context) error {
			reloads.Add(1)
			return nil
		},
	}
	selected := []Container{
		{ID: "good", Names: []string{"/sonarr"}},
		{ID: "bad", Names: []string{"/radarr"}},
	}

	err := bar.Run(context.Background(), ActionRestart, selected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radarr")
	assert.NotContains(t, err.Error(), "sonarr")
	assert.Equal(t, int32(2), reloads.Load(), "reload runs after every action")
	assert.Len(t, calls, 2)

	require.Len(t, notes.shown, 2)
	for _, n := range notes.shown {
		assert.Equal(t, LevelLoading, n.Level)
		assert.Zero(t, n.AutoClose)
		assert.True(t, strings.HasPrefix(n.Title, "Restarting "))
	}
	require.Len(t, notes.upd, 2)
	byID := map[string]Notification{}
	for _, n := range notes.upd {
		byID[n.ID] = n
	}
	assert.Equal(t, LevelSuccess, byID["good"].Level)
	assert.Equal(t, "Restarted sonarr", byID["good"].Message)
	assert.Equal(t, LevelError, byID["bad"].Level)
	assert.Equal(t, "Unknown error", byID["bad"].Title)
	assert.Equal(t, "container is not running", byID["bad"].Message)
	assert.Equal(t, 2*time.Second, byID["bad"].AutoClose)
}

func TestActionBarDisabledWithoutSelection(t *testing.T) {
	bar := &ActionBar{}
	assert.False(t, bar.Enabled(nil))
	assert.NoError(t, bar.Run(context.Background(), ActionStop, nil))
	assert.False(t, bar.CanAddToDashboard(nil))
	assert.False(t, bar.CanAddToDashboard(make([]Container, 2)))
}

type failingDoer struct{}

func (failingDoer) Do(context.Context, string, Action) error { return errors.New("dial refused") }

func TestActionBarTransportError(t *testing.T) {
	notes := &recordingNotifier{}
	bar := &ActionBar{Client: failingDoer{}, Notifier: notes, Translate: func(k string) string { return k }}
	err := bar.Run(context.Background(), ActionRemove, []Container{{ID: "x", Names: []string{"/x"}}})
	require.Error(t, err)
	require.Len(t, notes.upd, 1)
	assert.Equal(t, "dial refused", notes.upd[0].Message)
	assert.Equal(t, "actions.remove.start x", notes.shown[0].Title)
}

// slowDoer 让 "slow" 在其他容器失败之后才完成，并记录它看到的 ctx 状态。
type slowDoer struct {
	slowErr atomic.Value
}

func (d *slowDoer) Do(ctx context.Context, id string, _ Action) error {
	if id != "slow" {
		return errors.New(id + " refused")
	}
	time.Sleep(20 * time.Millisecond)
	d.slowErr.Store(fmt.Sprint(ctx.Err()))
	return nil
}

func TestActionBarReportsEveryFailure(t *testing.T) {
	doer := &slowDoer{}
	notes := &recordingNotifier{}
	bar := &ActionBar{Client: doer, Notifier: notes}
	selected := []Container{
		{ID: "a", Names: []string{"/sonarr"}},
		{ID: "slow", Names: []string{"/plex"}},
		{ID: "b", Names: []string{"/radarr"}},
	}

	err := bar.Run(context.Background(), ActionStop, selected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sonarr")
	assert.Contains(t, err.Error(), "radarr")
	assert.NotContains(t, err.Error(), "plex")
	assert.Equal(t, "<nil>", doer.slowErr.Load(), "a failure must not cancel the other requests")
	require.Len(t, notes.upd, 3)
}

func TestActionBarRefresh(t *testing.T) {
	var n int
	bar := &ActionBar{RefreshDelay: 10 * time.Millisecond, Reload: func(context.Context) error { n++; return nil }}
	require.NoError(t, bar.Refresh(context.Background()))
	assert.Equal(t, 1, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bar.RefreshDelay = time.Hour
	assert.ErrorIs(t, bar.Refresh(ctx), context.Canceled)
	assert.Equal(t, 1, n)
}

func TestNewApp(t *testing.T) {
	c := Container{ID: "c1", Names: []string{"/portainer"}, Ports: []Port{{PrivatePort: 9000, PublicPort: 9443}}}
	bar := &ActionBar{}
	item, ref, err := bar.AddToDashboard([]Container{c})
	require.NoError(t, err)

	_, perr := uuid.Parse(item.ID)
	assert.NoError(t, perr)
	assert.Equal(t, layout.AreaRef{Type: layout.AreaSidebar, ID: "right"}, ref)
	assert.Equal(t, "/portainer", item.Name)
	assert.Equal(t, "http://localhost:9443", item.URL)
	assert.Equal(t, "/imgs/logo/logo.png", item.Icon)
	assert.True(t, item.NewTab)
	assert.False(t, item.StatusCheck)
	bps := []string{}
	for bp, s := range item.Shape {
		bps = append(bps, string(bp))
		assert.Equal(t, layout.DefaultShape(), s)
	}
	sort.Strings(bps)
	assert.Equal(t, []string{"lg", "md", "sm"}, bps)

	_, _, err = NewApp(Container{ID: "c2", Names: []string{"/x"}})
	assert.Error(t, err)
}

func TestContainerDisplayName(t *testing.T) {
	assert.Equal(t, "sonarr", Container{Names: []string{"/sonarr"}}.DisplayName())
	assert.Equal(t, "id", Container{ID: "id"}.DisplayName())
	a, err := ParseAction("stop")
	require.NoError(t, err)
	assert.Equal(t, ActionStop, a)
	_, err = ParseAction("pause")
	assert.Error(t, err)
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/gridboard/config"
	"github.com/ByLCY/gridboard/docker"
	"github.com/ByLCY/gridboard/layout"
)

func baseOptions(t *testing.T, out string) options {
	t.Helper()
	return options{
		input:    filepath.Join("examples", "home.board"),
		output:   out,
		viewport: 1920,
		sidebarH: 640,
		data:     map[string]any{"host": "nas", "user": "lcy"},
	}
}

func TestRunRendersExample(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(t, filepath.Join(dir, "out", "board.svg"))
	opts.debug = filepath.Join(dir, "debug", "snapshot.json")

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	svg, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Fatalf("expected svg output")
	}

	raw, err := os.ReadFile(opts.debug)
	if err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
	var snap layout.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Areas) != 3 {
		t.Fatalf("expected 3 mounted areas, got %d", len(snap.Areas))
	}
	if snap.Areas[0].Title != "lcy's services" || len(snap.Areas[0].Members) != 3 {
		t.Fatalf("unexpected main area: %+v", snap.Areas[0])
	}
	side := snap.Areas[2]
	if side.Ref.Type != layout.AreaSidebar || side.Columns != 2 || side.MinRow != 10 {
		t.Fatalf("unexpected sidebar: %+v", side)
	}
}

func TestRunAddsContainer(t *testing.T) {
	dir := t.TempDir()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path+"?"+r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	list := `[{"Id":"c1","Names":["/portainer"],"State":"running","Ports":[{"PrivatePort":9000,"PublicPort":9443,"Type":"tcp"}]},
	          {"Id":"c2","Names":["/sonarr"],"State":"exited","Ports":[]}]`
	containers := filepath.Join(dir, "containers.json")
	if err := os.WriteFile(containers, []byte(list), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := baseOptions(t, filepath.Join(dir, "board.pdf"))
	opts.boardOut = filepath.Join(dir, "board.json")
	opts.containers = containers
	opts.selectIDs = "c1"
	opts.action = "restart"
	opts.addContainer = true
	opts.docker = config.DockerConfig{BaseURL: srv.URL, Timeout: time.Second}

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(calls) != 1 || calls[0] != "/api/docker/container/c1?action=restart" {
		t.Fatalf("unexpected docker calls: %v", calls)
	}

	raw, err := os.ReadFile(opts.boardOut)
	if err != nil {
		t.Fatalf("board JSON missing: %v", err)
	}
	var b layout.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	side, ok := b.Area(layout.AreaRef{Type: layout.AreaSidebar, ID: "right"})
	if !ok || len(side.Apps) != 1 || side.Apps[0].URL != "http://localhost:9443" {
		t.Fatalf("expected portainer app in sidebar, got %+v", side)
	}
}

func TestSelectContainers(t *testing.T) {
	all := []docker.Container{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if got := selectContainers(all, ""); len(got) != 3 {
		t.Fatalf("expected all containers, got %d", len(got))
	}
	got := selectContainers(all, "c, a,missing")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected selection: %+v", got)
	}
}

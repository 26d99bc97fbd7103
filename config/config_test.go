package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRIDBOARD_CONFIG", "")
	t.Chdir(t.TempDir())

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1920, c.Board.ViewportWidth)
	assert.Equal(t, 640, c.Board.SidebarHeight)
	assert.Equal(t, "http://localhost:7575", c.Docker.BaseURL)
	assert.Equal(t, 10*time.Second, c.Docker.Timeout)
	assert.Equal(t, "board.pdf", c.Render.Out)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[board]
columns = 6
edit = true
sidebar_height = 700

[docker]
base_url = "http://nas:7575"
timeout = "3s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GRIDBOARD_CONFIG", path)
	t.Setenv("GRIDBOARD_RENDER_OUT", "out.svg")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, c.Board.Columns)
	assert.True(t, c.Board.Edit)
	assert.Equal(t, 700, c.Board.SidebarHeight)
	assert.Equal(t, "http://nas:7575", c.Docker.BaseURL)
	assert.Equal(t, 3*time.Second, c.Docker.Timeout)
	assert.Equal(t, "out.svg", c.Render.Out)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("GRIDBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lazytile.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[grid]
tile_width = 16
tile_height = 16
buffer = 3
throttle = "250ms"
index = "grid"

[feed]
bind_address = "0.0.0.0:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.TileWidth != 16 || cfg.Grid.Buffer != 3 || cfg.Grid.Index != "grid" {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Grid.Throttle != 250*time.Millisecond {
		t.Errorf("throttle = %s", cfg.Grid.Throttle)
	}
	if cfg.Feed.BindAddress != "0.0.0.0:9000" {
		t.Errorf("bind = %s", cfg.Feed.BindAddress)
	}
	// untouched sections keep defaults
	if cfg.Loop.TickRate != 50*time.Millisecond || cfg.Camera.Width != 800 {
		t.Errorf("defaults lost: loop=%+v camera=%+v", cfg.Loop, cfg.Camera)
	}
	if cfg.Server.StartTime == 0 {
		t.Error("StartTime not set")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"tile":  "[grid]\ntile_width = 0\n",
		"buf":   "[grid]\nbuffer = -1\n",
		"zoom":  "[camera]\nmin_zoom = 2.0\nmax_zoom = 1.0\n",
		"frame": "[feed]\nmax_frame_size = 70000\n",
		"parse": "[grid\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err = %v", err)
	}
}

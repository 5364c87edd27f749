package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/go-gl/mathgl/mgl32"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "oxy.toml", `
[window]
title = "demo"
width = 1600

[renderer]
cascade_count = 2
render_bloom = false
fog_color = [0.1, 0.2, 0.3]

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 1600 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("height = %d, want default 720", cfg.Window.Height)
	}
	if cfg.Renderer.CascadeCount != 2 || cfg.Renderer.RenderBloom {
		t.Errorf("renderer = %+v", cfg.Renderer)
	}
	if !cfg.Renderer.RenderShadow {
		t.Errorf("render_shadow lost its default")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "oxy.yaml", `
renderer:
  shader_path: shaders
  bloom_mipmap_levels: 5
  present_mode: uncapped
engine:
  profiling: true
  profile_interval: 500ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.ShaderPath != "shaders" || cfg.Renderer.BloomMipmapLevels != 5 {
		t.Errorf("renderer = %+v", cfg.Renderer)
	}
	if cfg.Renderer.PresentMode != "uncapped" {
		t.Errorf("present_mode = %q", cfg.Renderer.PresentMode)
	}
	d, err := cfg.Engine.ProfileInterval()
	if err != nil || d != 500*time.Millisecond {
		t.Errorf("ProfileInterval = %v, %v", d, err)
	}
	if !cfg.Engine.Profiling || cfg.Engine.TickRate != 60 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	bad := writeFile(t, "bad.toml", "[window\nwidth = ")
	if _, err := Load(bad); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"too many cascades", func(c *Config) { c.Renderer.CascadeCount = 5 }},
		{"no cascades", func(c *Config) { c.Renderer.CascadeCount = 0 }},
		{"zero shadow buffer", func(c *Config) { c.Renderer.ShadowBufferSize = 0 }},
		{"zero bloom levels", func(c *Config) { c.Renderer.BloomMipmapLevels = 0 }},
		{"inverted fog", func(c *Config) { c.Renderer.FogNear, c.Renderer.FogFar = 10, 5 }},
		{"growth factor", func(c *Config) { c.Renderer.GrowthFactor = 1 }},
		{"present mode", func(c *Config) { c.Renderer.PresentMode = "mailbox" }},
		{"profile interval", func(c *Config) { c.Engine.ProfileTick = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected a validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestRendererParameters(t *testing.T) {
	params := Default().Renderer.Parameters()
	for key, value := range params {
		if _, ok := pass.NormalizeParameter(value); !ok {
			t.Errorf("%s: %T is outside the parameter domain", key, value)
		}
	}
	if got := params[pass.KeyShaderPath]; got != common.Path("assets/shaders") {
		t.Errorf("shader path = %v", got)
	}
	if got := params[pass.KeyBloomMipLevels]; got != pass.DefaultBloomMipLevels {
		t.Errorf("bloom levels = %v", got)
	}
	if got := params[pass.KeyFogColor]; got != pass.DefaultFogColor {
		t.Errorf("fog color = %v", got)
	}
	if _, ok := params[pass.KeyFogColor].(mgl32.Vec3); !ok {
		t.Errorf("fog color is %T, want mgl32.Vec3", params[pass.KeyFogColor])
	}
}

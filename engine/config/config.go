package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

type WindowConfig struct {
	Title   string `toml:"title" yaml:"title"`
	Width   int    `toml:"width" yaml:"width"`
	Height  int    `toml:"height" yaml:"height"`
	Samples int    `toml:"samples" yaml:"samples"`
}

type RendererConfig struct {
	ShaderPath        string     `toml:"shader_path" yaml:"shader_path"`
	CascadeCount      uint64     `toml:"cascade_count" yaml:"cascade_count"`
	ShadowBufferSize  uint64     `toml:"shadow_buffer_size" yaml:"shadow_buffer_size"`
	RenderShadow      bool       `toml:"render_shadow" yaml:"render_shadow"`
	RenderBloom       bool       `toml:"render_bloom" yaml:"render_bloom"`
	RenderFXAA        bool       `toml:"render_fxaa" yaml:"render_fxaa"`
	BloomMipmapLevels uint64     `toml:"bloom_mipmap_levels" yaml:"bloom_mipmap_levels"`
	BloomStrength     float32    `toml:"bloom_strength" yaml:"bloom_strength"`
	Gamma             float32    `toml:"gamma" yaml:"gamma"`
	FogColor          [3]float32 `toml:"fog_color" yaml:"fog_color"`
	FogNear           float32    `toml:"fog_near" yaml:"fog_near"`
	FogFar            float32    `toml:"fog_far" yaml:"fog_far"`
	GrowthFactor      float32    `toml:"growth_factor" yaml:"growth_factor"`
	ShaderWorkers     int        `toml:"shader_workers" yaml:"shader_workers"`
	PresentMode       string     `toml:"present_mode" yaml:"present_mode"` // "vsync" or "uncapped"
}

type EngineConfig struct {
	TickRate    float64 `toml:"tick_rate" yaml:"tick_rate"`     // ticks per second
	FrameLimit  float64 `toml:"frame_limit" yaml:"frame_limit"` // 0 = uncapped
	Profiling   bool    `toml:"profiling" yaml:"profiling"`
	ProfileTick string  `toml:"profile_interval" yaml:"profile_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a configuration file over the defaults. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-gl",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			ShaderPath:        "assets/shaders",
			CascadeCount:      pass.DefaultCascadeCount,
			ShadowBufferSize:  pass.DefaultShadowBufferSize,
			RenderShadow:      true,
			RenderBloom:       true,
			RenderFXAA:        true,
			BloomMipmapLevels: uint64(pass.DefaultBloomMipLevels),
			BloomStrength:     pass.DefaultBloomStrength,
			Gamma:             pass.DefaultGamma,
			FogColor:          pass.DefaultFogColor,
			FogNear:           pass.DefaultFogNear,
			FogFar:            pass.DefaultFogFar,
			GrowthFactor:      2,
			ShaderWorkers:     4,
			PresentMode:       "vsync",
		},
		Engine: EngineConfig{
			TickRate:    60,
			ProfileTick: "1s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Parameters converts the renderer section into render parameter bag values.
func (c RendererConfig) Parameters() map[string]any {
	return map[string]any{
		pass.KeyShaderPath:       common.Path(c.ShaderPath),
		pass.KeyCascadeCount:     c.CascadeCount,
		pass.KeyShadowBufferSize: c.ShadowBufferSize,
		pass.KeyRenderShadow:     c.RenderShadow,
		pass.KeyRenderBloom:      c.RenderBloom,
		pass.KeyRenderFXAA:       c.RenderFXAA,
		pass.KeyBloomMipLevels:   common.Size(c.BloomMipmapLevels),
		pass.KeyBloomStrength:    c.BloomStrength,
		pass.KeyGamma:            c.Gamma,
		pass.KeyFogColor:         mgl32.Vec3(c.FogColor),
		pass.KeyFogNear:          c.FogNear,
		pass.KeyFogFar:           c.FogFar,
	}
}

// Validate reports the first setting outside its range.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Renderer.CascadeCount < 1 || c.Renderer.CascadeCount > 4:
		return fmt.Errorf("cascade_count %d must be between 1 and 4", c.Renderer.CascadeCount)
	case c.Renderer.ShadowBufferSize == 0:
		return fmt.Errorf("shadow_buffer_size must be positive")
	case c.Renderer.BloomMipmapLevels == 0:
		return fmt.Errorf("bloom_mipmap_levels must be positive")
	case c.Renderer.FogFar < c.Renderer.FogNear:
		return fmt.Errorf("fog_far %v is closer than fog_near %v", c.Renderer.FogFar, c.Renderer.FogNear)
	case c.Renderer.GrowthFactor <= 1:
		return fmt.Errorf("growth_factor %v must be greater than 1", c.Renderer.GrowthFactor)
	case c.Renderer.PresentMode != "vsync" && c.Renderer.PresentMode != "uncapped":
		return fmt.Errorf("present_mode %q must be vsync or uncapped", c.Renderer.PresentMode)
	}
	if _, err := c.Engine.ProfileInterval(); err != nil {
		return err
	}
	return nil
}

// ProfileInterval parses profile_interval, an empty value meaning one second.
func (c EngineConfig) ProfileInterval() (time.Duration, error) {
	if c.ProfileTick == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.ProfileTick)
	if err != nil {
		return 0, fmt.Errorf("profile_interval: %w", err)
	}
	return d, nil
}

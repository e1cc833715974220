package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clockface.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 640, cfg.Display.Width)
	assert.Equal(t, 360, cfg.Display.Height)
	assert.Equal(t, 15*time.Second, cfg.Animation.UpdateInterval)
	assert.Equal(t, 153, cfg.Clock.OverlayAlpha)
	assert.Equal(t, DefaultAPIURL, cfg.Generation.APIURL)
}

func TestClockRadius(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 120, cfg.ClockRadius())

	cfg.Clock.Radius = 90
	assert.Equal(t, 90, cfg.ClockRadius())
}

func TestFrameInterval(t *testing.T) {
	cfg := Default()
	cfg.Display.FPS = 25
	assert.Equal(t, 40*time.Millisecond, cfg.FrameInterval())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfigFile, EnvAPIURL, EnvListenAddr, EnvDevMode, EnvDebugDir} {
		t.Setenv(key, "")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
display:
  width: 800
  fps: 20
animation:
  update_interval: 45s
generation:
  api_url: http://sd.local:7860/sdapi/v1/txt2img
  steps: 12
debug_dir: /tmp/clockface-debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Display.Width)
	assert.Equal(t, 360, cfg.Display.Height, "unset keys keep defaults")
	assert.Equal(t, 20, cfg.Display.FPS)
	assert.Equal(t, 45*time.Second, cfg.Animation.UpdateInterval)
	assert.Equal(t, 2*time.Second, cfg.Animation.TransitionDuration)
	assert.Equal(t, "http://sd.local:7860/sdapi/v1/txt2img", cfg.Generation.APIURL)
	assert.Equal(t, 12, cfg.Generation.Steps)
	assert.Equal(t, "/tmp/clockface-debug", cfg.DebugDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server:\n  listen: \":9000\"\n")
	t.Setenv(EnvListenAddr, ":9100")
	t.Setenv(EnvAPIURL, "http://other:7860/sdapi/v1/txt2img")
	t.Setenv(EnvDevMode, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.ListenAddr)
	assert.Equal(t, "http://other:7860/sdapi/v1/txt2img", cfg.Generation.APIURL)
	assert.True(t, cfg.Server.DevMode)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "display:\n  height: 480\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 480, cfg.Display.Height)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "display: [1, 2"))
		require.Error(t, err)
	})

	t.Run("bad dev flag", func(t *testing.T) {
		t.Setenv(EnvDevMode, "maybe")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvDevMode)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Display.Width = 0 }, "display size"},
		{"zero fps", func(c *Config) { c.Display.FPS = 0 }, "fps"},
		{"negative radius", func(c *Config) { c.Clock.Radius = -1 }, "radius"},
		{"overlay alpha", func(c *Config) { c.Clock.OverlayAlpha = 256 }, "overlay_alpha"},
		{"tint alpha", func(c *Config) { c.Clock.TintAlpha = -1 }, "tint_alpha"},
		{"interval", func(c *Config) { c.Animation.UpdateInterval = 0 }, "update_interval"},
		{"transition", func(c *Config) { c.Animation.TransitionDuration = -time.Second }, "transition_duration"},
		{"timeout", func(c *Config) { c.Generation.Timeout = 0 }, "timeout"},
		{"retries", func(c *Config) { c.Generation.Retries = -2 }, "retries"},
		{"api url", func(c *Config) { c.Generation.APIURL = "  " }, "api_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

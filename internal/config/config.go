package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "CLOCKFACE_CONFIG"
	EnvAPIURL     = "CLOCKFACE_API_URL"
	EnvListenAddr = "CLOCKFACE_LISTEN"
	EnvDevMode    = "CLOCKFACE_DEV"
	EnvDebugDir   = "CLOCKFACE_DEBUG_DIR"
)

const DefaultAPIURL = "http://orinputer.local:7860/sdapi/v1/txt2img"

// Config is the static startup configuration. It is never reloaded at runtime.
type Config struct {
	Display    DisplayConfig    `yaml:"display"`
	Clock      ClockConfig      `yaml:"clock"`
	Animation  AnimationConfig  `yaml:"animation"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`

	// DebugDir receives timestamped debug PNGs. Empty disables artifact output.
	DebugDir string `yaml:"debug_dir"`
}

type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	// Device is the framebuffer device opened by the real binary.
	Device string `yaml:"device"`

	ShowStatus bool `yaml:"show_status"`
	ShowQR     bool `yaml:"show_qr"`
}

type ClockConfig struct {
	// Radius of the clock face in pixels; 0 means min(width, height)/3.
	Radius       int `yaml:"radius"`
	OverlayAlpha int `yaml:"overlay_alpha"`
	TintAlpha    int `yaml:"tint_alpha"`
}

type AnimationConfig struct {
	UpdateInterval     time.Duration `yaml:"update_interval"`
	TransitionDuration time.Duration `yaml:"transition_duration"`
}

type GenerationConfig struct {
	APIURL      string        `yaml:"api_url"`
	PayloadFile string        `yaml:"payload_file"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`

	// Zero values keep whatever the payload template specifies.
	Width                       int     `yaml:"width"`
	Height                      int     `yaml:"height"`
	Steps                       int     `yaml:"steps"`
	GuidanceScale               float64 `yaml:"guidance_scale"`
	ControlNetConditioningScale float64 `yaml:"controlnet_conditioning_scale"`
	ControlGuidanceStart        float64 `yaml:"control_guidance_start"`
	ControlGuidanceEnd          float64 `yaml:"control_guidance_end"`
	NegativePrompt              string  `yaml:"negative_prompt"`
}

type ServerConfig struct {
	// ListenAddr enables the status API when non-empty.
	ListenAddr string `yaml:"listen"`
	DevMode    bool   `yaml:"dev"`
}

func Default() Config {
	return Config{
		Display: DisplayConfig{
			Width:  640,
			Height: 360,
			FPS:    30,
			Device: "/dev/fb0",
		},
		Clock: ClockConfig{
			OverlayAlpha: 153,
			TintAlpha:    38,
		},
		Animation: AnimationConfig{
			UpdateInterval:     15 * time.Second,
			TransitionDuration: 2 * time.Second,
		},
		Generation: GenerationConfig{
			APIURL:  DefaultAPIURL,
			Timeout: 30 * time.Second,
			Retries: 1,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path (if any) and then
// with environment overrides. A missing file is an error only when path was
// given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.Generation.APIURL = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv(EnvDebugDir); v != "" {
		cfg.DebugDir = v
	}
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		cfg.Server.DevMode = parsed
	}
	return nil
}

// ClockRadius resolves the effective clock radius.
func (cfg Config) ClockRadius() int {
	if cfg.Clock.Radius > 0 {
		return cfg.Clock.Radius
	}
	return min(cfg.Display.Width, cfg.Display.Height) / 3
}

func (cfg Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(cfg.Display.FPS)
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive (got %dx%d)", cfg.Display.Width, cfg.Display.Height))
	}
	if cfg.Display.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive (got %d)", cfg.Display.FPS))
	}
	if cfg.Clock.Radius < 0 {
		errs = append(errs, fmt.Errorf("clock radius must not be negative (got %d)", cfg.Clock.Radius))
	}
	if !validAlpha(cfg.Clock.OverlayAlpha) {
		errs = append(errs, fmt.Errorf("overlay_alpha must be within 0..255 (got %d)", cfg.Clock.OverlayAlpha))
	}
	if !validAlpha(cfg.Clock.TintAlpha) {
		errs = append(errs, fmt.Errorf("tint_alpha must be within 0..255 (got %d)", cfg.Clock.TintAlpha))
	}
	if cfg.Animation.UpdateInterval <= 0 {
		errs = append(errs, fmt.Errorf("update_interval must be positive (got %s)", cfg.Animation.UpdateInterval))
	}
	if cfg.Animation.TransitionDuration < 0 {
		errs = append(errs, fmt.Errorf("transition_duration must not be negative (got %s)", cfg.Animation.TransitionDuration))
	}
	if cfg.Generation.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("generation timeout must be positive (got %s)", cfg.Generation.Timeout))
	}
	if cfg.Generation.Retries < 0 {
		errs = append(errs, fmt.Errorf("generation retries must not be negative (got %d)", cfg.Generation.Retries))
	}
	if strings.TrimSpace(cfg.Generation.APIURL) == "" {
		errs = append(errs, errors.New("generation api_url is required"))
	}
	return errors.Join(errs...)
}

func validAlpha(v int) bool { return v >= 0 && v <= 255 }

// Package sdapi talks to a Stable Diffusion web UI's txt2img endpoint with a
// ControlNet unit conditioned on the clock hands.
package sdapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rook-computer/clockface/internal/assets"
)

var (
	ErrStatus   = errors.New("unexpected status")
	ErrNoImages = errors.New("response contained no images")
	ErrDecode   = errors.New("decode image")
	ErrTemplate = errors.New("invalid payload template")
)

const maxErrorBody = 512

// StatusError is returned for non-200 responses. It matches ErrStatus.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("txt2img: %s %d", ErrStatus, e.Code)
	}
	return fmt.Sprintf("txt2img: %s %d: %s", ErrStatus, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Params override template fields. Zero values leave the template alone.
type Params struct {
	Width          int
	Height         int
	Steps          int
	CFGScale       float64
	ControlWeight  float64
	GuidanceStart  float64
	GuidanceEnd    float64
	NegativePrompt string
}

type Logger interface {
	Infof(component, format string, args ...any)
	Errorf(component, format string, args ...any)
}

const component = "sdapi"

// leveledLogger adapts Logger for retryablehttp. Errors there are
// intermediate (a retry follows), so they are logged as info.
type leveledLogger struct {
	inner Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.inner.Infof(component, "%s%s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.inner.Infof(component, "%s%s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.inner.Infof(component, "%s%s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Debug(string, ...any) {}

func formatKV(kv []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

type Option func(*Client, *retryablehttp.Client)

func WithRetries(n int) Option {
	return func(_ *Client, rc *retryablehttp.Client) { rc.RetryMax = n }
}

func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(_ *Client, rc *retryablehttp.Client) {
		rc.RetryWaitMin = minWait
		rc.RetryWaitMax = maxWait
	}
}

// WithTimeout bounds a whole Generate call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client, _ *retryablehttp.Client) { c.timeout = d }
}

func WithLogger(logger Logger) Option {
	return func(c *Client, rc *retryablehttp.Client) {
		if logger != nil {
			c.logger = logger
			rc.Logger = retryablehttp.LeveledLogger(leveledLogger{inner: logger})
		}
	}
}

// WithTransport replaces the pooled transport, e.g. to add tracing or TLS settings.
func WithTransport(transport http.RoundTripper) Option {
	return func(_ *Client, rc *retryablehttp.Client) { rc.HTTPClient.Transport = transport }
}

// WithTemplate replaces the embedded payload template.
func WithTemplate(payload []byte) Option {
	return func(c *Client, _ *retryablehttp.Client) { c.template = payload }
}

func WithParams(p Params) Option {
	return func(c *Client, _ *retryablehttp.Client) { c.params = p }
}

// Client implements background.Generator over HTTP.
type Client struct {
	url      string
	http     *http.Client
	template []byte
	params   Params
	timeout  time.Duration
	logger   Logger
}

// NewClient builds a client for the txt2img URL. Connection errors and 5xx
// responses are retried; 429 is not.
func NewClient(url string, options ...Option) (*Client, error) {
	c := &Client{
		url:      url,
		template: assets.Txt2ImgPayload,
		timeout:  30 * time.Second,
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 1
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.CheckRetry = RetryPolicy
	rc.ErrorHandler = lastResponse

	for _, option := range options {
		option(c, rc)
	}

	if _, err := decodeTemplate(c.template); err != nil {
		return nil, err
	}

	c.http = rc.StandardClient()
	c.http.Timeout = c.timeout
	return c, nil
}

// RetryPolicy wraps retryablehttp.DefaultRetryPolicy but leaves 429 to the
// caller; the next attempt comes with the next update interval anyway.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// lastResponse hands the final response back once retries are exhausted so
// status errors keep their body.
func lastResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

// LoadTemplate reads a payload template from path, or returns the embedded
// default when path is empty.
func LoadTemplate(path string) ([]byte, error) {
	if path == "" {
		return assets.Txt2ImgPayload, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload template: %w", err)
	}
	if _, err := decodeTemplate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// Generate posts one txt2img request and decodes the first returned image.
func (c *Client) Generate(ctx context.Context, prompt string, conditioning []byte) (image.Image, error) {
	payload, err := c.BuildPayload(prompt, conditioning)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var out txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("txt2img response: %w", err)
	}
	if len(out.Images) == 0 || out.Images[0] == "" {
		return nil, ErrNoImages
	}
	img, err := decodeImage(out.Images[0])
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Infof(component, "received %dx%d image", img.Bounds().Dx(), img.Bounds().Dy())
	}
	return img, nil
}

// BuildPayload fills a fresh copy of the template with the prompt, the
// configured overrides and the base64 conditioning image.
func (c *Client) BuildPayload(prompt string, conditioning []byte) (map[string]any, error) {
	payload, err := decodeTemplate(c.template)
	if err != nil {
		return nil, err
	}
	unit := controlNetUnit(payload)

	payload["prompt"] = prompt
	unit["image"] = base64.StdEncoding.EncodeToString(conditioning)

	p := c.params
	if p.NegativePrompt != "" {
		payload["negative_prompt"] = p.NegativePrompt
	}
	if p.Width > 0 {
		payload["width"] = p.Width
	}
	if p.Height > 0 {
		payload["height"] = p.Height
	}
	if p.Steps > 0 {
		payload["steps"] = p.Steps
	}
	if p.CFGScale > 0 {
		payload["cfg_scale"] = p.CFGScale
	}
	if p.ControlWeight > 0 {
		unit["weight"] = p.ControlWeight
	}
	if p.GuidanceStart > 0 {
		unit["guidance_start"] = p.GuidanceStart
	}
	if p.GuidanceEnd > 0 {
		unit["guidance_end"] = p.GuidanceEnd
	}
	return payload, nil
}

func decodeTemplate(data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	if controlNetUnit(payload) == nil {
		return nil, fmt.Errorf("%w: missing alwayson_scripts.controlnet.args[0]", ErrTemplate)
	}
	return payload, nil
}

func controlNetUnit(payload map[string]any) map[string]any {
	scripts, _ := payload["alwayson_scripts"].(map[string]any)
	controlnet, _ := scripts["controlnet"].(map[string]any)
	args, _ := controlnet["args"].([]any)
	if len(args) == 0 {
		return nil
	}
	unit, _ := args[0].(map[string]any)
	return unit
}

func decodeImage(encoded string) (image.Image, error) {
	// Some builds prefix a data URL header.
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

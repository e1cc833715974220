// Package background runs image generation off the render loop and
// publishes the results.
//
// At most one generation is in flight. A new one may start only when none
// is running and at least Interval has passed since the previous attempt,
// whether that attempt succeeded or not. Requests that do not qualify are
// dropped, never queued.
package background

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rook-computer/clockface/internal/artifacts"
	"github.com/rook-computer/clockface/internal/metrics"
)

const component = "background"

var ErrNoImage = errors.New("generator returned no image")

// Generator turns a prompt and a PNG-encoded conditioning image into a
// picture. Implementations must honour ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string, conditioning []byte) (image.Image, error)
}

// PromptSource supplies one prompt per generation.
type PromptSource interface {
	Generate() string
}

type Logger interface {
	Infof(component, format string, args ...any)
	Errorf(component, format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...any)  {}
func (noopLogger) Errorf(string, string, ...any) {}

type fixedPrompt string

func (p fixedPrompt) Generate() string { return string(p) }

// Background is one published generation result. It is never modified
// after publication.
type Background struct {
	Image       image.Image
	Seq         uint64
	Prompt      string
	PublishedAt time.Time
}

// Status is a point-in-time view of the updater.
type Status struct {
	Updating    bool      `json:"updating"`
	LastAttempt time.Time `json:"lastAttempt"`
	LastSuccess time.Time `json:"lastSuccess"`
	LastError   string    `json:"lastError,omitempty"`
	Attempts    uint64    `json:"attempts"`
	Successes   uint64    `json:"successes"`
	Failures    uint64    `json:"failures"`
	Dropped     uint64    `json:"dropped"`
	Seq         uint64    `json:"seq"`
	Prompt      string    `json:"prompt,omitempty"`
}

type Options struct {
	Interval           time.Duration
	Timeout            time.Duration
	TransitionDuration time.Duration
	// TintAlpha is the opacity of the dominant colour, also used for the
	// white tint shown before the first success.
	TintAlpha uint8

	Clock     clockwork.Clock
	Prompts   PromptSource
	Logger    Logger
	Artifacts *artifacts.Saver
	Metrics   *metrics.Metrics
}

type Updater struct {
	gen  Generator
	opts Options

	mu          sync.Mutex
	updating    bool
	lastAttempt time.Time
	current     *Background
	prevColor   color.NRGBA
	curColor    color.NRGBA
	colorStart  time.Time
	status      Status

	inflight sync.WaitGroup
}

func New(gen Generator, opts Options) *Updater {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Prompts == nil {
		opts.Prompts = fixedPrompt("")
	}
	white := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: opts.TintAlpha}
	return &Updater{
		gen:       gen,
		opts:      opts,
		prevColor: white,
		curColor:  white,
	}
}

// ShouldUpdate reports whether Interval has elapsed since the last attempt.
// It ignores whether a generation is currently running.
func (u *Updater) ShouldUpdate() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dueLocked(u.opts.Clock.Now())
}

func (u *Updater) dueLocked(now time.Time) bool {
	return u.lastAttempt.IsZero() || now.Sub(u.lastAttempt) >= u.opts.Interval
}

// RequestUpdate starts a generation conditioned on hands unless one is
// already running or the interval has not elapsed. It never blocks on
// generation and reports whether a worker was started.
func (u *Updater) RequestUpdate(hands image.Image) bool {
	u.mu.Lock()
	now := u.opts.Clock.Now()
	if u.updating || !u.dueLocked(now) {
		u.status.Dropped++
		u.mu.Unlock()
		u.opts.Metrics.RequestDropped()
		return false
	}
	u.updating = true
	u.lastAttempt = now
	u.status.Attempts++
	u.inflight.Add(1)
	u.mu.Unlock()

	go u.run(hands)
	return true
}

func (u *Updater) run(hands image.Image) {
	defer u.inflight.Done()

	started := u.opts.Clock.Now()
	u.opts.Metrics.GenerationStarted()

	bg, dominant, err := u.generate(hands)

	outcome := metrics.OutcomeSuccess
	u.mu.Lock()
	if err != nil {
		outcome = metrics.OutcomeFailure
		u.status.Failures++
		u.status.LastError = err.Error()
	} else {
		u.publishLocked(bg, dominant)
	}
	u.updating = false
	u.mu.Unlock()

	took := u.opts.Clock.Since(started)
	u.opts.Metrics.GenerationFinished(outcome, took)
	if err != nil {
		u.opts.Logger.Errorf(component, "generation failed after %s: %v", took.Round(time.Millisecond), err)
		return
	}
	u.opts.Metrics.BackgroundPublished(bg.Seq)
	u.opts.Logger.Infof(component, "published background %d in %s", bg.Seq, took.Round(time.Millisecond))
}

// generate does everything that may be slow or fail; it touches no shared
// state so it runs without the lock.
func (u *Updater) generate(hands image.Image) (bg *Background, dominant color.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			bg, err = nil, fmt.Errorf("generator panic: %v", r)
		}
	}()
	if hands == nil {
		return nil, dominant, errors.New("no conditioning image")
	}

	u.opts.Artifacts.Save(artifacts.PrefixHands, hands)
	flat := Flatten(hands)
	u.opts.Artifacts.Save(artifacts.PrefixPreAPI, flat)
	conditioning, err := EncodePNG(flat)
	if err != nil {
		return nil, dominant, fmt.Errorf("encode conditioning image: %w", err)
	}

	prompt := u.opts.Prompts.Generate()
	u.opts.Logger.Infof(component, "generating: %s", prompt)

	ctx := context.Background()
	if u.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.Timeout)
		defer cancel()
	}
	img, err := u.gen.Generate(ctx, prompt, conditioning)
	if err != nil {
		return nil, dominant, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, dominant, ErrNoImage
	}
	u.opts.Artifacts.Save(artifacts.PrefixBackground, img)
	dominant = ExtractDominantColor(img, u.opts.TintAlpha)
	return &Background{Image: img, Prompt: prompt}, dominant, nil
}

// publishLocked swaps in bg and starts a colour transition from the tint
// currently on screen.
func (u *Updater) publishLocked(bg *Background, dominant color.NRGBA) {
	now := u.opts.Clock.Now()

	u.prevColor = u.colorLocked(now)
	u.curColor = dominant
	u.colorStart = now

	bg.Seq = u.status.Seq + 1
	bg.PublishedAt = now
	u.current = bg

	u.status.Seq = bg.Seq
	u.status.Successes++
	u.status.LastSuccess = now
	u.status.LastError = ""
	u.status.Prompt = bg.Prompt
}

// Background returns the latest publication, or nil before the first
// success. It never waits for a running generation.
func (u *Updater) Background() *Background {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.current
}

// DominantColor returns the tint, interpolated between the previous and
// the current background's dominant colour over TransitionDuration.
func (u *Updater) DominantColor() color.NRGBA {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.colorLocked(u.opts.Clock.Now())
}

func (u *Updater) colorLocked(now time.Time) color.NRGBA {
	if u.colorStart.IsZero() || u.opts.TransitionDuration <= 0 {
		return u.curColor
	}
	p := float64(now.Sub(u.colorStart)) / float64(u.opts.TransitionDuration)
	return LerpColor(u.prevColor, u.curColor, p)
}

func (u *Updater) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.status
	s.Updating = u.updating
	s.LastAttempt = u.lastAttempt
	return s
}

// Drain waits for a running generation to finish. It does not cancel the
// generation; ctx only bounds how long the caller is willing to wait.
func (u *Updater) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rook-computer/clockface/internal/background"
	"github.com/rook-computer/clockface/internal/render"
)

// runLoop draws frames at the configured rate until ctx is done. The first
// background request is made before the first frame regardless of the
// interval. A failing display ends the loop with an error.
func (app *App) runLoop(ctx context.Context) error {
	ticker := app.Clock.NewTicker(app.Config.FrameInterval())
	defer ticker.Stop()

	now := app.Clock.Now()
	app.requestBackground(now)
	if err := app.renderFrame(now); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := app.tick(); err != nil {
				return err
			}
		}
	}
}

func (app *App) tick() error {
	now := app.Clock.Now()
	if app.Updater.ShouldUpdate() {
		app.requestBackground(now)
	}
	return app.renderFrame(now)
}

// requestBackground renders the hour and minute hands for now and offers
// them to the updater.
func (app *App) requestBackground(now time.Time) {
	hour, minute, _ := now.Clock()
	hands := render.RenderHands(
		app.Config.Display.Width,
		app.Config.Display.Height,
		float64(app.Config.ClockRadius()),
		hour, minute,
	)
	if app.Updater.RequestUpdate(hands) {
		app.Logger.Infof("loop", "requested background for %02d:%02d", hour, minute)
	}
}

func (app *App) renderFrame(now time.Time) error {
	in := render.FrameInput{
		Now:  now,
		Tint: app.Updater.DominantColor(),
	}
	if bg := app.Updater.Background(); bg != nil {
		in.Background = bg.Image
		in.BackgroundSeq = bg.Seq
		in.PublishedAt = bg.PublishedAt
	}
	if app.Config.Display.ShowStatus {
		in.Caption = statusCaption(app.Updater.Status(), app.Config.Animation.UpdateInterval, now)
	}

	frame := app.Compositor.Compose(in)
	if err := app.Display.Present(frame); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	app.frames++
	app.Metrics.FramePresented()
	app.heartbeat.Do(func() {
		app.Logger.Infof("loop", "%d frames presented, background #%d", app.frames, in.BackgroundSeq)
	})
	return nil
}

func statusCaption(st background.Status, interval time.Duration, now time.Time) string {
	switch {
	case st.Updating:
		return fmt.Sprintf("#%d  generating", st.Seq)
	case st.LastError != "":
		return fmt.Sprintf("#%d  last attempt failed", st.Seq)
	case st.LastAttempt.IsZero():
		return fmt.Sprintf("#%d", st.Seq)
	}
	next := interval - now.Sub(st.LastAttempt)
	if next < 0 {
		next = 0
	}
	return fmt.Sprintf("#%d  next in %ds", st.Seq, int(next.Round(time.Second)/time.Second))
}

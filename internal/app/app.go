package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rook-computer/clockface/internal/artifacts"
	"github.com/rook-computer/clockface/internal/background"
	"github.com/rook-computer/clockface/internal/buttons"
	"github.com/rook-computer/clockface/internal/config"
	"github.com/rook-computer/clockface/internal/metrics"
	"github.com/rook-computer/clockface/internal/prompt"
	"github.com/rook-computer/clockface/internal/render"
	"github.com/rook-computer/clockface/internal/system"
	"github.com/rook-computer/clockface/internal/web"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	drainTimeout = 5 * time.Second
	qrSizePx     = 96
	qrAlpha      = 230
)

// Deps are the pieces that differ between the device and the simulator.
type Deps struct {
	Display   render.Display
	Generator background.Generator

	// Optional.
	Buttons buttons.Buttons
	Prompts background.PromptSource
	Logger  Logger
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
	// Routes adds extra handlers to the status API mux.
	Routes func(mux *http.ServeMux)
	// Console switches the VT to graphics mode while running.
	Console bool
}

type App struct {
	Config     config.Config
	Display    render.Display
	Frames     *render.Recorder
	Updater    *background.Updater
	Compositor *render.Compositor
	Web        web.Server
	Buttons    buttons.Buttons
	Metrics    *metrics.Metrics
	Logger     Logger
	Clock      clockwork.Clock

	console   bool
	heartbeat rate.Sometimes
	frames    uint64

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg config.Config, deps Deps) (*App, error) {
	if deps.Display == nil {
		return nil, errors.New("app: display is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("app: generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = NoopLogger{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.NewGenerator(time.Now().UnixNano())
	}
	if deps.Buttons == nil {
		deps.Buttons = buttons.NewChannel()
	}

	saver := artifacts.NewSaver(cfg.DebugDir, deps.Logger)
	saver.Clock = deps.Clock

	updater := background.New(deps.Generator, background.Options{
		Interval:           cfg.Animation.UpdateInterval,
		Timeout:            cfg.Generation.Timeout,
		TransitionDuration: cfg.Animation.TransitionDuration,
		TintAlpha:          uint8(cfg.Clock.TintAlpha),
		Clock:              deps.Clock,
		Prompts:            deps.Prompts,
		Logger:             deps.Logger,
		Artifacts:          saver,
		Metrics:            deps.Metrics,
	})

	compositor := render.NewCompositor(cfg.Display.Width, cfg.Display.Height, float64(cfg.ClockRadius()))
	compositor.OverlayAlpha = uint8(cfg.Clock.OverlayAlpha)
	compositor.TransitionDuration = cfg.Animation.TransitionDuration
	if cfg.Display.ShowStatus {
		compositor.Captioner = render.NewCaptioner(0)
	}

	recorder := render.NewRecorder(deps.Display, time.Second)

	app := &App{
		Config:     cfg,
		Display:    recorder,
		Frames:     recorder,
		Updater:    updater,
		Compositor: compositor,
		Web:        web.NoopServer{},
		Buttons:    deps.Buttons,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
		Clock:      deps.Clock,
		console:    deps.Console,
		heartbeat:  rate.Sometimes{Interval: time.Minute},
		exitCh:     make(chan error, 1),
	}

	serverCfg := web.ServerConfigFrom(cfg.Server)
	if serverCfg.Enabled() {
		mux := web.NewDefaultMux(web.APIV1Deps{
			Updater: updater,
			Frames:  recorder,
			Metrics: deps.Metrics.Handler(),
			Started: deps.Clock.Now(),
		})
		if deps.Routes != nil {
			deps.Routes(mux)
		}
		server := web.NewHTTPServer(serverCfg, mux)
		server.Logger = deps.Logger
		app.Web = server

		if cfg.Display.ShowQR {
			if url := web.StatusURL(serverCfg.ListenAddr); url != "" {
				qr, err := render.StatusQRCode(url, qrSizePx, qrAlpha)
				if err != nil {
					deps.Logger.Errorf("app", "status QR code: %v", err)
				} else {
					compositor.QR = qr
					deps.Logger.Infof("app", "status API at %s", url)
				}
			}
		}
	}
	return app, nil
}

// Exit requests the app to stop running. A nil error is a clean exit.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs the clock until ctx is cancelled, Exit is called, an exit key is
// pressed or presenting a frame fails. Only the last is returned as an
// error. A running generation gets a short grace period to finish.
func (app *App) Start(ctx context.Context) error {
	if app.console {
		release := system.AcquireConsole(app.Logger)
		defer release()
	}
	defer func() {
		if err := app.Display.Close(); err != nil {
			app.Logger.Errorf("app", "close display: %v", err)
		}
	}()

	if err := app.Buttons.Start(ctx); err != nil {
		app.Logger.Errorf("input", "start: %v", err)
	}
	defer func() { _ = app.Buttons.Stop() }()

	if err := app.Web.Start(ctx); err != nil {
		return fmt.Errorf("start web server: %w", err)
	}
	defer func() { _ = app.Web.Stop() }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error { return app.runLoop(gctx) })

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-app.exitCh:
			cancel()
			return err
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-app.Buttons.Events():
				if !ok {
					return nil
				}
				if ev == buttons.Exit {
					app.Logger.Infof("input", "exit requested")
					app.Exit(nil)
				}
			}
		}
	})

	err := g.Wait()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	if derr := app.Updater.Drain(drainCtx); derr != nil {
		app.Logger.Infof("app", "generation still running at exit")
	}
	return err
}

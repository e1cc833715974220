package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/clockface/internal/app"
	"github.com/rook-computer/clockface/internal/buttons"
	"github.com/rook-computer/clockface/internal/config"
	"github.com/rook-computer/clockface/internal/metrics"
	"github.com/rook-computer/clockface/internal/render"
	"github.com/rook-computer/clockface/internal/sdapi"
)

const debugLogPath = "./clockface-debug.log"

func main() {
	configPath := flag.String("config", "", "YAML config file; also configurable via "+config.EnvConfigFile)
	debug := flag.Bool("debug", false, "also write the log to "+debugLogPath)
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via CLOCKFACE_STDIO_LOG")
	apiURL := flag.String("api-url", "", "txt2img endpoint; also configurable via "+config.EnvAPIURL)
	listen := flag.String("listen", "", "status API listen address, empty disables it; also configurable via "+config.EnvListenAddr)
	dev := flag.Bool("dev", false, "enable dev mode (permissive CORS); also configurable via "+config.EnvDevMode)
	debugDir := flag.String("debug-dir", "", "write debug PNGs to this directory; also configurable via "+config.EnvDebugDir)
	device := flag.String("device", "", "framebuffer device")
	fps := flag.Int("fps", 0, "frames per second")
	flag.Parse()

	// Redirect first so crashes are diagnosable even when the console is left
	// in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("CLOCKFACE_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-url":
			cfg.Generation.APIURL = *apiURL
		case "listen":
			cfg.Server.ListenAddr = *listen
		case "dev":
			cfg.Server.DevMode = *dev
		case "debug-dir":
			cfg.DebugDir = *debugDir
		case "device":
			cfg.Display.Device = *device
		case "fps":
			cfg.Display.FPS = *fps
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	var out io.Writer = os.Stdout
	if *debug {
		f := app.NewRotatingFile(debugLogPath)
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := app.NewFileLogger(out)
	logger.Infof("main", "clockface starting, api %s", cfg.Generation.APIURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Errorf("main", "%v", err)
		os.Exit(1)
	}
	logger.Infof("main", "clockface stopped")
}

func run(ctx context.Context, cfg config.Config, logger app.Logger) error {
	template, err := sdapi.LoadTemplate(cfg.Generation.PayloadFile)
	if err != nil {
		return err
	}
	client, err := sdapi.NewClient(cfg.Generation.APIURL,
		sdapi.WithTemplate(template),
		sdapi.WithParams(paramsFrom(cfg.Generation)),
		sdapi.WithRetries(cfg.Generation.Retries),
		sdapi.WithTimeout(cfg.Generation.Timeout),
		sdapi.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	display, err := render.OpenFramebuffer(cfg.Display.Device)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Deps{
		Display:   display,
		Generator: client,
		Buttons:   buttons.NewKeyboard(logger),
		Logger:    logger,
		Metrics:   metrics.New(),
		Console:   true,
	})
	if err != nil {
		_ = display.Close()
		return err
	}
	return a.Start(ctx)
}

func paramsFrom(g config.GenerationConfig) sdapi.Params {
	return sdapi.Params{
		Width:          g.Width,
		Height:         g.Height,
		Steps:          g.Steps,
		CFGScale:       g.GuidanceScale,
		ControlWeight:  g.ControlNetConditioningScale,
		GuidanceStart:  g.ControlGuidanceStart,
		GuidanceEnd:    g.ControlGuidanceEnd,
		NegativePrompt: g.NegativePrompt,
	}
}

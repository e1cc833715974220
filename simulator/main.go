package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/clockface/internal/app"
	"github.com/rook-computer/clockface/internal/config"
	"github.com/rook-computer/clockface/internal/metrics"
	"github.com/rook-computer/clockface/internal/render"
	"github.com/rook-computer/clockface/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file; also configurable via "+config.EnvConfigFile)
	listen := flag.String("listen", ":8080", "http listen address; also configurable via "+config.EnvListenAddr)
	dev := flag.Bool("dev", false, "enable dev mode; also configurable via "+config.EnvDevMode)
	debugDir := flag.String("debug-dir", "", "write debug PNGs to this directory; also configurable via "+config.EnvDebugDir)
	latency := flag.Int("latency-ms", 3000, "simulated generation latency")
	fail := flag.Bool("fail", false, "start with generation failures enabled")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = *listen
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Server.ListenAddr = *listen
		case "dev":
			cfg.Server.DevMode = *dev
		case "debug-dir":
			cfg.DebugDir = *debugDir
		}
	})
	cfg.Display.ShowStatus = true
	if err := cfg.Validate(); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := app.NewFileLogger(os.Stdout)
	control := NewSimControl(SimFaults{Fail: *fail, LatencyMs: *latency})
	generator := &SimGenerator{Control: control, Width: cfg.Display.Width, Height: cfg.Display.Height}

	a, err := app.New(cfg, app.Deps{
		Display:   render.NewMemoryDisplay(cfg.Display.Width, cfg.Display.Height),
		Generator: generator,
		Logger:    logger,
		Metrics:   metrics.New(),
		Routes:    func(mux *http.ServeMux) { registerSimEndpoints(mux, control) },
	})
	if err != nil {
		fmt.Println("app error:", err)
		os.Exit(1)
	}

	fmt.Println("Clockface simulator listening on", cfg.Server.ListenAddr)
	if url := web.StatusURL(cfg.Server.ListenAddr); url != "" {
		fmt.Println("API:", url)
	}
	fmt.Printf("Faults: %+v\n", control.Faults())

	if err := a.Start(processCtx); err != nil {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}

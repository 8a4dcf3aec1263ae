// tempchart renders a temperature chart of synthetic daily readings.
//
// By default it writes one chart to <downloads>/PDF/test.pdf and exits.
// -shell opens an interactive session, -serve exposes the HTTP API with
// websocket notifications and -every regenerates the chart on an interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/r3d91ll/tempchart/pkg/api"
	"github.com/r3d91ll/tempchart/pkg/config"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
	"github.com/r3d91ll/tempchart/pkg/schedule"
	"github.com/r3d91ll/tempchart/pkg/shell"
)

const version = "1.0.0"

// errRunFailed reports a one-shot run whose error was already printed.
var errRunFailed = errors.New("chart run failed")

// flags holds the command-line overrides applied on top of the config file.
type flags struct {
	configPath string
	initConfig bool
	version    bool
	preset     string
	format     string
	out        string
	days       int
	shell      bool
	serve      bool
	every      time.Duration
	dryRun     bool
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.configPath, "config", "", "Config file path (default: ./config.yaml)")
	flag.BoolVar(&f.initConfig, "init", false, "Initialize default config file")
	flag.BoolVar(&f.version, "version", false, "Show version and exit")
	flag.StringVar(&f.preset, "preset", "", "Layout preset (wide, compact)")
	flag.StringVar(&f.format, "format", "", "Output format (pdf, svg, png)")
	flag.StringVar(&f.out, "out", "", "Output root directory (default: downloads folder)")
	flag.IntVar(&f.days, "days", 0, "Number of days to chart")
	flag.BoolVar(&f.shell, "shell", false, "Start the interactive shell")
	flag.BoolVar(&f.serve, "serve", false, "Start the HTTP API server")
	flag.DurationVar(&f.every, "every", 0, "Regenerate the chart on this interval (e.g. 15m)")
	flag.BoolVar(&f.dryRun, "dry-run", false, "Paint the chart without writing anything")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	if f.version {
		fmt.Printf("tempchart %s\n", version)
		os.Exit(0)
	}

	cfgPath := f.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	if f.initConfig {
		if err := config.InitConfig(cfgPath); err != nil {
			fail(err)
		}
		fmt.Printf("Config initialized at: %s\n", cfgPath)
		os.Exit(0)
	}

	config.LoadDotEnv()
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fail(err)
	}
	if err := applyFlags(cfg, f); err != nil {
		fail(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	base := pipeline.Options{DryRun: f.dryRun, Version: version}

	switch {
	case f.shell:
		err = runShell(ctx, cfg, cfgPath, base)
	case f.serve:
		err = runServer(ctx, cfg, base)
	case cfg.Schedule.Enabled:
		err = runSchedule(ctx, cfg, base)
	default:
		err = runOnce(ctx, cfg, base)
	}
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, errRunFailed):
		os.Exit(1)
	default:
		fail(err)
	}
}

// applyFlags copies explicit flags into cfg and revalidates it.
func applyFlags(cfg *config.Config, f *flags) error {
	if f.shell && f.serve {
		return cerrors.New(cerrors.ErrConfigInvalid, cerrors.CategoryConfig, "-shell and -serve cannot be combined")
	}
	if f.preset != "" {
		cfg.Chart.Preset = f.preset
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.out != "" {
		cfg.Output.Root = f.out
	}
	if f.days > 0 {
		cfg.Chart.Days = f.days
	}
	if f.every > 0 {
		cfg.Schedule.Enabled = true
		cfg.Schedule.Every = f.every
	}
	return cfg.Validate()
}

func runOnce(ctx context.Context, cfg *config.Config, base pipeline.Options) error {
	base.Notifier = pipeline.NewConsoleNotifier(os.Stdout)
	p, err := pipeline.FromConfig(cfg, base)
	if err != nil {
		return err
	}
	if res := p.Run(ctx); res.Err != nil {
		// already printed by the console notifier
		return errRunFailed
	}
	return nil
}

func runShell(ctx context.Context, cfg *config.Config, cfgPath string, base pipeline.Options) error {
	homeDir, _ := os.UserHomeDir()
	sh, err := shell.New(cfg, shell.Config{
		HistoryFile: filepath.Join(homeDir, ".tempchart_history"),
		ConfigPath:  cfgPath,
		Factory: func(c *config.Config) (*pipeline.Pipeline, error) {
			return pipeline.FromConfig(c, base)
		},
	})
	if err != nil {
		return err
	}
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runSchedule(ctx context.Context, cfg *config.Config, base pipeline.Options) error {
	base.Notifier = pipeline.NewConsoleNotifier(os.Stdout)
	p, err := pipeline.FromConfig(cfg, base)
	if err != nil {
		return err
	}
	sched, err := schedule.New(p, schedule.Options{Every: cfg.Schedule.Every})
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Regenerating every %v. Press Ctrl+C to stop.\n", cfg.Schedule.Every)
	<-ctx.Done()
	sched.Stop()
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, base pipeline.Options) error {
	hub := api.NewHub()
	go hub.Run()
	defer hub.Stop()

	base.Notifier = hub
	p, err := pipeline.FromConfig(cfg, base)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.FromSettings(cfg.Server))
	api.NewSystemHandler(version, cfg).RegisterRoutes(srv.Router())
	api.NewChartHandler(ctx, p).RegisterRoutes(srv.Router())
	api.NewWebSocketHandler(hub).RegisterRoutes(srv.Router())

	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Printf("Serving on http://%s (websocket: ws://%s/ws)\n", srv.Address(), srv.Address())

	if cfg.Schedule.Enabled {
		sched, err := schedule.New(p, schedule.Options{Every: cfg.Schedule.Every})
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func fail(err error) {
	cerrors.Display(err)
	os.Exit(1)
}

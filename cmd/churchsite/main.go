package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churchsite/internal/capture"
	"churchsite/internal/config"
	appLog "churchsite/internal/log"
	"churchsite/internal/posts"
	"churchsite/internal/store"
	"churchsite/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string

	// capturePath, when set, renders one calendar month to PNG and exits.
	capturePath string
	captureYear int
	// captureMonth is 0-indexed; -1 means the current month.
	captureMonth int
	captureDept  string
}

func main() {
	appLog.Info("churchsite starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		appLog.Error("failed to write default config; continuing with defaults", err, "config_path", flags.configPath)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"data_dir", conf.DataDir,
		"posts_dir", conf.PostsDir,
		"refresh", conf.RefreshCron,
		"expand_recurring", conf.ExpandRecurring,
		"capture", flags.capturePath != "",
	)

	ds, err := store.Load(conf.DataDir)
	if err != nil {
		appLog.Error("failed to load data", err, "data_dir", conf.DataDir)
		os.Exit(1)
	}
	holder := store.NewHolder(conf.DataDir, ds)

	pc, err := posts.Load(conf.PostsDir)
	if err != nil {
		appLog.Error("failed to load posts", err, "posts_dir", conf.PostsDir)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, holder, pc)

	if flags.capturePath != "" {
		if err := runCapture(ctx, cancel, conf, srv, flags); err != nil {
			appLog.Error("capture failed", err, "output", flags.capturePath)
			os.Exit(1)
		}
		appLog.Info("churchsite exiting")
		return
	}

	if conf.RefreshCron != "" {
		if _, err := store.ScheduleReload(ctx, holder, conf.RefreshCron, conf.Location()); err != nil {
			appLog.Error("failed to schedule data reload", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
	}

	if err := srv.Run(ctx); err != nil {
		appLog.Error("HTTP server failed", err, "listen", conf.Listen)
		os.Exit(1)
	}
	appLog.Info("churchsite exiting")
}

// runCapture serves the site in the background, screenshots one month and
// stops the server.
func runCapture(ctx context.Context, cancel context.CancelFunc, conf *config.Config, srv *web.Server, flags flagConfig) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	base := "http://" + conf.Listen
	if err := waitHealthy(ctx, base+"/health", 10*time.Second); err != nil {
		return err
	}

	now := time.Now().In(conf.Location())
	year, month := flags.captureYear, flags.captureMonth
	if year == 0 {
		year = now.Year()
	}
	if month < 0 {
		month = int(now.Month()) - 1
	}

	target, err := capture.CalendarURL(base, year, month, flags.captureDept)
	if err != nil {
		return err
	}
	capErr := capture.CaptureCalendarPNG(ctx, capture.Options{
		URL:        target,
		OutputPath: flags.capturePath,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
	})

	cancel()
	if err := <-errCh; err != nil {
		appLog.Error("HTTP server stopped with error", err)
	}
	return capErr
}

func waitHealthy(ctx context.Context, healthURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("server not healthy after %s", timeout)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.capturePath, "capture", "", "Write a PNG of the calendar page to this path and exit")
	flag.IntVar(&cfg.captureYear, "capture-year", 0, "Year to capture (default: current year)")
	flag.IntVar(&cfg.captureMonth, "capture-month", -1, "Month to capture, 0 = January (default: current month)")
	flag.StringVar(&cfg.captureDept, "capture-department", "all", "Department filter for the capture")

	flag.Parse()

	return cfg
}

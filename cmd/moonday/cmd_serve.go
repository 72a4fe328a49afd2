package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"moonday/internal/capture"
	"moonday/internal/config"
	appLog "moonday/internal/log"
	"moonday/internal/refresh"
	"moonday/internal/web"
)

var (
	listenAddr  string
	captureOut  string
	captureURL  string
	captureWait time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the moonday calendar over HTTP",
	Long: `Serves /moondays.ics, a JSON preview under /api/moondays and an HTML
preview under /preview. The calendar is regenerated on the configured cron
schedule and whenever the config file changes.

Generation flags given on the command line keep overriding the file after
a reload. Changes to listen, basic_auth or the timezone used by the refresh
schedule need a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save a PNG screenshot of the preview page",
	Long: `Renders the preview page in headless Chromium and saves a screenshot.
Without --url, a temporary local server is started for the capture.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config if set)")

	captureCmd.Flags().StringVarP(&captureOut, "output", "o", "preview.png", "PNG output path")
	captureCmd.Flags().StringVar(&captureURL, "url", "", "Preview URL of a running server")
	captureCmd.Flags().DurationVar(&captureWait, "timeout", capture.DefaultTimeoutSec*time.Second, "Capture timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if err := cfg.Validate(now()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := refresh.New(cfg, configPath, newGenerator())
	r.SetClock(now)
	r.SetOverrides(func(c *config.Config) {
		applyFlagOverrides(cmd, c)
	})
	srv := web.NewServer(r)

	appLog.Info("moonday serve starting",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"config_path", configPath,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx) })

	err = g.Wait()
	appLog.Info("moonday serve exiting")
	return err
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	url := captureURL
	if url == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r := refresh.New(cfg, "", newGenerator())
		r.SetClock(now)
		base, stop, err := startPreviewServer(r)
		if err != nil {
			return err
		}
		defer stop()
		url = base + "/preview"
	}

	return capture.CapturePreviewPNG(ctx, capture.Options{
		URL:        url,
		OutputPath: captureOut,
		Timeout:    captureWait,
	})
}

// startPreviewServer serves r on a private loopback port for the headless
// browser. The routes skip basic auth since only this process connects.
func startPreviewServer(r *refresh.Refresher) (baseURL string, stop func(), err error) {
	if _, err := r.Refresh(); err != nil {
		return "", nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: web.NewServer(r).LoopbackHandler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("capture server failed", err)
		}
	}()

	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}

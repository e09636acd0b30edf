package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	appLog "churchsite/internal/log"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 1024
	DefaultTimeout = 30 * time.Second

	// readySelector matches the calendar page root once rendered.
	readySelector = `[data-ready="true"]`
)

// Options defines one screenshot of the calendar page.
type Options struct {
	// URL of the page, e.g. from CalendarURL.
	URL string
	// OutputPath is where the PNG is written.
	OutputPath string

	Width   int
	Height  int
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// CalendarURL builds the calendar page address for a month (0-indexed)
// and department under base (e.g. "http://127.0.0.1:8080").
func CalendarURL(base string, year, month int, department string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("capture: invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("capture: base URL %q needs scheme and host", base)
	}
	u = u.JoinPath("calendar")

	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	if department != "" {
		q.Set("department", department)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CaptureCalendarPNG loads the calendar page in headless Chromium, waits
// for the rendered marker and writes a full-page PNG, e.g. for printing
// the monthly schedule in the church bulletin.
func CaptureCalendarPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	appLog.Info("capture start", "url", opts.URL, "width", opts.Width, "height", opts.Height)

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	appLog.Info("capture written", "path", opts.OutputPath, "bytes", len(png))
	return nil
}

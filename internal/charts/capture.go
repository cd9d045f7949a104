package charts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "owidreport/internal/errors"
)

// mapSettleDelay lets the echarts animation finish before the screenshot
const mapSettleDelay = 2 * time.Second

// CaptureHTML loads htmlPath in headless Chrome and saves a full-page PNG.
// It needs a Chrome or Chromium binary on the host.
func CaptureHTML(ctx context.Context, htmlPath, pngPath string, timeout time.Duration) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return apperrors.NewRenderError("failed to resolve chart path", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, timeout)
		defer cancelTimeout()
	}

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(mapSettleDelay),
		chromedp.FullScreenshot(&buf, 90),
	); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to capture %s", filepath.Base(htmlPath)), err)
	}

	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to write %s", pngPath), err)
	}
	return nil
}

package printing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultMaxConcurrent = 2
)

// ChromedpConfig contains configuration for the chromedp capturer
type ChromedpConfig struct {
	// DefaultTimeout bounds one capture, font wait included
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// Headless mode (default: true)
	Headless bool
	// DisableGPU disables GPU hardware acceleration (default: true for server environments)
	DisableGPU bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale is the default device pixel ratio (default: 3)
	Scale float64
	// MaxConcurrent caps simultaneous browser tabs (default: 2)
	MaxConcurrent int64
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpCapturer rasterizes pages with headless Chrome
type ChromedpCapturer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	sem         *semaphore.Weighted
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpCapturer creates a new chromedp-based raster capturer
func NewChromedpCapturer(config *ChromedpConfig) (*ChromedpCapturer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}

	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = DefaultScale
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaultMaxConcurrent
	}
	// Default to headless and disable GPU for server environments
	if !config.Headless {
		config.Headless = true
	}
	if !config.DisableGPU {
		config.DisableGPU = true
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ChromedpCapturer{
		config: config,
		logger: logger,
		sem:    semaphore.NewWeighted(config.MaxConcurrent),
	}
	c.initAllocator()

	return c, nil
}

// initAllocator initializes the Chrome allocator
func (c *ChromedpCapturer) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.config.Headless),
		chromedp.Flag("disable-gpu", c.config.DisableGPU),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("force-color-profile", "srgb"),
		// Font rendering
		chromedp.Flag("font-render-hinting", "none"),
	)

	if c.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if c.config.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), c.config.RemoteURL)
	} else {
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// pageProbe is what prepareScript reports back
type pageProbe struct {
	FontStatus  string   `json:"fontStatus"`
	FailedFonts []string `json:"failedFonts"`
	FontReady   bool     `json:"fontReady"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Found       bool     `json:"found"`
}

// prepareScript neutralizes preview-only styling, waits for every font face
// and measures the page element.
const prepareScript = `(async () => {
  const selector = %q;
  const family = %q;
  document.documentElement.style.background = '#ffffff';
  document.body.style.background = '#ffffff';
  document.documentElement.style.colorScheme = 'light';
  for (const el of document.querySelectorAll('[data-preview-scale], .preview-scale, .transform')) {
    el.style.transform = 'none';
  }
  await document.fonts.ready;
  const failed = [];
  document.fonts.forEach(f => { if (f.status === 'error') failed.push(f.family); });
  const ready = family === '' || document.fonts.check('13pt "' + family + '"');
  const el = document.querySelector(selector);
  const rect = el ? el.getBoundingClientRect() : null;
  return {
    fontStatus: document.fonts.status,
    failedFonts: failed,
    fontReady: ready,
    width: rect ? rect.width : 0,
    height: rect ? Math.max(rect.height, el.scrollHeight) : 0,
    found: !!el,
  };
})()`

// Capture rasterizes req.HTML at req.Scale. The bitmap is clipped to the
// page element and never smaller than the page's native size.
func (c *ChromedpCapturer) Capture(ctx context.Context, req *CaptureRequest) (*Bitmap, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "capture request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	r := *req
	r.withDefaults(c.config.DefaultTimeout, c.config.Scale)

	startTime := time.Now()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, NewRenderError(ErrCodeCaptureTimeout, "waiting for a free browser slot was cancelled", err)
	}
	defer c.sem.Release(1)

	browserCtx, browserCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var probe pageProbe
	var data []byte

	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(r.WidthPx), int64(r.HeightPx), r.Scale, false),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}),
		emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: "light"},
		}),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, r.HTML).Do(ctx)
		}),
		chromedp.Evaluate(fmt.Sprintf(prepareScript, r.Selector, r.FontFamily), &probe,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := checkFonts(&probe, r.FontFamily); err != nil {
				return err
			}
			clip := clipFor(&probe, &r)
			shot := page.CaptureScreenshot().
				WithClip(clip).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true)
			if r.Format == ImageFormatPNG {
				shot = shot.WithFormat(page.CaptureScreenshotFormatPng)
			} else {
				shot = shot.WithFormat(page.CaptureScreenshotFormatJpeg).WithQuality(int64(r.Quality))
			}
			out, err := shot.Do(ctx)
			if err != nil {
				return err
			}
			data = out
			return nil
		}),
	)

	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			c.logger.Warn("page fonts did not load",
				zap.String("error_code", re.Code),
				zap.Strings("failed_fonts", probe.FailedFonts))
			return nil, re
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, NewRenderError(ErrCodeCaptureTimeout,
				fmt.Sprintf("page capture timed out after %v", r.Timeout), err)
		}
		if ctx.Err() != nil {
			return nil, NewRenderError(ErrCodeCaptureTimeout, "page capture was cancelled", ctx.Err())
		}

		c.logger.Error("chromedp capture failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeCaptureFailed, "chromedp execution failed", err)
	}

	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeCaptureFailed, "captured image is empty", nil)
	}

	clip := clipFor(&probe, &r)
	bmp := &Bitmap{
		Data:          data,
		Format:        r.Format,
		WidthPx:       int(math.Round(clip.Width * r.Scale)),
		HeightPx:      int(math.Round(clip.Height * r.Scale)),
		Scale:         r.Scale,
		FontsVerified: true,
		Duration:      time.Since(startTime),
	}

	c.logger.Info("page captured",
		zap.Int("image_bytes", len(data)),
		zap.Int("width_px", bmp.WidthPx),
		zap.Int("height_px", bmp.HeightPx),
		zap.Float64("scale", r.Scale),
		zap.Duration("duration", bmp.Duration))

	return bmp, nil
}

// checkFonts turns a failed or incomplete font load into ErrCodeFontLoad
func checkFonts(p *pageProbe, family string) error {
	if len(p.FailedFonts) > 0 {
		return NewRenderError(ErrCodeFontLoad,
			"fonts failed to load: "+strings.Join(p.FailedFonts, ", "), nil)
	}
	if p.FontStatus != "" && p.FontStatus != "loaded" {
		return NewRenderError(ErrCodeFontLoad, "fonts still loading after ready: "+p.FontStatus, nil)
	}
	if family != "" && !p.FontReady {
		return NewRenderError(ErrCodeFontLoad, "font not available: "+family, nil)
	}
	return nil
}

// clipFor returns the capture region in CSS pixels. The page element
// decides the size when found, floored at the native page size.
func clipFor(p *pageProbe, r *CaptureRequest) *page.Viewport {
	w, h := float64(r.WidthPx), float64(r.HeightPx)
	if p.Found {
		w = math.Max(w, math.Ceil(p.Width))
		h = math.Max(h, math.Ceil(p.Height))
	}
	return &page.Viewport{X: 0, Y: 0, Width: w, Height: h, Scale: 1}
}

// Close releases resources held by the capturer
func (c *ChromedpCapturer) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

// Ensure ChromedpCapturer implements RasterCapturer
var _ RasterCapturer = (*ChromedpCapturer)(nil)

package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultImageBinaryPath = "wkhtmltoimage"
	defaultTimeout         = 30 * time.Second
)

// WkhtmltoimageConfig contains configuration for the wkhtmltoimage capturer
type WkhtmltoimageConfig struct {
	// BinaryPath is the path to the wkhtmltoimage binary
	// If empty, will search in PATH
	BinaryPath string
	// DefaultTimeout for capture operations
	DefaultTimeout time.Duration
	// Scale is the default zoom factor (default: 3)
	Scale float64
	// TempDir for temporary files during capture
	TempDir string
	// JavaScriptDelay in milliseconds, giving web fonts time to arrive
	JavaScriptDelay int
	// Logger for debug output
	Logger *zap.Logger
}

// WkhtmltoimageCapturer rasterizes pages with the wkhtmltoimage tool. It
// cannot observe font loading, so bitmaps are marked as not font-verified.
type WkhtmltoimageCapturer struct {
	config *WkhtmltoimageConfig
	logger *zap.Logger
}

// NewWkhtmltoimageCapturer creates a capturer backed by wkhtmltoimage
func NewWkhtmltoimageCapturer(config *WkhtmltoimageConfig) (*WkhtmltoimageCapturer, error) {
	if config == nil {
		config = &WkhtmltoimageConfig{}
	}

	if config.BinaryPath == "" {
		config.BinaryPath = defaultImageBinaryPath
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultTimeout
	}
	if config.Scale == 0 {
		config.Scale = DefaultScale
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if config.JavaScriptDelay == 0 {
		config.JavaScriptDelay = 500
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("wkhtmltoimage binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WkhtmltoimageCapturer{
		config: config,
		logger: logger,
	}, nil
}

// resolveBinaryPath finds the full path to the binary
func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Capture converts req.HTML to an image
func (w *WkhtmltoimageCapturer) Capture(ctx context.Context, req *CaptureRequest) (*Bitmap, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "capture request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	r := *req
	r.withDefaults(w.config.DefaultTimeout, w.config.Scale)

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	htmlFile, err := os.CreateTemp(w.config.TempDir, "capture-*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeCaptureFailed, "failed to create temp HTML file", err)
	}
	htmlPath := htmlFile.Name()
	defer os.Remove(htmlPath)

	if _, err := htmlFile.WriteString(r.HTML); err != nil {
		htmlFile.Close()
		return nil, NewRenderError(ErrCodeCaptureFailed, "failed to write HTML to temp file", err)
	}
	htmlFile.Close()

	ext := "jpg"
	if r.Format == ImageFormatPNG {
		ext = "png"
	}
	outFile, err := os.CreateTemp(w.config.TempDir, "capture-*."+ext)
	if err != nil {
		return nil, NewRenderError(ErrCodeCaptureFailed, "failed to create temp image file", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	args := w.buildArgs(&r, htmlPath, outPath)

	w.logger.Debug("executing wkhtmltoimage",
		zap.String("binary", w.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, w.config.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeCaptureTimeout,
				fmt.Sprintf("page capture timed out after %v", r.Timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeCaptureTimeout, "page capture was cancelled", err)
		}

		w.logger.Error("wkhtmltoimage failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()),
			zap.String("stdout", stdout.String()))

		return nil, NewRenderError(ErrCodeCaptureFailed,
			"wkhtmltoimage execution failed: "+stderr.String(), err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeCaptureFailed, "failed to read captured image", err)
	}
	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeCaptureFailed, "captured image is empty", nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewRenderError(ErrCodeCaptureFailed, "captured image is not decodable", err)
	}

	bmp := &Bitmap{
		Data:     data,
		Format:   r.Format,
		WidthPx:  cfg.Width,
		HeightPx: cfg.Height,
		Scale:    r.Scale,
		Duration: time.Since(startTime),
	}

	w.logger.Info("page captured",
		zap.Int("image_bytes", len(data)),
		zap.Int("width_px", bmp.WidthPx),
		zap.Int("height_px", bmp.HeightPx),
		zap.Bool("fonts_verified", false),
		zap.Duration("duration", bmp.Duration))

	return bmp, nil
}

// buildArgs constructs the command-line arguments for wkhtmltoimage
func (w *WkhtmltoimageCapturer) buildArgs(r *CaptureRequest, htmlPath, outPath string) []string {
	zoom := strconv.FormatFloat(r.Scale, 'f', -1, 64)
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--width", strconv.Itoa(int(float64(r.WidthPx) * r.Scale)),
		"--height", strconv.Itoa(int(float64(r.HeightPx) * r.Scale)),
		"--zoom", zoom,
		"--disable-smart-width",
		"--enable-javascript",
		"--javascript-delay", strconv.Itoa(w.config.JavaScriptDelay),
		"--disable-local-file-access",
	}
	if r.Format == ImageFormatPNG {
		args = append(args, "--format", "png")
	} else {
		args = append(args, "--format", "jpg", "--quality", strconv.Itoa(r.Quality))
	}
	return append(args, htmlPath, outPath)
}

// Close releases resources (no-op for wkhtmltoimage)
func (w *WkhtmltoimageCapturer) Close() error {
	return nil
}

// Ensure WkhtmltoimageCapturer implements RasterCapturer
var _ RasterCapturer = (*WkhtmltoimageCapturer)(nil)

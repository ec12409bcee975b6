package printing

import (
	"context"
	"errors"
	"time"
)

// A4 at 96 CSS px per inch
const (
	A4WidthPx    = 794
	A4HeightPx   = 1123
	A4WidthMM    = 210.0
	A4HeightMM   = 297.0
	DefaultScale = 3.0
)

// ImageFormat is the encoding of a captured bitmap
type ImageFormat string

const (
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatPNG  ImageFormat = "png"
)

// IsValid checks if the ImageFormat is a valid value
func (f ImageFormat) IsValid() bool {
	return f == ImageFormatJPEG || f == ImageFormatPNG
}

// CaptureRequest contains the parameters for rasterizing one page
type CaptureRequest struct {
	// HTML is the complete page document
	HTML string
	// WidthPx and HeightPx are the native CSS pixel size of the page
	WidthPx  int
	HeightPx int
	// Scale is the device pixel ratio used for the bitmap (default 3)
	Scale float64
	// Selector picks the page element to clip to (default ".page")
	Selector string
	// FontFamily must be loaded before pixels are sampled (optional)
	FontFamily string
	// Format of the bitmap (default JPEG)
	Format ImageFormat
	// Quality for JPEG output, 1-100
	Quality int
	// Timeout overrides the default capture timeout
	Timeout time.Duration
}

// Bitmap is a captured page image
type Bitmap struct {
	Data     []byte
	Format   ImageFormat
	WidthPx  int
	HeightPx int
	Scale    float64
	// FontsVerified is false when the backend could not confirm font loading
	FontsVerified bool
	Duration      time.Duration
}

// RasterCapturer rasterizes a rendered page to a bitmap
type RasterCapturer interface {
	// Capture converts a page document to an upscaled bitmap
	Capture(ctx context.Context, req *CaptureRequest) (*Bitmap, error)
	// Close releases any resources held by the capturer
	Close() error
}

// PDFAssembler wraps a bitmap into a PDF document
type PDFAssembler interface {
	// Assemble produces a single-page A4 PDF filled by the bitmap
	Assemble(ctx context.Context, bmp *Bitmap, title string) ([]byte, error)
}

// RenderError represents an error during capture or assembly
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeCaptureTimeout = "CAPTURE_TIMEOUT"
	ErrCodeCaptureFailed  = "CAPTURE_FAILED"
	ErrCodeFontLoad       = "FONT_LOAD_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeBinaryNotFound = "BINARY_NOT_FOUND"
	ErrCodeAssemblyFailed = "ASSEMBLY_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the RenderError code in err's chain, or ""
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsFontLoadError reports whether err is a font loading failure
func IsFontLoadError(err error) bool {
	return ErrorCode(err) == ErrCodeFontLoad
}

// IsTimeout reports whether err is a capture timeout
func IsTimeout(err error) bool {
	return ErrorCode(err) == ErrCodeCaptureTimeout
}

// withDefaults fills unset request fields
func (r *CaptureRequest) withDefaults(timeout time.Duration, scale float64) {
	if r.WidthPx <= 0 {
		r.WidthPx = A4WidthPx
	}
	if r.HeightPx <= 0 {
		r.HeightPx = A4HeightPx
	}
	if r.Scale <= 0 {
		r.Scale = scale
	}
	if r.Scale <= 0 {
		r.Scale = DefaultScale
	}
	if r.Selector == "" {
		r.Selector = ".page"
	}
	if !r.Format.IsValid() {
		r.Format = ImageFormatJPEG
	}
	if r.Quality <= 0 || r.Quality > 100 {
		r.Quality = 100
	}
	if r.Timeout <= 0 {
		r.Timeout = timeout
	}
}

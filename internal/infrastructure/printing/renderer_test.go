package printing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeCaptureFailed, "capture failed", cause)

	assert.Equal(t, "capture failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no cause", NewRenderError(ErrCodeFontLoad, "no cause", nil).Error())
}

func TestErrorClassification(t *testing.T) {
	font := fmt.Errorf("generate: %w", NewRenderError(ErrCodeFontLoad, "font", nil))
	timeout := NewRenderError(ErrCodeCaptureTimeout, "slow", nil)

	assert.True(t, IsFontLoadError(font))
	assert.False(t, IsTimeout(font))
	assert.True(t, IsTimeout(timeout))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
}

func TestCaptureRequest_WithDefaults(t *testing.T) {
	r := &CaptureRequest{HTML: "<p>x</p>"}
	r.withDefaults(5*time.Second, 0)

	assert.Equal(t, A4WidthPx, r.WidthPx)
	assert.Equal(t, A4HeightPx, r.HeightPx)
	assert.Equal(t, DefaultScale, r.Scale)
	assert.Equal(t, ".page", r.Selector)
	assert.Equal(t, ImageFormatJPEG, r.Format)
	assert.Equal(t, 100, r.Quality)
	assert.Equal(t, 5*time.Second, r.Timeout)

	custom := &CaptureRequest{Scale: 2, Format: ImageFormatPNG, Quality: 80, Timeout: time.Second}
	custom.withDefaults(5*time.Second, 3)
	assert.Equal(t, 2.0, custom.Scale)
	assert.Equal(t, ImageFormatPNG, custom.Format)
	assert.Equal(t, 80, custom.Quality)
	assert.Equal(t, time.Second, custom.Timeout)
}

package printing

import (
	"bytes"
	"context"
	"image"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewChromedpCapturer_Defaults(t *testing.T) {
	c, err := NewChromedpCapturer(nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, defaultChromeTimeout, c.config.DefaultTimeout)
	assert.Equal(t, DefaultScale, c.config.Scale)
	assert.Equal(t, int64(defaultMaxConcurrent), c.config.MaxConcurrent)
	assert.True(t, c.config.Headless)
	assert.True(t, c.config.DisableGPU)
}

func TestChromedpCapturer_RejectsEmptyHTML(t *testing.T) {
	c, err := NewChromedpCapturer(&ChromedpConfig{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Capture(context.Background(), nil)
	assert.Equal(t, ErrCodeInvalidHTML, ErrorCode(err))

	_, err = c.Capture(context.Background(), &CaptureRequest{HTML: "   "})
	assert.Equal(t, ErrCodeInvalidHTML, ErrorCode(err))
}

func TestCheckFonts(t *testing.T) {
	tests := []struct {
		name    string
		probe   pageProbe
		family  string
		wantErr bool
	}{
		{"all loaded", pageProbe{FontStatus: "loaded", FontReady: true}, "Sarabun", false},
		{"no family required", pageProbe{FontStatus: "loaded"}, "", false},
		{"face errored", pageProbe{FontStatus: "loaded", FailedFonts: []string{"Sarabun"}, FontReady: true}, "Sarabun", true},
		{"still loading", pageProbe{FontStatus: "loading", FontReady: true}, "Sarabun", true},
		{"family missing", pageProbe{FontStatus: "loaded"}, "Sarabun", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFonts(&tt.probe, tt.family)
			if tt.wantErr {
				assert.True(t, IsFontLoadError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClipFor(t *testing.T) {
	r := &CaptureRequest{}
	r.withDefaults(time.Second, 3)

	clip := clipFor(&pageProbe{}, r)
	assert.Equal(t, float64(A4WidthPx), clip.Width)
	assert.Equal(t, float64(A4HeightPx), clip.Height)
	assert.Equal(t, 1.0, clip.Scale)

	// a page that overflows grows the clip, a smaller one never shrinks it
	clip = clipFor(&pageProbe{Found: true, Width: 700, Height: 1300.2}, r)
	assert.Equal(t, float64(A4WidthPx), clip.Width)
	assert.Equal(t, 1301.0, clip.Height)
}

func findChrome() string {
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func TestChromedpCapturer_Capture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser capture in short mode")
	}
	if findChrome() == "" {
		t.Skip("no Chrome or Chromium binary on PATH")
	}

	c, err := NewChromedpCapturer(&ChromedpConfig{NoSandbox: true, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer c.Close()

	html := `<!DOCTYPE html><html><body style="background:#333">
<div class="preview-scale" style="transform: scale(0.5)">
<div class="page" style="width:210mm;min-height:297mm">ทดสอบ</div></div></body></html>`

	bmp, err := c.Capture(context.Background(), &CaptureRequest{HTML: html, Format: ImageFormatPNG})
	require.NoError(t, err)

	assert.True(t, bmp.FontsVerified)
	assert.Equal(t, A4WidthPx*3, bmp.WidthPx)
	assert.GreaterOrEqual(t, bmp.HeightPx, A4HeightPx*3)

	img, _, err := image.Decode(bytes.NewReader(bmp.Data))
	require.NoError(t, err)
	assert.Equal(t, bmp.WidthPx, img.Bounds().Dx())

	// the body background is forced white
	r, g, b, _ := img.At(img.Bounds().Dx()-2, img.Bounds().Dy()-2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestChromedpCapturer_MissingFont(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser capture in short mode")
	}
	if findChrome() == "" {
		t.Skip("no Chrome or Chromium binary on PATH")
	}

	c, err := NewChromedpCapturer(&ChromedpConfig{NoSandbox: true})
	require.NoError(t, err)
	defer c.Close()

	html := `<!DOCTYPE html><html><head><style>
@font-face { font-family: "Broken"; src: url("data:font/woff2;base64,AAAA") format("woff2"); }
.page { font-family: "Broken"; }
</style></head><body><div class="page">x</div></body></html>`

	_, err = c.Capture(context.Background(), &CaptureRequest{HTML: html, FontFamily: "Broken", Timeout: 20 * time.Second})
	assert.True(t, IsFontLoadError(err), "got %v", err)
}

package printing

import (
	"bytes"
	"context"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// GofpdfAssembler places a captured bitmap on one A4 page
type GofpdfAssembler struct {
	logger *zap.Logger
}

// NewGofpdfAssembler creates a PDF assembler
func NewGofpdfAssembler(logger *zap.Logger) *GofpdfAssembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GofpdfAssembler{logger: logger}
}

// Assemble produces exactly one portrait A4 page with the bitmap stretched
// to cover it edge to edge. Aspect ratio is not preserved.
func (a *GofpdfAssembler) Assemble(ctx context.Context, bmp *Bitmap, title string) ([]byte, error) {
	if bmp == nil || len(bmp.Data) == 0 {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "bitmap is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "assembly cancelled", err)
	}

	startTime := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("voucher", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()

	imgType := "JPG"
	if bmp.Format == ImageFormatPNG {
		imgType = "PNG"
	}
	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	pdf.RegisterImageOptionsReader("page", opts, bytes.NewReader(bmp.Data))
	pdf.ImageOptions("page", 0, 0, A4WidthMM, A4HeightMM, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to place bitmap", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to write PDF", err)
	}

	a.logger.Debug("PDF assembled",
		zap.Int("pdf_bytes", buf.Len()),
		zap.Int("pages", pdf.PageCount()),
		zap.Duration("duration", time.Since(startTime)))

	return buf.Bytes(), nil
}

// Ensure GofpdfAssembler implements PDFAssembler
var _ PDFAssembler = (*GofpdfAssembler)(nil)

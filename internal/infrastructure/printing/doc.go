// Package printing turns a voucher page into a printable artifact.
//
// The pipeline has three stages:
//   - TemplateEngine renders a voucher.PageDescription to a self-contained
//     A4 HTML document
//   - a RasterCapturer (headless Chrome, or wkhtmltoimage as a fallback)
//     rasterizes that document at a device pixel ratio of 3 after its fonts
//     have loaded
//   - GofpdfAssembler stretches the bitmap over a single A4 page
//
// ArtifactStorage implementations keep the resulting PDFs.
//
// Example usage:
//
//	engine, _ := NewTemplateEngine()
//	html, _ := engine.RenderPage(ctx, page)
//	bmp, err := capturer.Capture(ctx, &CaptureRequest{HTML: html, FontFamily: voucher.PageFontName})
//	if err != nil {
//	    return err
//	}
//	pdf, err := NewGofpdfAssembler(logger).Assemble(ctx, bmp, "pv_PV001")
package printing

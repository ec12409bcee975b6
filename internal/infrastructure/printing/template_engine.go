package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/schoolfin/voucher/internal/domain/voucher"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTemplateName    = "voucher_a4.html"
	defaultPreviewScale = 0.9
)

// TemplateEngine renders page descriptions to complete A4 HTML documents.
// It uses Go's html/template package with the embedded page template.
type TemplateEngine struct {
	tmpl           *template.Template
	fontStylesheet string
	previewScale   float64
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFontStylesheet links a stylesheet that declares the page font, for
// hosts where the font is not installed.
func WithFontStylesheet(url string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.fontStylesheet = url
	}
}

// WithPreviewScale sets the on-screen reduction used by previews
func WithPreviewScale(scale float64) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if scale > 0 {
			e.previewScale = scale
		}
	}
}

// NewTemplateEngine creates a new template engine and parses the embedded
// page template.
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{previewScale: defaultPreviewScale}

	for _, opt := range opts {
		opt(e)
	}

	tmpl, err := template.New(pageTemplateName).Funcs(template.FuncMap{
		"mm":    mmLength,
		"css":   safeCSS,
		"lines": lineBreaks,
		"seq":   seq,
	}).ParseFS(templateFS, "templates/"+pageTemplateName)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse page template", err)
	}
	e.tmpl = tmpl

	return e, nil
}

// pageView is the data bound to the page template
type pageView struct {
	Page           *voucher.PageDescription
	Preview        bool
	PreviewScale   float64
	FontStylesheet string
	DeclarantLabel string
	PositionLabel  string
	SignatureRule  string
}

// RenderPage renders the printable document. The output depends only on
// page, so equal pages give byte-identical HTML.
func (e *TemplateEngine) RenderPage(ctx context.Context, page *voucher.PageDescription) (string, error) {
	return e.render(page, false)
}

// RenderPreview renders the same document wrapped in the reduced-scale
// preview container.
func (e *TemplateEngine) RenderPreview(ctx context.Context, page *voucher.PageDescription) (string, error) {
	return e.render(page, true)
}

func (e *TemplateEngine) render(page *voucher.PageDescription, preview bool) (string, error) {
	if page == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "page is nil", nil)
	}

	view := pageView{
		Page:           page,
		Preview:        preview,
		PreviewScale:   e.previewScale,
		FontStylesheet: e.fontStylesheet,
		DeclarantLabel: voucher.DeclarantLabel,
		PositionLabel:  voucher.PositionLabel,
		SignatureRule:  voucher.SignatureRule,
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to execute page template", err)
	}
	return buf.String(), nil
}

// mmLength formats a millimetre CSS length
func mmLength(v float64) template.CSS {
	return template.CSS(strconv.FormatFloat(v, 'f', -1, 64) + "mm")
}

// safeCSS marks trusted layout constants as CSS
func safeCSS(s string) template.CSS {
	return template.CSS(s)
}

// lineBreaks escapes s and turns newlines into <br>
func lineBreaks(s string) template.HTML {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = template.HTMLEscapeString(p)
	}
	return template.HTML(strings.Join(parts, "<br>"))
}

// seq returns 0..n-1
func seq(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

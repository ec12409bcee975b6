// Package document orchestrates voucher rendering: previews, PDF
// generation, editing sessions and the round trip to the case backend.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/schoolfin/voucher/internal/domain/shared"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/caseapi"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
	"github.com/schoolfin/voucher/internal/infrastructure/printing"
	"github.com/schoolfin/voucher/internal/infrastructure/telemetry"
)

// Errors returned by DocumentService
var (
	ErrCaseAPIDisabled   = shared.NewDomainError("CASE_API_DISABLED", "Case backend is not configured")
	ErrDocumentNotFound  = shared.NewDomainError("DOCUMENT_NOT_FOUND", "No document matches the number")
	ErrArtifactNotStored = shared.NewDomainError("ARTIFACT_NOT_AVAILABLE", "The generation has no stored PDF")
)

// PageRenderer turns a page description into HTML
type PageRenderer interface {
	RenderPage(ctx context.Context, page *voucher.PageDescription) (string, error)
	RenderPreview(ctx context.Context, page *voucher.PageDescription) (string, error)
}

// ArtifactCache holds finished PDFs by content hash
type ArtifactCache interface {
	Get(ctx context.Context, hash string) ([]byte, bool, error)
	Set(ctx context.Context, hash string, data []byte, ttl time.Duration) error
}

// CaseBackend is the external case service
type CaseBackend interface {
	CreateCase(ctx context.Context, token string, req *caseapi.CreateCaseRequest) (*caseapi.Case, error)
	SubmitCase(ctx context.Context, token, caseID string) (*caseapi.SubmitResult, error)
	SearchDocuments(ctx context.Context, token, query string) ([]caseapi.Document, error)
}

// Config tunes capture and caching
type Config struct {
	CaptureTimeout time.Duration
	Scale          float64
	FontFamily     string
	ImageFormat    printing.ImageFormat
	JPEGQuality    int
	CacheTTL       time.Duration
	// RedirectDownloads serves stored PDFs through storage URLs (S3
	// presigned) instead of streaming them
	RedirectDownloads bool
}

// Deps are the collaborators of DocumentService. Cache, Cases and Metrics
// are optional.
type Deps struct {
	Renderer  PageRenderer
	Capturer  printing.RasterCapturer
	Assembler printing.PDFAssembler
	Storage   printing.ArtifactStorage
	Jobs      voucher.GenerationJobRepository
	Drafts    voucher.DraftStore
	Cache     ArtifactCache
	Cases     CaseBackend
	Metrics   *telemetry.GenerationMetrics
	Logger    *zap.Logger
}

// DocumentService handles document rendering operations
type DocumentService struct {
	Deps
	cfg    Config
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(deps Deps, cfg Config) *DocumentService {
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = 30 * time.Second
	}
	if cfg.Scale <= 0 {
		cfg.Scale = printing.DefaultScale
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = voucher.PageFontName
	}
	if !cfg.ImageFormat.IsValid() {
		cfg.ImageFormat = printing.ImageFormatJPEG
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &DocumentService{Deps: deps, cfg: cfg, now: time.Now, logger: l}
}

// NewDocument returns an empty document of type t dated today
func (s *DocumentService) NewDocument(t voucher.DocType) (*voucher.DocumentData, error) {
	return voucher.NewDocument(t, s.now())
}

// DocTypes lists every variant with its table columns
func (s *DocumentService) DocTypes() []DocTypeInfo {
	layouts := voucher.Layouts()
	out := make([]DocTypeInfo, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, DocTypeInfo{
			Type:         l.Type,
			DisplayName:  l.Type.DisplayName(),
			Abbreviation: l.Type.Abbreviation(),
			MinRows:      l.MinRows,
			HasQuantity:  l.Type.HasQuantity(),
			Columns:      l.Columns,
		})
	}
	return out
}

// Layout returns the layout descriptor of t
func (s *DocumentService) Layout(t voucher.DocType) (voucher.Layout, error) {
	return voucher.LayoutFor(t)
}

// Preview renders the live on-screen preview. Nothing is captured.
func (s *DocumentService) Preview(ctx context.Context, data *voucher.DocumentData) (*PreviewResult, error) {
	if data == nil {
		return nil, voucher.ErrInvalidDocType
	}
	page, err := voucher.BuildPage(data)
	if err != nil {
		return nil, err
	}
	html, err := s.Renderer.RenderPreview(ctx, page)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{HTML: html, Page: page, Total: page.Total, Rows: len(page.Rows) + page.PaddingRows}, nil
}

// GenerateArtifact renders data to a one-page A4 PDF. data is copied first,
// so later edits by the caller never reach this generation. Identical
// concurrent requests share one capture; finished PDFs are served from the
// cache by content hash. Nothing is retried and a failure yields no
// artifact.
func (s *DocumentService) GenerateArtifact(ctx context.Context, data *voucher.DocumentData) (*Artifact, error) {
	snap := data.Clone()
	if snap == nil || !snap.Type.IsValid() {
		return nil, voucher.ErrInvalidDocType
	}

	ctx = logger.WithDocType(ctx, string(snap.Type))
	ctx, span := telemetry.StartSpan(ctx, "document.generate",
		telemetry.AttrDocType.String(string(snap.Type)),
		telemetry.AttrDocNo.String(snap.DocNo))
	defer span.End()

	page, err := voucher.BuildPage(snap)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	html, err := s.Renderer.RenderPage(ctx, page)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sum := sha256.Sum256([]byte(html))
	hash := hex.EncodeToString(sum[:])

	if art := s.fromCache(ctx, snap, hash); art != nil {
		span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
		telemetry.SetOK(span)
		return art, nil
	}

	v, err, _ := s.group.Do(hash, func() (any, error) {
		return s.generate(ctx, snap, html, hash)
	})
	if err != nil {
		telemetry.RecordError(span, err, telemetry.AttrErrorCode.String(printing.ErrorCode(err)))
		return nil, err
	}
	telemetry.SetOK(span)
	return v.(*Artifact), nil
}

func (s *DocumentService) fromCache(ctx context.Context, snap *voucher.DocumentData, hash string) *Artifact {
	if s.Cache == nil {
		return nil
	}
	data, ok, err := s.Cache.Get(ctx, hash)
	if err != nil {
		logger.Enrich(ctx, s.logger).Warn("artifact cache lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	art := &Artifact{
		Filename:    snap.Filename(),
		ContentType: PDFContentType,
		Data:        data,
		Size:        len(data),
		Total:       snap.Total(),
		CacheHit:    true,
	}
	if job, err := s.Jobs.FindCompletedByHash(ctx, hash); err == nil {
		art.JobID = job.ID
	}
	s.Metrics.RecordGeneration(ctx, string(snap.Type), "", true)
	return art
}

func (s *DocumentService) generate(ctx context.Context, snap *voucher.DocumentData, html, hash string) (*Artifact, error) {
	log := logger.Enrich(ctx, s.logger).With(
		zap.String("doc_type", string(snap.Type)),
		zap.String("doc_no", snap.DocNo))

	job, err := voucher.NewGenerationJob(snap, hash)
	if err != nil {
		return nil, err
	}
	if err := s.Jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save generation job: %w", err)
	}
	if err := job.StartCapture(); err != nil {
		return nil, err
	}
	if err := s.Jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update generation job: %w", err)
	}

	bmp, err := s.capture(ctx, snap, html)
	if err != nil {
		return nil, s.fail(ctx, log, job, err)
	}
	log.Info("page captured",
		zap.Duration("duration", bmp.Duration),
		zap.Int("image_bytes", len(bmp.Data)),
		zap.Bool("fonts_verified", bmp.FontsVerified))
	if !bmp.FontsVerified {
		log.Warn("capture backend could not verify font loading")
	}

	actx, aspan := telemetry.StartSpan(ctx, "document.assemble", telemetry.AttrDocType.String(string(snap.Type)))
	pdf, err := s.Assembler.Assemble(actx, bmp, snap.Filename())
	telemetry.RecordError(aspan, err)
	aspan.End()
	if err != nil {
		return nil, s.fail(ctx, log, job, err)
	}

	stored, err := s.Storage.Store(ctx, &printing.StoreRequest{
		DocType:  string(snap.Type),
		JobID:    job.ID,
		Filename: job.Filename,
		PDFData:  pdf,
	})
	if err != nil {
		return nil, s.fail(ctx, log, job, err)
	}

	if err := job.Complete(stored.Key, stored.Size); err != nil {
		return nil, err
	}
	if err := s.Jobs.Save(ctx, job); err != nil {
		log.Error("failed to record completed job", zap.Error(err), zap.String("job_id", job.ID.String()))
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, hash, pdf, s.cfg.CacheTTL); err != nil {
			log.Warn("artifact cache store failed", zap.Error(err))
		}
	}

	s.Metrics.RecordGeneration(ctx, string(snap.Type), "", false)
	s.Metrics.RecordPDFSize(ctx, string(snap.Type), len(pdf))
	log.Info("PDF generated",
		zap.String("job_id", job.ID.String()),
		zap.String("filename", job.Filename),
		zap.Int("pdf_bytes", len(pdf)))

	return &Artifact{
		Filename:    job.Filename,
		ContentType: PDFContentType,
		Data:        pdf,
		Size:        len(pdf),
		JobID:       job.ID,
		Total:       job.Total,
	}, nil
}

func (s *DocumentService) capture(ctx context.Context, snap *voucher.DocumentData, html string) (*printing.Bitmap, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	defer cancel()
	cctx, span := telemetry.StartSpan(cctx, "document.capture", telemetry.AttrDocType.String(string(snap.Type)))
	defer span.End()

	start := time.Now()
	bmp, err := s.Capturer.Capture(cctx, &printing.CaptureRequest{
		HTML:       html,
		WidthPx:    printing.A4WidthPx,
		HeightPx:   printing.A4HeightPx,
		Scale:      s.cfg.Scale,
		FontFamily: s.cfg.FontFamily,
		Format:     s.cfg.ImageFormat,
		Quality:    s.cfg.JPEGQuality,
		Timeout:    s.cfg.CaptureTimeout,
	})
	s.Metrics.RecordCapture(ctx, string(snap.Type), time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err, telemetry.AttrErrorCode.String(printing.ErrorCode(err)))
		return nil, err
	}
	if bmp == nil || len(bmp.Data) == 0 {
		err := printing.NewRenderError(printing.ErrCodeCaptureFailed, "capture returned no image", nil)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return bmp, nil
}

// fail records err on the job and returns it unchanged
func (s *DocumentService) fail(ctx context.Context, log *zap.Logger, job *voucher.GenerationJob, err error) error {
	code := printing.ErrorCode(err)
	if code == "" {
		code = printing.ErrCodeCaptureFailed
	}
	log.Error("PDF generation failed",
		zap.String("job_id", job.ID.String()),
		zap.String("error_code", code),
		zap.Error(err))

	if ferr := job.Fail(code, err.Error()); ferr == nil {
		if serr := s.Jobs.Save(ctx, job); serr != nil {
			log.Error("failed to record failed job", zap.Error(serr))
		}
	}
	s.Metrics.RecordGeneration(ctx, string(job.DocType), code, false)
	return err
}

// GetJob returns one generation job
func (s *DocumentService) GetJob(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	job, err := s.Jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toJobResponse(job), nil
}

// ListJobs returns the newest jobs first
func (s *DocumentService) ListJobs(ctx context.Context, limit int) ([]JobResponse, error) {
	jobs, err := s.Jobs.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation jobs: %w", err)
	}
	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = *toJobResponse(&jobs[i])
	}
	return out, nil
}

// Download opens the stored PDF of a completed job, or returns its storage
// URL when downloads are redirected
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (*Download, error) {
	job, err := s.Jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsCompleted() || job.StorageKey == "" {
		return nil, ErrArtifactNotStored
	}

	if s.cfg.RedirectDownloads {
		u, err := s.Storage.URL(ctx, job.StorageKey)
		if err != nil {
			return nil, err
		}
		return &Download{Job: toJobResponse(job), RedirectURL: u}, nil
	}

	body, err := s.Storage.Get(ctx, job.StorageKey)
	if err != nil {
		if errors.Is(err, printing.ErrArtifactNotFound) {
			return nil, ErrArtifactNotStored
		}
		return nil, err
	}
	return &Download{Job: toJobResponse(job), Body: body}, nil
}

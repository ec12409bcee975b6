package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/cache"
	"github.com/schoolfin/voucher/internal/infrastructure/caseapi"
	"github.com/schoolfin/voucher/internal/infrastructure/persistence"
	"github.com/schoolfin/voucher/internal/infrastructure/printing"
	"github.com/schoolfin/voucher/internal/interfaces/http/handler"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
	"github.com/schoolfin/voucher/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Mocks
// =============================================================================

type mockCapturer struct{ mock.Mock }

func (m *mockCapturer) Capture(ctx context.Context, req *printing.CaptureRequest) (*printing.Bitmap, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Bitmap), args.Error(1)
}

func (m *mockCapturer) Close() error { return nil }

type mockAssembler struct{ mock.Mock }

func (m *mockAssembler) Assemble(ctx context.Context, bmp *printing.Bitmap, title string) ([]byte, error) {
	args := m.Called(ctx, bmp, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.StoreResult), args.Error(1)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type mockCases struct{ mock.Mock }

func (m *mockCases) CreateCase(ctx context.Context, token string, req *caseapi.CreateCaseRequest) (*caseapi.Case, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caseapi.Case), args.Error(1)
}

func (m *mockCases) SubmitCase(ctx context.Context, token, caseID string) (*caseapi.SubmitResult, error) {
	args := m.Called(ctx, token, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caseapi.SubmitResult), args.Error(1)
}

func (m *mockCases) SearchDocuments(ctx context.Context, token, query string) ([]caseapi.Document, error) {
	args := m.Called(ctx, token, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]caseapi.Document), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

// =============================================================================
// Fixture
// =============================================================================

var testPDF = []byte("%PDF-1.3\n% test\n%%EOF")

const storedKey = "pv/2025/03/job.pdf"

type apiFixture struct {
	engine    *gin.Engine
	capturer  *mockCapturer
	assembler *mockAssembler
	storage   *mockStorage
	cases     *mockCases
}

func newAPI(t *testing.T, opts ...func(*document.Config)) *apiFixture {
	t.Helper()
	middleware.SetupValidator()

	tmpl, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	drafts := cache.NewInMemoryDraftStore(time.Hour, time.Hour)
	t.Cleanup(func() { drafts.Close() })

	f := &apiFixture{
		capturer:  new(mockCapturer),
		assembler: new(mockAssembler),
		storage:   new(mockStorage),
		cases:     new(mockCases),
	}
	cfg := document.Config{CaptureTimeout: 5 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}
	svc := document.NewDocumentService(document.Deps{
		Renderer:  tmpl,
		Capturer:  f.capturer,
		Assembler: f.assembler,
		Storage:   f.storage,
		Jobs:      persistence.NewInMemoryGenerationJobRepository(50),
		Drafts:    drafts,
		Cases:     f.cases,
		Logger:    zaptest.NewLogger(t),
	}, cfg)

	docs := handler.NewDocumentHandler(svc)
	f.engine = gin.New()
	f.engine.Use(middleware.RequestID())
	router.NewRouter(f.engine).
		Register(handler.DocTypeRoutes(docs)).
		Register(handler.DocumentRoutes(docs, 10*time.Second)).
		Register(handler.DraftRoutes(handler.NewDraftHandler(svc), 10*time.Second)).
		Register(handler.GenerationRoutes(handler.NewGenerationHandler(svc))).
		Setup()
	return f
}

func (f *apiFixture) expectSuccess() {
	f.capturer.On("Capture", mock.Anything, mock.Anything).
		Return(&printing.Bitmap{Data: []byte{0xFF, 0xD8}, Format: printing.ImageFormatJPEG, FontsVerified: true}, nil)
	f.assembler.On("Assemble", mock.Anything, mock.Anything, mock.Anything).Return(testPDF, nil)
	f.storage.On("Store", mock.Anything, mock.Anything).
		Return(&printing.StoreResult{Key: storedKey, Size: int64(len(testPDF))}, nil)
}

func (f *apiFixture) do(method, path string, body any, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func sampleDocument() map[string]any {
	return map[string]any{
		"type":     "pv",
		"date":     "7",
		"month":    "มีนาคม",
		"year":     "2568",
		"name":     "นางสาวสมหญิง ใจดี",
		"position": "ครู",
		"items": []map[string]any{
			{"id": "i-1", "description": "กระดาษ A4", "quantity": "10", "unit": "รีม", "price": "150"},
		},
	}
}

type draftBody struct {
	ID       string               `json:"id"`
	Document voucher.DocumentData `json:"document"`
	Total    string               `json:"total"`
}

func (f *apiFixture) createDraft(t *testing.T) draftBody {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/drafts", sampleDocument())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var d draftBody
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &d))
	return d
}

// =============================================================================
// Document types and previews
// =============================================================================

func TestDocTypes(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/api/v1/doc-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []document.DocTypeInfo
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &types))
	assert.Len(t, types, 6)

	w = f.do(http.MethodGet, "/api/v1/doc-types/withdrawal/layout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/doc-types/invoice/layout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_DOC_TYPE", errorCode(t, w))
}

func TestNewDocument(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodPost, "/api/v1/documents/new?type=rv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data voucher.DocumentData
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, voucher.DocTypeReceiveVoucher, data.Type)
	assert.Len(t, data.Items, 1)

	for _, q := range []string{"", "?type=invoice"} {
		w = f.do(http.MethodPost, "/api/v1/documents/new"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
		assert.NotEmpty(t, env.Error.Details)
	}
}

func TestPreview(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodPost, "/api/v1/documents/preview", sampleDocument())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		HTML           string `json:"html"`
		Total          string `json:"total"`
		TotalFormatted string `json:"totalFormatted"`
		Rows           int    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, "1500.00", res.Total)
	assert.Equal(t, "1,500.00", res.TotalFormatted)
	assert.Equal(t, 12, res.Rows)
	assert.Contains(t, res.HTML, "นางสาวสมหญิง ใจดี")

	w = f.do(http.MethodPost, "/api/v1/documents/preview", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_JSON", errorCode(t, w))
}

// =============================================================================
// PDF generation
// =============================================================================

func TestGeneratePDF(t *testing.T) {
	f := newAPI(t)
	f.expectSuccess()

	w := f.do(http.MethodPost, "/api/v1/documents/pdf", sampleDocument())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=pv_draft.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get("X-Generation-ID"))
	assert.Equal(t, testPDF, w.Body.Bytes())
}

func TestGeneratePDF_NumberedFilename(t *testing.T) {
	f := newAPI(t)
	f.expectSuccess()

	doc := sampleDocument()
	doc["type"] = "withdrawal"
	doc["docNo"] = "WD-07"
	w := f.do(http.MethodPost, "/api/v1/documents/pdf", doc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=withdrawal_WD-07.pdf", w.Header().Get("Content-Disposition"))
}

func TestGeneratePDF_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"font load", printing.NewRenderError(printing.ErrCodeFontLoad, "font Sarabun did not load", nil),
			http.StatusUnprocessableEntity, "ERR_FONT_LOAD_FAILED"},
		{"capture timeout", printing.NewRenderError(printing.ErrCodeCaptureTimeout, "capture timed out", context.DeadlineExceeded),
			http.StatusGatewayTimeout, "ERR_CAPTURE_TIMEOUT"},
		{"renderer missing", printing.NewRenderError(printing.ErrCodeBinaryNotFound, "wkhtmltoimage not found", nil),
			http.StatusServiceUnavailable, "ERR_RENDERER_MISSING"},
		{"browser crash", printing.NewRenderError(printing.ErrCodeCaptureFailed, "target closed", nil),
			http.StatusInternalServerError, "ERR_CAPTURE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPI(t)
			f.capturer.On("Capture", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/documents/pdf", sampleDocument(), "X-Request-ID", "req-42")
			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, "req-42", env.Error.RequestID)
			assert.Empty(t, w.Header().Get("Content-Disposition"))
		})
	}
}

func TestGeneratePDF_InvalidDocType(t *testing.T) {
	f := newAPI(t)
	doc := sampleDocument()
	doc["type"] = "invoice"

	w := f.do(http.MethodPost, "/api/v1/documents/pdf", doc)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_DOC_TYPE", errorCode(t, w))
	f.capturer.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

// =============================================================================
// Drafts
// =============================================================================

func TestDraftEditing(t *testing.T) {
	f := newAPI(t)
	d := f.createDraft(t)
	require.Len(t, d.Document.Items, 1)
	assert.Equal(t, "1500.00", d.Total)
	base := "/api/v1/drafts/" + d.ID

	w := f.do(http.MethodPatch, base, map[string]any{"docNo": "PV-9", "purpose": "จัดซื้อวัสดุ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, base+"/items", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var added voucher.LineItem
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &added))
	assert.NotEmpty(t, added.ID)

	w = f.do(http.MethodPatch, base+"/items/"+added.ID, map[string]any{"description": "ปากกา", "quantity": "5", "price": "20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got draftBody
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, "PV-9", got.Document.DocNo)
	assert.Equal(t, "1600.00", got.Total)

	w = f.do(http.MethodDelete, base+"/items/"+added.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodDelete, base+"/items/"+d.Document.Items[0].ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_LAST_ITEM", errorCode(t, w))

	w = f.do(http.MethodDelete, base+"/items/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_ITEM_NOT_FOUND", errorCode(t, w))

	w = f.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_DRAFT_NOT_FOUND", errorCode(t, w))
}

func TestDraft_EmptyBodyStartsBlankDocument(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodPost, "/api/v1/drafts?type=jv", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var d draftBody
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &d))
	assert.Equal(t, voucher.DocTypeJournalVoucher, d.Document.Type)
	assert.Len(t, d.Document.Items, 1)
}

func TestDraft_BadParams(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/api/v1/drafts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_INPUT", errorCode(t, w))

	d := f.createDraft(t)
	w = f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/pull", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "docNo", env.Error.Details[0].Field)
}

func TestDraft_GeneratePDF(t *testing.T) {
	f := newAPI(t)
	f.expectSuccess()
	d := f.createDraft(t)

	w := f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "attachment; filename=pv_draft.pdf", w.Header().Get("Content-Disposition"))
}

func TestDraft_Pull(t *testing.T) {
	f := newAPI(t)
	d := f.createDraft(t)

	f.cases.On("SearchDocuments", mock.Anything, "tok", "PS-0090").Return([]caseapi.Document{
		{DocNo: "PS-0090", Items: []caseapi.DocumentItem{
			{Description: "หมึกพิมพ์", Quantity: voucher.NewAmount("2"), Unit: "กล่อง", Price: voucher.NewAmount("350")},
		}},
	}, nil)

	w := f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/pull", map[string]any{"docNo": "PS-0090"},
		"Authorization", "Bearer tok")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Source string    `json:"source"`
		Added  int       `json:"added"`
		Draft  draftBody `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, "PS-0090", res.Source)
	assert.Equal(t, 1, res.Added)
	assert.Len(t, res.Draft.Document.Items, 2)
	assert.Equal(t, "2200.00", res.Draft.Total)
}

func TestDraft_Submit(t *testing.T) {
	t.Run("returns the numbered PDF", func(t *testing.T) {
		f := newAPI(t)
		f.expectSuccess()
		d := f.createDraft(t)

		f.cases.On("CreateCase", mock.Anything, "tok", mock.Anything).Return(&caseapi.Case{ID: "c-1", CaseNo: "CASE-0001"}, nil)
		f.cases.On("SubmitCase", mock.Anything, "tok", "c-1").Return(&caseapi.SubmitResult{DocNo: "PV-0042"}, nil)

		w := f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/submit", map[string]any{"categoryId": "cat-1"},
			"Authorization", "Bearer tok")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "PV-0042", w.Header().Get("X-Doc-No"))
		assert.Equal(t, "c-1", w.Header().Get("X-Case-ID"))
		assert.Equal(t, "attachment; filename=pv_PV-0042.pdf", w.Header().Get("Content-Disposition"))
	})

	t.Run("case backend rejection", func(t *testing.T) {
		f := newAPI(t)
		d := f.createDraft(t)
		f.cases.On("CreateCase", mock.Anything, "", mock.Anything).
			Return(nil, &caseapi.CaseAPIError{Status: http.StatusUnprocessableEntity, Message: "category_id is required"})

		w := f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/submit", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_CASE_API", env.Error.Code)
		assert.Contains(t, env.Error.Message, "category_id is required")
	})

	t.Run("case backend unreachable", func(t *testing.T) {
		f := newAPI(t)
		d := f.createDraft(t)
		f.cases.On("CreateCase", mock.Anything, "", mock.Anything).
			Return(nil, errors.Join(caseapi.ErrUnavailable, errors.New("dial tcp: refused")))

		w := f.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/submit", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "ERR_CASE_API_UNAVAILABLE", errorCode(t, w))
	})
}

// =============================================================================
// Generations
// =============================================================================

func TestGenerations(t *testing.T) {
	t.Run("lists and streams", func(t *testing.T) {
		f := newAPI(t)
		f.expectSuccess()

		w := f.do(http.MethodPost, "/api/v1/documents/pdf", sampleDocument())
		require.Equal(t, http.StatusOK, w.Code)
		jobID := w.Header().Get("X-Generation-ID")

		w = f.do(http.MethodGet, "/api/v1/generations?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), jobID)
		assert.Contains(t, w.Body.String(), `"total":1`)

		w = f.do(http.MethodGet, "/api/v1/generations/"+jobID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		f.storage.On("Get", mock.Anything, storedKey).Return(io.NopCloser(bytes.NewReader(testPDF)), nil)
		w = f.do(http.MethodGet, "/api/v1/generations/"+jobID+"/download", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=pv_draft.pdf", w.Header().Get("Content-Disposition"))
		assert.Equal(t, testPDF, w.Body.Bytes())
	})

	t.Run("redirects to storage", func(t *testing.T) {
		f := newAPI(t, func(c *document.Config) { c.RedirectDownloads = true })
		f.expectSuccess()

		w := f.do(http.MethodPost, "/api/v1/documents/pdf", sampleDocument())
		require.Equal(t, http.StatusOK, w.Code)
		jobID := w.Header().Get("X-Generation-ID")

		url := "https://s3.example/vouchers/pv.pdf?X-Amz-Signature=abc"
		f.storage.On("URL", mock.Anything, storedKey).Return(url, nil)
		w = f.do(http.MethodGet, "/api/v1/generations/"+jobID+"/download", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, url, w.Header().Get("Location"))
	})

	t.Run("limit out of range", func(t *testing.T) {
		f := newAPI(t)
		w := f.do(http.MethodGet, "/api/v1/generations?limit=1000", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_VALIDATION", errorCode(t, w))
	})

	t.Run("failed job", func(t *testing.T) {
		f := newAPI(t)
		f.capturer.On("Capture", mock.Anything, mock.Anything).
			Return(nil, printing.NewRenderError(printing.ErrCodeFontLoad, "font", nil))
		_ = f.do(http.MethodPost, "/api/v1/documents/pdf", sampleDocument())

		w := f.do(http.MethodGet, "/api/v1/generations", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var jobs []document.JobResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, printing.ErrCodeFontLoad, jobs[0].ErrorCode)

		w = f.do(http.MethodGet, "/api/v1/generations/"+jobs[0].ID.String()+"/download", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_ARTIFACT_NOT_AVAILABLE", errorCode(t, w))
	})
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     handler.Pinger
		status int
		body   string
	}{
		{"no database", nil, http.StatusOK, `"database":"disabled"`},
		{"database up", stubPinger{}, http.StatusOK, `"database":"ok"`},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, `"status":"unhealthy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			handler.RegisterHealth(engine, handler.NewHealthHandler("voucher", "1.2.3", tt.db))

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
		})
	}
}

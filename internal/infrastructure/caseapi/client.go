// Package caseapi is a client for the school finance case backend, which
// issues case and document numbers and indexes submitted documents.
package caseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/config"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
)

const maxResponseSize = 4 << 20

// ErrUnavailable wraps transport failures
var ErrUnavailable = errors.New("case backend unavailable")

// CaseAPIError is an error reported by the backend
type CaseAPIError struct {
	Status  int
	Code    string
	Message string
}

func (e *CaseAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("case api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("case api: %d: %s", e.Status, e.Message)
}

// FundingOperating is the funding type used for voucher cases
const FundingOperating = "OPERATING"

// CreateCaseRequest is the body of POST /cases
type CreateCaseRequest struct {
	CategoryID      string      `json:"category_id"`
	RequestedAmount json.Number `json:"requested_amount"`
	Purpose         string      `json:"purpose"`
	DepartmentID    string      `json:"department_id"`
	FundingType     string      `json:"funding_type"`
}

// Case is a case record
type Case struct {
	ID              string      `json:"id"`
	CaseNo          string      `json:"case_no"`
	DocNo           string      `json:"doc_no,omitempty"`
	Status          string      `json:"status,omitempty"`
	RequestedAmount json.Number `json:"requested_amount,omitempty"`
}

// SubmitResult is returned by POST /cases/{id}/submit
type SubmitResult struct {
	DocNo  string `json:"doc_no"`
	Status string `json:"status"`
}

// DocumentItem is a line of a searched document. Amount fields arrive as
// numbers or strings.
type DocumentItem struct {
	Description string         `json:"description"`
	Purpose     string         `json:"purpose"`
	Quantity    voucher.Amount `json:"quantity"`
	Unit        string         `json:"unit"`
	Price       voucher.Amount `json:"price"`
	Amount      voucher.Amount `json:"amount"`
}

// Document is a search hit
type Document struct {
	ID      string         `json:"id"`
	DocNo   string         `json:"doc_no"`
	CaseNo  string         `json:"case_no"`
	Purpose string         `json:"purpose"`
	Items   []DocumentItem `json:"items"`
}

// Number returns doc_no, falling back to case_no
func (d Document) Number() string {
	if d.DocNo != "" {
		return d.DocNo
	}
	return d.CaseNo
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Client calls the case backend. The bearer token is passed on every call.
type Client struct {
	baseURL    string
	timeout    time.Duration
	devToken   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures Client
type Option func(*Client)

// WithHTTPClient replaces the base HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg config.CaseAPIConfig, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid case api base url: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		devToken:   cfg.DevToken,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateCase opens a case
func (c *Client) CreateCase(ctx context.Context, token string, req *CreateCaseRequest) (*Case, error) {
	var out Case
	if err := c.do(ctx, token, http.MethodPost, "/cases", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitCase submits a case for approval; the backend may assign a doc_no
func (c *Client) SubmitCase(ctx context.Context, token, caseID string) (*SubmitResult, error) {
	if caseID == "" {
		return nil, errors.New("case id is required")
	}
	var out SubmitResult
	if err := c.do(ctx, token, http.MethodPost, "/cases/"+url.PathEscape(caseID)+"/submit", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchDocuments finds documents by number
func (c *Client) SearchDocuments(ctx context.Context, token, query string) ([]Document, error) {
	var out []Document
	if err := c.do(ctx, token, http.MethodGet, "/documents/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// httpClientFor wraps the base client with a static bearer token. Without
// any token the base client is used as is.
func (c *Client) httpClientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		token = c.devToken
	}
	if token == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("case api: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("case api: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClientFor(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("case api: failed to read response: %w", err)
	}

	logger.Enrich(ctx, c.logger).Debug("case api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &CaseAPIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("case api: invalid response body: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &CaseAPIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("case api: failed to decode data: %w", err)
	}
	return nil
}

package caseapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/schoolfin/voucher/internal/infrastructure/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc, devToken string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.CaseAPIConfig{
		BaseURL:  srv.URL + "/api/",
		Timeout:  2 * time.Second,
		DevToken: devToken,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(config.CaseAPIConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestClient_CreateAndSubmit(t *testing.T) {
	var created CreateCaseRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/cases":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":"c-1","case_no":"CASE-0001","status":"DRAFT"}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/cases/c-1/submit":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"doc_no":"PV-0042","status":"PENDING"}}`)
		default:
			http.NotFound(w, r)
		}
	}, "dev-token")

	ctx := context.Background()
	cs, err := c.CreateCase(ctx, "user-token", &CreateCaseRequest{
		CategoryID:      "cat-1",
		RequestedAmount: json.Number("1500.00"),
		Purpose:         "ค่าวัสดุ : กระดาษ A4",
		DepartmentID:    "วิชาการ",
		FundingType:     FundingOperating,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", cs.ID)
	assert.Equal(t, "CASE-0001", cs.CaseNo)
	assert.Equal(t, json.Number("1500.00"), created.RequestedAmount)
	assert.Equal(t, "OPERATING", created.FundingType)

	res, err := c.SubmitCase(ctx, "user-token", cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "PV-0042", res.DocNo)
}

func TestClient_RequestedAmountIsANumber(t *testing.T) {
	b, err := json.Marshal(CreateCaseRequest{RequestedAmount: json.Number("2500.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"requested_amount":2500.50`)
}

func TestClient_TokenSelection(t *testing.T) {
	tests := []struct {
		name     string
		devToken string
		token    string
		want     string
	}{
		{"caller token wins", "dev", "caller", "Bearer caller"},
		{"dev token fallback", "dev", "", "Bearer dev"},
		{"no token at all", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
			}, tt.devToken)

			_, err := c.SearchDocuments(context.Background(), tt.token, "PV")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_SearchDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/search", r.URL.Path)
		assert.Equal(t, "ขอซื้อ 01", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"id":"d1","doc_no":"","case_no":"CASE-7","items":[
				{"description":"หมึกพิมพ์","quantity":2,"unit":"กล่อง","price":"350"},
				{"purpose":"ค่าขนส่ง","amount":120}
			]}
		]}`)
	}, "")

	docs, err := c.SearchDocuments(context.Background(), "t", "ขอซื้อ 01")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "CASE-7", docs[0].Number())
	require.Len(t, docs[0].Items, 2)
	assert.Equal(t, "2", docs[0].Items[0].Quantity.String())
	assert.Equal(t, "350", docs[0].Items[0].Price.String())
	assert.Equal(t, "ค่าขนส่ง", docs[0].Items[1].Purpose)
	assert.Equal(t, "120", docs[0].Items[1].Amount.String())
	assert.True(t, docs[0].Items[1].Price.IsBlank())
}

func TestClient_Errors(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"category_id is required"}}`)
		}, "")

		_, err := c.CreateCase(context.Background(), "t", &CreateCaseRequest{})
		var apiErr *CaseAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Equal(t, "category_id is required", apiErr.Message)
	})

	t.Run("success false with 200", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":false,"message":"case locked"}`)
		}, "")

		_, err := c.SubmitCase(context.Background(), "t", "c-9")
		var apiErr *CaseAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "case locked", apiErr.Message)
	})

	t.Run("non JSON gateway error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		}, "")

		_, err := c.SearchDocuments(context.Background(), "t", "x")
		var apiErr *CaseAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Equal(t, "Bad Gateway", apiErr.Message)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		c, err := NewClient(config.CaseAPIConfig{BaseURL: base, Timeout: time.Second})
		require.NoError(t, err)
		_, err = c.SearchDocuments(context.Background(), "", "x")
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("empty case id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "")
		_, err := c.SubmitCase(context.Background(), "t", "")
		assert.Error(t, err)
	})
}

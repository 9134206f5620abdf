package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice/internal/invoice"
	"einvoice/internal/store"
	"einvoice/internal/validation"
)

const testSecret = "test-secret"

const scenarioJSON = `{
  "invoiceId": "INV1",
  "issueDate": "2025-01-01",
  "dueDate": "2025-01-10",
  "currency": "AUD",
  "buyer": "B",
  "supplier": "S",
  "buyerAddress": {"street": "1 Rd", "country": "AUS"},
  "supplierAddress": {"street": "2 Rd", "country": "AUS"},
  "total": 100,
  "items": [{"name": "X", "count": 1, "cost": 100}],
  "paymentAccountId": "1",
  "paymentAccountName": "N",
  "financialInstitutionBranchId": "2"
}`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type response struct {
	Status             string          `json:"status"`
	Message            string          `json:"message"`
	Data               json.RawMessage `json:"data"`
	ValidationErrors   []string        `json:"validationErrors"`
	ValidationWarnings []string        `json:"validationWarnings"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

func newClient(t *testing.T) *client {
	svc := invoice.NewService(store.NewMemoryStore(), validation.NewValidator())
	return &client{t: t, router: NewRouter(svc, Options{JWTSecret: testSecret})}
}

func (c *client) do(user, method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := IssueToken(testSecret, user, time.Hour)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var r response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return r
}

func (c *client) create(user, body string) invoiceData {
	c.t.Helper()
	w := c.do(user, http.MethodPost, "/api/invoices", body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var data invoiceData
	require.NoError(c.t, json.Unmarshal(decode(c.t, w).Data, &data))
	return data
}

func TestHealthIsOpen(t *testing.T) {
	w := newClient(t).do("", http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	c := newClient(t)

	w := c.do("", http.MethodGet, "/api/invoices", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	token, err := IssueToken("other-secret", "alice", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken(testSecret, "alice", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateInvoice(t *testing.T) {
	c := newClient(t)

	w := c.do("alice", http.MethodPost, "/api/invoices", scenarioJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	r := decode(t, w)
	assert.Equal(t, "success", r.Status)
	assert.Empty(t, r.ValidationErrors)

	var data invoiceData
	require.NoError(t, json.Unmarshal(r.Data, &data))
	assert.Equal(t, "INV1", data.InvoiceID)
	assert.True(t, data.Valid)
	assert.Contains(t, data.XML, "<cbc:PayableAmount currencyID=\"AUD\">100</cbc:PayableAmount>")

	w = c.do("alice", http.MethodPost, "/api/invoices", scenarioJSON)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	c := newClient(t)

	w := c.do("alice", http.MethodPost, "/api/invoices", `{"invoiceId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := strings.Replace(scenarioJSON, `"total": 100`, `"total": 99`, 1)
	w = c.do("alice", http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	r := decode(t, w)
	assert.Equal(t, "error", r.Status)
	require.Len(t, r.ValidationErrors, 1)
	assert.Contains(t, r.ValidationErrors[0], "total")
}

func TestCreateInvalidInvoiceIsStored(t *testing.T) {
	c := newClient(t)

	body := strings.Replace(scenarioJSON, `"country": "AUS"}`, `"country": "ZZZ"}`, 1)
	w := c.do("alice", http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	r := decode(t, w)
	assert.Equal(t, "error", r.Status)
	require.Len(t, r.ValidationErrors, 1)
	assert.Contains(t, r.ValidationErrors[0], "ZZZ")

	var data invoiceData
	require.NoError(t, json.Unmarshal(r.Data, &data))
	assert.False(t, data.Valid)
	assert.Contains(t, r.Message, data.ID.String())

	path := "/api/invoices/" + data.ID.String()
	assert.Equal(t, http.StatusOK, c.do("alice", http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("alice", http.MethodPost, path+"/validate", "").Code)

	// Fixing the data through an update turns the record valid.
	w = c.do("alice", http.MethodPut, path, scenarioJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "success", decode(t, w).Status)

	// Breaking it again is reported as an error.
	w = c.do("alice", http.MethodPut, path, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestInvoiceLifecycle(t *testing.T) {
	c := newClient(t)
	data := c.create("alice", scenarioJSON)
	path := "/api/invoices/" + data.ID.String()

	w := c.do("alice", http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do("alice", http.MethodGet, path+"/xml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.True(t, strings.HasPrefix(w.Body.String(), "<?xml"))

	w = c.do("alice", http.MethodGet, path+"/qr", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = c.do("alice", http.MethodPost, path+"/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w).Status)

	// Not visible to bob until shared.
	assert.Equal(t, http.StatusNotFound, c.do("bob", http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusOK, c.do("alice", http.MethodPost, path+"/share", `{"userId":"bob"}`).Code)
	assert.Equal(t, http.StatusOK, c.do("bob", http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, c.do("bob", http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("alice", http.MethodPost, path+"/share", `{}`).Code)

	updated := strings.Replace(scenarioJSON, `"buyer": "B"`, `"buyer": "New Buyer"`, 1)
	w = c.do("alice", http.MethodPut, path, updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "New Buyer")

	assert.Equal(t, http.StatusOK, c.do("alice", http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, c.do("alice", http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("alice", http.MethodGet, "/api/invoices/not-a-uuid", "").Code)
}

func TestListAndExport(t *testing.T) {
	c := newClient(t)

	for _, inv := range []struct{ id, issue string }{
		{"A", "2025-03-01"},
		{"B", "2025-01-01"},
	} {
		body := strings.Replace(scenarioJSON, `"INV1"`, `"`+inv.id+`"`, 1)
		body = strings.Replace(body, `"issueDate": "2025-01-01"`, `"issueDate": "`+inv.issue+`"`, 1)
		body = strings.Replace(body, `"dueDate": "2025-01-10",`, "", 1)
		c.create("alice", body)
	}

	w := c.do("alice", http.MethodGet, "/api/invoices?sort=issueDate&order=asc&pageSize=1&page=2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Items []struct {
			InvoiceID string `json:"invoiceId"`
			Valid     bool   `json:"valid"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].InvoiceID)
	assert.Equal(t, 2, page.Total)

	assert.Equal(t, http.StatusBadRequest, c.do("alice", http.MethodGet, "/api/invoices?sort=name", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("alice", http.MethodGet, "/api/invoices?page=x", "").Code)

	w = c.do("alice", http.MethodGet, "/api/invoices/export.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "A", records[1][0])
	assert.Equal(t, "100.00", records[1][6])
}

func TestValidateRawXML(t *testing.T) {
	c := newClient(t)

	w := c.do("alice", http.MethodPost, "/api/validate", "<NotInvoice/>")
	require.Equal(t, http.StatusBadRequest, w.Code)
	r := decode(t, w)
	assert.Equal(t, "error", r.Status)
	assert.Len(t, r.ValidationErrors, 1)

	data := c.create("alice", strings.Replace(scenarioJSON, `"invoiceId": "INV1",`, `"invoiceId": "INV1", "invoiceTypeCode": "384",`, 1))
	w = c.do("alice", http.MethodPost, "/api/validate", data.XML)
	require.Equal(t, http.StatusOK, w.Code)
	r = decode(t, w)
	assert.Equal(t, "success", r.Status)
	require.Len(t, r.ValidationWarnings, 1)
	assert.Contains(t, r.ValidationWarnings[0], "BR-DE-08")
}

func TestRequestBodyLimit(t *testing.T) {
	svc := invoice.NewService(store.NewMemoryStore(), validation.NewValidator())
	router := NewRouter(svc, Options{JWTSecret: testSecret, MaxBodyBytes: 64})
	token, err := IssueToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)

	send := func(path string, body io.Reader, length int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.ContentLength = length
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	big := "<Invoice>" + strings.Repeat("x", 100) + "</Invoice>"

	w := send("/api/validate", strings.NewReader(big), int64(len(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Unknown length is cut off while reading.
	w = send("/api/validate", io.MultiReader(strings.NewReader(big)), -1)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	w = send("/api/invoices", io.MultiReader(strings.NewReader(scenarioJSON)), -1)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = send("/api/validate", strings.NewReader("<NotInvoice/>"), 13)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestCORSPreflight(t *testing.T) {
	svc := invoice.NewService(store.NewMemoryStore(), validation.NewValidator())
	router := NewRouter(svc, Options{JWTSecret: testSecret, AllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/invoices", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

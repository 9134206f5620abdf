package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"einvoice/internal/export"
	"einvoice/internal/invoice"
	"einvoice/internal/paycode"
	"einvoice/internal/summary"
	"einvoice/internal/xmltree"
	"einvoice/pkg/models"
)

// InvoiceHandler serves the invoice endpoints.
type InvoiceHandler struct {
	svc *invoice.Service
}

func NewInvoiceHandler(svc *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

type invoiceData struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	Valid     bool      `json:"valid"`
	XML       string    `json:"xml"`
}

type shareRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var req models.Invoice
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusCreated, res, "Invoice created")
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.Invoice
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Update(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, res, "Invoice updated")
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   invoiceData{ID: rec.ID, InvoiceID: rec.InvoiceID, Valid: rec.Valid, XML: rec.XML},
	})
}

func (h *InvoiceHandler) XML(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rec.XML))
}

func (h *InvoiceHandler) QR(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			abort(c, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	rec, err := h.svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	png, err := paycode.PNG(paycode.FromTree(xmltree.Parse(rec.XML)), size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Status: statusSuccess, Message: "Invoice deleted"})
}

func (h *InvoiceHandler) Share(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Share(c.Request.Context(), currentUser(c), id, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Status: statusSuccess, Message: "Invoice shared"})
}

func (h *InvoiceHandler) Validate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.Validate(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	validationResponse(c, res.Validation)
}

// ValidateXML validates the raw request body without storing anything.
func (h *InvoiceHandler) ValidateXML(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	validationResponse(c, h.svc.ValidateXML(string(body)))
}

func (h *InvoiceHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize")
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), currentUser(c), invoice.ListOptions{
		Scope:    c.Query("scope"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Status: statusSuccess, Data: result})
}

func (h *InvoiceHandler) ExportCSV(c *gin.Context) {
	entries, err := h.svc.Entries(c.Request.Context(), currentUser(c), c.Query("scope"))
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]summary.Summary, len(entries))
	for i, e := range entries {
		rows[i] = e.Summary
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// respondResult answers with code when the stored document passed the rules. A document that
// failed them is still stored; the caller gets 400 with the errors and the record in data.
func respondResult(c *gin.Context, code int, res *invoice.Result, message string) {
	data := invoiceData{
		ID:        res.Record.ID,
		InvoiceID: res.Record.InvoiceID,
		Valid:     res.Validation.Valid,
		XML:       res.Record.XML,
	}
	if !res.Validation.Valid {
		c.JSON(http.StatusBadRequest, envelope{
			Status:             statusError,
			Message:            message + " but is not valid (id " + res.Record.ID.String() + ")",
			Data:               data,
			ValidationErrors:   res.Validation.Errors,
			ValidationWarnings: res.Validation.Warnings,
		})
		return
	}
	c.JSON(code, envelope{
		Status:             statusSuccess,
		Message:            message,
		Data:               data,
		ValidationWarnings: res.Validation.Warnings,
	})
}

func validationResponse(c *gin.Context, result *models.ValidationResult) {
	if !result.Valid {
		c.JSON(http.StatusBadRequest, envelope{
			Status:             statusError,
			Message:            "Invoice is not valid",
			ValidationErrors:   result.Errors,
			ValidationWarnings: result.Warnings,
		})
		return
	}
	c.JSON(http.StatusOK, envelope{
		Status:             statusSuccess,
		Message:            "Invoice is valid",
		Data:               result,
		ValidationWarnings: result.Warnings,
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		abort(c, http.StatusBadRequest, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func badRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abort(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	c.JSON(http.StatusBadRequest, envelope{
		Status:           statusError,
		Message:          "invalid input",
		ValidationErrors: []string{err.Error()},
	})
}

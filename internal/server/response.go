package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"einvoice/internal/invoice"
	"einvoice/internal/logger"
	"einvoice/internal/paycode"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status             string   `json:"status"`
	Message            string   `json:"message,omitempty"`
	Data               any      `json:"data,omitempty"`
	ValidationErrors   []string `json:"validationErrors,omitempty"`
	ValidationWarnings []string `json:"validationWarnings,omitempty"`
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, envelope{Status: statusError, Message: message})
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var invalid invoice.ValidationErrors
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, envelope{
			Status:           statusError,
			Message:          "Invoice data is invalid",
			ValidationErrors: invalid.Messages(),
		})
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, envelope{Status: statusError, Message: "Invoice not found"})
	case errors.Is(err, invoice.ErrDuplicateInvoice):
		c.JSON(http.StatusConflict, envelope{Status: statusError, Message: "An invoice with this invoice ID already exists"})
	case errors.Is(err, paycode.ErrNoPaymentAccount):
		c.JSON(http.StatusBadRequest, envelope{Status: statusError, Message: "Invoice has no payment account"})
	default:
		logger.WithContext(c.Request.Context()).Error().Err(err).Msg("Request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, envelope{Status: statusError, Message: "Internal server error"})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req db.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(req, c.GetString("user_id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filters := map[string]interface{}{
		"client_id":  c.Query("client_id"),
		"project_id": c.Query("project_id"),
		"status":     c.Query("status"),
	}

	invoices, err := h.invoiceService.ListInvoices(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// ListOverdue handles GET /invoices/overdue
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	overdue, err := h.invoiceService.ListOverdue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"overdue": overdue})
}

// UpdateInvoice handles PATCH /invoices/:id
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req db.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Param("id"), req)
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// SendInvoice handles POST /invoices/:id/send
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.SendInvoice(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// MarkPaid handles POST /invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoice, err := h.invoiceService.MarkPaid(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

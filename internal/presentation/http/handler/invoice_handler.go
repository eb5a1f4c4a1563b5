package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	printerService *service.PrinterService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, printerService *service.PrinterService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		printerService: printerService,
	}
}

// List handles listing invoices, newest first
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param search query string false "Invoice number, customer, phone or doctor"
// @Param status query string false "Pending, Paid or Cancelled"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage, filter.Limit),
		Search:     filter.Search,
	}

	if filter.Status != "" {
		status, ok := enum.ParseInvoiceStatus(filter.Status)
		if !ok {
			response.BadRequest(c, "Invalid status. Must be Pending, Paid, or Cancelled")
			return
		}
		params.Status = &status
	}

	if filter.PaymentMethod != "" {
		pm, ok := enum.ParsePaymentMethod(filter.PaymentMethod)
		if !ok {
			response.BadRequest(c, "Invalid payment method. Must be Cash, Card, or UPI")
			return
		}
		params.PaymentMethod = &pm
	}

	var err error
	if params.StartDate, err = parseDate(filter.StartDate, "start_date", false); err != nil {
		response.Error(c, err)
		return
	}
	if params.EndDate, err = parseDate(filter.EndDate, "end_date", true); err != nil {
		response.Error(c, err)
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Get handles fetching a single invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Create handles creating an invoice and decrementing stock
// @Summary Create invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key"
// @Param request body request.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req request.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		medicineID, err := uuid.Parse(item.MedicineID)
		if err != nil {
			response.BadRequest(c, "Invalid medicine ID")
			return
		}
		items = append(items, service.InvoiceItemInput{
			MedicineID: medicineID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			GSTRate:    item.GSTRate,
		})
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DoctorName:    req.DoctorName,
		Items:         items,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		GSTRate:       req.GSTRate,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Update edits invoice header fields. Items and totals are fixed.
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req request.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, &service.UpdateInvoiceInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DoctorName:    req.DoctorName,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// UpdateStatus handles PUT /invoices/:id/update-status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req request.UpdateInvoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice status updated successfully", invoice)
}

// CancelAndRestock cancels an invoice and returns its quantities to stock
func (h *InvoiceHandler) CancelAndRestock(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	result, err := h.invoiceService.CancelAndRestock(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled and stock restored", result)
}

// Delete handles deleting an invoice. Stock is not restored.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice deleted successfully", nil)
}

// Receipt returns the receipt composed from an invoice without printing it
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	receipt, err := h.printerService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt generated successfully", receipt)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

// PaymentHandler exposes the payment ledger.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes mounts the payment routes on rg.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.GET("", h.List)
	payments.POST("", h.Process)
	payments.GET("/stats", h.Stats)
	payments.GET("/:id", h.Get)
	payments.DELETE("/:id", h.Delete)
	payments.POST("/:id/refund", h.Refund)
	payments.GET("/:id/receipt", h.Receipt)
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param search query string false "Search by student, transaction or receipt"
// @Param status query string false "Filter by status"
// @Param method query string false "Filter by payment method"
// @Param startDate query string false "Inclusive start day (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	filter := models.PaymentFilter{
		Search:    queryTrim(c, "search"),
		Status:    models.PaymentStatus(queryTrim(c, "status")),
		Method:    queryTrim(c, "method"),
		StartDate: queryTrim(c, "startDate"),
		EndDate:   queryTrim(c, "endDate"),
	}
	payments, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Stats godoc
// @Summary Payment ledger totals
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/stats [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.payments.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Process godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.PaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req service.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Process(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Refund godoc
// @Summary Refund a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	payment, err := h.payments.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Receipt godoc
// @Summary Download a plain text receipt
// @Tags Payments
// @Produce plain
// @Param id path string true "Payment ID"
// @Success 200 {file} file
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	receipt, err := h.payments.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, receipt.Filename, receipt.ContentType, receipt.Body)
}

// Delete godoc
// @Summary Delete payment
// @Tags Payments
// @Param id path string true "Payment ID"
// @Success 204
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.payments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

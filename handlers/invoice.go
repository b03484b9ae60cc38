package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gmautocare/autocare_backend/models"
	"github.com/shopspring/decimal"
)

func CreateInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, stockResults, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invoice":       invoice,
		"stock_results": stockResults,
	})
}

func UpdateInvoice(c *gin.Context) {
	var input models.UpdateInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, propagated, err := models.ModifyInvoice(c.Request.Context(), c.Param("invoiceNumber"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice":             invoice,
		"propagated_invoices": propagated,
	})
}

func DeleteInvoice(c *gin.Context) {
	invoice, err := models.DeleteInvoice(c.Request.Context(), c.Param("invoiceNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func GetInvoice(c *gin.Context) {
	invoice, err := models.GetInvoice(c.Request.Context(), c.Param("invoiceNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func GetInvoices(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	invoices, pagination, err := models.GetInvoices(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoices":   invoices,
		"pagination": pagination,
	})
}

func SearchInvoices(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	invoices, pagination, err := models.SearchInvoices(c.Request.Context(), query, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoices":   invoices,
		"pagination": pagination,
	})
}

func NextInvoiceNumber(c *gin.Context) {
	number, err := models.NextInvoiceNumber(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice_number": number})
}

func GetInvoiceBreakdown(c *gin.Context) {
	breakdown, err := models.GetInvoiceBreakdown(c.Request.Context(), c.Param("invoiceNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

func UpdateInvoicePending(c *gin.Context) {
	var input struct {
		IsPending     *bool           `json:"is_pending" binding:"required"`
		PendingAmount decimal.Decimal `json:"pending_amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := models.UpdateInvoicePending(c.Request.Context(), c.Param("invoiceNumber"), *input.IsPending, input.PendingAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func UpdateInvoicePayment(c *gin.Context) {
	var input struct {
		PaymentMethod  models.PaymentMethod     `json:"payment_method" binding:"required"`
		PaymentDetails models.NewPaymentDetails `json:"payment_details"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := models.UpdateInvoicePayment(c.Request.Context(), c.Param("invoiceNumber"), input.PaymentMethod, input.PaymentDetails)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func UpdateInvoiceUsageReading(c *gin.Context) {
	var input struct {
		UsageReading decimal.Decimal `json:"usage_reading"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := models.UpdateInvoiceUsageReading(c.Request.Context(), c.Param("invoiceNumber"), input.UsageReading)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

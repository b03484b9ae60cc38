package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gmautocare/autocare_backend/models"
)

func CreatePayrollPayment(c *gin.Context) {
	var input models.NewPayrollPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := models.CreatePayrollPayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

func DeletePayrollPayment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	payment, err := models.DeletePayrollPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

func GetPayrollPayments(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}

	payments, err := models.GetPayrollPayments(
		c.Request.Context(),
		c.Query("name"),
		models.PayrollPaymentType(c.Query("type")),
		from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gmautocare/autocare_backend/models"
)

func CreateTyrePurchase(c *gin.Context) {
	var input models.NewTyrePurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	purchase, tire, err := models.CreateTyrePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"purchase": purchase,
		"tire":     tire,
	})
}

func UpdateTyrePurchase(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input models.UpdateTyrePurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	purchase, err := models.ModifyTyrePurchase(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

func DeleteTyrePurchase(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	purchase, err := models.DeleteTyrePurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

func GetTyrePurchases(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	purchases, pagination, err := models.GetTyrePurchases(c.Request.Context(), c.Query("q"), from, to, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchases":  purchases,
		"pagination": pagination,
	})
}

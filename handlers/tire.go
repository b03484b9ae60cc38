package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gmautocare/autocare_backend/models"
)

func CreateTire(c *gin.Context) {
	var input models.NewTire
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	tire, err := models.CreateTire(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tire": tire})
}

func GetTires(c *gin.Context) {
	tires, err := models.GetAllTires(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tires": tires})
}

func UpdateTire(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var input models.NewTire
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	tire, err := models.UpdateTire(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tire": tire})
}

func DeleteTire(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	tire, err := models.DeleteTire(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tire": tire})
}

// ApplyStockDeltas applies a batch of signed stock adjustments. Items settle
// independently; a mixed outcome comes back as 207 with per-item results.
func ApplyStockDeltas(c *gin.Context) {
	var input struct {
		Deltas []models.StockDelta `json:"deltas" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	results := models.ApplyStockDeltas(c.Request.Context(), input.Deltas)

	status := http.StatusOK
	for _, result := range results {
		if !result.Applied {
			status = http.StatusMultiStatus
			break
		}
	}
	c.JSON(status, gin.H{"results": results})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmautocare/autocare_backend/models/reports"
	"github.com/gmautocare/autocare_backend/utils"
)

// reportRange resolves the from/to query parameters, defaulting to the
// current month when both are absent.
func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	if from == nil && to == nil {
		start, end := utils.GetThisMonthRange()
		end = end.Add(-time.Nanosecond)
		return start, end, true
	}
	if from == nil || to == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be given together"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(*from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return time.Time{}, time.Time{}, false
	}
	return *from, utils.EndOfDay(*to), true
}

func GetPaymentSummaryReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	report, err := reports.GetPaymentSummaryReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func ExportPaymentSummaryReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=payment-summary.xlsx")
	if err := reports.ExportPaymentSummaryExcel(c.Request.Context(), from, to, c.Writer); err != nil {
		respondError(c, err)
	}
}

func GetStockLevelsReport(c *gin.Context) {
	year := intQuery(c, "year", 0)
	month := intQuery(c, "month", 0)
	if month < 0 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 50)

	report, err := reports.GetStockLevelsReport(c.Request.Context(), year, time.Month(month), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func GetRegularCustomersReport(c *gin.Context) {
	threshold := intQuery(c, "threshold", 3)

	customers, err := reports.GetRegularCustomersReport(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func GetUsageHistoryReport(c *gin.Context) {
	carNumber := c.Query("car_number")
	if carNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "car_number is required"})
		return
	}

	if c.Query("latest") == "true" {
		latest, err := reports.GetLatestUsageReading(c.Request.Context(), carNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"latest": latest})
		return
	}

	history, err := reports.GetUsageHistoryReport(c.Request.Context(), carNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func GetExpenseStatsReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	report, err := reports.GetExpenseStatsReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

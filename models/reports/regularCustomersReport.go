package reports

import (
	"context"
	"strings"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/shopspring/decimal"
)

// RegularCustomerRow is a repeat customer: anyone billed at least the
// threshold number of times. Customers are grouped by name since invoices
// denormalize contact details.
type RegularCustomerRow struct {
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	InvoiceCount   int             `json:"invoice_count"`
	TotalBilled    decimal.Decimal `json:"total_billed"`
	LastVisit      time.Time       `json:"last_visit"`
	InvoiceNumbers []string        `gorm:"-" json:"invoice_numbers"`

	InvoiceNumbersRaw string `gorm:"column:invoice_numbers_raw" json:"-"`
}

// GetRegularCustomersReport lists customers with at least threshold invoices,
// most frequent first. A non-positive threshold falls back to 3.
func GetRegularCustomersReport(ctx context.Context, threshold int) ([]*RegularCustomerRow, error) {
	if threshold <= 0 {
		threshold = 3
	}

	db := config.GetDB()

	var rows []*RegularCustomerRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			customer_name,
			MAX(customer_phone) AS customer_phone,
			COUNT(id) AS invoice_count,
			COALESCE(SUM(grand_total), 0) AS total_billed,
			MAX(invoice_date) AS last_visit,
			GROUP_CONCAT(invoice_number ORDER BY invoice_date DESC SEPARATOR ',') AS invoice_numbers_raw
		FROM invoices
		GROUP BY customer_name
		HAVING COUNT(id) >= ?
		ORDER BY invoice_count DESC, last_visit DESC`,
		threshold).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.InvoiceNumbersRaw != "" {
			row.InvoiceNumbers = strings.Split(row.InvoiceNumbersRaw, ",")
		}
	}
	return rows, nil
}

package reports

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
)

// UsageHistoryRow is one odometer reading taken at billing time.
type UsageHistoryRow struct {
	InvoiceNumber string           `json:"invoice_number"`
	InvoiceDate   time.Time        `json:"invoice_date"`
	CustomerName  string           `json:"customer_name"`
	CarModel      string           `json:"car_model"`
	CarNumber     string           `json:"car_number"`
	UsageReading  *decimal.Decimal `json:"usage_reading"`
}

// GetUsageHistoryReport lists the reading history for a car number,
// newest-first. Invoices without a recorded reading are skipped.
func GetUsageHistoryReport(ctx context.Context, carNumber string) ([]*UsageHistoryRow, error) {

	db := config.GetDB()

	var rows []*UsageHistoryRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			invoice_number,
			invoice_date,
			customer_name,
			car_model,
			car_number,
			usage_reading
		FROM invoices
		WHERE car_number = ? AND usage_reading IS NOT NULL
		ORDER BY invoice_date DESC, id DESC`,
		carNumber).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetLatestUsageReading returns the most recent recorded reading for the car.
func GetLatestUsageReading(ctx context.Context, carNumber string) (*UsageHistoryRow, error) {

	db := config.GetDB()

	var row UsageHistoryRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			invoice_number,
			invoice_date,
			customer_name,
			car_model,
			car_number,
			usage_reading
		FROM invoices
		WHERE car_number = ? AND usage_reading IS NOT NULL
		ORDER BY invoice_date DESC, id DESC
		LIMIT 1`,
		carNumber).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.InvoiceNumber == "" {
		return nil, utils.ErrorRecordNotFound
	}
	return &row, nil
}

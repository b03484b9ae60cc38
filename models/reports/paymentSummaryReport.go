package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PaymentSummaryRow is the per-method collection breakdown over a date range.
type PaymentSummaryRow struct {
	PaymentMethod string          `json:"payment_method"`
	InvoiceCount  int             `json:"invoice_count"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	OnlineAmount  decimal.Decimal `json:"online_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

type PaymentSummaryReport struct {
	FromDate time.Time            `json:"from_date"`
	ToDate   time.Time            `json:"to_date"`
	Rows     []*PaymentSummaryRow `json:"rows"`

	TotalInvoices int             `json:"total_invoices"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	TotalOnline   decimal.Decimal `json:"total_online"`
	TotalBilled   decimal.Decimal `json:"total_billed"`
	TotalPending  decimal.Decimal `json:"total_pending"`
}

// GetPaymentSummaryReport aggregates collections per payment method between
// fromDate and toDate (both inclusive, on invoice_date).
func GetPaymentSummaryReport(ctx context.Context, fromDate time.Time, toDate time.Time) (*PaymentSummaryReport, error) {
	started := time.Now()
	defer logSlowReport(ctx, "payment_summary", started, map[string]any{"from": fromDate, "to": toDate})

	cacheKey := fmt.Sprintf("report:payment-summary:%s:%s", fromDate.Format("20060102"), toDate.Format("20060102"))
	if reportCacheEnabled() {
		var cached PaymentSummaryReport
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	db := config.GetDB()

	var rows []*PaymentSummaryRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			payment_method,
			COUNT(id) AS invoice_count,
			COALESCE(SUM(cash_amount), 0) AS cash_amount,
			COALESCE(SUM(online_amount), 0) AS online_amount,
			COALESCE(SUM(grand_total), 0) AS grand_total,
			COALESCE(SUM(CASE WHEN is_pending = 1 THEN pending_amount ELSE 0 END), 0) AS pending_amount
		FROM invoices
		WHERE invoice_date >= ? AND invoice_date <= ?
		GROUP BY payment_method
		ORDER BY payment_method`,
		fromDate, toDate).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := PaymentSummaryReport{
		FromDate:     fromDate,
		ToDate:       toDate,
		Rows:         rows,
		TotalCash:    decimal.Zero,
		TotalOnline:  decimal.Zero,
		TotalBilled:  decimal.Zero,
		TotalPending: decimal.Zero,
	}
	for _, row := range rows {
		report.TotalInvoices += row.InvoiceCount
		report.TotalCash = report.TotalCash.Add(row.CashAmount)
		report.TotalOnline = report.TotalOnline.Add(row.OnlineAmount)
		report.TotalBilled = report.TotalBilled.Add(row.GrandTotal)
		report.TotalPending = report.TotalPending.Add(row.PendingAmount)
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, &report, reportCacheTTL())
	}
	return &report, nil
}

// ExportPaymentSummaryExcel renders the payment summary as an xlsx workbook.
func ExportPaymentSummaryExcel(ctx context.Context, fromDate time.Time, toDate time.Time, w io.Writer) error {

	report, err := GetPaymentSummaryReport(ctx, fromDate, toDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "PaymentMethod")
	f.SetCellValue(sheet, "B1", "Invoices")
	f.SetCellValue(sheet, "C1", "Cash")
	f.SetCellValue(sheet, "D1", "Online")
	f.SetCellValue(sheet, "E1", "Billed")
	f.SetCellValue(sheet, "F1", "Pending")

	for i, row := range report.Rows {
		r := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+r, row.PaymentMethod)
		f.SetCellValue(sheet, "B"+r, row.InvoiceCount)
		f.SetCellValue(sheet, "C"+r, row.CashAmount.InexactFloat64())
		f.SetCellValue(sheet, "D"+r, row.OnlineAmount.InexactFloat64())
		f.SetCellValue(sheet, "E"+r, row.GrandTotal.InexactFloat64())
		f.SetCellValue(sheet, "F"+r, row.PendingAmount.InexactFloat64())
	}

	totalRow := fmt.Sprint(len(report.Rows) + 2)
	f.SetCellValue(sheet, "A"+totalRow, "Total")
	f.SetCellValue(sheet, "B"+totalRow, report.TotalInvoices)
	f.SetCellValue(sheet, "C"+totalRow, report.TotalCash.InexactFloat64())
	f.SetCellValue(sheet, "D"+totalRow, report.TotalOnline.InexactFloat64())
	f.SetCellValue(sheet, "E"+totalRow, report.TotalBilled.InexactFloat64())
	f.SetCellValue(sheet, "F"+totalRow, report.TotalPending.InexactFloat64())

	return f.Write(w)
}

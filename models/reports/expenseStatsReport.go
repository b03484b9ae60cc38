package reports

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/shopspring/decimal"
)

// ExpenseStatRow is the total spent on one expense key over the range.
type ExpenseStatRow struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type ExpenseStatsReport struct {
	FromDate     time.Time         `json:"from_date"`
	ToDate       time.Time         `json:"to_date"`
	Rows         []*ExpenseStatRow `json:"rows"`
	TotalExpense decimal.Decimal   `json:"total_expense"`
	ExpenseCount int               `json:"expense_count"`
	AvgExpense   decimal.Decimal   `json:"avg_expense"`
	MaxExpense   decimal.Decimal   `json:"max_expense"`
	MinExpense   decimal.Decimal   `json:"min_expense"`
	TotalPayroll decimal.Decimal   `json:"total_payroll"`
}

// GetExpenseStatsReport totals expenses per key and payroll outflow between
// fromDate and toDate (inclusive).
func GetExpenseStatsReport(ctx context.Context, fromDate time.Time, toDate time.Time) (*ExpenseStatsReport, error) {

	db := config.GetDB()

	var rows []*ExpenseStatRow
	err := db.WithContext(ctx).Raw(
		"SELECT `key`, COUNT(id) AS count, COALESCE(SUM(value), 0) AS total "+
			"FROM expenses WHERE date >= ? AND date <= ? "+
			"GROUP BY `key` ORDER BY total DESC",
		fromDate, toDate).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var overall struct {
		Total decimal.Decimal
		Count int
		Avg   decimal.Decimal
		Max   decimal.Decimal
		Min   decimal.Decimal
	}
	err = db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(value), 0) AS total, COUNT(id) AS count, "+
			"COALESCE(AVG(value), 0) AS avg, COALESCE(MAX(value), 0) AS max, COALESCE(MIN(value), 0) AS min "+
			"FROM expenses WHERE date >= ? AND date <= ?",
		fromDate, toDate).Scan(&overall).Error
	if err != nil {
		return nil, err
	}

	var totalPayroll decimal.Decimal
	err = db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(amount), 0) FROM payroll_payments WHERE date >= ? AND date <= ?",
		fromDate, toDate).Scan(&totalPayroll).Error
	if err != nil {
		return nil, err
	}

	return &ExpenseStatsReport{
		FromDate:     fromDate,
		ToDate:       toDate,
		Rows:         rows,
		TotalExpense: overall.Total,
		ExpenseCount: overall.Count,
		AvgExpense:   overall.Avg,
		MaxExpense:   overall.Max,
		MinExpense:   overall.Min,
		TotalPayroll: totalPayroll,
	}, nil
}

package reports

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/models"
	"github.com/gmautocare/autocare_backend/utils"
)

// StockLevelRow is one stock item with its sold quantities folded in from
// invoice lines. Sales are matched by (dimension, pattern), not by id, so
// lines sold before the stock item existed still count.
type StockLevelRow struct {
	Dimension     string `json:"dimension"`
	Pattern       string `json:"pattern"`
	MaterialCode  string `json:"material_code"`
	Stock         int    `json:"stock"`
	SoldThisMonth int    `json:"sold_this_month"`
	SoldAllTime   int    `json:"sold_all_time"`
}

type StockLevelsReport struct {
	Rows       []*StockLevelRow  `json:"rows"`
	Pagination models.Pagination `json:"pagination"`

	// grand totals cover the full result set, not just the current page
	TotalStock         int `json:"total_stock"`
	TotalSoldThisMonth int `json:"total_sold_this_month"`
	TotalSoldAllTime   int `json:"total_sold_all_time"`
}

// GetStockLevelsReport lists stock items that are in stock or were ever sold,
// with this-month and all-time sold quantities. Year/month select the "this
// month" window; zero values mean the current month. A non-empty search
// narrows by dimension, pattern or material code.
func GetStockLevelsReport(ctx context.Context, year int, month time.Month, search string, page int, limit int) (*StockLevelsReport, error) {

	var monthStart, monthEnd time.Time
	if year == 0 || month == 0 {
		monthStart, monthEnd = utils.GetThisMonthRange()
	} else {
		monthStart, monthEnd = utils.GetMonthRange(year, month)
	}
	page, limit = models.NormalizePageLimit(page, limit, 50)

	started := time.Now()
	defer logSlowReport(ctx, "stock_levels", started, map[string]any{"month": monthStart, "page": page, "search": search})

	db := config.GetDB()

	baseQuery := `
		FROM tires AS t
		LEFT JOIN (
			SELECT
				ii.dimension,
				ii.pattern,
				SUM(ii.quantity) AS sold_all_time,
				SUM(CASE WHEN inv.invoice_date >= ? AND inv.invoice_date < ? THEN ii.quantity ELSE 0 END) AS sold_this_month
			FROM invoice_items AS ii
			JOIN invoices AS inv ON inv.id = ii.invoice_id
			GROUP BY ii.dimension, ii.pattern
		) AS sold ON sold.dimension = t.dimension AND sold.pattern = t.pattern
		WHERE (t.stock > 0 OR COALESCE(sold.sold_all_time, 0) > 0)
			AND (? = '' OR t.dimension LIKE ? OR t.pattern LIKE ? OR t.material_code LIKE ?)`

	like := "%" + search + "%"
	baseArgs := []interface{}{monthStart, monthEnd, search, like, like, like}

	var total int64
	err := db.WithContext(ctx).Raw(
		"SELECT COUNT(t.id) "+baseQuery, baseArgs...).Scan(&total).Error
	if err != nil {
		return nil, err
	}

	var rows []*StockLevelRow
	err = db.WithContext(ctx).Raw(`
		SELECT
			t.dimension,
			t.pattern,
			t.material_code,
			t.stock,
			COALESCE(sold.sold_this_month, 0) AS sold_this_month,
			COALESCE(sold.sold_all_time, 0) AS sold_all_time`+
		baseQuery+`
		ORDER BY t.dimension, t.pattern
		LIMIT ? OFFSET ?`,
		append(append([]interface{}{}, baseArgs...), limit, (page-1)*limit)...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var totals struct {
		TotalStock         int
		TotalSoldThisMonth int
		TotalSoldAllTime   int
	}
	err = db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(t.stock), 0) AS total_stock,
			COALESCE(SUM(sold.sold_this_month), 0) AS total_sold_this_month,
			COALESCE(SUM(sold.sold_all_time), 0) AS total_sold_all_time`+
		baseQuery, baseArgs...).Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &StockLevelsReport{
		Rows:               rows,
		Pagination:         models.NewPagination(page, limit, total),
		TotalStock:         totals.TotalStock,
		TotalSoldThisMonth: totals.TotalSoldThisMonth,
		TotalSoldAllTime:   totals.TotalSoldAllTime,
	}, nil
}

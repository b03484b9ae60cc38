package models

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
)

// Expense is a dated shop cost: a free-form key ("electricity", "rent") and
// a non-negative amount.
type Expense struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Key       string          `gorm:"size:255;not null" json:"key"`
	Value     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	Key   string          `json:"key" binding:"required"`
	Value decimal.Decimal `json:"value"`
	Date  time.Time       `json:"date" binding:"required"`
}

func (input *NewExpense) validate() error {
	if input.Value.IsNegative() {
		return validationf("expense value must not be negative")
	}
	return nil
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	expense := Expense{
		Key:   input.Key,
		Value: input.Value,
		Date:  input.Date,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func ModifyExpense(ctx context.Context, id int, input *NewExpense) (*Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	expense, err := utils.FetchModel[Expense](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(expense).Updates(map[string]interface{}{
		"Key":   input.Key,
		"Value": input.Value,
		"Date":  input.Date,
	}).Error
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func DeleteExpense(ctx context.Context, id int) (*Expense, error) {
	expense, err := utils.FetchModel[Expense](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenses lists expenses newest-first, optionally filtered by date range
// and a search over the key. Capped at 100 rows; monthly bookkeeping never
// comes close.
func GetExpenses(ctx context.Context, query string, from *time.Time, to *time.Time) ([]*Expense, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Expense{})
	if query != "" {
		dbCtx = dbCtx.Where("`key` LIKE ?", "%"+query+"%")
	}
	if from != nil {
		dbCtx = dbCtx.Where("date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("date <= ?", utils.EndOfDay(*to))
	}

	var expenses []*Expense
	err := dbCtx.Order("date DESC, id DESC").Limit(100).Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

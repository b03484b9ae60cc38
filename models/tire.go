package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tire is a stock item. The business key is (dimension, pattern); the
// surrogate id exists only for plain CRUD.
type Tire struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Dimension     string          `gorm:"size:100;not null;uniqueIndex:idx_tires_dimension_pattern" json:"dimension"`
	Pattern       string          `gorm:"size:100;not null;uniqueIndex:idx_tires_dimension_pattern" json:"pattern"`
	MaterialCode  string          `gorm:"size:100" json:"material_code"`
	Lisi          string          `gorm:"size:100" json:"lisi"`
	BillingPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"billing_price"`
	OurPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"our_price"`
	CustomerPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"customer_price"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTire struct {
	Dimension     string          `json:"dimension" binding:"required"`
	Pattern       string          `json:"pattern" binding:"required"`
	MaterialCode  string          `json:"material_code"`
	Lisi          string          `json:"lisi"`
	BillingPrice  decimal.Decimal `json:"billing_price"`
	OurPrice      decimal.Decimal `json:"our_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
	Stock         int             `json:"stock"`
}

// ErrStockItemMissing reports a decrement against a (dimension, pattern)
// pair with no stock record. Decrements never fabricate records.
var ErrStockItemMissing = errors.New("no stock record for dimension/pattern")

// StockDelta is one signed quantity adjustment against a stock item.
type StockDelta struct {
	Dimension string `json:"dimension" binding:"required"`
	Pattern   string `json:"pattern" binding:"required"`
	Delta     int    `json:"delta"`
	BrandHint string `json:"brand_hint"`
}

// StockDeltaResult is the per-item outcome of a batch stock update.
type StockDeltaResult struct {
	Dimension string `json:"dimension"`
	Pattern   string `json:"pattern"`
	Delta     int    `json:"delta"`
	Applied   bool   `json:"applied"`
	Stock     int    `json:"stock,omitempty"`
	Error     string `json:"error,omitempty"`
}

/* CRUD */

func CreateTire(ctx context.Context, input *NewTire) (*Tire, error) {
	count, err := utils.ResourceCountWhere[Tire](ctx, "dimension = ? AND pattern = ?", input.Dimension, input.Pattern)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: tire %s / %s already exists", ErrConflict, input.Dimension, input.Pattern)
	}

	tire := Tire{
		Dimension:     input.Dimension,
		Pattern:       input.Pattern,
		MaterialCode:  input.MaterialCode,
		Lisi:          input.Lisi,
		BillingPrice:  input.BillingPrice,
		OurPrice:      input.OurPrice,
		CustomerPrice: input.CustomerPrice,
		Stock:         input.Stock,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&tire).Error; err != nil {
		return nil, err
	}
	return &tire, nil
}

func GetAllTires(ctx context.Context) ([]*Tire, error) {
	return utils.FetchAllModels[Tire](ctx)
}

func UpdateTire(ctx context.Context, id int, input *NewTire) (*Tire, error) {
	tire, err := utils.FetchModel[Tire](ctx, id)
	if err != nil {
		return nil, err
	}

	// moving onto another tire's (dimension, pattern) is a conflict
	count, err := utils.ResourceCountWhere[Tire](ctx, "dimension = ? AND pattern = ? AND NOT id = ?", input.Dimension, input.Pattern, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: tire %s / %s already exists", ErrConflict, input.Dimension, input.Pattern)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(tire).Updates(map[string]interface{}{
		"Dimension":     input.Dimension,
		"Pattern":       input.Pattern,
		"MaterialCode":  input.MaterialCode,
		"Lisi":          input.Lisi,
		"BillingPrice":  input.BillingPrice,
		"OurPrice":      input.OurPrice,
		"CustomerPrice": input.CustomerPrice,
		"Stock":         input.Stock,
	}).Error
	if err != nil {
		return nil, err
	}
	return tire, nil
}

func DeleteTire(ctx context.Context, id int) (*Tire, error) {
	tire, err := utils.FetchModel[Tire](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(tire).Error; err != nil {
		return nil, err
	}
	return tire, nil
}

/* Stock ledger */

// ApplyStockDelta adjusts the stock of the (dimension, pattern) item.
//
// Deltas are applied as single atomic UPDATE statements rather than
// find-mutate-save, so concurrent purchase/sale adjustments on the same item
// cannot lose updates. Decrements clamp at zero (a decrement against an
// already-empty item is a no-op); increments against a missing item create
// it with all prices zeroed. Decrements against a missing item fail with
// ErrStockItemMissing.
func ApplyStockDelta(ctx context.Context, tx *gorm.DB, dimension string, pattern string, delta int, brandHint string) (*Tire, error) {
	if tx == nil {
		tx = config.GetDB()
	}

	updates := map[string]interface{}{}
	if delta < 0 {
		updates["stock"] = gorm.Expr("GREATEST(stock + ?, 0)", delta)
	} else {
		updates["stock"] = gorm.Expr("stock + ?", delta)
	}
	if brandHint != "" {
		updates["material_code"] = brandHint
	}

	res := tx.WithContext(ctx).Model(&Tire{}).
		Where("dimension = ? AND pattern = ?", dimension, pattern).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&Tire{}).
			Where("dimension = ? AND pattern = ?", dimension, pattern).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			if delta <= 0 {
				return nil, fmt.Errorf("%w: %s / %s", ErrStockItemMissing, dimension, pattern)
			}
			tire := Tire{
				Dimension:    dimension,
				Pattern:      pattern,
				MaterialCode: brandHint,
				Stock:        delta,
			}
			// a concurrent creator may win the race; fold into an increment
			err := tx.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "dimension"}, {Name: "pattern"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"stock": gorm.Expr("stock + ?", delta)}),
			}).Create(&tire).Error
			if err != nil {
				return nil, err
			}
		}
	}

	var tire Tire
	if err := tx.WithContext(ctx).
		Where("dimension = ? AND pattern = ?", dimension, pattern).
		First(&tire).Error; err != nil {
		return nil, err
	}
	return &tire, nil
}

// ApplyStockDeltas applies a batch of independent adjustments. Each item
// succeeds or fails on its own; successes are never rolled back because a
// sibling failed, and the caller gets the per-item outcomes.
//
// A best-effort redis lock serializes whole batches; stock correctness does
// not depend on it since each delta is an atomic UPDATE.
func ApplyStockDeltas(ctx context.Context, deltas []StockDelta) []StockDeltaResult {
	logger := config.GetLogger()

	if redisLock := config.GetRedisLock(); redisLock != nil {
		if lock, err := redisLock.Obtain(ctx, "lock:stock-batch", 30*time.Second, nil); err == nil {
			defer func() {
				if releaseErr := lock.Release(ctx); releaseErr != nil {
					config.LogError(logger, "tire.go", "ApplyStockDeltas", "release lock", nil, releaseErr)
				}
			}()
		}
	}

	results := make([]StockDeltaResult, 0, len(deltas))
	for _, d := range deltas {
		result := StockDeltaResult{
			Dimension: d.Dimension,
			Pattern:   d.Pattern,
			Delta:     d.Delta,
		}
		tire, err := ApplyStockDelta(ctx, nil, d.Dimension, d.Pattern, d.Delta, d.BrandHint)
		if err != nil {
			result.Error = err.Error()
			config.LogError(logger, "tire.go", "ApplyStockDeltas", "apply delta", d, err)
		} else {
			result.Applied = true
			result.Stock = tire.Stock
		}
		results = append(results, result)
	}
	return results
}

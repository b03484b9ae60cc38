package models

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"gorm.io/gorm"
)

// TyrePurchase records tires bought from a supplier. Every mutation carries
// its quantity into the stock ledger: create adds, delete subtracts, and an
// update applies the difference against the quantity the client was shown.
// Bill numbers repeat across purchases (one supplier bill can span sizes),
// so there is no uniqueness on bill_no.
type TyrePurchase struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	BillNo    string    `gorm:"size:100;not null;index" json:"bill_no"`
	TyreSize  string    `gorm:"size:100;not null" json:"tyre_size"`
	Pattern   string    `gorm:"size:100;not null" json:"pattern"`
	Brand     string    `gorm:"size:100" json:"brand"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTyrePurchase struct {
	Date     time.Time `json:"date" binding:"required"`
	BillNo   string    `json:"bill_no" binding:"required"`
	TyreSize string    `json:"tyre_size" binding:"required"`
	Pattern  string    `json:"pattern" binding:"required"`
	Brand    string    `json:"brand"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// UpdateTyrePurchase edits a purchase. OriginalQuantity is the quantity the
// client loaded before editing; the stock delta is computed against it so a
// stale read adjusts by what the user actually intended to change.
type UpdateTyrePurchase struct {
	Date             time.Time `json:"date" binding:"required"`
	BillNo           string    `json:"bill_no" binding:"required"`
	TyreSize         string    `json:"tyre_size" binding:"required"`
	Pattern          string    `json:"pattern" binding:"required"`
	Brand            string    `json:"brand"`
	Quantity         int       `json:"quantity" binding:"required,min=1"`
	OriginalQuantity int       `json:"original_quantity" binding:"required,min=1"`
}

// CreateTyrePurchase stores the purchase and adds its quantity to stock,
// creating the stock item when the size/pattern pair is new.
func CreateTyrePurchase(ctx context.Context, input *NewTyrePurchase) (*TyrePurchase, *Tire, error) {
	purchase := TyrePurchase{
		Date:     input.Date,
		BillNo:   input.BillNo,
		TyreSize: input.TyreSize,
		Pattern:  input.Pattern,
		Brand:    input.Brand,
		Quantity: input.Quantity,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, nil, tx.Error
	}
	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		return nil, nil, err
	}
	tire, err := ApplyStockDelta(ctx, tx, input.TyreSize, input.Pattern, input.Quantity, input.Brand)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}
	return &purchase, tire, nil
}

// ModifyTyrePurchase updates the purchase row and shifts stock by the
// difference between the new quantity and the quantity the client started
// from. Changing size or pattern moves the full quantities between the old
// and new stock items.
func ModifyTyrePurchase(ctx context.Context, id int, input *UpdateTyrePurchase) (*TyrePurchase, error) {
	logger := config.GetLogger()

	purchase, err := utils.FetchModel[TyrePurchase](ctx, id)
	if err != nil {
		return nil, err
	}

	moved := purchase.TyreSize != input.TyreSize || purchase.Pattern != input.Pattern

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	err = tx.Model(purchase).Updates(map[string]interface{}{
		"Date":     input.Date,
		"BillNo":   input.BillNo,
		"TyreSize": input.TyreSize,
		"Pattern":  input.Pattern,
		"Brand":    input.Brand,
		"Quantity": input.Quantity,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if moved {
		if _, err := ApplyStockDelta(ctx, tx, purchase.TyreSize, purchase.Pattern, -input.OriginalQuantity, ""); err != nil {
			config.LogError(logger, "tyrePurchase.go", "ModifyTyrePurchase", "revert old stock item", input, err)
		}
		if _, err := ApplyStockDelta(ctx, tx, input.TyreSize, input.Pattern, input.Quantity, input.Brand); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else if delta := input.Quantity - input.OriginalQuantity; delta != 0 {
		if _, err := ApplyStockDelta(ctx, tx, input.TyreSize, input.Pattern, delta, input.Brand); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[TyrePurchase](ctx, id)
}

// DeleteTyrePurchase removes the purchase and takes its quantity back out of
// stock (clamped at zero if sales already consumed it).
func DeleteTyrePurchase(ctx context.Context, id int) (*TyrePurchase, error) {
	logger := config.GetLogger()

	purchase, err := utils.FetchModel[TyrePurchase](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Delete(purchase).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := ApplyStockDelta(ctx, tx, purchase.TyreSize, purchase.Pattern, -purchase.Quantity, ""); err != nil {
		// stock item already gone; the purchase removal still stands
		config.LogError(logger, "tyrePurchase.go", "DeleteTyrePurchase", "revert stock", purchase, err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// GetTyrePurchases lists purchases newest-first, optionally filtered by a
// date range and a free-text search over bill number, size, pattern, brand.
func GetTyrePurchases(ctx context.Context, query string, from *time.Time, to *time.Time, page int, limit int) ([]*TyrePurchase, Pagination, error) {
	page, limit = NormalizePageLimit(page, limit, 20)

	db := config.GetDB()
	scope := func(dbCtx *gorm.DB) *gorm.DB {
		if query != "" {
			pattern := "%" + query + "%"
			dbCtx = dbCtx.Where(
				"bill_no LIKE ? OR tyre_size LIKE ? OR pattern LIKE ? OR brand LIKE ?",
				pattern, pattern, pattern, pattern)
		}
		if from != nil {
			dbCtx = dbCtx.Where("date >= ?", *from)
		}
		if to != nil {
			dbCtx = dbCtx.Where("date <= ?", utils.EndOfDay(*to))
		}
		return dbCtx
	}

	var total int64
	if err := scope(db.WithContext(ctx).Model(&TyrePurchase{})).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var purchases []*TyrePurchase
	err := scope(db.WithContext(ctx)).
		Order("date DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return purchases, NewPagination(page, limit, total), nil
}

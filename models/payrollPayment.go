package models

import (
	"context"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
)

// PayrollPayment is money paid to a staff member: salary, an advance, or a
// deposit repayment.
type PayrollPayment struct {
	ID        int                `gorm:"primary_key" json:"id"`
	Name      string             `gorm:"size:255;not null;index" json:"name"`
	Amount    decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"amount"`
	Type      PayrollPaymentType `gorm:"size:20;not null" json:"type"`
	Date      time.Time          `gorm:"not null;index" json:"date"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayrollPayment struct {
	Name   string             `json:"name" binding:"required"`
	Amount decimal.Decimal    `json:"amount"`
	Type   PayrollPaymentType `json:"type" binding:"required"`
	Date   time.Time          `json:"date" binding:"required"`
}

func CreatePayrollPayment(ctx context.Context, input *NewPayrollPayment) (*PayrollPayment, error) {
	if !input.Type.Valid() {
		return nil, validationf("unknown payroll payment type %q", input.Type)
	}
	if !input.Amount.IsPositive() {
		return nil, validationf("payroll payment amount must be positive")
	}

	payment := PayrollPayment{
		Name:   input.Name,
		Amount: input.Amount,
		Type:   input.Type,
		Date:   input.Date,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func DeletePayrollPayment(ctx context.Context, id int) (*PayrollPayment, error) {
	payment, err := utils.FetchModel[PayrollPayment](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayrollPayments lists payments newest-first, filtered by staff name,
// type, and date range. All filters are optional.
func GetPayrollPayments(ctx context.Context, name string, paymentType PayrollPaymentType, from *time.Time, to *time.Time) ([]*PayrollPayment, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&PayrollPayment{})
	if name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+name+"%")
	}
	if paymentType != "" {
		if !paymentType.Valid() {
			return nil, validationf("unknown payroll payment type %q", paymentType)
		}
		dbCtx = dbCtx.Where("type = ?", paymentType)
	}
	if from != nil {
		dbCtx = dbCtx.Where("date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("date <= ?", utils.EndOfDay(*to))
	}

	var payments []*PayrollPayment
	if err := dbCtx.Order("date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

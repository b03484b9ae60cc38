package models

import "github.com/gmautocare/autocare_backend/config"

// MigrateTable keeps the schema in sync on startup.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&Invoice{},
		&InvoiceItem{},
		&ServiceItem{},
		&Tire{},
		&TyrePurchase{},
		&Expense{},
		&PayrollPayment{},
	)
}

package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRates is the CGST/SGST rate table keyed by line class.
// Rates are percentages (14 means 14%).
//
// The shop's tax treatment has changed over time, so rates are configuration
// rather than constants. Set via env:
// - ITEMS_CGST_RATE (default 14)
// - ITEMS_SGST_RATE (default 9)
// - SERVICES_CGST_RATE (default 0, services are tax-exempt)
// - SERVICES_SGST_RATE (default 0)
type TaxRates struct {
	ItemsCGST    decimal.Decimal
	ItemsSGST    decimal.Decimal
	ServicesCGST decimal.Decimal
	ServicesSGST decimal.Decimal
}

func GetTaxRates() TaxRates {
	return TaxRates{
		ItemsCGST:    rateFromEnv("ITEMS_CGST_RATE", "14"),
		ItemsSGST:    rateFromEnv("ITEMS_SGST_RATE", "9"),
		ServicesCGST: rateFromEnv("SERVICES_CGST_RATE", "0"),
		ServicesSGST: rateFromEnv("SERVICES_SGST_RATE", "0"),
	}
}

// InvoiceNumberPrefix is prepended to the zero-padded sequence when
// formatting human-facing invoice numbers.
func InvoiceNumberPrefix() string {
	prefix := strings.TrimSpace(os.Getenv("INVOICE_NUMBER_PREFIX"))
	if prefix == "" {
		return "Gmautocare"
	}
	return prefix
}

func rateFromEnv(key string, def string) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = def
	}
	rate, err := decimal.NewFromString(v)
	if err != nil || rate.IsNegative() {
		rate, _ = decimal.NewFromString(def)
	}
	return rate
}

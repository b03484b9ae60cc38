package models

import (
	"github.com/gmautocare/autocare_backend/config"
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// InvoiceTotals holds the server-computed financials of an invoice.
// Client-supplied totals are never trusted; CalculateInvoiceTotals is the
// single source of these values.
type InvoiceTotals struct {
	ItemsSubtotal    decimal.Decimal `json:"items_subtotal"`
	ServicesSubtotal decimal.Decimal `json:"services_subtotal"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CgstAmount       decimal.Decimal `json:"cgst_amount"`
	SgstAmount       decimal.Decimal `json:"sgst_amount"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// CalculateInvoiceTotals recomputes line totals and the invoice financials
// from the rate table. Line totals on the inputs are overwritten with
// price*qty (rate*qty for services).
func CalculateInvoiceTotals(items []*InvoiceItem, services []*ServiceItem, rates config.TaxRates) InvoiceTotals {

	itemsSubtotal := decimal.Zero
	for _, item := range items {
		item.TotalAmount = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsSubtotal = itemsSubtotal.Add(item.TotalAmount)
	}

	servicesSubtotal := decimal.Zero
	for _, service := range services {
		service.TotalAmount = service.Rate.Mul(decimal.NewFromInt(int64(service.Quantity)))
		servicesSubtotal = servicesSubtotal.Add(service.TotalAmount)
	}

	totalAmount := itemsSubtotal.Add(servicesSubtotal)

	cgst := taxOf(itemsSubtotal, rates.ItemsCGST).Add(taxOf(servicesSubtotal, rates.ServicesCGST))
	sgst := taxOf(itemsSubtotal, rates.ItemsSGST).Add(taxOf(servicesSubtotal, rates.ServicesSGST))

	return InvoiceTotals{
		ItemsSubtotal:    itemsSubtotal,
		ServicesSubtotal: servicesSubtotal,
		TotalAmount:      totalAmount,
		CgstAmount:       cgst,
		SgstAmount:       sgst,
		GrandTotal:       totalAmount.Add(cgst).Add(sgst),
	}
}

// taxOf applies a tax-exclusive percentage: (amount / 100) * rate.
func taxOf(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	return amount.DivRound(decimalOneHundred, 4).Mul(rate)
}

package models

import (
	"testing"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testRates() config.TaxRates {
	return config.TaxRates{
		ItemsCGST:    dec("14"),
		ItemsSGST:    dec("9"),
		ServicesCGST: dec("0"),
		ServicesSGST: dec("0"),
	}
}

func TestCalculateInvoiceTotals_RecomputesLineTotals(t *testing.T) {
	items := []*InvoiceItem{
		// client-supplied total is garbage on purpose; it must be overwritten
		{Price: dec("4500"), Quantity: 2, TotalAmount: dec("1")},
		{Price: dec("6200"), Quantity: 1},
	}
	services := []*ServiceItem{
		{Rate: dec("300"), Quantity: 4, TotalAmount: dec("999999")},
	}

	totals := CalculateInvoiceTotals(items, services, testRates())

	if !items[0].TotalAmount.Equal(dec("9000")) {
		t.Fatalf("item[0] total expected 9000, got %s", items[0].TotalAmount)
	}
	if !items[1].TotalAmount.Equal(dec("6200")) {
		t.Fatalf("item[1] total expected 6200, got %s", items[1].TotalAmount)
	}
	if !services[0].TotalAmount.Equal(dec("1200")) {
		t.Fatalf("service total expected 1200, got %s", services[0].TotalAmount)
	}

	if !totals.ItemsSubtotal.Equal(dec("15200")) {
		t.Fatalf("items subtotal expected 15200, got %s", totals.ItemsSubtotal)
	}
	if !totals.ServicesSubtotal.Equal(dec("1200")) {
		t.Fatalf("services subtotal expected 1200, got %s", totals.ServicesSubtotal)
	}
	if !totals.TotalAmount.Equal(dec("16400")) {
		t.Fatalf("total expected 16400, got %s", totals.TotalAmount)
	}

	// items taxed at 14% CGST + 9% SGST, services exempt
	if !totals.CgstAmount.Equal(dec("2128")) {
		t.Fatalf("cgst expected 2128, got %s", totals.CgstAmount)
	}
	if !totals.SgstAmount.Equal(dec("1368")) {
		t.Fatalf("sgst expected 1368, got %s", totals.SgstAmount)
	}
	if !totals.GrandTotal.Equal(dec("19896")) {
		t.Fatalf("grand total expected 19896, got %s", totals.GrandTotal)
	}
}

func TestCalculateInvoiceTotals_EmptyLines(t *testing.T) {
	totals := CalculateInvoiceTotals(nil, nil, testRates())
	if !totals.GrandTotal.IsZero() {
		t.Fatalf("grand total of empty invoice expected 0, got %s", totals.GrandTotal)
	}
	if !totals.CgstAmount.IsZero() || !totals.SgstAmount.IsZero() {
		t.Fatalf("tax of empty invoice expected 0, got cgst=%s sgst=%s", totals.CgstAmount, totals.SgstAmount)
	}
}

func TestCalculateInvoiceTotals_ServicesOnlyCarryNoTax(t *testing.T) {
	services := []*ServiceItem{
		{Rate: dec("500"), Quantity: 2},
	}
	totals := CalculateInvoiceTotals(nil, services, testRates())
	if !totals.GrandTotal.Equal(dec("1000")) {
		t.Fatalf("grand total expected 1000, got %s", totals.GrandTotal)
	}
	if !totals.CgstAmount.IsZero() {
		t.Fatalf("service-only invoice should have zero cgst, got %s", totals.CgstAmount)
	}
}

func TestCalculateInvoiceTotals_IsIdempotent(t *testing.T) {
	items := []*InvoiceItem{{Price: dec("1234.56"), Quantity: 3}}

	first := CalculateInvoiceTotals(items, nil, testRates())
	second := CalculateInvoiceTotals(items, nil, testRates())

	if !first.GrandTotal.Equal(second.GrandTotal) {
		t.Fatalf("recompute changed grand total: %s vs %s", first.GrandTotal, second.GrandTotal)
	}
	if !first.ItemsSubtotal.Equal(second.ItemsSubtotal) {
		t.Fatalf("recompute changed subtotal: %s vs %s", first.ItemsSubtotal, second.ItemsSubtotal)
	}
}

package models

import (
	"errors"
	"testing"
	"time"

	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
)

func TestFormatInvoiceNumber(t *testing.T) {
	t.Setenv("INVOICE_NUMBER_PREFIX", "")

	cases := []struct {
		seq      int64
		expected string
	}{
		{1, "Gmautocare001"},
		{7, "Gmautocare007"},
		{42, "Gmautocare042"},
		{999, "Gmautocare999"},
		// the pad is a minimum width, not a cap
		{1000, "Gmautocare1000"},
	}
	for _, tc := range cases {
		if got := FormatInvoiceNumber(tc.seq); got != tc.expected {
			t.Fatalf("FormatInvoiceNumber(%d) expected %q, got %q", tc.seq, tc.expected, got)
		}
	}
}

func TestFormatInvoiceNumber_CustomPrefix(t *testing.T) {
	t.Setenv("INVOICE_NUMBER_PREFIX", "INV-")

	if got := FormatInvoiceNumber(12); got != "INV-012" {
		t.Fatalf("expected INV-012, got %q", got)
	}
}

func TestParseInvoiceSequence_RoundTrip(t *testing.T) {
	t.Setenv("INVOICE_NUMBER_PREFIX", "")

	for _, seq := range []int64{1, 9, 99, 100, 1234} {
		number := FormatInvoiceNumber(seq)
		parsed, ok := ParseInvoiceSequence(number)
		if !ok {
			t.Fatalf("ParseInvoiceSequence(%q) failed", number)
		}
		if parsed != seq {
			t.Fatalf("round trip of %d through %q gave %d", seq, number, parsed)
		}
	}
}

func TestParseInvoiceSequence_RejectsGarbage(t *testing.T) {
	t.Setenv("INVOICE_NUMBER_PREFIX", "")

	for _, number := range []string{"", "Gmautocare", "Gmautocare000", "GmautocareABC", "notanumber"} {
		if seq, ok := ParseInvoiceSequence(number); ok {
			t.Fatalf("ParseInvoiceSequence(%q) unexpectedly succeeded with %d", number, seq)
		}
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	grand := dec("1000")

	cases := []struct {
		name     string
		pending  *bool
		amount   string
		expected PaymentStatus
	}{
		{"nil pending flag", nil, "0", PaymentStatusPaid},
		{"not pending", utils.NewFalse(), "0", PaymentStatusPaid},
		{"pending with zero balance", utils.NewTrue(), "0", PaymentStatusPaid},
		{"pending below grand total", utils.NewTrue(), "400", PaymentStatusPartiallyPaid},
		{"pending equals grand total", utils.NewTrue(), "1000", PaymentStatusUnpaid},
		{"pending above grand total", utils.NewTrue(), "1200", PaymentStatusUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoice := Invoice{
				GrandTotal:    grand,
				IsPending:     tc.pending,
				PendingAmount: dec(tc.amount),
			}
			if got := invoice.derivePaymentStatus(); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNewInvoiceValidate(t *testing.T) {
	base := func() *NewInvoice {
		return &NewInvoice{
			CustomerName:  "Ravi",
			InvoiceDate:   time.Now(),
			PaymentMethod: PaymentMethodCash,
			Services: []*NewServiceItem{
				{ServiceType: "Wheel Alignment", Quantity: 1, Rate: dec("800")},
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*NewInvoice)
		wantErr bool
	}{
		{"minimal valid input", func(in *NewInvoice) {}, false},
		{"valid phone number", func(in *NewInvoice) { in.CustomerPhone = "+919876543210" }, false},
		{"invalid phone number", func(in *NewInvoice) { in.CustomerPhone = "12345" }, true},
		{"valid usage reading", func(in *NewInvoice) { in.UsageReading = decPtr("42000") }, false},
		{"negative usage reading", func(in *NewInvoice) { in.UsageReading = decPtr("-1") }, true},
		{"invalid GSTIN", func(in *NewInvoice) { in.CustomerGST = "not-a-gstin" }, true},
		{"negative pending amount", func(in *NewInvoice) { in.PendingAmount = dec("-5") }, true},
		{"no lines at all", func(in *NewInvoice) { in.Services = nil }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base()
			tc.mutate(input)
			err := input.validate()
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodCash, PaymentMethodOnline, PaymentMethodBoth} {
		if !m.Valid() {
			t.Fatalf("%q should be valid", m)
		}
	}
	for _, m := range []PaymentMethod{"", "cheque", "CASH"} {
		if m.Valid() {
			t.Fatalf("%q should not be valid", m)
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	if p.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", p.Pages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("page 2 of 3 should have next and prev: %+v", p)
	}

	last := NewPagination(3, 20, 45)
	if last.HasNext {
		t.Fatalf("last page should not have next: %+v", last)
	}
}

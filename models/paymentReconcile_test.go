package models

import (
	"errors"
	"testing"
)

func TestReconcilePayment_CashOverwritesProvidedSplit(t *testing.T) {
	grand := dec("19896")

	details, err := ReconcilePayment(PaymentMethodCash, grand, PaymentDetails{
		// stale client split must be discarded
		CashAmount:   dec("5"),
		OnlineAmount: dec("7"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !details.CashAmount.Equal(grand) {
		t.Fatalf("cash expected %s, got %s", grand, details.CashAmount)
	}
	if !details.OnlineAmount.IsZero() {
		t.Fatalf("online expected 0, got %s", details.OnlineAmount)
	}
}

func TestReconcilePayment_OnlineTakesFullAmount(t *testing.T) {
	grand := dec("1000")

	details, err := ReconcilePayment(PaymentMethodOnline, grand, PaymentDetails{
		OnlineReference: "UPI-12345",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !details.OnlineAmount.Equal(grand) {
		t.Fatalf("online expected %s, got %s", grand, details.OnlineAmount)
	}
	if !details.CashAmount.IsZero() {
		t.Fatalf("cash expected 0, got %s", details.CashAmount)
	}
	if details.OnlineReference != "UPI-12345" {
		t.Fatalf("online reference lost: %q", details.OnlineReference)
	}
}

func TestReconcilePayment_SplitValidation(t *testing.T) {
	grand := dec("1000")

	cases := []struct {
		name    string
		cash    string
		online  string
		wantErr bool
	}{
		{"exact split", "400", "600", false},
		{"within tolerance over", "400", "600.01", false},
		{"within tolerance under", "399.99", "600", false},
		{"sum too high", "400", "600.02", true},
		{"sum too low", "399", "600", true},
		{"zero cash leg", "0", "1000", true},
		{"negative online leg", "1100", "-100", true},
		{"cash equals grand total", "1000", "0", true},
		{"cash above grand total", "1200", "100", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details, err := ReconcilePayment(PaymentMethodBoth, grand, PaymentDetails{
				CashAmount:   dec(tc.cash),
				OnlineAmount: dec(tc.online),
			})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", details)
				}
				if !errors.Is(err, ErrInvalidPayment) {
					t.Fatalf("expected ErrInvalidPayment, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !details.CashAmount.Equal(dec(tc.cash)) || !details.OnlineAmount.Equal(dec(tc.online)) {
				t.Fatalf("split changed: cash=%s online=%s", details.CashAmount, details.OnlineAmount)
			}
		})
	}
}

func TestReconcilePayment_UnknownMethod(t *testing.T) {
	_, err := ReconcilePayment(PaymentMethod("cheque"), dec("100"), PaymentDetails{})
	if !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}
}

func TestReconcilePayment_IsIdempotent(t *testing.T) {
	grand := dec("1500")

	first, err := ReconcilePayment(PaymentMethodBoth, grand, PaymentDetails{
		CashAmount:   dec("500"),
		OnlineAmount: dec("1000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// feeding the reconciled result back in must be a fixed point
	second, err := ReconcilePayment(PaymentMethodBoth, grand, first)
	if err != nil {
		t.Fatalf("re-reconcile failed: %v", err)
	}
	if !first.CashAmount.Equal(second.CashAmount) || !first.OnlineAmount.Equal(second.OnlineAmount) {
		t.Fatalf("re-reconcile changed the split: %+v vs %+v", first, second)
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoneyEqual(t *testing.T) {
	cases := []struct {
		a, b     string
		expected bool
	}{
		{"100", "100", true},
		{"100", "100.01", true},
		{"100", "99.99", true},
		{"100", "100.02", false},
		{"0", "0.011", false},
	}
	for _, tc := range cases {
		a, _ := decimal.NewFromString(tc.a)
		b, _ := decimal.NewFromString(tc.b)
		if got := MoneyEqual(a, b); got != tc.expected {
			t.Fatalf("MoneyEqual(%s, %s) expected %v, got %v", tc.a, tc.b, tc.expected, got)
		}
	}
}

func TestIsValidGSTIN(t *testing.T) {
	valid := []string{
		"22AAAAA0000A1Z5",
		"29ABCDE1234F2Z6",
		"07PQRSX9876K9ZA",
	}
	for _, gstin := range valid {
		if !IsValidGSTIN(gstin) {
			t.Fatalf("%q should be a valid GSTIN", gstin)
		}
	}

	invalid := []string{
		"",
		"22AAAAA0000A1Z",    // too short
		"22AAAAA0000A1Z55",  // too long
		"2AAAAAA0000A1Z5",   // state code must be two digits
		"22aaaaa0000A1Z5",   // lowercase PAN letters
		"22AAAAA0000A0Z5",   // entity digit 0 not allowed
		"22AAAAA0000A1X5",   // 14th char must be Z
	}
	for _, gstin := range invalid {
		if IsValidGSTIN(gstin) {
			t.Fatalf("%q should not be a valid GSTIN", gstin)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	for _, number := range []string{"9876543210", "+919876543210", "098 7654 3210"} {
		if err := ValidatePhoneNumber(number, "IN"); err != nil {
			t.Fatalf("%q should be a valid phone number, got %v", number, err)
		}
	}

	for _, number := range []string{"12", "98765", "abcdef", "0000000000"} {
		if err := ValidatePhoneNumber(number, "IN"); err == nil {
			t.Fatalf("%q should not be a valid phone number", number)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("admin@gmautocare.in") {
		t.Fatal("expected valid email")
	}
	for _, email := range []string{"", "admin", "admin@", "@gmautocare.in", "a b@c.de"} {
		if IsValidEmail(email) {
			t.Fatalf("%q should not be a valid email", email)
		}
	}
}

func TestGetMonthRange(t *testing.T) {
	start, end := GetMonthRange(2024, time.February)
	if start != time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start: %v", start)
	}
	// leap year: end is March 1st, exclusive
	if end != time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected end: %v", end)
	}

	start, end = GetMonthRange(2023, time.December)
	if end.Year() != 2024 || end.Month() != time.January {
		t.Fatalf("december range should roll into january: %v", end)
	}
	if !start.Before(end) {
		t.Fatalf("start %v should be before end %v", start, end)
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)
	out := EndOfDay(in)
	if out.Day() != 15 || out.Hour() != 23 || out.Minute() != 59 || out.Second() != 59 {
		t.Fatalf("unexpected end of day: %v", out)
	}
	if !out.After(in) {
		t.Fatalf("end of day should be after input")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 {
		t.Fatalf("expected 3 unique elements, got %v", got)
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order should be first-seen: %v", got)
	}
}

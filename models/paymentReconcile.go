package models

import (
	"errors"
	"fmt"

	"github.com/gmautocare/autocare_backend/utils"
	"github.com/shopspring/decimal"
)

// ErrInvalidPayment is the sentinel for payment allocation failures.
// Callers can match it with errors.Is.
var ErrInvalidPayment = errors.New("invalid payment")

type InvalidPaymentError struct {
	Details string
}

func (e *InvalidPaymentError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", ErrInvalidPayment.Error(), e.Details)
	}
	return ErrInvalidPayment.Error()
}

func (e *InvalidPaymentError) Unwrap() error {
	return ErrInvalidPayment
}

// ReconcilePayment normalizes the payment allocation against the grand total.
//
// cash   -> the full grand total in cash
// online -> the full grand total online
// both   -> caller-supplied split; both legs positive, cash strictly below
//           the grand total, and the two legs summing to it within 0.01
//
// Pure and idempotent; must be re-run whenever the grand total or the
// payment method changes.
func ReconcilePayment(method PaymentMethod, grandTotal decimal.Decimal, provided PaymentDetails) (PaymentDetails, error) {

	switch method {
	case PaymentMethodCash:
		return PaymentDetails{
			CashAmount:      grandTotal,
			OnlineAmount:    decimal.Zero,
			OnlineReference: provided.OnlineReference,
		}, nil

	case PaymentMethodOnline:
		return PaymentDetails{
			CashAmount:      decimal.Zero,
			OnlineAmount:    grandTotal,
			OnlineReference: provided.OnlineReference,
		}, nil

	case PaymentMethodBoth:
		cash := provided.CashAmount
		online := provided.OnlineAmount
		if !cash.IsPositive() || !online.IsPositive() {
			return PaymentDetails{}, &InvalidPaymentError{
				Details: "split payment requires positive cash and online amounts",
			}
		}
		if cash.GreaterThanOrEqual(grandTotal) {
			return PaymentDetails{}, &InvalidPaymentError{
				Details: fmt.Sprintf("cash amount %s must be below grand total %s", cash, grandTotal),
			}
		}
		if !utils.MoneyEqual(cash.Add(online), grandTotal) {
			return PaymentDetails{}, &InvalidPaymentError{
				Details: fmt.Sprintf("payment amounts (cash: %s, online: %s) must equal grand total %s", cash, online, grandTotal),
			}
		}
		return PaymentDetails{
			CashAmount:      cash,
			OnlineAmount:    online,
			OnlineReference: provided.OnlineReference,
		}, nil
	}

	return PaymentDetails{}, &InvalidPaymentError{
		Details: fmt.Sprintf("unknown payment method %q", method),
	}
}

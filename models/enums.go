package models

// PaymentMethod is how an invoice was settled.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodBoth   PaymentMethod = "both"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodOnline, PaymentMethodBoth:
		return true
	}
	return false
}

// PaymentStatus is the settlement state derived from the pending balance.
type PaymentStatus string

const (
	PaymentStatusPaid          PaymentStatus = "Paid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
)

// PayrollPaymentType classifies a staff payment.
type PayrollPaymentType string

const (
	PayrollPaymentTypeSalary  PayrollPaymentType = "salary"
	PayrollPaymentTypeAdvance PayrollPaymentType = "advance"
	PayrollPaymentTypeDeposit PayrollPaymentType = "deposit"
)

func (t PayrollPaymentType) Valid() bool {
	switch t {
	case PayrollPaymentTypeSalary, PayrollPaymentTypeAdvance, PayrollPaymentTypeDeposit:
		return true
	}
	return false
}

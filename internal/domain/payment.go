package domain

import "time"

// PaymentMethod names one of the supported payment flows.
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodVNPay        PaymentMethod = "vnpay"
	PaymentMethodMoMo         PaymentMethod = "momo"
	PaymentMethodCard         PaymentMethod = "card"
)

// PaymentStatus is the payment state machine: pending may move to paid or
// failed exactly once; paid and failed are terminal.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsTerminal reports whether the status must never be overwritten.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Payment records one initiation of a payment method for an order. Status is
// monotonic; the store rejects writes once a terminal state is reached.
type Payment struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"orderId"`
	Method      PaymentMethod `json:"method"`
	ProviderRef string        `json:"providerReference,omitempty"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Order is owned by the external order service; this core reads the amount
// and writes back only the payment fields.
type Order struct {
	ID            string        `json:"id"`
	Amount        int64         `json:"amount"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
}

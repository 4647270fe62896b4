package payment

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// codMethod is cash on delivery: the payment stays pending until the courier
// hands over the order and the back office confirms it.
type codMethod struct{}

// NewCOD builds the cash-on-delivery method.
func NewCOD() Method {
	return codMethod{}
}

func (codMethod) Name() domain.PaymentMethod { return domain.PaymentMethodCOD }

func (codMethod) Initiate(_ context.Context, req InitiateRequest) (*InitiateResult, error) {
	return &InitiateResult{
		Status: domain.PaymentStatusPending,
		Payload: map[string]interface{}{
			"message": "pay the courier on delivery",
			"amount":  req.Order.Amount,
		},
	}, nil
}

func (codMethod) RebuildPayload(_ context.Context, order domain.Order, _ domain.Payment) (map[string]interface{}, error) {
	return map[string]interface{}{
		"message": "pay the courier on delivery",
		"amount":  order.Amount,
	}, nil
}

func (codMethod) PollInterval() time.Duration { return 0 }

func (codMethod) SupportsManualConfirm() bool { return false }

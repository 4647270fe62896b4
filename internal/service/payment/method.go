package payment

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// InitiateRequest carries the order plus method-specific parameters (selected
// bank, card fields, client IP for gateway signing).
type InitiateRequest struct {
	Order  domain.Order
	Params map[string]string
}

// InitiateResult is the uniform outcome of starting a payment flow. Payload
// holds the provider-specific fields the caller needs (redirect URL, bank
// accounts, transfer reference).
type InitiateResult struct {
	Status      domain.PaymentStatus
	ProviderRef string
	Payload     map[string]interface{}
}

// Method is one payment flow. Initiate starts it; PollInterval reports the
// provider-specific polling cadence (zero means the method completes without
// polling); SupportsManualConfirm reports whether the payer may self-report
// completion.
type Method interface {
	Name() domain.PaymentMethod
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	PollInterval() time.Duration
	SupportsManualConfirm() bool
}

// statusChecker is implemented by methods that can fetch a fresh status for a
// pending payment, either from the provider or from the payment store when
// completion arrives through another writer.
type statusChecker interface {
	CheckStatus(ctx context.Context, p domain.Payment) (domain.PaymentStatus, error)
}

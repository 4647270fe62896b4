package payment

import (
	"context"

	"storefront/internal/domain"
)

// CreatePaymentInput is the initiation record written by the orchestrator.
type CreatePaymentInput struct {
	OrderID     string
	Method      domain.PaymentMethod
	ProviderRef string
	Status      domain.PaymentStatus
}

// Repository persists payments. Status is monotonic: MarkStatus only applies
// to pending rows, so stale pollers and duplicate confirmations can never
// overwrite a terminal state.
type Repository interface {
	Create(ctx context.Context, in CreatePaymentInput) (*domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)
	GetPending(ctx context.Context, orderID string, method domain.PaymentMethod) (*domain.Payment, error)
	MarkStatus(ctx context.Context, id string, status domain.PaymentStatus) (bool, error)
}

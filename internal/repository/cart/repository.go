package cart

import (
	"context"

	"storefront/internal/domain"
)

// Store is one cart backend. The anonymous session uses the Redis-backed
// local store; authenticated sessions go through the remote cart service.
// Every operation returns the resulting cart: for the local store that is the
// freshly persisted snapshot, for the remote store the server's response,
// which is authoritative and replaces any local projection.
type Store interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, in domain.AddLineInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) (*domain.Cart, error)
}

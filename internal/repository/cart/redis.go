package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

// localStore keeps one serialized cart per anonymous owner under a single
// durable key. Mutations read the latest persisted snapshot, apply the
// aggregate operation and write the whole cart back synchronously; a failed
// write leaves the previous snapshot intact.
type localStore struct {
	client *redis.Client
}

// NewLocal builds the Redis-backed anonymous cart store.
func NewLocal(client *redis.Client) Store {
	return &localStore{client: client}
}

func localKey(ownerID string) string {
	return "cart:anon:" + ownerID
}

func (s *localStore) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, localKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{Items: []domain.LineItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (s *localStore) AddItem(ctx context.Context, ownerID string, in domain.AddLineInput) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		cart.AddLine(in)
		return nil
	})
}

func (s *localStore) UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		cart.SetLineQuantity(itemID, quantity)
		return nil
	})
}

func (s *localStore) RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		cart.RemoveLine(itemID)
		return nil
	})
}

func (s *localStore) Clear(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if err := s.client.Del(ctx, localKey(ownerID)).Err(); err != nil {
		return nil, fmt.Errorf("redis delete cart: %w", err)
	}
	return &domain.Cart{Items: []domain.LineItem{}}, nil
}

func (s *localStore) mutate(ctx context.Context, ownerID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := apply(cart); err != nil {
		return nil, err
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, localKey(ownerID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis set cart: %w", err)
	}
	return cart, nil
}

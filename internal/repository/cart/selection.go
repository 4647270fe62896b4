package cart

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SelectionStore tracks the checkout selection per owner as a Redis set.
// Selection is device state, not a remote-cart concern, so both anonymous and
// authenticated sessions keep it here; the service prunes ids that no longer
// match a live line.
type SelectionStore struct {
	client *redis.Client
}

// NewSelection builds the selection store.
func NewSelection(client *redis.Client) *SelectionStore {
	return &SelectionStore{client: client}
}

func selectionKey(ownerID string) string {
	return "cart:selected:" + ownerID
}

// Get returns the selected item ids for an owner.
func (s *SelectionStore) Get(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, selectionKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis selection members: %w", err)
	}
	return ids, nil
}

// Toggle flips one item's membership and reports the new state.
func (s *SelectionStore) Toggle(ctx context.Context, ownerID, itemID string) (bool, error) {
	key := selectionKey(ownerID)
	removed, err := s.client.SRem(ctx, key, itemID).Result()
	if err != nil {
		return false, fmt.Errorf("redis selection remove: %w", err)
	}
	if removed > 0 {
		return false, nil
	}
	if err := s.client.SAdd(ctx, key, itemID).Err(); err != nil {
		return false, fmt.Errorf("redis selection add: %w", err)
	}
	return true, nil
}

// Replace swaps the whole selection. An empty id list clears it.
func (s *SelectionStore) Replace(ctx context.Context, ownerID string, itemIDs []string) error {
	key := selectionKey(ownerID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(itemIDs) > 0 {
		members := make([]interface{}, len(itemIDs))
		for i, id := range itemIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis selection replace: %w", err)
	}
	return nil
}

// Remove drops one id from the selection; absent ids are a no-op.
func (s *SelectionStore) Remove(ctx context.Context, ownerID, itemID string) error {
	if err := s.client.SRem(ctx, selectionKey(ownerID), itemID).Err(); err != nil {
		return fmt.Errorf("redis selection remove: %w", err)
	}
	return nil
}

// Clear empties the selection for an owner.
func (s *SelectionStore) Clear(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, selectionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis selection clear: %w", err)
	}
	return nil
}

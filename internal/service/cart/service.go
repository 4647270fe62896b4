package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// Session identifies the caller of a cart operation. Authenticated sessions
// own a remote cart keyed by customer id; anonymous sessions own a local cart
// keyed by anonymous id. The store is chosen per call, never cached.
type Session struct {
	Authenticated bool
	OwnerID       string
}

type cartStore interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, in domain.AddLineInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) (*domain.Cart, error)
}

type selectionStore interface {
	Get(ctx context.Context, ownerID string) ([]string, error)
	Toggle(ctx context.Context, ownerID, itemID string) (bool, error)
	Replace(ctx context.Context, ownerID string, itemIDs []string) error
	Remove(ctx context.Context, ownerID, itemID string) error
	Clear(ctx context.Context, ownerID string) error
}

type productCatalog interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// Service is the cart reconciliation engine. It validates input, resolves
// variant price/stock at call time and applies the operation to the session's
// active store.
type Service struct {
	local     cartStore
	remote    cartStore
	selection selectionStore
	catalog   productCatalog
}

// New wires the cart service.
func New(local, remote cartStore, selection selectionStore, catalog productCatalog) *Service {
	return &Service{local: local, remote: remote, selection: selection, catalog: catalog}
}

func (s *Service) store(sess Session) cartStore {
	if sess.Authenticated {
		return s.remote
	}
	return s.local
}

// AddItemInput is the add-to-cart request before variant resolution.
type AddItemInput struct {
	ProductID string
	Quantity  int
	Options   *domain.Options
}

// Get returns the session's cart with the checkout selection merged in.
func (s *Service) Get(ctx context.Context, sess Session) (*domain.Cart, error) {
	cart, err := s.store(sess).Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	return s.withSelection(ctx, sess, cart)
}

// AddItem resolves the variant for the selection, checks the resolved stock
// against what the cart already holds and applies the add to the active
// store. The stock check is best effort; the remote store re-validates on its
// own write path.
func (s *Service) AddItem(ctx context.Context, sess Session, in AddItemInput) (*domain.Cart, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product: %w", err)
		}
		return nil, err
	}

	resolved := domain.ResolveVariant(*product, in.Options)
	if resolved.Stock <= 0 {
		return nil, domain.ErrOutOfStock
	}

	store := s.store(sess)
	current, err := store.Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	key := in.Options.CanonicalKey()
	held := 0
	for _, item := range current.Items {
		if item.ProductID == in.ProductID && item.Options.CanonicalKey() == key {
			held = item.Quantity
			break
		}
	}
	if held+in.Quantity > resolved.Stock {
		return nil, domain.ErrOutOfStock
	}

	opts := in.Options
	if opts != nil {
		snapshot := *opts
		snapshot.VariantPrice = resolved.VariantPrice
		if resolved.Image != product.Image {
			snapshot.VariantImage = resolved.Image
		}
		opts = &snapshot
	}
	cart, err := store.AddItem(ctx, sess.OwnerID, domain.AddLineInput{
		ProductID:        in.ProductID,
		Name:             product.Name,
		UnitPrice:        product.Price,
		SalePrice:        product.SalePrice,
		Image:            resolved.Image,
		Quantity:         in.Quantity,
		StockAtSelection: resolved.Stock,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return s.withSelection(ctx, sess, cart)
}

// UpdateQuantity replaces one line's quantity. Quantities below one are
// rejected here, not clamped.
func (s *Service) UpdateQuantity(ctx context.Context, sess Session, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	store := s.store(sess)
	current, err := store.Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	for _, item := range current.Items {
		if item.ID == itemID && item.StockAtSelection > 0 && quantity > item.StockAtSelection {
			return nil, domain.ErrOutOfStock
		}
	}
	cart, err := store.UpdateQuantity(ctx, sess.OwnerID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	return s.withSelection(ctx, sess, cart)
}

// RemoveItem drops a line and its selection entry.
func (s *Service) RemoveItem(ctx context.Context, sess Session, itemID string) (*domain.Cart, error) {
	cart, err := s.store(sess).RemoveItem(ctx, sess.OwnerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Remove(ctx, sess.OwnerID, itemID); err != nil {
		return nil, err
	}
	return s.withSelection(ctx, sess, cart)
}

// Clear empties the cart and the selection.
func (s *Service) Clear(ctx context.Context, sess Session) (*domain.Cart, error) {
	cart, err := s.store(sess).Clear(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Clear(ctx, sess.OwnerID); err != nil {
		return nil, err
	}
	cart.SelectedIDs = nil
	return cart, nil
}

// ToggleSelect flips one line's membership in the checkout selection.
func (s *Service) ToggleSelect(ctx context.Context, sess Session, itemID string) (*domain.Cart, error) {
	cart, err := s.store(sess).Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	if _, err := s.selection.Toggle(ctx, sess.OwnerID, itemID); err != nil {
		return nil, err
	}
	return s.withSelection(ctx, sess, cart)
}

// SelectAll selects every line or clears the selection.
func (s *Service) SelectAll(ctx context.Context, sess Session, selected bool) (*domain.Cart, error) {
	cart, err := s.store(sess).Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	if !selected {
		if err := s.selection.Clear(ctx, sess.OwnerID); err != nil {
			return nil, err
		}
		cart.SelectedIDs = nil
		return cart, nil
	}
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ID)
	}
	if err := s.selection.Replace(ctx, sess.OwnerID, ids); err != nil {
		return nil, err
	}
	cart.SelectedIDs = ids
	return cart, nil
}

// CompleteCheckout removes the purchased (selected) lines after a successful
// checkout and clears the selection.
func (s *Service) CompleteCheckout(ctx context.Context, sess Session) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	store := s.store(sess)
	for _, id := range cart.SelectedIDs {
		if cart, err = store.RemoveItem(ctx, sess.OwnerID, id); err != nil {
			return nil, err
		}
	}
	if err := s.selection.Clear(ctx, sess.OwnerID); err != nil {
		return nil, err
	}
	cart.SelectedIDs = nil
	return cart, nil
}

// MergeOnLogin replays the anonymous cart's lines into the customer's remote
// cart, then discards the anonymous snapshot. The remote cart stays
// authoritative throughout; guest items are merged, not silently lost.
func (s *Service) MergeOnLogin(ctx context.Context, anonymousID, customerID string) (*domain.Cart, error) {
	local, err := s.local.Get(ctx, anonymousID)
	if err != nil {
		return nil, err
	}
	for _, item := range local.Items {
		_, err := s.remote.AddItem(ctx, customerID, domain.AddLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Options:   item.Options,
		})
		if err != nil {
			// Leave the anonymous cart untouched so nothing is lost;
			// the caller can retry the login merge.
			return nil, fmt.Errorf("merge anonymous cart: %w", err)
		}
	}
	if _, err := s.local.Clear(ctx, anonymousID); err != nil {
		return nil, err
	}
	if err := s.selection.Clear(ctx, anonymousID); err != nil {
		return nil, err
	}
	return s.remote.Get(ctx, customerID)
}

// withSelection merges the stored selection into the cart, keeping only ids
// that still match a live line.
func (s *Service) withSelection(ctx context.Context, sess Session, cart *domain.Cart) (*domain.Cart, error) {
	ids, err := s.selection.Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	cart.SelectedIDs = ids
	cart.PruneSelection()
	return cart, nil
}

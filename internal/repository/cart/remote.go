package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
)

// remoteStore talks to the external cart service owning authenticated carts.
// Every mutation response carries the server's cart, which replaces local
// state; the client never trusts its own optimistic computation on this path.
type remoteStore struct {
	baseURL string
	client  *http.Client
	sfg     singleflight.Group
}

// NewRemote builds the HTTP client store for authenticated sessions.
func NewRemote(baseURL string) Store {
	return &remoteStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteAddRequest struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	Options      *domain.Options `json:"options,omitempty"`
	VariantImage string          `json:"variantImage,omitempty"`
}

type remoteQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *remoteStore) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	// Coalesce concurrent fetches for the same owner. The flight runs on a
	// context detached from the first caller so its cancellation cannot fail
	// the coalesced peers; the client timeout still bounds the request.
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		return s.do(context.WithoutCancel(ctx), ownerID, http.MethodGet, "/cart", nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *remoteStore) AddItem(ctx context.Context, ownerID string, in domain.AddLineInput) (*domain.Cart, error) {
	req := remoteAddRequest{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Options:   in.Options,
	}
	if in.Options != nil {
		req.VariantImage = in.Options.VariantImage
	}
	return s.do(ctx, ownerID, http.MethodPost, "/cart/items", req)
}

func (s *remoteStore) UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error) {
	return s.do(ctx, ownerID, http.MethodPut, "/cart/items/"+itemID, remoteQuantityRequest{Quantity: quantity})
}

func (s *remoteStore) RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error) {
	return s.do(ctx, ownerID, http.MethodDelete, "/cart/items/"+itemID, nil)
}

func (s *remoteStore) Clear(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.do(ctx, ownerID, http.MethodDelete, "/cart", nil)
}

func (s *remoteStore) do(ctx context.Context, ownerID, method, path string, body interface{}) (*domain.Cart, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Customer-ID", ownerID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return nil, domain.ErrOutOfStock
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: cart service returned %d: %s", domain.ErrRemoteUnavailable, resp.StatusCode, payload)
	}

	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("decode cart response: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	// The server owns the items; totals are re-folded locally so every
	// surface applies the same price precedence.
	cart.Recompute()
	return &cart, nil
}
